package playoff

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateExistence(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   Existence
	}{
		{"conflict means taken", http.StatusConflict, `{"message":"already exists"}`, Exists},
		{"conflict without body", http.StatusConflict, ``, Exists},
		{"ok sentinel means free", http.StatusOK, `{"ok":1}`, NotExists},
		{"ok sentinel with extra fields", http.StatusOK, `{"ok":1,"value":"tc_1"}`, NotExists},
		{"ok as zero", http.StatusOK, `{"ok":0}`, ExistenceProtocolError},
		{"ok as string", http.StatusOK, `{"ok":"1"}`, ExistenceProtocolError},
		{"ok as true", http.StatusOK, `{"ok":true}`, ExistenceProtocolError},
		{"missing sentinel", http.StatusOK, `{}`, ExistenceProtocolError},
		{"not JSON", http.StatusOK, `ok`, ExistenceProtocolError},
		{"no content", http.StatusNoContent, ``, ExistenceProtocolError},
		{"server error", http.StatusInternalServerError, `{"ok":1}`, ExistenceProtocolError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslateExistence(tc.status, []byte(tc.body))
			assert.Equal(t, tc.want, got.Kind, got.Kind.String())
			assert.Equal(t, tc.status, got.Status)
		})
	}
}

func TestExistenceResultExists(t *testing.T) {
	exists, err := ExistenceResult{Kind: Exists}.Exists()
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = ExistenceResult{Kind: NotExists}.Exists()
	assert.NoError(t, err)
	assert.False(t, exists)

	_, err = ExistenceResult{Kind: ExistenceProtocolError, Status: 200, Body: `{}`}.Exists()
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Contains(t, err.Error(), "200")
}
