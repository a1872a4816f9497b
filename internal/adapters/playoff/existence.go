package playoff

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Existence is the tagged result of the player availability check.
type Existence int

// Outcomes of TranslateExistence.
const (
	ExistenceProtocolError Existence = iota
	Exists
	NotExists
)

func (e Existence) String() string {
	switch e {
	case Exists:
		return "exists"
	case NotExists:
		return "not_exists"
	default:
		return "protocol_error"
	}
}

// ExistenceResult carries the translated outcome and, for protocol errors,
// the response that caused it.
type ExistenceResult struct {
	Kind   Existence
	Status int
	Body   string
}

// Exists converts the result to a boolean, failing on protocol errors.
func (r ExistenceResult) Exists() (bool, error) {
	switch r.Kind {
	case Exists:
		return true, nil
	case NotExists:
		return false, nil
	default:
		return false, fmt.Errorf("%w: availability check returned %d: %s", ErrProtocol, r.Status, r.Body)
	}
}

// TranslateExistence interprets the availability endpoint, whose contract is
// inverted: a conflict means the id is taken, and a 2xx body of {"ok": 1}
// means it is free. Any other response is a protocol error.
func TranslateExistence(status int, body []byte) ExistenceResult {
	if status == http.StatusConflict {
		return ExistenceResult{Kind: Exists, Status: status}
	}
	if status >= 200 && status < 300 && gjson.ValidBytes(body) {
		ok := gjson.GetBytes(body, "ok")
		if ok.Type == gjson.Number && ok.Num == 1 {
			return ExistenceResult{Kind: NotExists, Status: status}
		}
	}
	return ExistenceResult{Kind: ExistenceProtocolError, Status: status, Body: string(body)}
}
