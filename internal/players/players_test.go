package players

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topcoder-platform/playoff-processor/internal/config"
	"github.com/topcoder-platform/playoff-processor/internal/domain/intake"
	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeAPI struct {
	players   []model.PlayoffPlayer
	limit     int
	deleted   []string
	getErr    error
	connected int
}

func (f *fakeAPI) GetPlayer(_ context.Context, id string) (model.PlayoffPlayer, error) {
	if f.getErr != nil {
		return model.PlayoffPlayer{}, f.getErr
	}
	for _, p := range f.players {
		if p.ID == id {
			return p, nil
		}
	}
	return model.PlayoffPlayer{}, errors.New("player not found")
}

func (f *fakeAPI) DeletePlayer(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ListPlayers(_ context.Context, limit int) ([]model.PlayoffPlayer, error) {
	f.limit = limit
	return f.players, nil
}

type fakePublisher struct {
	keys, values [][]byte
	closed       bool
}

func (f *fakePublisher) Publish(_ context.Context, key, value []byte) error {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func execute(t *testing.T, api *fakeAPI, pub *fakePublisher, args ...string) (string, error) {
	t.Helper()
	deps := Deps{
		Config: config.New(),
		Connect: func(context.Context) (PlayerAPI, error) {
			api.connected++
			return api, nil
		},
		NewPublisher: func() (Publisher, error) { return pub, nil },
	}
	cmd := NewRootCommand(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func samplePlayers() []model.PlayoffPlayer {
	return []model.PlayoffPlayer{
		{ID: "tc_1", Alias: "TonyJ", Raw: map[string]any{"id": "tc_1", "alias": "TonyJ", "enabled": true}},
		{ID: "tc_2", Alias: "lazybaer"},
	}
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(Deps{Config: config.New()})
	assert.Equal(t, "playoff-players", cmd.Use)

	for _, name := range []string{"list", "view", "remove", "send-event"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestList(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		api := &fakeAPI{players: samplePlayers()}
		out, err := execute(t, api, nil, "list")
		require.NoError(t, err)

		assert.Equal(t, 10, api.limit)
		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, true, got[0]["enabled"])
		assert.Equal(t, "lazybaer", got[1]["alias"])
	})

	t.Run("explicit limit", func(t *testing.T) {
		api := &fakeAPI{}
		_, err := execute(t, api, nil, "list", "3")
		require.NoError(t, err)
		assert.Equal(t, 3, api.limit)
	})

	t.Run("bad limit", func(t *testing.T) {
		api := &fakeAPI{}
		_, err := execute(t, api, nil, "list", "many")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Zero(t, api.connected)
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := execute(t, &fakeAPI{}, nil, "list", "1", "2")
		assert.Error(t, err)
	})
}

func TestView(t *testing.T) {
	api := &fakeAPI{players: samplePlayers()}
	out, err := execute(t, api, nil, "view", "tc_1")
	require.NoError(t, err)
	assert.Contains(t, out, `"alias": "TonyJ"`)
	assert.Contains(t, out, "    ")

	api.getErr = errors.New("playoff unavailable")
	_, err = execute(t, api, nil, "view", "tc_1")
	assert.EqualError(t, err, "playoff unavailable")

	_, err = execute(t, api, nil, "view")
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	api := &fakeAPI{}
	out, err := execute(t, api, nil, "remove", "tc_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tc_1"}, api.deleted)
	assert.Equal(t, "removed tc_1\n", out)
}

func TestSendEvent(t *testing.T) {
	t.Run("publishes an event the processor accepts", func(t *testing.T) {
		pub := &fakePublisher{}
		_, err := execute(t, &fakeAPI{}, pub, "send-event", "30054692", "--phase-id", "946550")
		require.NoError(t, err)

		require.Len(t, pub.values, 1)
		assert.True(t, pub.closed)
		assert.NotEmpty(t, pub.keys[0])

		cfg := config.New()
		ev, err := intake.Parse(pub.values[0])
		require.NoError(t, err)
		assert.Equal(t, int64(30054692), ev.Payload.ProjectID)
		assert.Equal(t, int64(946550), ev.Payload.PhaseID)
		assert.NoError(t, intake.Matches(ev, cfg.KafkaTopic, intake.Filter{
			PhaseTypeName: cfg.PhaseTypeName,
			State:         cfg.State,
			ProjectStatus: cfg.ProjectStatus,
		}))
	})

	t.Run("rejects a bad challenge id", func(t *testing.T) {
		pub := &fakePublisher{}
		_, err := execute(t, &fakeAPI{}, pub, "send-event", "-4")
		assert.Error(t, err)
		assert.Empty(t, pub.values)
	})
}

func TestCompletionEvent(t *testing.T) {
	cfg := config.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	ev := CompletionEvent(cfg, 7, 8, "tool", "admin", now)

	assert.Equal(t, cfg.KafkaTopic, ev.Topic)
	assert.Equal(t, "tool", ev.Originator)
	assert.Equal(t, time.UTC, ev.Timestamp.Location())
	assert.Equal(t, "Iterative Review", ev.Payload.PhaseTypeName)
	assert.Equal(t, "END", ev.Payload.State)
	assert.Equal(t, "Completed", ev.Payload.ProjectStatus)
	assert.Equal(t, "admin", ev.Payload.Operator)
}
