// Package playoff is the client of the gamification API.
package playoff

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/topcoder-platform/playoff-processor/internal/adapters/rest"
	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
)

// Client opens sessions against the gamification API.
type Client struct {
	api    *rest.Client
	tokens rest.TokenSource
}

// New creates a Client that fetches session tokens from ts.
func New(base string, ts rest.TokenSource, opts ...rest.Option) *Client {
	return &Client{api: rest.New("playoff", base, ts, opts...), tokens: ts}
}

// Session acquires an access token and returns the API bound to it.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("playoff token: %w", err)
	}
	return &Session{api: c.api.WithTokens(rest.StaticToken(tok))}, nil
}

// Session is the gamification API seen with a single access token.
type Session struct {
	api *rest.Client
}

// PlayerExists reports whether playoffID is already a player.
func (s *Session) PlayerExists(ctx context.Context, playoffID string) (bool, error) {
	const op = "player_exists"
	resp, err := s.api.Do(ctx, op, http.MethodGet, "/admin/validation/player/available", url.Values{"value": {playoffID}}, nil)
	if err != nil {
		return false, err
	}
	if resp.Status != http.StatusConflict && !resp.OK() {
		return false, s.api.StatusError(op, resp)
	}
	return TranslateExistence(resp.Status, resp.Body).Exists()
}

// CreatePlayer registers a player with the given alias.
func (s *Session) CreatePlayer(ctx context.Context, playoffID, alias string) error {
	body := map[string]string{"id": playoffID, "alias": alias}
	_, err := s.api.DoOK(ctx, "create_player", http.MethodPost, "/admin/players", nil, body)
	return err
}

// PlayAction plays actionID count times for the player.
func (s *Session) PlayAction(ctx context.Context, playoffID, actionID string, count int) error {
	path := "/runtime/actions/" + url.PathEscape(actionID) + "/play"
	_, err := s.api.DoOK(ctx, "play_action", http.MethodPost, path, url.Values{"player_id": {playoffID}}, map[string]int{"count": count})
	return err
}

// GetPlayer returns the details of one player.
func (s *Session) GetPlayer(ctx context.Context, playoffID string) (model.PlayoffPlayer, error) {
	const op = "get_player"
	resp, err := s.api.Do(ctx, op, http.MethodGet, "/admin/players/"+url.PathEscape(playoffID), nil, nil)
	if err != nil {
		return model.PlayoffPlayer{}, err
	}
	if resp.Status == http.StatusNotFound {
		return model.PlayoffPlayer{}, fmt.Errorf("%w: %s: %w", ErrPlayerNotFound, playoffID, s.api.StatusError(op, resp))
	}
	if !resp.OK() {
		return model.PlayoffPlayer{}, s.api.StatusError(op, resp)
	}
	return decodePlayer(op, resp.Body)
}

// DeletePlayer removes a player.
func (s *Session) DeletePlayer(ctx context.Context, playoffID string) error {
	const op = "delete_player"
	resp, err := s.api.Do(ctx, op, http.MethodDelete, "/admin/players/"+url.PathEscape(playoffID), nil, nil)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %w", ErrPlayerNotFound, playoffID, s.api.StatusError(op, resp))
	}
	if !resp.OK() {
		return s.api.StatusError(op, resp)
	}
	return nil
}

// ListPlayers returns up to limit players. Both a bare array and an object
// with a data array are accepted.
func (s *Session) ListPlayers(ctx context.Context, limit int) ([]model.PlayoffPlayer, error) {
	const op = "list_players"
	resp, err := s.api.DoOK(ctx, op, http.MethodGet, "/admin/players", url.Values{"limit": {strconv.Itoa(limit)}}, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("%w: %s: invalid JSON body", ErrProtocol, op)
	}
	list := gjson.ParseBytes(resp.Body)
	if !list.IsArray() {
		list = list.Get("data")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: %s: no player list in response", ErrProtocol, op)
	}

	var players []model.PlayoffPlayer
	for _, item := range list.Array() {
		p, err := decodePlayer(op, []byte(item.Raw))
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func decodePlayer(op string, raw []byte) (model.PlayoffPlayer, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.PlayoffPlayer{}, fmt.Errorf("%w: %s: %w", ErrProtocol, op, err)
	}
	p := model.PlayoffPlayer{Raw: fields}
	p.ID, _ = fields["id"].(string)
	p.Alias, _ = fields["alias"].(string)
	return p, nil
}
