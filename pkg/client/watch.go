package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

const messageTypeFavoriteChanged = "favorite_changed"

type favoriteChanged struct {
	Type      string `json:"type"`
	ProductID uint   `json:"productId"`
	Favorited bool   `json:"favorited"`
}

func (s *Session) watchURL() (string, error) {
	u, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + "/favorites/ws"
	u.RawQuery = url.Values{"token": {s.config.Token}}.Encode()
	return u.String(), nil
}

// Watch applies favorite changes pushed by the server until ctx is done or
// the connection drops. The set is reloaded once connected so changes made
// before the connection opened are not missed.
func (s *Session) Watch(ctx context.Context) error {
	target, err := s.watchURL()
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, kind: kindForStatus(resp.StatusCode), Message: "websocket handshake failed"}
		}
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if err := s.favorites.Load(ctx); err != nil {
		return err
	}

	for {
		var msg favoriteChanged
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
		if msg.Type != messageTypeFavoriteChanged || msg.ProductID == 0 {
			continue
		}
		s.favorites.ApplyRemote(msg.ProductID, msg.Favorited)
	}
}
