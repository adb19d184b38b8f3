package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// SessionConfig describes a logged-in user's connection to the storefront
type SessionConfig struct {
	BaseURL       string
	Token         string
	HTTPClient    *http.Client
	ToggleTimeout time.Duration
}

// Session is created on login and destroyed on logout. It owns the client and
// the favorites cache for one user; nothing is shared between sessions.
type Session struct {
	config    SessionConfig
	identity  Identity
	client    *Client
	favorites *FavoritesCache

	closeOnce sync.Once
	closeErr  error
}

// NewSession verifies the token and loads the user's favorites
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, fmt.Errorf("%w: base URL and token are required", ErrInvalidRequest)
	}

	c := NewClient(cfg.BaseURL, cfg.Token, cfg.HTTPClient)
	identity, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}

	s := &Session{
		config:    cfg,
		identity:  *identity,
		client:    c,
		favorites: NewFavoritesCache(c, WithToggleTimeout(cfg.ToggleTimeout)),
	}
	if err := s.favorites.Load(ctx); err != nil {
		s.favorites.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) UserID() uint {
	return s.identity.ID
}

func (s *Session) Identity() Identity {
	return s.identity
}

func (s *Session) Favorites() *FavoritesCache {
	return s.favorites
}

func (s *Session) Client() *Client {
	return s.client
}

// Close ends the session: the cache stops notifying and the token is revoked.
// An already expired or revoked token is not an error.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.favorites.Close()
		if err := s.client.Logout(ctx); err != nil && !errors.Is(err, ErrUnauthorized) {
			s.closeErr = err
		}
	})
	return s.closeErr
}
