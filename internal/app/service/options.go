package service

import (
	"github.com/ikkim/storefront-backend/internal/cache"
	"github.com/ikkim/storefront-backend/internal/events"
	"github.com/ikkim/storefront-backend/internal/metrics"
)

// FavoriteNotifier pushes favorite changes to a user's live sessions
type FavoriteNotifier interface {
	NotifyFavoriteChanged(userID, productID uint, favorited bool)
}

type noopNotifier struct{}

func (noopNotifier) NotifyFavoriteChanged(uint, uint, bool) {}

const defaultRecentLimit = 8

type options struct {
	publisher     events.Publisher
	notifier      FavoriteNotifier
	metrics       *metrics.Metrics
	recentCache   cache.RecentProducts
	recentDefault int
}

// Option configures the optional collaborators of a service
type Option func(*options)

func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

func WithNotifier(n FavoriteNotifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithRecentCache(c cache.RecentProducts) Option {
	return func(o *options) {
		if c != nil {
			o.recentCache = c
		}
	}
}

// WithRecentDefault sets the ListRecent size used when n <= 0
func WithRecentDefault(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.recentDefault = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		publisher:     events.NewNoopPublisher(),
		notifier:      noopNotifier{},
		recentCache:   cache.NewRecentProducts(nil, 0),
		recentDefault: defaultRecentLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
