package client

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// State is the per-product state of the favorites cache
type State int

const (
	Unfavorited State = iota
	Favorited
	PendingToggle
)

func (s State) String() string {
	switch s {
	case Favorited:
		return "favorited"
	case PendingToggle:
		return "pending"
	default:
		return "unfavorited"
	}
}

// Change is delivered to subscribers when a product's rendered value or
// state changes. Err is set when a toggle failed and was reverted.
type Change struct {
	ProductID uint
	Favorited bool
	State     State
	Err       error
}

const (
	DefaultToggleTimeout = 10 * time.Second

	// follow-up toggles per pending episode before settling on the server value
	maxFollowUps = 2
)

type CacheOption func(*FavoritesCache)

// WithToggleTimeout bounds each toggle request; expiry counts as failure
func WithToggleTimeout(d time.Duration) CacheOption {
	return func(c *FavoritesCache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

type entry struct {
	confirmed bool
	pending   bool
	desired   bool
	flight    uint64
	followUps int
}

func (e *entry) rendered() bool {
	if e.pending {
		return e.desired
	}
	return e.confirmed
}

func (e *entry) state() State {
	switch {
	case e.pending:
		return PendingToggle
	case e.confirmed:
		return Favorited
	default:
		return Unfavorited
	}
}

type subscription struct {
	id     int
	fn     func(Change)
	active atomic.Bool
}

// FavoritesCache is a session's optimistic view of the favorited product set.
// At most one toggle request per product is in flight; toggles made while
// one is pending only update the desired value, which is reconciled when the
// request resolves.
type FavoritesCache struct {
	api     API
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	entries    map[uint]*entry
	nextFlight uint64
	closed     bool
	subs       []*subscription
	nextSub    int
	outbox     []Change
	delivering bool
}

func NewFavoritesCache(api API, opts ...CacheOption) *FavoritesCache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &FavoritesCache{
		api:     api,
		timeout: DefaultToggleTimeout,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[uint]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FavoritesCache) entryLocked(productID uint) *entry {
	e, ok := c.entries[productID]
	if !ok {
		e = &entry{}
		c.entries[productID] = e
	}
	return e
}

// Toggle flips the rendered value immediately and reconciles with the server
// in the background.
func (c *FavoritesCache) Toggle(productID uint) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}

	e := c.entryLocked(productID)
	if e.pending {
		e.desired = !e.desired
	} else {
		e.pending = true
		e.desired = !e.confirmed
		e.followUps = 0
		c.launchLocked(productID, e)
	}
	c.emitLocked(productID, e, nil)
	c.mu.Unlock()

	c.flush()
	return nil
}

func (c *FavoritesCache) launchLocked(productID uint, e *entry) {
	c.nextFlight++
	e.flight = c.nextFlight
	c.wg.Add(1)
	go c.send(productID, e.flight)
}

func (c *FavoritesCache) send(productID uint, flight uint64) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	nowFavorited, err := c.api.Toggle(ctx, productID)
	c.resolve(productID, flight, nowFavorited, err)
}

func (c *FavoritesCache) resolve(productID uint, flight uint64, nowFavorited bool, err error) {
	c.mu.Lock()
	e, ok := c.entries[productID]
	if !ok || !e.pending || e.flight != flight {
		c.mu.Unlock()
		return
	}

	if err != nil {
		// back to the last confirmed value; queued intent is dropped
		e.pending = false
		e.flight = 0
		e.desired = e.confirmed
		c.emitLocked(productID, e, err)
		c.mu.Unlock()
		c.flush()
		return
	}

	e.confirmed = nowFavorited
	if e.desired != nowFavorited && e.followUps < maxFollowUps && !c.closed {
		e.followUps++
		c.launchLocked(productID, e)
		c.mu.Unlock()
		return
	}

	e.pending = false
	e.flight = 0
	e.desired = nowFavorited
	c.emitLocked(productID, e, nil)
	c.mu.Unlock()
	c.flush()
}

// Load replaces confirmed state with the server's favorite set. Pending
// entries keep their optimistic value.
func (c *FavoritesCache) Load(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	ids, err := c.api.FavoriteIDs(ctx)
	if err != nil {
		return err
	}
	server := make(map[uint]bool, len(ids))
	for _, id := range ids {
		server[id] = true
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	for id := range server {
		c.entryLocked(id)
	}
	for _, id := range c.sortedIDsLocked() {
		e := c.entries[id]
		if e.pending || e.confirmed == server[id] {
			continue
		}
		e.confirmed = server[id]
		c.emitLocked(id, e, nil)
	}
	c.mu.Unlock()

	c.flush()
	return nil
}

// ApplyRemote records a change made by another session. It is ignored while
// the product has a toggle pending.
func (c *FavoritesCache) ApplyRemote(productID uint, favorited bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	e := c.entryLocked(productID)
	if e.pending || e.confirmed == favorited {
		c.mu.Unlock()
		return
	}
	e.confirmed = favorited
	c.emitLocked(productID, e, nil)
	c.mu.Unlock()

	c.flush()
}

// IsFavorite returns the rendered value, including optimistic toggles
func (c *FavoritesCache) IsFavorite(productID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[productID]; ok {
		return e.rendered()
	}
	return false
}

func (c *FavoritesCache) State(productID uint) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[productID]; ok {
		return e.state()
	}
	return Unfavorited
}

// FavoriteIDs returns the rendered favorite set in ascending order
func (c *FavoritesCache) FavoriteIDs() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uint, 0, len(c.entries))
	for _, id := range c.sortedIDsLocked() {
		if c.entries[id].rendered() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *FavoritesCache) sortedIDsLocked() []uint {
	ids := make([]uint, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Subscribe registers fn for changes. Callbacks run outside the cache lock
// in the order the changes happened and may call back into the cache.
func (c *FavoritesCache) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}

	c.nextSub++
	sub := &subscription{id: c.nextSub, fn: fn}
	sub.active.Store(true)
	c.subs = append(c.subs, sub)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		sub.active.Store(false)
		for i, s := range c.subs {
			if s == sub {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				break
			}
		}
	}
}

func (c *FavoritesCache) emitLocked(productID uint, e *entry, err error) {
	if c.closed || len(c.subs) == 0 {
		return
	}
	c.outbox = append(c.outbox, Change{
		ProductID: productID,
		Favorited: e.rendered(),
		State:     e.state(),
		Err:       err,
	})
}

// flush delivers queued changes. Only one goroutine delivers at a time; the
// others leave their changes in the outbox for it.
func (c *FavoritesCache) flush() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true

	for len(c.outbox) > 0 {
		batch := c.outbox
		c.outbox = nil
		subs := append([]*subscription(nil), c.subs...)
		c.mu.Unlock()

		for _, change := range batch {
			for _, s := range subs {
				if s.active.Load() {
					s.fn(change)
				}
			}
		}

		c.mu.Lock()
	}

	c.delivering = false
	c.mu.Unlock()
}

// Close drops every subscriber, aborts in-flight requests and waits for them
// to resolve. Resolutions after Close update state only.
func (c *FavoritesCache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, s := range c.subs {
		s.active.Store(false)
	}
	c.subs = nil
	c.outbox = nil
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
