package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	appErrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/events"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// ToggleResult is the post-toggle membership of the pair
type ToggleResult struct {
	NowFavorited bool `json:"nowFavorited"`
}

type FavoriteService interface {
	Toggle(ctx context.Context, userID, productID uint) (ToggleResult, error)
	Add(ctx context.Context, userID, productID uint) error
	Remove(ctx context.Context, userID, productID uint) error
	IsFavorite(ctx context.Context, userID, productID uint) (bool, error)
	ListFavoriteProducts(ctx context.Context, userID uint) ([]model.Product, error)
	ListFavoriteIDs(ctx context.Context, userID uint) ([]uint, error)
	ListFavoriteEntries(ctx context.Context, userID uint) ([]model.FavoriteEntry, error)
	PurgeDangling(ctx context.Context) (int64, error)
	Close()
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	opts         options

	mu     sync.Mutex
	closed bool
	heals  sync.WaitGroup
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
	opts ...Option,
) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		opts:         buildOptions(opts),
	}
}

// Toggle flips membership of (userID, productID). Concurrent toggles resolve
// through the unique index: losing an add race still reports favorited and
// losing a remove race still reports unfavorited.
func (s *favoriteService) Toggle(ctx context.Context, userID, productID uint) (ToggleResult, error) {
	if userID == 0 {
		return ToggleResult{}, ErrUnauthorized
	}

	logger.Debug("Toggling favorite", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	var result ToggleResult
	err := s.withRetry(func() error {
		r, err := s.toggleOnce(ctx, userID, productID)
		result = r
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			s.opts.metrics.ObserveToggle(metrics.ToggleConflict)
		case errors.Is(err, ErrTransient):
			s.opts.metrics.ObserveToggle(metrics.ToggleError)
		}
		logger.Warn("Favorite toggle failed", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return ToggleResult{}, err
	}

	if result.NowFavorited {
		s.opts.metrics.ObserveToggle(metrics.ToggleAdded)
	} else {
		s.opts.metrics.ObserveToggle(metrics.ToggleRemoved)
	}
	return result, nil
}

func (s *favoriteService) toggleOnce(ctx context.Context, userID, productID uint) (ToggleResult, error) {
	exists, err := s.favoriteRepo.Exists(userID, productID)
	if err != nil {
		return ToggleResult{}, err
	}

	if exists {
		err := s.favoriteRepo.Remove(userID, productID)
		switch {
		case err == nil:
			s.afterMutation(ctx, userID, productID, false)
			return ToggleResult{NowFavorited: false}, nil
		case errors.Is(err, ErrFavoriteNotFound):
			// removed concurrently
			return ToggleResult{NowFavorited: false}, nil
		default:
			return ToggleResult{}, err
		}
	}

	if err := s.ensureProduct(productID); err != nil {
		return ToggleResult{}, err
	}

	_, err = s.favoriteRepo.Add(userID, productID)
	switch {
	case err == nil:
		s.afterMutation(ctx, userID, productID, true)
		return ToggleResult{NowFavorited: true}, nil
	case errors.Is(err, ErrFavoriteExists):
		// added concurrently
		return ToggleResult{NowFavorited: true}, nil
	default:
		return ToggleResult{}, err
	}
}

// withRetry runs fn again once when storage reports contention
func (s *favoriteService) withRetry(fn func() error) error {
	err := fn()
	if err != nil && appErrors.IsRetryable(err) {
		logger.Debug("Retrying after storage contention", map[string]interface{}{
			"error": err.Error(),
		})
		err = fn()
		if err != nil && appErrors.IsRetryable(err) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return translateStorageError(err)
}

func (s *favoriteService) ensureProduct(productID uint) error {
	if productID == 0 {
		return ErrProductNotFound
	}
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *favoriteService) afterMutation(ctx context.Context, userID, productID uint, favorited bool) {
	s.opts.notifier.NotifyFavoriteChanged(userID, productID, favorited)

	event := events.FavoriteRemoved(userID, productID)
	if favorited {
		event = events.FavoriteAdded(userID, productID)
	}
	if err := s.opts.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish favorite event", map[string]interface{}{
			"event_type": event.EventType,
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
	}
}

// Add favorites the product; adding an existing pair succeeds
func (s *favoriteService) Add(ctx context.Context, userID, productID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}

	return s.withRetry(func() error {
		if err := s.ensureProduct(productID); err != nil {
			return err
		}
		_, err := s.favoriteRepo.Add(userID, productID)
		switch {
		case err == nil:
			s.afterMutation(ctx, userID, productID, true)
			logger.Info("Favorite added", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil
		case errors.Is(err, ErrFavoriteExists):
			return nil
		default:
			return err
		}
	})
}

// Remove unfavorites the product; ErrFavoriteNotFound when the pair is absent
func (s *favoriteService) Remove(ctx context.Context, userID, productID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}

	return s.withRetry(func() error {
		if err := s.favoriteRepo.Remove(userID, productID); err != nil {
			return err
		}
		s.afterMutation(ctx, userID, productID, false)
		logger.Info("Favorite removed", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil
	})
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthorized
	}
	exists, err := s.favoriteRepo.Exists(userID, productID)
	if err != nil {
		return false, translateStorageError(err)
	}
	return exists, nil
}

// ListFavoriteProducts returns live favorited products, newest first. Rows
// pointing at deleted products are skipped and removed in the background.
func (s *favoriteService) ListFavoriteProducts(ctx context.Context, userID uint) ([]model.Product, error) {
	entries, err := s.ListFavoriteEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, e.Product)
	}
	return products, nil
}

func (s *favoriteService) ListFavoriteIDs(ctx context.Context, userID uint) ([]uint, error) {
	entries, err := s.ListFavoriteEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Product.ID)
	}
	return ids, nil
}

func (s *favoriteService) ListFavoriteEntries(ctx context.Context, userID uint) ([]model.FavoriteEntry, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	entries, err := s.favoriteRepo.ListEntries(userID)
	if err != nil {
		return nil, translateStorageError(err)
	}

	total, err := s.favoriteRepo.CountByUser(userID)
	if err != nil {
		logger.Warn("Failed to count favorites", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	} else if total > int64(len(entries)) {
		s.startHeal(userID)
	}

	return entries, nil
}

// startHeal removes the user's dangling rows in the background. After Close
// the rows are left for the maintenance sweep.
func (s *favoriteService) startHeal(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.heals.Add(1)
	go func() {
		defer s.heals.Done()
		s.healUser(userID)
	}()
}

// Close waits for background cleanup started by reads. Reads after Close
// still work but no longer start cleanup.
func (s *favoriteService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.heals.Wait()
}

func (s *favoriteService) healUser(userID uint) {
	removed, err := s.favoriteRepo.RemoveDanglingForUser(userID)
	if err != nil {
		logger.Error("Failed to remove dangling favorites", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}
	s.opts.metrics.AddDanglingRemoved("read", removed)
	if removed > 0 {
		logger.Info("Removed dangling favorites", map[string]interface{}{
			"user_id": userID,
			"removed": removed,
		})
	}
}

// PurgeDangling removes every favorite whose product no longer exists
func (s *favoriteService) PurgeDangling(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed, err := s.favoriteRepo.RemoveDangling()
	if err != nil {
		return 0, translateStorageError(err)
	}
	s.opts.metrics.AddDanglingRemoved("sweep", removed)
	return removed, nil
}
