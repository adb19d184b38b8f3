package service

import (
	"context"
	"sync"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/events"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type notification struct {
	UserID    uint
	ProductID uint
	Favorited bool
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) NotifyFavoriteChanged(userID, productID uint, favorited bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID, productID, favorited})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type serviceFixture struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	favRepo     repository.FavoriteRepository
	products    ProductService
	favorites   FavoriteService
	publisher   *recordingPublisher
	notifier    *recordingNotifier
}

func setupServices(t *testing.T) *serviceFixture {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	f := &serviceFixture{
		db:          testDB,
		productRepo: repository.NewProductRepository(testDB),
		favRepo:     repository.NewFavoriteRepository(testDB),
		publisher:   &recordingPublisher{},
		notifier:    &recordingNotifier{},
	}
	opts := []Option{WithPublisher(f.publisher), WithNotifier(f.notifier)}
	f.products = NewProductService(testDB, f.productRepo, opts...)
	f.favorites = NewFavoriteService(f.favRepo, f.productRepo, opts...)
	t.Cleanup(f.favorites.Close)
	return f
}

func (f *serviceFixture) seed(t *testing.T, products ...model.Product) []model.Product {
	t.Helper()
	out := make([]model.Product, 0, len(products))
	for i := range products {
		p := products[i]
		require.NoError(t, f.products.Create(context.Background(), &p))
		out = append(out, p)
	}
	return out
}

func product(name string, category model.ProductCategory, price float64) model.Product {
	return model.Product{
		Name:     name,
		Brand:    "Brand",
		Category: category,
		Images:   []string{"https://cdn.example.com/img.jpg"},
		Price:    price,
	}
}
