package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	products  service.ProductService
	favorites service.FavoriteService
	router    *gin.Engine
}

// setupControllerTest wires real services on SQLite. The X-Test-User and
// X-Test-Role headers stand in for the auth middleware.
func setupControllerTest(t *testing.T) *controllerFixture {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	productRepo := repository.NewProductRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)

	f := &controllerFixture{
		products:  service.NewProductService(testDB, productRepo),
		favorites: service.NewFavoriteService(favoriteRepo, productRepo),
	}
	t.Cleanup(f.favorites.Close)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			var id uint
			require.NoError(t, json.Unmarshal([]byte(raw), &id))
			c.Set(middleware.UserIDKey, id)
			c.Set(middleware.UserRoleKey, model.UserRole(c.GetHeader("X-Test-Role")))
		}
		c.Next()
	})
	f.router = router
	return f
}

func (f *controllerFixture) seed(t *testing.T, name string, category model.ProductCategory) model.Product {
	t.Helper()
	p := model.Product{
		Name:     name,
		Brand:    "Brand",
		Category: category,
		Images:   []string{"https://cdn.example.com/" + name + ".jpg"},
		Price:    100,
	}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

// do sends a request as userID (0 means anonymous) and decodes the JSON body
func (f *controllerFixture) do(t *testing.T, method, path string, userID uint, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		raw, _ := json.Marshal(userID)
		req.Header.Set("X-Test-User", string(raw))
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}
