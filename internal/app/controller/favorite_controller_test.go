package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFavoriteRoutes(t *testing.T) *controllerFixture {
	f := setupControllerTest(t)
	ctrl := NewFavoriteController(f.favorites, nil, nil)

	favorites := f.router.Group("/favorites")
	favorites.GET("", ctrl.List)
	favorites.GET("/ids", ctrl.IDs)
	favorites.GET("/entries", ctrl.Entries)
	favorites.GET("/ws", ctrl.WebSocketHandler)
	favorites.GET("/:product_id/status", ctrl.Status)
	favorites.POST("/toggle", ctrl.Toggle)
	favorites.POST("", ctrl.Add)
	favorites.DELETE("/:product_id", ctrl.Remove)
	return f
}

func TestFavoriteController_Toggle(t *testing.T) {
	f := setupFavoriteRoutes(t)
	p := f.seed(t, "Air Max 90", model.CategoryShoes)

	w, body := f.do(t, http.MethodPost, "/favorites/toggle", 7, map[string]interface{}{"productId": p.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["nowFavorited"])

	w, body = f.do(t, http.MethodPost, "/favorites/toggle", 7, map[string]interface{}{"productId": p.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["nowFavorited"])
}

func TestFavoriteController_Toggle_Errors(t *testing.T) {
	f := setupFavoriteRoutes(t)

	tests := []struct {
		name       string
		userID     uint
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"Anonymous", 0, map[string]interface{}{"productId": 1}, http.StatusUnauthorized, apperrors.AuthUnauthorized},
		{"Missing productId", 7, map[string]interface{}{}, http.StatusBadRequest, apperrors.ValidationRequired},
		{"Unknown product", 7, map[string]interface{}{"productId": 4242}, http.StatusNotFound, apperrors.ProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(t, http.MethodPost, "/favorites/toggle", tt.userID, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestFavoriteController_AddListRemove(t *testing.T) {
	f := setupFavoriteRoutes(t)
	airMax := f.seed(t, "Air Max 90", model.CategoryShoes)
	tote := f.seed(t, "Canvas Tote Bag", model.CategoryBags)

	for i := 0; i < 2; i++ {
		w, _ := f.do(t, http.MethodPost, "/favorites", 7, map[string]interface{}{"productId": airMax.ID})
		require.Equal(t, http.StatusOK, w.Code, "add is idempotent")
	}
	w, _ := f.do(t, http.MethodPost, "/favorites", 7, map[string]interface{}{"productId": tote.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := f.do(t, http.MethodGet, "/favorites/ids", 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []interface{}{float64(airMax.ID), float64(tote.ID)}, body["data"])

	w, body = f.do(t, http.MethodGet, "/favorites", 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])

	w, body = f.do(t, http.MethodGet, "/favorites/entries", 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := body["data"].([]interface{})
	require.Len(t, entries, 2)
	first := entries[0].(map[string]interface{})
	assert.NotZero(t, first["favoriteId"])
	assert.NotEmpty(t, first["addedAt"])
	assert.Contains(t, first, "product")

	w, body = f.do(t, http.MethodGet, fmt.Sprintf("/favorites/%d/status", tote.ID), 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["isFavorite"])

	w, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/favorites/%d", tote.ID), 7, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = f.do(t, http.MethodDelete, fmt.Sprintf("/favorites/%d", tote.ID), 7, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.FavoriteNotFound, body["error"])

	w, body = f.do(t, http.MethodGet, fmt.Sprintf("/favorites/%d/status", tote.ID), 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["isFavorite"])

	// other users see their own set
	w, body = f.do(t, http.MethodGet, "/favorites/ids", 8, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])
}

func TestFavoriteController_InvalidProductParam(t *testing.T) {
	f := setupFavoriteRoutes(t)

	w, body := f.do(t, http.MethodGet, "/favorites/zero/status", 7, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidID, body["error"])

	w, _ = f.do(t, http.MethodDelete, "/favorites/0", 7, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoriteController_WebSocketWithoutHub(t *testing.T) {
	f := setupFavoriteRoutes(t)

	w, body := f.do(t, http.MethodGet, "/favorites/ws", 7, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apperrors.InternalTransient, body["error"])
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"Validation fields", &service.ValidationError{Fields: map[string]string{"price": "must not be negative"}}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"Unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, apperrors.AuthUnauthorized},
		{"Product not found", service.ErrProductNotFound, http.StatusNotFound, apperrors.ProductNotFound},
		{"Favorite not found", service.ErrFavoriteNotFound, http.StatusNotFound, apperrors.FavoriteNotFound},
		{"Conflict", fmt.Errorf("%w: deadlock detected", service.ErrConflict), http.StatusConflict, apperrors.ResourceConflict},
		{"Transient", fmt.Errorf("%w: connection reset", service.ErrTransient), http.StatusServiceUnavailable, apperrors.InternalTransient},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, apperrors.InternalServerError},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, logger.Get(), tt.err, "test")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.NotContains(t, w.Body.String(), "deadlock")
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}
