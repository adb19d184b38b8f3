package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const testToken = "test-token"

// fakeStorefront serves the endpoints the client uses for a single user
type fakeStorefront struct {
	mu        sync.Mutex
	favorites map[uint]bool
	revoked   bool
	logouts   int
	failNext  int // status returned by the next toggle, 0 for none

	conns chan *websocket.Conn
	srv   *httptest.Server
}

func newFakeStorefront(t *testing.T) *fakeStorefront {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fakeStorefront{
		favorites: make(map[uint]bool),
		conns:     make(chan *websocket.Conn, 4),
	}

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(f.authenticate)
	api.GET("/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": 42, "email": "user@example.com", "role": "user"}})
	})
	api.POST("/auth/logout", func(c *gin.Context) {
		f.mu.Lock()
		f.revoked = true
		f.logouts++
		f.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
	})
	api.GET("/favorites/ids", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		ids := []uint{}
		for id, fav := range f.favorites {
			if fav {
				ids = append(ids, id)
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": ids})
	})
	api.POST("/favorites/toggle", func(c *gin.Context) {
		var req struct {
			ProductID uint `json:"productId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_REQUIRED_FIELD", "message": "productId is required"})
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failNext != 0 {
			status := f.failNext
			f.failNext = 0
			c.JSON(status, gin.H{"error": "INTERNAL_TRANSIENT", "message": "try again"})
			return
		}
		if req.ProductID >= 1000 {
			c.JSON(http.StatusNotFound, gin.H{"error": "PRODUCT_NOT_FOUND", "message": "Product not found"})
			return
		}
		f.favorites[req.ProductID] = !f.favorites[req.ProductID]
		c.JSON(http.StatusOK, gin.H{"success": true, "nowFavorited": f.favorites[req.ProductID]})
	})

	upgrader := websocket.Upgrader{}
	api.GET("/favorites/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		f.conns <- conn
	})

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeStorefront) authenticate(c *gin.Context) {
	token := c.Query("token")
	if header := c.GetHeader("Authorization"); header != "" {
		token = strings.TrimPrefix(header, "Bearer ")
	}

	f.mu.Lock()
	revoked := f.revoked
	f.mu.Unlock()

	if token != testToken || revoked {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "AUTH_UNAUTHORIZED", "message": "Authentication required"})
		return
	}
	c.Next()
}

func (f *fakeStorefront) setFavorite(productID uint, favorited bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites[productID] = favorited
}

func (f *fakeStorefront) isFavorite(productID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favorites[productID]
}

func (f *fakeStorefront) logoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}
