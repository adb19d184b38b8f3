package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
	hub             *ws.Hub
	upgrader        websocket.Upgrader
}

// NewFavoriteController builds the controller. hub may be nil, in which case
// the websocket endpoint is unavailable.
func NewFavoriteController(favoriteService service.FavoriteService, hub *ws.Hub, allowedOrigins []string) *FavoriteController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &FavoriteController{
		favoriteService: favoriteService,
		hub:             hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// non-browser clients send no Origin
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

type FavoriteRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

func (ctrl *FavoriteController) bindProductID(c *gin.Context) (uint, bool) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid favorite request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "productId is required")
		return 0, false
	}
	return req.ProductID, true
}

// Toggle flips the favorite state of a product
// POST /api/v1/favorites/toggle
func (ctrl *FavoriteController) Toggle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, ok := ctrl.bindProductID(c)
	if !ok {
		return
	}

	result, err := ctrl.favoriteService.Toggle(c.Request.Context(), userID, productID)
	if err != nil {
		respondServiceError(c, log, err, "Toggle favorite")
		return
	}

	log.Info("Favorite toggled", map[string]interface{}{
		"user_id":       userID,
		"product_id":    productID,
		"now_favorited": result.NowFavorited,
	})

	respondOK(c, gin.H{"nowFavorited": result.NowFavorited})
}

// Add favorites a product; repeating it is a no-op
// POST /api/v1/favorites
func (ctrl *FavoriteController) Add(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, ok := ctrl.bindProductID(c)
	if !ok {
		return
	}

	if err := ctrl.favoriteService.Add(c.Request.Context(), userID, productID); err != nil {
		respondServiceError(c, log, err, "Add favorite")
		return
	}

	respondOK(c, gin.H{"message": "Added to favorites"})
}

// Remove unfavorites a product
// DELETE /api/v1/favorites/:product_id
func (ctrl *FavoriteController) Remove(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	if err := ctrl.favoriteService.Remove(c.Request.Context(), userID, productID); err != nil {
		respondServiceError(c, log, err, "Remove favorite")
		return
	}

	respondOK(c, gin.H{"message": "Removed from favorites"})
}

// List returns the user's favorited products, newest first
// GET /api/v1/favorites
func (ctrl *FavoriteController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	products, err := ctrl.favoriteService.ListFavoriteProducts(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, log, err, "List favorites")
		return
	}

	respondOK(c, gin.H{
		"data":  products,
		"count": len(products),
	})
}

// IDs returns the favorited product ids used to seed client caches
// GET /api/v1/favorites/ids
func (ctrl *FavoriteController) IDs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	ids, err := ctrl.favoriteService.ListFavoriteIDs(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, log, err, "List favorite ids")
		return
	}

	respondOK(c, gin.H{"data": ids})
}

// Entries returns favorites with the time they were added
// GET /api/v1/favorites/entries
func (ctrl *FavoriteController) Entries(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	entries, err := ctrl.favoriteService.ListFavoriteEntries(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, log, err, "List favorite entries")
		return
	}

	respondOK(c, gin.H{"data": entries})
}

// Status reports whether the product is favorited
// GET /api/v1/favorites/:product_id/status
func (ctrl *FavoriteController) Status(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	isFavorite, err := ctrl.favoriteService.IsFavorite(c.Request.Context(), userID, productID)
	if err != nil {
		respondServiceError(c, log, err, "Favorite status")
		return
	}

	respondOK(c, gin.H{"isFavorite": isFavorite})
}

// WebSocketHandler streams favorite_changed messages to the user's sessions
// GET /api/v1/favorites/ws?token=
func (ctrl *FavoriteController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	if ctrl.hub == nil {
		apperrors.ServiceUnavailable(c, "Live updates are disabled")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
