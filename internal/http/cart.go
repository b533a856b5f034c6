package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/logging"
)

const msgItemRemoved = "Item removed from cart"

type addToCartReq struct {
	ProductID int64 `json:"product" validate:"required"`
	// по умолчанию 1
	Quantity *int64 `json:"quantity"`
}

type updateCartItemReq struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

type mergeCartReq struct {
	SessionKey string `json:"session_key" validate:"omitempty,max=64"`
}

type mergeCartResp struct {
	Message string  `json:"message"`
	Cart    cartDTO `json:"cart"`
}

// @Summary Get current cart
// @Description Anonymous callers are identified by X-Session-Key or the session cookie.
// @Tags cart
// @Produce json
// @Param X-Session-Key header string false "Anonymous session key"
// @Success 200 {object} cartDTO
// @Router /api/cart/ [get]
func (s *Server) getCart(c *gin.Context) {
	cart, err := s.carts.Snapshot(c.Request.Context(), ownerFrom(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartDTO(cart))
}

// @Summary Add product to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-Key header string false "Anonymous session key"
// @Param input body addToCartReq true "Product and quantity"
// @Success 201 {object} cartItemDTO
// @Failure 400 {object} errorDTO
// @Failure 404 {object} errorDTO
// @Router /api/cart/add/ [post]
func (s *Server) addToCart(c *gin.Context) {
	var req addToCartReq
	if !s.bindJSON(c, &req) {
		return
	}
	qty := int64(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	it, err := s.carts.AddItem(c.Request.Context(), ownerFrom(c), req.ProductID, qty)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.log.DebugContext(c.Request.Context(), "cart item added",
		slog.String(logging.RequestID, requestID(c)),
		slog.String(logging.Owner, ownerFrom(c).String()),
		slog.Int64(logging.ProductID, it.ProductID),
		slog.Int64("quantity", it.Quantity),
	)
	c.JSON(http.StatusCreated, toCartItemDTO(it))
}

// @Summary Change cart item quantity
// @Description Quantity 0 or less removes the item.
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-Key header string false "Anonymous session key"
// @Param id path int true "Cart item ID"
// @Param input body updateCartItemReq true "New quantity"
// @Success 200 {object} cartItemDTO
// @Failure 400 {object} errorDTO
// @Failure 404 {object} errorDTO
// @Router /api/cart/items/{id}/update/ [patch]
func (s *Server) updateCartItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateCartItemReq
	if !s.bindJSON(c, &req) {
		return
	}
	it, removed, err := s.carts.UpdateItem(c.Request.Context(), ownerFrom(c), id, *req.Quantity)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if removed {
		c.JSON(http.StatusOK, messageDTO{Message: msgItemRemoved})
		return
	}
	c.JSON(http.StatusOK, toCartItemDTO(it))
}

// @Summary Remove cart item
// @Tags cart
// @Produce json
// @Param X-Session-Key header string false "Anonymous session key"
// @Param id path int true "Cart item ID"
// @Success 200 {object} messageDTO
// @Failure 404 {object} errorDTO
// @Router /api/cart/items/{id}/remove/ [delete]
func (s *Server) removeCartItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.carts.RemoveItem(c.Request.Context(), ownerFrom(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageDTO{Message: msgItemRemoved})
}

// @Summary Merge anonymous cart into the user's cart
// @Description The session key is taken from the body, then X-Session-Key, then the session cookie.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body mergeCartReq false "Session key"
// @Success 200 {object} mergeCartResp
// @Failure 401 {object} errorDTO
// @Router /api/cart/merge/ [post]
func (s *Server) mergeCart(c *gin.Context) {
	var req mergeCartReq
	if c.Request.ContentLength != 0 && !s.bindJSON(c, &req) {
		return
	}
	claims, _ := claimsFrom(c)
	key := strings.TrimSpace(req.SessionKey)
	if key == "" {
		key = s.sessionKey(c)
	}
	cart, err := s.carts.Merge(c.Request.Context(), claims.UserID, key)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if key != "" {
		s.metrics.CartMerges.Inc()
		s.log.InfoContext(c.Request.Context(), "cart merged",
			slog.String(logging.RequestID, requestID(c)),
			slog.Int64(logging.UserID, claims.UserID),
		)
	}
	c.JSON(http.StatusOK, mergeCartResp{Message: "Carts merged successfully", Cart: toCartDTO(cart)})
}
