package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/service"
)

type createOrderReq struct {
	ShippingAddress string `json:"shipping_address" validate:"max=1000"`
}

type setStatusReq struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

// @Summary Place order from cart
// @Description Deducts stock and clears the cart in one transaction; nothing changes if any item is short.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body createOrderReq false "Shipping address"
// @Success 201 {object} orderDTO
// @Failure 400 {object} errorDTO
// @Failure 401 {object} errorDTO
// @Router /api/orders/ [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if c.Request.ContentLength != 0 && !s.bindJSON(c, &req) {
		return
	}
	claims, _ := claimsFrom(c)
	ctx := c.Request.Context()

	o, err := s.orders.PlaceOrder(ctx, claims.UserID, req.ShippingAddress)
	if err != nil {
		var se *service.StockError
		switch {
		case errors.As(err, &se):
			s.metrics.Checkouts.WithLabelValues(metrics.CheckoutOutOfStock).Inc()
			s.log.InfoContext(ctx, "checkout rejected",
				slog.String(logging.RequestID, requestID(c)),
				slog.Int64(logging.UserID, claims.UserID),
				slog.Int64(logging.ProductID, se.ProductID),
				slog.Int64("requested", se.Requested),
				slog.Int64("available", se.Available),
			)
		case errors.Is(err, service.ErrEmptyCart):
			s.metrics.Checkouts.WithLabelValues(metrics.CheckoutEmptyCart).Inc()
		default:
			s.metrics.Checkouts.WithLabelValues(metrics.CheckoutFailed).Inc()
		}
		s.respondError(c, err)
		return
	}

	s.metrics.Checkouts.WithLabelValues(metrics.CheckoutPlaced).Inc()
	s.log.InfoContext(ctx, "order placed",
		slog.String(logging.RequestID, requestID(c)),
		slog.Int64(logging.UserID, claims.UserID),
		slog.Int64(logging.OrderID, o.ID),
		slog.String("total", o.TotalPrice.StringFixed(2)),
	)
	c.JSON(http.StatusCreated, toOrderDTO(o))
}

// @Summary List my orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} orderDTO
// @Failure 401 {object} errorDTO
// @Router /api/orders/ [get]
func (s *Server) listOrders(c *gin.Context) {
	claims, _ := claimsFrom(c)
	list, err := s.orders.ListOrders(c.Request.Context(), claims.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]orderDTO, 0, len(list))
	for i := range list {
		out = append(out, toOrderDTO(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Get my order by id
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} orderDTO
// @Failure 404 {object} errorDTO
// @Router /api/orders/{id}/ [get]
func (s *Server) getOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	claims, _ := claimsFrom(c)
	o, err := s.orders.GetOrder(c.Request.Context(), claims.UserID, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(o))
}

// @Summary Set order status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param input body setStatusReq true "Status"
// @Success 200 {object} orderDTO
// @Failure 400 {object} errorDTO
// @Failure 403 {object} errorDTO
// @Failure 404 {object} errorDTO
// @Router /api/orders/{id}/status/ [patch]
func (s *Server) setOrderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req setStatusReq
	if !s.bindJSON(c, &req) {
		return
	}
	o, err := s.orders.SetStatus(c.Request.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDTO(o))
}
