package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/logging"
)

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	// анонимная корзина для слияния после входа
	SessionKey string `json:"session_key" validate:"omitempty,max=64"`
}

type loginResp struct {
	tokenDTO
	User userDTO `json:"user"`
}

type refreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerReq true "Account"
// @Success 201 {object} userDTO
// @Failure 400 {object} errorDTO
// @Router /api/auth/register/ [post]
func (s *Server) register(c *gin.Context) {
	var req registerReq
	if !s.bindJSON(c, &req) {
		return
	}
	u, err := s.users.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserDTO(u))
}

// @Summary Login
// @Description Issues a JWT pair and merges the caller's anonymous cart, if any.
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Session-Key header string false "Anonymous session key"
// @Param input body loginReq true "Credentials"
// @Success 200 {object} loginResp
// @Failure 400 {object} errorDTO
// @Failure 401 {object} errorDTO
// @Router /api/auth/login/ [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if !s.bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	u, pair, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	key := strings.TrimSpace(req.SessionKey)
	if key == "" {
		key = s.sessionKey(c)
	}
	if key != "" {
		// вход остаётся успешным, даже если слияние упало; анонимная корзина сохраняется для повтора
		if _, err := s.carts.Merge(ctx, u.ID, key); err != nil {
			s.log.WarnContext(ctx, "cart merge on login failed",
				slog.String(logging.RequestID, requestID(c)),
				slog.Int64(logging.UserID, u.ID),
				slog.String(logging.Error, err.Error()),
			)
		} else {
			s.metrics.CartMerges.Inc()
		}
	}

	c.JSON(http.StatusOK, loginResp{tokenDTO: toTokenDTO(pair), User: toUserDTO(u)})
}

// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param input body refreshReq true "Refresh token"
// @Success 200 {object} tokenDTO
// @Failure 401 {object} errorDTO
// @Router /api/auth/token/refresh/ [post]
func (s *Server) refreshToken(c *gin.Context) {
	var req refreshReq
	if !s.bindJSON(c, &req) {
		return
	}
	pair, err := s.users.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenDTO(pair))
}

// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userDTO
// @Failure 401 {object} errorDTO
// @Router /api/auth/me/ [get]
func (s *Server) me(c *gin.Context) {
	claims, _ := claimsFrom(c)
	u, err := s.users.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(u))
}
