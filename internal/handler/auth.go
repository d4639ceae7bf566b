package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/coffeebar-pos/internal/dto"
	"github.com/flicky/coffeebar-pos/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cartService *service.CartService
}

func NewAuthHandler(authService *service.AuthService, cartService *service.CartService) *AuthHandler {
	return &AuthHandler{authService: authService, cartService: cartService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login answers every credential failure with the same 401 body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout discards the cart held by the current session. Tokens are stateless
// and stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := h.cartService.Clear(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
