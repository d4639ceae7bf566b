package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/coffeebar-pos/internal/dto"
	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.View(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	h.editItem(c, h.svc.Add)
}

func (h *CartHandler) DecrementItem(c *gin.Context) {
	h.editItem(c, h.svc.Decrement)
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	h.editItem(c, h.svc.Remove)
}

func (h *CartHandler) Clear(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := h.svc.Clear(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type cartEdit func(ctx context.Context, sess model.Session, productID int64) (*dto.CartResponse, error)

func (h *CartHandler) editItem(c *gin.Context, edit cartEdit) {
	sess, ok := session(c)
	if !ok {
		return
	}
	productID, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := edit(c.Request.Context(), sess, productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
