package rest

import (
	"net/http"

	"github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	"github.com/dwikikusuma/shoping-checkout/internal/cart/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/dwikikusuma/shoping-checkout/pkg/httpx"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the cart routes; rg must run httpx.CartKey.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.GetCart)
	rg.POST("/items", h.AddItem)
	rg.PUT("/items/:product_id", h.SetQuantity)
	rg.DELETE("/items/:product_id", h.RemoveItem)
	rg.POST("/merge", h.Merge)
}

type cartItemJSON struct {
	CartKey   string `json:"cart_key"`
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
}

type cartJSON struct {
	CartKey string         `json:"cart_key"`
	Items   []cartItemJSON `json:"items"`
}

func (h *Handler) GetCart(c *gin.Context) {
	key := httpx.CartKeyFrom(c)
	items, err := h.svc.Items(c.Request.Context(), key)
	if err != nil {
		httpx.WriteError(c, err, nil)
		return
	}

	out := cartJSON{CartKey: key, Items: make([]cartItemJSON, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, toJSON(it))
	}
	c.JSON(http.StatusOK, out)
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int32 `json:"quantity"`
}

func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WriteError(c, apperr.New(apperr.ErrValidation, "INVALID_BODY", err.Error()), nil)
		return
	}

	qty := int32(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, created, err := h.svc.AddQuantity(c.Request.Context(), httpx.CartKeyFrom(c), req.ProductID, qty)
	if err != nil {
		httpx.WriteError(c, err, nil)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toJSON(item))
}

type setQuantityRequest struct {
	Quantity *int32 `json:"quantity" binding:"required"`
}

func (h *Handler) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WriteError(c, apperr.New(apperr.ErrValidation, "INVALID_BODY", err.Error()), nil)
		return
	}

	item, removed, err := h.svc.SetQuantity(c.Request.Context(), httpx.CartKeyFrom(c), c.Param("product_id"), *req.Quantity)
	if err != nil {
		httpx.WriteError(c, err, nil)
		return
	}
	if removed {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toJSON(item))
}

func (h *Handler) RemoveItem(c *gin.Context) {
	if err := h.svc.RemoveItem(c.Request.Context(), httpx.CartKeyFrom(c), c.Param("product_id")); err != nil {
		httpx.WriteError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

type mergeRequest struct {
	FromCartKey string `json:"from_cart_key" binding:"required"`
}

// Merge moves the lines of a previous cart key into the current cart.
func (h *Handler) Merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WriteError(c, apperr.New(apperr.ErrValidation, "INVALID_BODY", err.Error()), nil)
		return
	}

	if err := h.svc.Rekey(c.Request.Context(), req.FromCartKey, httpx.CartKeyFrom(c)); err != nil {
		httpx.WriteError(c, err, nil)
		return
	}
	h.GetCart(c)
}

func toJSON(it domain.CartItem) cartItemJSON {
	return cartItemJSON{
		CartKey:   it.CartKey,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Price:     it.UnitPrice.StringFixed(2),
	}
}
