package rest

import (
	"errors"
	"net/http"

	"github.com/dwikikusuma/shoping-checkout/internal/checkout/app"
	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	orderrest "github.com/dwikikusuma/shoping-checkout/internal/order/rest"
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

// Register mounts the checkout routes; rg must run httpx.CartKey.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/quote", h.Quote)
	rg.POST("", httpx.RequireUser(), h.Checkout)
}

type quoteLineJSON struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

func (h *Handler) Quote(c *gin.Context) {
	q, err := h.svc.Quote(c.Request.Context(), httpx.CartKeyFrom(c))
	if err != nil {
		httpx.WriteError(c, err, nil)
		return
	}

	lines := make([]quoteLineJSON, 0, len(q.Lines))
	for _, ln := range q.Lines {
		lines = append(lines, quoteLineJSON{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice.StringFixed(2),
			LineTotal: ln.LineTotal.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines, "total": q.Total.StringFixed(2)})
}

type checkoutRequest struct {
	PaymentOption string `json:"payment_option"`
}

func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.WriteError(c, apperr.New(apperr.ErrValidation, "INVALID_BODY", err.Error()), nil)
			return
		}
	}

	res, err := h.svc.Checkout(c.Request.Context(), httpx.UserIDFrom(c), httpx.CartKeyFrom(c), orderdomain.PaymentOption(req.PaymentOption))
	if err != nil {
		var details map[string]any
		if errors.Is(err, apperr.ErrGateway) && res.Order.ID != "" {
			// The order exists and can be paid again later.
			details = map[string]any{"order_id": res.Order.ID, "status": res.Order.Status}
		}
		httpx.WriteError(c, err, details)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":        orderrest.ToJSON(res.Order),
		"redirect_url": res.RedirectURL,
	})
}
