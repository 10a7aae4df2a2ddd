package rest

import (
	"net/http"
	"time"

	"github.com/dwikikusuma/shoping-checkout/internal/order/app"
	"github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/httpx"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the order read routes; rg must run httpx.RequireUser.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.ListOrders)
	rg.GET("/:id", h.GetOrder)
}

type OrderItemJSON struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderJSON struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	PaymentOption string          `json:"payment_option"`
	CreatedAt     time.Time       `json:"created_at"`
	ModifiedAt    time.Time       `json:"modified_at"`
	Total         *string         `json:"total"`
	Items         []OrderItemJSON `json:"items"`
}

// ToJSON renders the order read model. Total is null for an order without
// items.
func ToJSON(o domain.Order) OrderJSON {
	out := OrderJSON{
		ID:            o.ID,
		Status:        string(o.Status),
		PaymentOption: string(o.PaymentOption),
		CreatedAt:     o.CreatedAt,
		ModifiedAt:    o.ModifiedAt,
		Items:         make([]OrderItemJSON, 0, len(o.Items)),
	}
	if total := o.Total(); total.Valid {
		s := total.Decimal.StringFixed(2)
		out.Total = &s
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemJSON{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		})
	}
	return out
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context(), httpx.UserIDFrom(c))
	if err != nil {
		httpx.WriteError(c, err, nil)
		return
	}

	out := make([]OrderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToJSON(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.svc.GetUserOrder(c.Request.Context(), httpx.UserIDFrom(c), c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, ToJSON(o))
}
