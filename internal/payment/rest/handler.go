package rest

import (
	"crypto/subtle"
	"net/http"

	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/internal/payment/app"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/dwikikusuma/shoping-checkout/pkg/httpx"
	"github.com/gin-gonic/gin"
)

const GatewayTokenHeader = "X-Gateway-Token"

type Handler struct {
	svc          *app.Reconciler
	webhookToken string
}

// NewHandler builds the payment routes. An empty webhookToken disables the
// notification token check.
func NewHandler(svc *app.Reconciler, webhookToken string) *Handler {
	return &Handler{svc: svc, webhookToken: webhookToken}
}

func (h *Handler) RegisterOrders(rg *gin.RouterGroup) {
	rg.POST("/:id/payment", h.StartPayment)
}

func (h *Handler) RegisterNotifications(rg *gin.RouterGroup) {
	rg.POST("/notifications", h.verifyGateway, h.Notify)
}

type startPaymentRequest struct {
	PaymentOption string `json:"payment_option" binding:"required"`
}

func (h *Handler) StartPayment(c *gin.Context) {
	var req startPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WriteError(c, apperr.New(apperr.ErrValidation, "INVALID_BODY", err.Error()), nil)
		return
	}

	redirect, err := h.svc.StartPayment(c.Request.Context(), httpx.UserIDFrom(c), c.Param("id"), orderdomain.PaymentOption(req.PaymentOption))
	if err != nil {
		httpx.WriteError(c, err, map[string]any{"order_id": c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": c.Param("id"), "redirect_url": redirect})
}

func (h *Handler) verifyGateway(c *gin.Context) {
	if h.webhookToken == "" {
		c.Next()
		return
	}
	got := c.GetHeader(GatewayTokenHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{
			"code":    "UNAUTHENTICATED",
			"message": "invalid gateway token",
		}})
		return
	}
	c.Next()
}

type notificationRequest struct {
	Reference string `json:"reference" form:"reference" binding:"required"`
	Code      string `json:"code" form:"code" binding:"required"`
}

func (h *Handler) Notify(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.WriteError(c, apperr.New(apperr.ErrValidation, "INVALID_BODY", err.Error()), nil)
		return
	}

	o, outcome, err := h.svc.ApplyNotification(c.Request.Context(), req.Reference, req.Code)
	if err != nil {
		httpx.WriteError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id": o.ID,
		"status":   o.Status,
		"outcome":  outcome,
	})
}
