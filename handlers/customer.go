package handlers

import (
	"net/http"
	"time"

	"burger-order-api/middleware"
	"burger-order-api/models"
	"burger-order-api/pricing"
	"burger-order-api/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest is a menu burger (type "burger") or a custom burger
// (type "custom").
type CartItemRequest struct {
	Type        models.ItemKind `json:"type" binding:"required,oneof=burger custom"`
	BurgerID    uint            `json:"burger_id" binding:"required_if=Type burger"`
	Name        string          `json:"name" binding:"max=60"`
	Ingredients []uint          `json:"ingredients" binding:"required_if=Type custom"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
}

func cartLines(items []CartItemRequest) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		if it.Type == models.ItemCustom {
			lines = append(lines, pricing.CustomLine(it.Name, it.Ingredients, it.Quantity))
			continue
		}
		lines = append(lines, pricing.BurgerLine(it.BurgerID, it.Quantity))
	}
	return lines
}

type AddressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

type PlaceOrderRequest struct {
	Items           []CartItemRequest    `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress AddressRequest       `json:"delivery_address" binding:"required"`
	Phone           string               `json:"phone" binding:"required,indianphone"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" binding:"required,oneof=cod online"`
}

// PlaceOrder prices the cart and creates the order
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Place(c.Request.Context(), middleware.Actor(c), service.PlaceOrderInput{
		Lines: cartLines(req.Items),
		Address: models.Address{
			Street:  req.DeliveryAddress.Street,
			City:    req.DeliveryAddress.City,
			State:   req.DeliveryAddress.State,
			Pincode: req.DeliveryAddress.Pincode,
		},
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.Mine(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), middleware.Actor(c), c.Param("orderId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":           order,
		"minutes_elapsed": int(time.Since(order.CreatedAt).Minutes()),
	})
}

// GetOrderStatus is polled by the tracking page until terminal is true.
func (h *Handler) GetOrderStatus(c *gin.Context) {
	view, err := h.orders.Status(c.Request.Context(), middleware.Actor(c), c.Param("orderId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelOrder cancels an order before it leaves the kitchen
func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), middleware.Actor(c), c.Param("orderId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,min=10,max=500"`
}

// CreateReview lets a customer review a burger they received
func (h *Handler) CreateReview(c *gin.Context) {
	burgerID, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), middleware.Actor(c), service.ReviewInput{
		BurgerID: burgerID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added successfully", "review": review})
}
