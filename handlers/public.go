package handlers

import (
	"net/http"

	"burger-order-api/models"
	"burger-order-api/service"

	"github.com/gin-gonic/gin"
)

const (
	homeFeatured = 6
	homeReviews  = 5
)

// Home returns the best rated burgers and the latest reviews.
func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	featured, err := h.catalog.Featured(ctx, homeFeatured)
	if err != nil {
		h.fail(c, err)
		return
	}
	reviews, err := h.reviews.Recent(ctx, homeReviews)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"featured_burgers": featured,
		"recent_reviews":   reviews,
	})
}

type MenuQuery struct {
	Category string `form:"category" binding:"omitempty,oneof=veg non-veg vegan"`
	Search   string `form:"search" binding:"max=100"`
	Sort     string `form:"sort" binding:"omitempty,oneof=rating price-low price-high name"`
}

// GetMenu lists active burgers with optional filters
func (h *Handler) GetMenu(c *gin.Context) {
	var q MenuQuery
	if !h.bindQuery(c, &q) {
		return
	}
	burgers, err := h.catalog.Menu(c.Request.Context(), service.MenuFilter{
		Category: models.BurgerCategory(q.Category),
		Search:   q.Search,
		Sort:     q.Sort,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(burgers), "burgers": burgers})
}

// GetBurger returns one burger with its ingredients and related burgers
func (h *Handler) GetBurger(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.catalog.Burger(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// GetBurgerReviews pages through a burger's approved reviews
func (h *Handler) GetBurgerReviews(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var q PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.reviews.ForBurger(c.Request.Context(), id, service.Page{Page: q.Page, Limit: q.Limit})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetBuilder lists in-stock ingredients for the custom burger builder
func (h *Handler) GetBuilder(c *gin.Context) {
	groups, err := h.catalog.Builder(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

type PricePreviewRequest struct {
	Ingredients []uint `json:"ingredients" binding:"required,min=1"`
}

// PreviewCustomPrice prices a custom burger as it is being built
func (h *Handler) PreviewCustomPrice(c *gin.Context) {
	var req PricePreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	preview, err := h.catalog.PreviewCustom(c.Request.Context(), req.Ingredients)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

type QuoteRequest struct {
	Items []CartItemRequest `json:"items" binding:"required,min=1,dive"`
}

// QuoteCart prices a cart without placing an order
func (h *Handler) QuoteCart(c *gin.Context) {
	var req QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quote, err := h.orders.Quote(c.Request.Context(), cartLines(req.Items))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	policy := h.machine.Policy()
	c.JSON(http.StatusOK, gin.H{
		"states":          models.OrderStatuses,
		"state_machine":   h.machine.Transitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"policy": gin.H{
			"allow_skip_ahead":       policy.AllowSkipAhead,
			"customer_cancel_cutoff": policy.CustomerCancelCutoff,
		},
		"description": "Burger Order Lifecycle State Machine",
	})
}
