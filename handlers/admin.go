package handlers

import (
	"net/http"

	"burger-order-api/middleware"
	"burger-order-api/models"
	"burger-order-api/service"
	"burger-order-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminDashboard returns headline numbers for the back office
func (h *Handler) AdminDashboard(c *gin.Context) {
	dash, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// AdminAnalytics returns sales and usage breakdowns
func (h *Handler) AdminAnalytics(c *gin.Context) {
	stats, err := h.admin.Analytics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type AdminOrdersQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
}

// AdminGetAllOrders pages through every order, optionally by status
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	var q AdminOrdersQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.orders.List(c.Request.Context(), service.OrderFilter{
		Status: models.OrderStatus(q.Status),
		Page:   q.Page,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note" binding:"max=200"`
}

// AdminUpdateOrderStatus moves an order along its lifecycle
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.SetStatus(c.Request.Context(), middleware.Actor(c), c.Param("orderId"), req.Status, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Order status updated",
		"order":             order,
		"valid_next_states": h.machine.ValidTransitionsFrom(order.Status, statemachine.ActorAdmin),
	})
}

// AdminInventory lists every ingredient grouped by category
func (h *Handler) AdminInventory(c *gin.Context) {
	groups, err := h.catalog.Inventory(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// AdminUpdateStock sets an ingredient's stock level
func (h *Handler) AdminUpdateStock(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ing, err := h.catalog.UpdateStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated successfully", "ingredient": ing})
}

type CreateIngredientRequest struct {
	Name     string          `json:"name" binding:"required,max=50"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category" binding:"required,oneof=protein vegetable sauce cheese bread"`
	Stock    int             `json:"stock" binding:"min=0"`
	MinStock *int            `json:"min_stock" binding:"omitempty,min=0"`
	IsVeg    *bool           `json:"is_veg"`
	IsVegan  bool            `json:"is_vegan"`
	Image    string          `json:"image"`
}

// AdminCreateIngredient adds an ingredient to the builder
func (h *Handler) AdminCreateIngredient(c *gin.Context) {
	var req CreateIngredientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ing, err := h.catalog.CreateIngredient(c.Request.Context(), service.IngredientInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: models.IngredientCategory(req.Category),
		Stock:    req.Stock,
		MinStock: req.MinStock,
		IsVeg:    req.IsVeg,
		IsVegan:  req.IsVegan,
		Image:    req.Image,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Ingredient created", "ingredient": ing})
}

type CreateBurgerRequest struct {
	Name            string          `json:"name" binding:"required,max=80"`
	Description     string          `json:"description" binding:"max=500"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category" binding:"required,oneof=veg non-veg vegan"`
	Ingredients     []uint          `json:"ingredients"`
	Image           string          `json:"image"`
	PreparationTime int             `json:"preparation_time" binding:"min=0"`
}

// AdminCreateBurger adds a burger to the menu
func (h *Handler) AdminCreateBurger(c *gin.Context) {
	var req CreateBurgerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	burger, err := h.catalog.CreateBurger(c.Request.Context(), service.BurgerInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Category:        models.BurgerCategory(req.Category),
		IngredientIDs:   req.Ingredients,
		Image:           req.Image,
		PreparationTime: req.PreparationTime,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Burger created", "burger": burger})
}

type UpdateBurgerRequest struct {
	Price    *decimal.Decimal `json:"price"`
	IsActive *bool            `json:"is_active"`
}

// AdminUpdateBurger changes a burger's price or takes it off the menu.
// Placed orders keep the price they were charged.
func (h *Handler) AdminUpdateBurger(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateBurgerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	burger, err := h.catalog.UpdateBurger(c.Request.Context(), id, service.BurgerUpdate{
		Price:    req.Price,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Burger updated", "burger": burger})
}

type UsersQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=user admin"`
}

// AdminGetAllUsers returns all users, optionally filtered by role
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	var q UsersQuery
	if !h.bindQuery(c, &q) {
		return
	}
	users, err := h.admin.Users(c.Request.Context(), models.UserRole(q.Role))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}
