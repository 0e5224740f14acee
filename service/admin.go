package service

import (
	"context"
	"log/slog"

	"burger-order-api/apperr"
	"burger-order-api/logger"
	"burger-order-api/models"
	"burger-order-api/reports"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	recentOrders    = 10
	topBurgers      = 5
	salesWindowDays = 30
	topIngredients  = 10
)

// AdminService serves the back-office views. Everything is computed on
// demand from the current rows.
type AdminService struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewAdminService(db *gorm.DB, log *slog.Logger) *AdminService {
	return &AdminService{db: db, log: logger.Component(log, "admin_service")}
}

type Dashboard struct {
	TotalOrders   int64                 `json:"total_orders"`
	TotalRevenue  decimal.Decimal       `json:"total_revenue"`
	TotalUsers    int64                 `json:"total_users"`
	LowStockCount int                   `json:"low_stock_count"`
	LowStockItems []models.Ingredient   `json:"low_stock_items"`
	RecentOrders  []models.Order        `json:"recent_orders"`
	TopBurgers    []reports.BurgerSales `json:"top_burgers"`
}

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)

	var orders []models.Order
	if err := db.Preload("Items").Find(&orders).Error; err != nil {
		return nil, apperr.Internal(err, "load orders")
	}

	var users int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&users).Error; err != nil {
		return nil, apperr.Internal(err, "count users")
	}

	var ingredients []models.Ingredient
	if err := db.Order("stock asc").Order("id asc").Find(&ingredients).Error; err != nil {
		return nil, apperr.Internal(err, "load ingredients")
	}
	low := reports.LowStock(ingredients)

	recent := make([]models.Order, 0, recentOrders)
	err := db.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Order("created_at desc").Order("id desc").
		Limit(recentOrders).
		Find(&recent).Error
	if err != nil {
		return nil, apperr.Internal(err, "load recent orders")
	}

	return &Dashboard{
		TotalOrders:   int64(len(orders)),
		TotalRevenue:  reports.Revenue(orders),
		TotalUsers:    users,
		LowStockCount: len(low),
		LowStockItems: low,
		RecentOrders:  recent,
		TopBurgers:    reports.TopBurgers(orders, topBurgers),
	}, nil
}

type Analytics struct {
	DailySales      []reports.DaySales        `json:"daily_sales"`
	IngredientUsage []reports.IngredientUsage `json:"ingredient_usage"`
	TopBurgers      []reports.BurgerSales     `json:"top_burgers"`
}

func (s *AdminService) Analytics(ctx context.Context) (*Analytics, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Ingredients").
		Preload("Items.Ingredients.Ingredient").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err, "load orders")
	}

	return &Analytics{
		DailySales:      reports.SalesByDay(orders, salesWindowDays),
		IngredientUsage: reports.TopIngredients(orders, topIngredients),
		TopBurgers:      reports.TopBurgers(orders, topBurgers),
	}, nil
}

// Users lists accounts, optionally of one role, newest first.
func (s *AdminService) Users(ctx context.Context, role models.UserRole) ([]models.User, error) {
	q := s.db.WithContext(ctx)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	users := make([]models.User, 0)
	if err := q.Order("created_at desc").Order("id desc").Find(&users).Error; err != nil {
		return nil, apperr.Internal(err, "list users")
	}
	return users, nil
}
