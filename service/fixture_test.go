package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"burger-order-api/config"
	"burger-order-api/logger"
	"burger-order-api/models"
	"burger-order-api/notify/mocks"
	"burger-order-api/pricing"
	"burger-order-api/statemachine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.OpenDB(dsn, logger.Discard())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	notifier *mocks.MockNotifier

	auth    *AuthService
	catalog *CatalogService
	orders  *OrderService
	reviews *ReviewService
	admin   *AdminService

	customer models.User
	other    models.User
	staff    models.User

	bun, patty, cheese, lettuce models.Ingredient
	classic, zinger, retired    models.Burger
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newFixture(t *testing.T, opts OrderOptions) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any()).AnyTimes()

	return newFixtureWith(t, notifier, opts)
}

func newFixtureWith(t *testing.T, notifier *mocks.MockNotifier, opts OrderOptions) *fixture {
	t.Helper()
	if opts.DeliveryETA == 0 {
		opts.DeliveryETA = 45 * time.Minute
	}

	db := newTestDB(t)
	log := logger.Discard()
	engine := pricing.New(pricing.DefaultConfig())
	machine, err := statemachine.New(statemachine.DefaultPolicy())
	require.NoError(t, err)

	f := &fixture{
		ctx:      context.Background(),
		db:       db,
		notifier: notifier,
		auth:     NewAuthService(db, notifier, log),
		catalog:  NewCatalogService(db, engine, log),
		orders:   NewOrderService(db, engine, machine, notifier, log, opts),
		reviews:  NewReviewService(db, log),
		admin:    NewAdminService(db, log),
	}
	f.orders.now = func() time.Time { return fixedNow }

	f.customer = f.createUser(t, "Asha", "asha@example.com", models.RoleUser)
	f.other = f.createUser(t, "Vikram", "vikram@example.com", models.RoleUser)
	f.staff = f.createUser(t, "Admin", "admin@example.com", models.RoleAdmin)

	f.bun = f.createIngredient(t, "Sesame Bun", 10, models.IngredientBread, 50)
	f.patty = f.createIngredient(t, "Chicken Patty", 60, models.IngredientProtein, 50)
	f.cheese = f.createIngredient(t, "Cheddar", 20, models.IngredientCheese, 5)
	f.lettuce = f.createIngredient(t, "Lettuce", 5, models.IngredientVegetable, 0)

	f.classic = f.createBurger(t, "Classic", 80, models.BurgerVeg, true, f.bun, f.cheese)
	f.zinger = f.createBurger(t, "Zinger", 120, models.BurgerNonVeg, true, f.bun, f.patty)
	f.retired = f.createBurger(t, "Retired", 90, models.BurgerVeg, false)
	return f
}

func (f *fixture) createUser(t *testing.T, name, email string, role models.UserRole) models.User {
	t.Helper()
	u := models.User{Name: name, Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) createIngredient(t *testing.T, name string, price int64, cat models.IngredientCategory, stock int) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, Price: dec(price), Category: cat, Stock: stock, MinStock: 10, IsVeg: true}
	require.NoError(t, f.db.Create(&ing).Error)
	return ing
}

func (f *fixture) createBurger(t *testing.T, name string, price int64, cat models.BurgerCategory, active bool, recipe ...models.Ingredient) models.Burger {
	t.Helper()
	b := models.Burger{Name: name, Price: dec(price), Category: cat, IsActive: active, PreparationTime: 15, Ingredients: recipe}
	require.NoError(t, f.db.Omit("Ingredients.*").Create(&b).Error)
	return b
}

func actorOf(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func placeInput(lines ...pricing.Line) PlaceOrderInput {
	return PlaceOrderInput{
		Lines:         lines,
		Address:       models.Address{Street: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"},
		Phone:         "9876543210",
		PaymentMethod: models.PaymentCOD,
	}
}

func (f *fixture) place(t *testing.T, u models.User, lines ...pricing.Line) *models.Order {
	t.Helper()
	order, err := f.orders.Place(f.ctx, actorOf(u), placeInput(lines...))
	require.NoError(t, err)
	return order
}

func (f *fixture) setStatus(t *testing.T, orderID string, to models.OrderStatus) *models.Order {
	t.Helper()
	order, err := f.orders.SetStatus(f.ctx, actorOf(f.staff), orderID, to, "")
	require.NoError(t, err)
	return order
}
