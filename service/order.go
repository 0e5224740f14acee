package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"burger-order-api/apperr"
	"burger-order-api/logger"
	"burger-order-api/models"
	"burger-order-api/notify"
	"burger-order-api/pricing"
	"burger-order-api/statemachine"

	"gorm.io/gorm"
)

const (
	orderSequence      = "order"
	adminOrdersPerPage = 20
)

// StatusAll is accepted by List as "no status filter".
const StatusAll models.OrderStatus = "all"

type OrderOptions struct {
	DeliveryETA  time.Duration
	ReserveStock bool
}

type OrderService struct {
	db       *gorm.DB
	pricing  *pricing.Engine
	machine  *statemachine.Machine
	notifier notify.Notifier
	log      *slog.Logger
	opts     OrderOptions
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, engine *pricing.Engine, machine *statemachine.Machine, notifier notify.Notifier, log *slog.Logger, opts OrderOptions) *OrderService {
	return &OrderService{
		db:       db,
		pricing:  engine,
		machine:  machine,
		notifier: notifier,
		log:      logger.Component(log, "order_service"),
		opts:     opts,
		now:      time.Now,
	}
}

// Quote prices a cart against the current catalog without placing it.
func (s *OrderService) Quote(ctx context.Context, lines []pricing.Line) (*pricing.Quote, error) {
	catalog, err := loadCatalog(s.db.WithContext(ctx), lines)
	if err != nil {
		return nil, err
	}
	return s.pricing.Quote(lines, catalog)
}

type PlaceOrderInput struct {
	Lines         []pricing.Line
	Address       models.Address
	Phone         string
	PaymentMethod models.PaymentMethod
}

func (in PlaceOrderInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.Address.Street) == "" {
		problems = append(problems, "delivery street is required")
	}
	if strings.TrimSpace(in.Address.City) == "" {
		problems = append(problems, "delivery city is required")
	}
	if strings.TrimSpace(in.Address.State) == "" {
		problems = append(problems, "delivery state is required")
	}
	if strings.TrimSpace(in.Address.Pincode) == "" {
		problems = append(problems, "delivery pincode is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		problems = append(problems, "phone is required")
	}
	if !in.PaymentMethod.Valid() {
		problems = append(problems, fmt.Sprintf("invalid payment method %q", in.PaymentMethod))
	}
	if len(problems) > 0 {
		return apperr.ValidationList(problems)
	}
	return nil
}

// Place prices the cart and stores the order with its price snapshot in
// one transaction. The confirmation email is queued after commit.
func (s *OrderService) Place(ctx context.Context, actor Actor, in PlaceOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		order models.Order
		user  models.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, actor.UserID).Error; err != nil {
			return lookupErr(err, "user", actor.UserID)
		}
		if !user.IsActive {
			return apperr.Unauthorized("account is deactivated")
		}

		catalog, err := loadCatalog(tx, in.Lines)
		if err != nil {
			return err
		}
		quote, err := s.pricing.Quote(in.Lines, catalog)
		if err != nil {
			return err
		}

		if s.opts.ReserveStock {
			if err := reserveStock(tx, stockDemand(quote.Lines, catalog)); err != nil {
				return err
			}
		}

		orderID, err := nextOrderID(tx, now)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(quote.Lines))
		for _, line := range quote.Lines {
			items = append(items, line.OrderItem())
		}

		order = models.Order{
			OrderID:           orderID,
			UserID:            user.ID,
			Items:             items,
			Subtotal:          quote.Subtotal,
			DeliveryFee:       quote.DeliveryFee,
			TotalAmount:       quote.Total,
			DeliveryAddress:   in.Address,
			Phone:             in.Phone,
			PaymentMethod:     in.PaymentMethod,
			PaymentStatus:     models.PaymentPending,
			Status:            models.StatusPlaced,
			EstimatedDelivery: now.Add(s.opts.DeliveryETA),
			StatusHistory: []models.OrderStatusHistory{{
				ToStatus:  models.StatusPlaced,
				ChangedBy: actor.UserID,
				Note:      "Order placed by customer",
			}},
		}
		if err := tx.Create(&order).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("order id %s already taken, retry", orderID)
			}
			return apperr.Internal(err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order placed", "order_id", order.OrderID, "user_id", user.ID, "total", order.TotalAmount.String())
	s.notifier.Notify(notify.Message{
		To:   user.Email,
		Kind: notify.KindOrderConfirmation,
		Data: map[string]any{
			"customerName":      user.Name,
			"orderId":           order.OrderID,
			"totalAmount":       order.TotalAmount.StringFixed(2),
			"estimatedDelivery": order.EstimatedDelivery.Format("02 Jan 2006 15:04"),
		},
	})

	return s.load(s.db.WithContext(ctx), order.OrderID)
}

// nextOrderID bumps the order sequence inside tx. The sequence row is
// write-locked until tx ends, so concurrent placements serialise here.
func nextOrderID(tx *gorm.DB, now time.Time) (string, error) {
	seq := models.Sequence{Name: orderSequence}
	if err := tx.FirstOrCreate(&seq, models.Sequence{Name: orderSequence}).Error; err != nil {
		return "", apperr.Internal(err, "init order sequence")
	}
	res := tx.Model(&models.Sequence{}).
		Where("name = ?", orderSequence).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return "", apperr.Internal(res.Error, "bump order sequence")
	}
	if err := tx.First(&seq, "name = ?", orderSequence).Error; err != nil {
		return "", apperr.Internal(err, "read order sequence")
	}
	return fmt.Sprintf("BRG%s%05d", now.UTC().Format("20060102"), seq.Value), nil
}

// stockDemand totals the ingredient units a priced cart consumes. Menu
// burgers consume their recipe.
func stockDemand(lines []pricing.LineQuote, catalog pricing.Catalog) map[uint]int {
	demand := make(map[uint]int)
	for _, line := range lines {
		switch line.Kind {
		case models.ItemBurger:
			burger, _ := catalog.Burger(line.BurgerID)
			for _, ing := range burger.Ingredients {
				demand[ing.ID] += line.Quantity
			}
		case models.ItemCustom:
			for _, id := range line.IngredientIDs {
				demand[id] += line.Quantity
			}
		}
	}
	return demand
}

// itemDemand rebuilds the demand of stored items, for releasing stock.
func itemDemand(tx *gorm.DB, items []models.OrderItem) (map[uint]int, error) {
	var burgerIDs []uint
	for _, item := range items {
		if item.Kind == models.ItemBurger && item.BurgerID != nil {
			burgerIDs = append(burgerIDs, *item.BurgerID)
		}
	}
	recipes := make(map[uint][]models.Ingredient)
	if len(burgerIDs) > 0 {
		var burgers []models.Burger
		if err := tx.Preload("Ingredients").Where("id IN ?", pricing.Dedupe(burgerIDs)).Find(&burgers).Error; err != nil {
			return nil, apperr.Internal(err, "load recipes")
		}
		for _, b := range burgers {
			recipes[b.ID] = b.Ingredients
		}
	}

	demand := make(map[uint]int)
	for _, item := range items {
		switch item.Kind {
		case models.ItemBurger:
			if item.BurgerID == nil {
				continue
			}
			for _, ing := range recipes[*item.BurgerID] {
				demand[ing.ID] += item.Quantity
			}
		case models.ItemCustom:
			for _, id := range item.IngredientIDs() {
				demand[id] += item.Quantity
			}
		}
	}
	return demand, nil
}

// reserveStock decrements each ingredient only if enough is left.
func reserveStock(tx *gorm.DB, demand map[uint]int) error {
	for _, id := range slices.Sorted(maps.Keys(demand)) {
		qty := demand[id]
		res := tx.Model(&models.Ingredient{}).
			Where("id = ? AND stock >= ?", id, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return apperr.Internal(res.Error, "reserve stock")
		}
		if res.RowsAffected == 0 {
			var ing models.Ingredient
			if err := tx.Select("id", "name").First(&ing, id).Error; err != nil {
				return lookupErr(err, "ingredient", id)
			}
			return apperr.Conflict("ingredient %q is out of stock", ing.Name)
		}
	}
	return nil
}

func releaseStock(tx *gorm.DB, demand map[uint]int) error {
	for _, id := range slices.Sorted(maps.Keys(demand)) {
		err := tx.Model(&models.Ingredient{}).
			Where("id = ?", id).
			Update("stock", gorm.Expr("stock + ?", demand[id])).Error
		if err != nil {
			return apperr.Internal(err, "release stock")
		}
	}
	return nil
}

func (s *OrderService) load(db *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Items.Ingredients.Ingredient").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, lookupErr(err, "order", orderID)
	}
	return &order, nil
}

// loadFor hides other customers' orders behind NotFound.
func (s *OrderService) loadFor(db *gorm.DB, actor Actor, orderID string) (*models.Order, error) {
	order, err := s.load(db, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, apperr.NotFound("order %v not found", orderID)
	}
	return order, nil
}

// Mine lists the caller's orders, newest first.
func (s *OrderService) Mine(ctx context.Context, actor Actor) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", actor.UserID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err, "list orders")
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	return s.loadFor(s.db.WithContext(ctx), actor, orderID)
}

// StatusView is what a polling client needs. Terminal tells it to stop.
type StatusView struct {
	OrderID           string             `json:"order_id"`
	Status            models.OrderStatus `json:"status"`
	EstimatedDelivery time.Time          `json:"estimated_delivery"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Terminal          bool               `json:"terminal"`
}

func (s *OrderService) Status(ctx context.Context, actor Actor, orderID string) (*StatusView, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, lookupErr(err, "order", orderID)
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, apperr.NotFound("order %v not found", orderID)
	}
	return &StatusView{
		OrderID:           order.OrderID,
		Status:            order.Status,
		EstimatedDelivery: order.EstimatedDelivery,
		UpdatedAt:         order.UpdatedAt,
		Terminal:          order.Status.Terminal(),
	}, nil
}

// Cancel cancels an order on behalf of its owner. Admins may cancel any
// order and are held to the admin rules, not the customer cutoff.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.loadFor(tx, actor, orderID)
		if err != nil {
			return err
		}
		by, note := statemachine.ActorCustomer, "Order cancelled by customer"
		if actor.IsAdmin() {
			by, note = statemachine.ActorAdmin, "Order cancelled by admin"
		}
		if err := s.machine.Cancel(order.Status, by); err != nil {
			return err
		}
		return s.transition(tx, order, models.StatusCancelled, actor.UserID, note)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Order cancelled", "order_id", orderID, "user_id", actor.UserID)
	return s.load(s.db.WithContext(ctx), orderID)
}

// SetStatus is the admin status change. Setting the current status again
// is a no-op.
func (s *OrderService) SetStatus(ctx context.Context, actor Actor, orderID string, to models.OrderStatus, note string) (*models.Order, error) {
	var (
		order *models.Order
		from  models.OrderStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.load(tx, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := s.machine.Check(from, to, statemachine.ActorAdmin); err != nil {
			return err
		}
		if from == to {
			return nil
		}
		if note == "" {
			note = fmt.Sprintf("Status updated to %s", to)
		}
		return s.transition(tx, order, to, actor.UserID, note)
	})
	if err != nil {
		return nil, err
	}
	if from == to {
		return order, nil
	}
	s.log.Info("Order status updated", "order_id", orderID, "from", from, "to", to, "admin_id", actor.UserID)
	return s.load(s.db.WithContext(ctx), orderID)
}

// transition writes the new status only if nobody changed it since it was
// read, records history and releases reserved stock on cancellation.
func (s *OrderService) transition(tx *gorm.DB, order *models.Order, to models.OrderStatus, by uint, note string) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", to)
	if res.Error != nil {
		return apperr.Internal(res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("order %s was updated concurrently, retry", order.OrderID)
	}

	history := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   to,
		ChangedBy:  by,
		Note:       note,
	}
	if err := tx.Create(&history).Error; err != nil {
		return apperr.Internal(err, "record status history")
	}

	if to == models.StatusCancelled && s.opts.ReserveStock {
		demand, err := itemDemand(tx, order.Items)
		if err != nil {
			return err
		}
		if err := releaseStock(tx, demand); err != nil {
			return err
		}
	}
	return nil
}

type OrderFilter struct {
	Status models.OrderStatus
	Page   int
}

type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
	Total       int64          `json:"total"`
}

// List is the admin order list, newest first, 20 per page.
func (s *OrderService) List(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	if f.Status == StatusAll {
		f.Status = ""
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", f.Status)
	}
	page := Page{Page: f.Page, Limit: adminOrdersPerPage}.normalize(adminOrdersPerPage, adminOrdersPerPage)

	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Order{})
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, apperr.Internal(err, "count orders")
	}

	orders := make([]models.Order, 0, page.Limit)
	err := filtered().
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "phone") }).
		Preload("Items").
		Order("created_at desc").Order("id desc").
		Offset(page.offset()).Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err, "list orders")
	}

	return &OrderPage{
		Orders:      orders,
		CurrentPage: page.Page,
		TotalPages:  totalPages(total, page.Limit),
		Total:       total,
	}, nil
}
