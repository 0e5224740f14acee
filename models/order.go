package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of a burger order
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusPreparing      OrderStatus = "preparing"
	StatusPackaging      OrderStatus = "packaging"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status, happy path first.
var OrderStatuses = []OrderStatus{
	StatusPlaced,
	StatusPreparing,
	StatusPackaging,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Order struct {
	ID                uint                 `json:"id" gorm:"primaryKey"`
	OrderID           string               `json:"order_id" gorm:"uniqueIndex;not null"`
	UserID            uint                 `json:"user_id" gorm:"not null;index"`
	User              *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items             []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Subtotal          decimal.Decimal      `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DeliveryFee       decimal.Decimal      `json:"delivery_fee" gorm:"type:decimal(10,2);not null"`
	TotalAmount       decimal.Decimal      `json:"total_amount" gorm:"type:decimal(10,2);not null"` // snapshot, never recomputed
	DeliveryAddress   Address              `json:"delivery_address" gorm:"embedded;embeddedPrefix:delivery_"`
	Phone             string               `json:"phone" gorm:"not null"`
	PaymentMethod     PaymentMethod        `json:"payment_method" gorm:"not null"`
	PaymentStatus     PaymentStatus        `json:"payment_status" gorm:"not null;default:'pending'"`
	Status            OrderStatus          `json:"status" gorm:"not null;default:'placed';index"`
	EstimatedDelivery time.Time            `json:"estimated_delivery"`
	StatusHistory     []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time            `json:"created_at" gorm:"index"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// ItemKind tags which variant an OrderItem holds.
type ItemKind string

const (
	ItemBurger ItemKind = "burger"
	ItemCustom ItemKind = "custom"
)

// OrderItem is either a menu burger or a custom burger. Build it with
// NewBurgerItem or NewCustomItem; BeforeSave rejects anything else.
type OrderItem struct {
	ID          uint                  `json:"id" gorm:"primaryKey"`
	OrderID     uint                  `json:"order_id" gorm:"not null;index"`
	Kind        ItemKind              `json:"kind" gorm:"not null"`
	BurgerID    *uint                 `json:"burger_id,omitempty" gorm:"index"`
	Burger      *Burger               `json:"burger,omitempty" gorm:"foreignKey:BurgerID"`
	Name        string                `json:"name"` // snapshot name
	Ingredients []OrderItemIngredient `json:"ingredients,omitempty" gorm:"foreignKey:OrderItemID"`
	Quantity    int                   `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal       `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Price       decimal.Decimal       `json:"price" gorm:"type:decimal(10,2);not null"` // unit price × quantity
}

// OrderItemIngredient is one position in a custom burger's ingredient list.
type OrderItemIngredient struct {
	ID           uint        `json:"-" gorm:"primaryKey"`
	OrderItemID  uint        `json:"-" gorm:"not null;index"`
	IngredientID uint        `json:"ingredient_id" gorm:"not null;index"`
	Ingredient   *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
	Position     int         `json:"position"`
}

var (
	ErrItemVariant  = errors.New("order item must reference exactly one of a burger or a custom ingredient list")
	ErrItemQuantity = errors.New("order item quantity must be at least 1")
)

// NewBurgerItem snapshots a menu burger line.
func NewBurgerItem(burgerID uint, name string, quantity int, unitPrice decimal.Decimal) OrderItem {
	id := burgerID
	return OrderItem{
		Kind:      ItemBurger,
		BurgerID:  &id,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Price:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// NewCustomItem snapshots a custom burger line. Ingredient order is kept.
func NewCustomItem(name string, ingredientIDs []uint, quantity int, unitPrice decimal.Decimal) OrderItem {
	refs := make([]OrderItemIngredient, 0, len(ingredientIDs))
	for i, id := range ingredientIDs {
		refs = append(refs, OrderItemIngredient{IngredientID: id, Position: i})
	}
	return OrderItem{
		Kind:        ItemCustom,
		Name:        name,
		Ingredients: refs,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Price:       unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// IngredientIDs returns the custom ingredient references in order.
func (i OrderItem) IngredientIDs() []uint {
	ids := make([]uint, 0, len(i.Ingredients))
	for _, ing := range i.Ingredients {
		ids = append(ids, ing.IngredientID)
	}
	return ids
}

func (i OrderItem) Validate() error {
	if i.Quantity < 1 {
		return ErrItemQuantity
	}
	switch i.Kind {
	case ItemBurger:
		if i.BurgerID == nil || len(i.Ingredients) > 0 {
			return ErrItemVariant
		}
	case ItemCustom:
		if i.BurgerID != nil || len(i.Ingredients) == 0 {
			return ErrItemVariant
		}
	default:
		return ErrItemVariant
	}
	return nil
}

func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	return i.Validate()
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Sequence is a named counter incremented inside a transaction.
type Sequence struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

// All returns every model for auto-migration.
func All() []any {
	return []any{
		&User{},
		&Ingredient{},
		&Burger{},
		&Review{},
		&Order{},
		&OrderItem{},
		&OrderItemIngredient{},
		&OrderStatusHistory{},
		&Sequence{},
	}
}
