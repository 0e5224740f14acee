package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// IngredientCategory groups ingredients in the builder and the inventory.
type IngredientCategory string

const (
	IngredientProtein   IngredientCategory = "protein"
	IngredientVegetable IngredientCategory = "vegetable"
	IngredientSauce     IngredientCategory = "sauce"
	IngredientCheese    IngredientCategory = "cheese"
	IngredientBread     IngredientCategory = "bread"
)

// IngredientCategories lists every category in display order.
var IngredientCategories = []IngredientCategory{
	IngredientBread,
	IngredientProtein,
	IngredientCheese,
	IngredientVegetable,
	IngredientSauce,
}

func (c IngredientCategory) Valid() bool {
	switch c {
	case IngredientProtein, IngredientVegetable, IngredientSauce, IngredientCheese, IngredientBread:
		return true
	}
	return false
}

// BurgerCategory is the dietary class of a menu burger.
type BurgerCategory string

const (
	BurgerVeg    BurgerCategory = "veg"
	BurgerNonVeg BurgerCategory = "non-veg"
	BurgerVegan  BurgerCategory = "vegan"
)

func (c BurgerCategory) Valid() bool {
	switch c {
	case BurgerVeg, BurgerNonVeg, BurgerVegan:
		return true
	}
	return false
}

type Ingredient struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	Name      string             `json:"name" gorm:"not null"`
	Price     decimal.Decimal    `json:"price" gorm:"type:decimal(10,2);not null"`
	Category  IngredientCategory `json:"category" gorm:"not null;index"`
	Stock     int                `json:"stock" gorm:"not null"`
	MinStock  int                `json:"min_stock" gorm:"not null"`
	IsVeg     bool               `json:"is_veg"`
	IsVegan   bool               `json:"is_vegan"`
	Image     string             `json:"image"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// IsLowStock reports whether stock has fallen to the reorder level.
func (i Ingredient) IsLowStock() bool {
	return i.Stock <= i.MinStock
}

func (i Ingredient) MarshalJSON() ([]byte, error) {
	type plain Ingredient
	return json.Marshal(struct {
		plain
		IsLowStock bool `json:"is_low_stock"`
	}{plain: plain(i), IsLowStock: i.IsLowStock()})
}

type Burger struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"not null"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category        BurgerCategory  `json:"category" gorm:"not null;index"`
	Ingredients     []Ingredient    `json:"ingredients,omitempty" gorm:"many2many:burger_ingredients"`
	Image           string          `json:"image"`
	Rating          float64         `json:"rating" gorm:"not null;default:0"`
	ReviewCount     int             `json:"review_count" gorm:"not null;default:0"`
	IsActive        bool            `json:"is_active" gorm:"index"`
	PreparationTime int             `json:"preparation_time"` // minutes
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Review is a customer's rating of a burger they received.
type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_burger"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	BurgerID   uint      `json:"burger_id" gorm:"not null;uniqueIndex:idx_review_user_burger;index"`
	Burger     *Burger   `json:"burger,omitempty" gorm:"foreignKey:BurgerID"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"not null"`
	IsApproved bool      `json:"is_approved" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
