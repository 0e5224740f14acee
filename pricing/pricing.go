// Package pricing computes cart and order totals from catalog snapshots.
// Nothing here performs I/O; callers load the catalog and persist the
// resulting quote.
package pricing

import (
	"fmt"

	"burger-order-api/apperr"
	"burger-order-api/models"

	"github.com/shopspring/decimal"
)

// DefaultCustomName is used when a custom burger is submitted without a name.
const DefaultCustomName = "Custom Burger"

// Config holds the tunable pricing constants.
type Config struct {
	CustomBasePrice       decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		CustomBasePrice:       decimal.NewFromInt(50),
		FreeDeliveryThreshold: decimal.NewFromInt(500),
		DeliveryFee:           decimal.NewFromInt(40),
	}
}

// Line is one cart entry: either a menu burger or a custom burger.
// Use BurgerLine or CustomLine to build one.
type Line struct {
	kind          models.ItemKind
	burgerID      uint
	name          string
	ingredientIDs []uint
	quantity      int
}

func BurgerLine(burgerID uint, quantity int) Line {
	return Line{kind: models.ItemBurger, burgerID: burgerID, quantity: quantity}
}

func CustomLine(name string, ingredientIDs []uint, quantity int) Line {
	if name == "" {
		name = DefaultCustomName
	}
	return Line{kind: models.ItemCustom, name: name, ingredientIDs: Dedupe(ingredientIDs), quantity: quantity}
}

func (l Line) Kind() models.ItemKind { return l.kind }
func (l Line) BurgerID() uint        { return l.burgerID }
func (l Line) Name() string          { return l.name }
func (l Line) IngredientIDs() []uint { return l.ingredientIDs }
func (l Line) Quantity() int         { return l.quantity }

// Catalog resolves ids against a catalog snapshot.
type Catalog interface {
	Burger(id uint) (models.Burger, bool)
	Ingredient(id uint) (models.Ingredient, bool)
}

// Snapshot is an in-memory Catalog.
type Snapshot struct {
	burgers     map[uint]models.Burger
	ingredients map[uint]models.Ingredient
}

func NewSnapshot(burgers []models.Burger, ingredients []models.Ingredient) *Snapshot {
	s := &Snapshot{
		burgers:     make(map[uint]models.Burger, len(burgers)),
		ingredients: make(map[uint]models.Ingredient, len(ingredients)),
	}
	for _, b := range burgers {
		s.burgers[b.ID] = b
	}
	for _, i := range ingredients {
		s.ingredients[i.ID] = i
	}
	return s
}

func (s *Snapshot) Burger(id uint) (models.Burger, bool) {
	b, ok := s.burgers[id]
	return b, ok
}

func (s *Snapshot) Ingredient(id uint) (models.Ingredient, bool) {
	i, ok := s.ingredients[id]
	return i, ok
}

// LineQuote is a priced line.
type LineQuote struct {
	Kind          models.ItemKind `json:"kind"`
	BurgerID      uint            `json:"burger_id,omitempty"`
	Name          string          `json:"name"`
	IngredientIDs []uint          `json:"ingredient_ids,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// OrderItem converts the priced line into its persisted snapshot.
func (q LineQuote) OrderItem() models.OrderItem {
	if q.Kind == models.ItemBurger {
		return models.NewBurgerItem(q.BurgerID, q.Name, q.Quantity, q.UnitPrice)
	}
	return models.NewCustomItem(q.Name, q.IngredientIDs, q.Quantity, q.UnitPrice)
}

type Quote struct {
	Lines       []LineQuote     `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// CustomUnitPrice is the base price plus the price of each ingredient.
func (e *Engine) CustomUnitPrice(ingredients []models.Ingredient) decimal.Decimal {
	total := e.cfg.CustomBasePrice
	for _, ing := range ingredients {
		total = total.Add(ing.Price)
	}
	return total
}

// DeliveryFeeFor returns zero at or above the free delivery threshold.
func (e *Engine) DeliveryFeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(e.cfg.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return e.cfg.DeliveryFee
}

// Quote prices every line against the catalog. All problems are reported
// together as a single validation error.
func (e *Engine) Quote(lines []Line, catalog Catalog) (*Quote, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	var problems []string
	quote := &Quote{Lines: make([]LineQuote, 0, len(lines))}
	subtotal := decimal.Zero

	for n, line := range lines {
		if line.quantity < 1 {
			problems = append(problems, fmt.Sprintf("item %d: quantity must be at least 1", n+1))
			continue
		}
		lq, msgs := e.quoteLine(line, catalog)
		if len(msgs) > 0 {
			for _, m := range msgs {
				problems = append(problems, fmt.Sprintf("item %d: %s", n+1, m))
			}
			continue
		}
		subtotal = subtotal.Add(lq.LineTotal)
		quote.Lines = append(quote.Lines, lq)
	}

	if len(problems) > 0 {
		return nil, apperr.ValidationList(problems)
	}

	quote.Subtotal = subtotal
	quote.DeliveryFee = e.DeliveryFeeFor(subtotal)
	quote.Total = subtotal.Add(quote.DeliveryFee)
	return quote, nil
}

func (e *Engine) quoteLine(line Line, catalog Catalog) (LineQuote, []string) {
	qty := decimal.NewFromInt(int64(line.quantity))

	switch line.kind {
	case models.ItemBurger:
		burger, ok := catalog.Burger(line.burgerID)
		if !ok {
			return LineQuote{}, []string{fmt.Sprintf("burger %d not found", line.burgerID)}
		}
		if !burger.IsActive {
			return LineQuote{}, []string{fmt.Sprintf("burger %q is not available", burger.Name)}
		}
		return LineQuote{
			Kind:      models.ItemBurger,
			BurgerID:  burger.ID,
			Name:      burger.Name,
			Quantity:  line.quantity,
			UnitPrice: burger.Price,
			LineTotal: burger.Price.Mul(qty),
		}, nil

	case models.ItemCustom:
		if len(line.ingredientIDs) == 0 {
			return LineQuote{}, []string{"custom burger needs at least one ingredient"}
		}
		var msgs []string
		resolved := make([]models.Ingredient, 0, len(line.ingredientIDs))
		for _, id := range line.ingredientIDs {
			ing, ok := catalog.Ingredient(id)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("ingredient %d not found", id))
				continue
			}
			resolved = append(resolved, ing)
		}
		if len(msgs) > 0 {
			return LineQuote{}, msgs
		}
		unit := e.CustomUnitPrice(resolved)
		return LineQuote{
			Kind:          models.ItemCustom,
			Name:          line.name,
			IngredientIDs: line.ingredientIDs,
			Quantity:      line.quantity,
			UnitPrice:     unit,
			LineTotal:     unit.Mul(qty),
		}, nil
	}

	return LineQuote{}, []string{"unknown item kind"}
}

// Dedupe drops repeated ids, keeping first occurrences in order.
func Dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// BurgerIDs and IngredientIDs list every catalog id the cart refers to,
// so callers can load just those rows.
func BurgerIDs(lines []Line) []uint {
	var ids []uint
	for _, l := range lines {
		if l.kind == models.ItemBurger {
			ids = append(ids, l.burgerID)
		}
	}
	return Dedupe(ids)
}

func IngredientIDs(lines []Line) []uint {
	var ids []uint
	for _, l := range lines {
		ids = append(ids, l.ingredientIDs...)
	}
	return Dedupe(ids)
}
