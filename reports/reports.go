// Package reports computes the admin views over loaded orders. Every
// function is pure; callers load orders with Items (and, for ingredient
// usage, Items.Ingredients.Ingredient) preloaded.
package reports

import (
	"sort"
	"time"

	"burger-order-api/models"

	"github.com/shopspring/decimal"
)

// BurgerSales is one row of the best sellers table.
type BurgerSales struct {
	BurgerID  uint            `json:"burger_id"`
	Name      string          `json:"name"`
	TotalSold int             `json:"total_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DaySales buckets non-cancelled orders by UTC calendar day.
type DaySales struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// IngredientUsage counts how many custom burgers used an ingredient.
type IngredientUsage struct {
	IngredientID uint   `json:"ingredient_id"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
}

// Revenue sums the total of every order that was not cancelled.
func Revenue(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == models.StatusCancelled {
			continue
		}
		total = total.Add(o.TotalAmount)
	}
	return total
}

// TopBurgers ranks menu burgers by quantity sold across all orders,
// cancelled ones included. Ties go to higher revenue, then lower id.
// Custom items are ignored. n <= 0 returns the full ranking.
func TopBurgers(orders []models.Order, n int) []BurgerSales {
	byID := make(map[uint]*BurgerSales)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Kind != models.ItemBurger || item.BurgerID == nil {
				continue
			}
			id := *item.BurgerID
			row, ok := byID[id]
			if !ok {
				row = &BurgerSales{BurgerID: id, Name: item.Name, Revenue: decimal.Zero}
				if item.Burger != nil {
					row.Name = item.Burger.Name
				}
				byID[id] = row
			}
			row.TotalSold += item.Quantity
			row.Revenue = row.Revenue.Add(item.Price)
		}
	}

	out := make([]BurgerSales, 0, len(byID))
	for _, row := range byID {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].BurgerID < out[j].BurgerID
	})
	return limit(out, n)
}

// SalesByDay returns the most recent days first, at most days buckets.
func SalesByDay(orders []models.Order, days int) []DaySales {
	byDate := make(map[string]*DaySales)
	for _, o := range orders {
		if o.Status == models.StatusCancelled {
			continue
		}
		key := o.CreatedAt.UTC().Format(time.DateOnly)
		row, ok := byDate[key]
		if !ok {
			row = &DaySales{Date: key, Revenue: decimal.Zero}
			byDate[key] = row
		}
		row.Orders++
		row.Revenue = row.Revenue.Add(o.TotalAmount)
	}

	out := make([]DaySales, 0, len(byDate))
	for _, row := range byDate {
		out = append(out, *row)
	}
	// ISO dates sort lexically.
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return limit(out, days)
}

// TopIngredients ranks ingredients by the quantity of custom burgers they
// went into. Ties go to the lower id.
func TopIngredients(orders []models.Order, n int) []IngredientUsage {
	byID := make(map[uint]*IngredientUsage)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Kind != models.ItemCustom {
				continue
			}
			for _, ref := range item.Ingredients {
				row, ok := byID[ref.IngredientID]
				if !ok {
					row = &IngredientUsage{IngredientID: ref.IngredientID}
					byID[ref.IngredientID] = row
				}
				if row.Name == "" && ref.Ingredient != nil {
					row.Name = ref.Ingredient.Name
				}
				row.Count += item.Quantity
			}
		}
	}

	out := make([]IngredientUsage, 0, len(byID))
	for _, row := range byID {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].IngredientID < out[j].IngredientID
	})
	return limit(out, n)
}

// LowStock filters ingredients at or below their reorder level.
func LowStock(ingredients []models.Ingredient) []models.Ingredient {
	out := make([]models.Ingredient, 0)
	for _, ing := range ingredients {
		if ing.IsLowStock() {
			out = append(out, ing)
		}
	}
	return out
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
