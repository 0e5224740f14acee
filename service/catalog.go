package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"burger-order-api/apperr"
	"burger-order-api/logger"
	"burger-order-api/models"
	"burger-order-api/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Menu sort orders.
const (
	SortRating    = "rating"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
)

const (
	defaultMinStock        = 10
	defaultPreparationTime = 15
	relatedBurgers         = 4
)

type CatalogService struct {
	db      *gorm.DB
	pricing *pricing.Engine
	log     *slog.Logger
}

func NewCatalogService(db *gorm.DB, engine *pricing.Engine, log *slog.Logger) *CatalogService {
	return &CatalogService{db: db, pricing: engine, log: logger.Component(log, "catalog_service")}
}

type MenuFilter struct {
	Category models.BurgerCategory
	Search   string
	Sort     string
}

// Menu lists active burgers.
func (s *CatalogService) Menu(ctx context.Context, f MenuFilter) ([]models.Burger, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	switch f.Sort {
	case SortPriceLow:
		q = q.Order("price asc")
	case SortPriceHigh:
		q = q.Order("price desc")
	case SortName:
		q = q.Order("name asc")
	default:
		q = q.Order("rating desc")
	}

	burgers := make([]models.Burger, 0)
	if err := q.Order("id asc").Find(&burgers).Error; err != nil {
		return nil, apperr.Internal(err, "list burgers")
	}
	return burgers, nil
}

// Featured returns the n best rated active burgers.
func (s *CatalogService) Featured(ctx context.Context, n int) ([]models.Burger, error) {
	burgers := make([]models.Burger, 0, n)
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("rating desc").Order("id asc").
		Limit(n).
		Find(&burgers).Error
	if err != nil {
		return nil, apperr.Internal(err, "list featured burgers")
	}
	return burgers, nil
}

type BurgerDetail struct {
	Burger  models.Burger   `json:"burger"`
	Related []models.Burger `json:"related"`
}

// Burger loads an active burger with its recipe and a few others from the
// same category.
func (s *CatalogService) Burger(ctx context.Context, id uint) (*BurgerDetail, error) {
	db := s.db.WithContext(ctx)

	var burger models.Burger
	if err := db.Preload("Ingredients").Where("is_active = ?", true).First(&burger, id).Error; err != nil {
		return nil, lookupErr(err, "burger", id)
	}

	related := make([]models.Burger, 0, relatedBurgers)
	err := db.Where("category = ? AND id <> ? AND is_active = ?", burger.Category, burger.ID, true).
		Order("rating desc").Order("id asc").
		Limit(relatedBurgers).
		Find(&related).Error
	if err != nil {
		return nil, apperr.Internal(err, "list related burgers")
	}
	return &BurgerDetail{Burger: burger, Related: related}, nil
}

// IngredientGroup is one category of the builder or inventory.
type IngredientGroup struct {
	Category    models.IngredientCategory `json:"category"`
	Ingredients []models.Ingredient       `json:"ingredients"`
}

func groupIngredients(ingredients []models.Ingredient) []IngredientGroup {
	byCategory := make(map[models.IngredientCategory][]models.Ingredient)
	for _, ing := range ingredients {
		byCategory[ing.Category] = append(byCategory[ing.Category], ing)
	}
	groups := make([]IngredientGroup, 0, len(models.IngredientCategories))
	for _, cat := range models.IngredientCategories {
		items := byCategory[cat]
		if items == nil {
			items = []models.Ingredient{}
		}
		groups = append(groups, IngredientGroup{Category: cat, Ingredients: items})
	}
	return groups
}

// Builder lists in-stock ingredients grouped by category.
func (s *CatalogService) Builder(ctx context.Context) ([]IngredientGroup, error) {
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Where("stock > 0").Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, apperr.Internal(err, "list ingredients")
	}
	return groupIngredients(ingredients), nil
}

// Inventory lists every ingredient grouped by category, including sold out ones.
func (s *CatalogService) Inventory(ctx context.Context) ([]IngredientGroup, error) {
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, apperr.Internal(err, "list ingredients")
	}
	return groupIngredients(ingredients), nil
}

type CustomPreview struct {
	Ingredients []models.Ingredient `json:"ingredients"`
	BasePrice   decimal.Decimal     `json:"base_price"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
}

// PreviewCustom prices a custom burger without placing anything.
func (s *CatalogService) PreviewCustom(ctx context.Context, ingredientIDs []uint) (*CustomPreview, error) {
	ids := pricing.Dedupe(ingredientIDs)
	if len(ids) == 0 {
		return nil, apperr.Validation("custom burger needs at least one ingredient")
	}

	var found []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, apperr.Internal(err, "load ingredients")
	}
	byID := make(map[uint]models.Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID] = ing
	}

	var problems []string
	ordered := make([]models.Ingredient, 0, len(ids))
	for _, id := range ids {
		ing, ok := byID[id]
		if !ok {
			problems = append(problems, fmt.Sprintf("ingredient %d not found", id))
			continue
		}
		ordered = append(ordered, ing)
	}
	if len(problems) > 0 {
		return nil, apperr.ValidationList(problems)
	}

	return &CustomPreview{
		Ingredients: ordered,
		BasePrice:   s.pricing.Config().CustomBasePrice,
		UnitPrice:   s.pricing.CustomUnitPrice(ordered),
	}, nil
}

// UpdateStock sets an ingredient's stock level.
func (s *CatalogService) UpdateStock(ctx context.Context, id uint, stock int) (*models.Ingredient, error) {
	if stock < 0 {
		return nil, apperr.Validation("stock cannot be negative")
	}
	db := s.db.WithContext(ctx)

	var ing models.Ingredient
	if err := db.First(&ing, id).Error; err != nil {
		return nil, lookupErr(err, "ingredient", id)
	}
	if err := db.Model(&ing).Update("stock", stock).Error; err != nil {
		return nil, apperr.Internal(err, "update stock")
	}
	ing.Stock = stock
	s.log.Info("Stock updated", "ingredient_id", id, "stock", stock)
	return &ing, nil
}

type IngredientInput struct {
	Name     string
	Price    decimal.Decimal
	Category models.IngredientCategory
	Stock    int
	MinStock *int
	IsVeg    *bool
	IsVegan  bool
	Image    string
}

func (in IngredientInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if in.Price.IsNegative() {
		problems = append(problems, "price cannot be negative")
	}
	if !in.Category.Valid() {
		problems = append(problems, fmt.Sprintf("invalid ingredient category %q", in.Category))
	}
	if in.Stock < 0 {
		problems = append(problems, "stock cannot be negative")
	}
	if in.MinStock != nil && *in.MinStock < 0 {
		problems = append(problems, "min stock cannot be negative")
	}
	if len(problems) > 0 {
		return apperr.ValidationList(problems)
	}
	return nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, in IngredientInput) (*models.Ingredient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ing := models.Ingredient{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Category: in.Category,
		Stock:    in.Stock,
		MinStock: defaultMinStock,
		IsVeg:    true,
		IsVegan:  in.IsVegan,
		Image:    in.Image,
	}
	if in.MinStock != nil {
		ing.MinStock = *in.MinStock
	}
	if in.IsVeg != nil {
		ing.IsVeg = *in.IsVeg
	}
	if err := s.db.WithContext(ctx).Create(&ing).Error; err != nil {
		return nil, apperr.Internal(err, "create ingredient")
	}
	s.log.Info("Ingredient created", "ingredient_id", ing.ID, "name", ing.Name)
	return &ing, nil
}

type BurgerInput struct {
	Name            string
	Description     string
	Price           decimal.Decimal
	Category        models.BurgerCategory
	IngredientIDs   []uint
	Image           string
	PreparationTime int
}

func (s *CatalogService) CreateBurger(ctx context.Context, in BurgerInput) (*models.Burger, error) {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if in.Price.IsNegative() {
		problems = append(problems, "price cannot be negative")
	}
	if !in.Category.Valid() {
		problems = append(problems, fmt.Sprintf("invalid burger category %q", in.Category))
	}
	if in.PreparationTime < 0 {
		problems = append(problems, "preparation time cannot be negative")
	}

	db := s.db.WithContext(ctx)
	ids := pricing.Dedupe(in.IngredientIDs)
	var recipe []models.Ingredient
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&recipe).Error; err != nil {
			return nil, apperr.Internal(err, "load ingredients")
		}
		if len(recipe) != len(ids) {
			problems = append(problems, "one or more ingredients not found")
		}
	}
	if len(problems) > 0 {
		return nil, apperr.ValidationList(problems)
	}

	burger := models.Burger{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		Category:        in.Category,
		Ingredients:     recipe,
		Image:           in.Image,
		IsActive:        true,
		PreparationTime: in.PreparationTime,
	}
	if burger.PreparationTime == 0 {
		burger.PreparationTime = defaultPreparationTime
	}
	if err := db.Omit("Ingredients.*").Create(&burger).Error; err != nil {
		return nil, apperr.Internal(err, "create burger")
	}
	s.log.Info("Burger created", "burger_id", burger.ID, "name", burger.Name)
	return &burger, nil
}

// BurgerUpdate holds the fields an admin may change on a listed burger.
// Nil fields are left alone. Existing orders keep their snapshot prices.
type BurgerUpdate struct {
	Price    *decimal.Decimal
	IsActive *bool
}

func (s *CatalogService) UpdateBurger(ctx context.Context, id uint, upd BurgerUpdate) (*models.Burger, error) {
	if upd.Price != nil && upd.Price.IsNegative() {
		return nil, apperr.Validation("price cannot be negative")
	}
	db := s.db.WithContext(ctx)

	var burger models.Burger
	if err := db.First(&burger, id).Error; err != nil {
		return nil, lookupErr(err, "burger", id)
	}

	changes := map[string]any{}
	if upd.Price != nil {
		changes["price"] = *upd.Price
	}
	if upd.IsActive != nil {
		changes["is_active"] = *upd.IsActive
	}
	if len(changes) == 0 {
		return &burger, nil
	}
	if err := db.Model(&burger).Updates(changes).Error; err != nil {
		return nil, apperr.Internal(err, "update burger")
	}
	if err := db.First(&burger, id).Error; err != nil {
		return nil, lookupErr(err, "burger", id)
	}
	return &burger, nil
}

// loadCatalog reads just the catalog rows a cart refers to. Burgers come
// with their recipes for stock reservation.
func loadCatalog(tx *gorm.DB, lines []pricing.Line) (*pricing.Snapshot, error) {
	var burgers []models.Burger
	if ids := pricing.BurgerIDs(lines); len(ids) > 0 {
		if err := tx.Preload("Ingredients").Where("id IN ?", ids).Find(&burgers).Error; err != nil {
			return nil, apperr.Internal(err, "load burgers")
		}
	}
	var ingredients []models.Ingredient
	if ids := pricing.IngredientIDs(lines); len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
			return nil, apperr.Internal(err, "load ingredients")
		}
	}
	return pricing.NewSnapshot(burgers, ingredients), nil
}
