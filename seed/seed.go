// Package seed loads a starter catalog from YAML. Seeding is idempotent:
// rows whose name already exists are left untouched.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"burger-order-api/logger"
	"burger-order-api/models"
	"burger-order-api/service"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type File struct {
	Ingredients []Ingredient `yaml:"ingredients"`
	Burgers     []Burger     `yaml:"burgers"`
}

type Ingredient struct {
	Name     string  `yaml:"name"`
	Price    float64 `yaml:"price"`
	Category string  `yaml:"category"`
	Stock    int     `yaml:"stock"`
	MinStock *int    `yaml:"min_stock"`
	IsVeg    *bool   `yaml:"is_veg"`
	IsVegan  bool    `yaml:"is_vegan"`
	Image    string  `yaml:"image"`
}

type Burger struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Price           float64  `yaml:"price"`
	Category        string   `yaml:"category"`
	Ingredients     []string `yaml:"ingredients"`
	Image           string   `yaml:"image"`
	PreparationTime int      `yaml:"preparation_time"`
}

// Result counts what Apply created and skipped.
type Result struct {
	IngredientsCreated int
	BurgersCreated     int
	Skipped            int
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

type Seeder struct {
	db      *gorm.DB
	catalog *service.CatalogService
	log     *slog.Logger
}

func NewSeeder(db *gorm.DB, catalog *service.CatalogService, log *slog.Logger) *Seeder {
	return &Seeder{db: db, catalog: catalog, log: logger.Component(log, "seed")}
}

// Apply creates the ingredients first, then burgers whose recipes refer
// to ingredients by name.
func (s *Seeder) Apply(ctx context.Context, f *File) (Result, error) {
	var res Result
	ids := make(map[string]uint)

	for _, in := range f.Ingredients {
		id, found, err := s.lookup(ctx, &models.Ingredient{}, in.Name)
		if err != nil {
			return res, err
		}
		if found {
			ids[in.Name] = id
			res.Skipped++
			continue
		}
		ing, err := s.catalog.CreateIngredient(ctx, service.IngredientInput{
			Name:     in.Name,
			Price:    money(in.Price),
			Category: models.IngredientCategory(in.Category),
			Stock:    in.Stock,
			MinStock: in.MinStock,
			IsVeg:    in.IsVeg,
			IsVegan:  in.IsVegan,
			Image:    in.Image,
		})
		if err != nil {
			return res, fmt.Errorf("ingredient %q: %w", in.Name, err)
		}
		ids[in.Name] = ing.ID
		res.IngredientsCreated++
	}

	for _, b := range f.Burgers {
		_, found, err := s.lookup(ctx, &models.Burger{}, b.Name)
		if err != nil {
			return res, err
		}
		if found {
			res.Skipped++
			continue
		}

		recipe := make([]uint, 0, len(b.Ingredients))
		for _, name := range b.Ingredients {
			id, ok := ids[name]
			if !ok {
				if id, ok, err = s.lookup(ctx, &models.Ingredient{}, name); err != nil {
					return res, err
				}
			}
			if !ok {
				return res, fmt.Errorf("burger %q: unknown ingredient %q", b.Name, name)
			}
			recipe = append(recipe, id)
		}

		_, err = s.catalog.CreateBurger(ctx, service.BurgerInput{
			Name:            b.Name,
			Description:     b.Description,
			Price:           money(b.Price),
			Category:        models.BurgerCategory(b.Category),
			IngredientIDs:   recipe,
			Image:           b.Image,
			PreparationTime: b.PreparationTime,
		})
		if err != nil {
			return res, fmt.Errorf("burger %q: %w", b.Name, err)
		}
		res.BurgersCreated++
	}

	s.log.Info("Catalog seeded",
		"ingredients_created", res.IngredientsCreated,
		"burgers_created", res.BurgersCreated,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (s *Seeder) lookup(ctx context.Context, model any, name string) (uint, bool, error) {
	var row struct{ ID uint }
	err := s.db.WithContext(ctx).Model(model).Select("id").Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("look up %q: %w", name, err)
	}
	return row.ID, true, nil
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
