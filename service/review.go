package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"burger-order-api/apperr"
	"burger-order-api/logger"
	"burger-order-api/models"

	"gorm.io/gorm"
)

const (
	minCommentLength   = 10
	maxCommentLength   = 500
	defaultReviewLimit = 10
	maxReviewLimit     = 50
)

type ReviewService struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewReviewService(db *gorm.DB, log *slog.Logger) *ReviewService {
	return &ReviewService{db: db, log: logger.Component(log, "review_service")}
}

type ReviewInput struct {
	BurgerID uint
	Rating   int
	Comment  string
}

func (in ReviewInput) validate() error {
	var problems []string
	if in.Rating < 1 || in.Rating > 5 {
		problems = append(problems, "rating must be between 1 and 5")
	}
	n := utf8.RuneCountInString(strings.TrimSpace(in.Comment))
	if n < minCommentLength || n > maxCommentLength {
		problems = append(problems, "comment must be between 10 and 500 characters")
	}
	if len(problems) > 0 {
		return apperr.ValidationList(problems)
	}
	return nil
}

// Create stores a review from a customer who received the burger and
// refreshes the burger's rating in the same transaction.
func (s *ReviewService) Create(ctx context.Context, actor Actor, in ReviewInput) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var burger models.Burger
		if err := tx.Select("id").First(&burger, in.BurgerID).Error; err != nil {
			return lookupErr(err, "burger", in.BurgerID)
		}

		var delivered int64
		err := tx.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.user_id = ? AND orders.status = ?", actor.UserID, models.StatusDelivered).
			Where("order_items.kind = ? AND order_items.burger_id = ?", models.ItemBurger, in.BurgerID).
			Count(&delivered).Error
		if err != nil {
			return apperr.Internal(err, "check delivered orders")
		}
		if delivered == 0 {
			return apperr.Forbidden("you can only review burgers you have ordered and received")
		}

		var existing int64
		err = tx.Model(&models.Review{}).
			Where("user_id = ? AND burger_id = ?", actor.UserID, in.BurgerID).
			Count(&existing).Error
		if err != nil {
			return apperr.Internal(err, "check existing review")
		}
		if existing > 0 {
			return apperr.Conflict("you have already reviewed this burger")
		}

		review = models.Review{
			UserID:     actor.UserID,
			BurgerID:   in.BurgerID,
			Rating:     in.Rating,
			Comment:    strings.TrimSpace(in.Comment),
			IsApproved: true,
		}
		if err := tx.Create(&review).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("you have already reviewed this burger")
			}
			return apperr.Internal(err, "create review")
		}
		return refreshRating(tx, in.BurgerID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Review created", "review_id", review.ID, "burger_id", review.BurgerID, "user_id", actor.UserID)
	return &review, nil
}

// refreshRating recomputes a burger's rating and review count from all of
// its reviews. No reviews gives 0 and 0.
func refreshRating(tx *gorm.DB, burgerID uint) error {
	var ratings []int
	if err := tx.Model(&models.Review{}).Where("burger_id = ?", burgerID).Pluck("rating", &ratings).Error; err != nil {
		return apperr.Internal(err, "load ratings")
	}
	rating, count := averageRating(ratings)
	err := tx.Model(&models.Burger{}).
		Where("id = ?", burgerID).
		Updates(map[string]any{"rating": rating, "review_count": count}).Error
	if err != nil {
		return apperr.Internal(err, "update burger rating")
	}
	return nil
}

// averageRating is the mean rounded to one decimal place.
func averageRating(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10, len(ratings)
}

type ReviewPage struct {
	Reviews      []models.Review `json:"reviews"`
	CurrentPage  int             `json:"current_page"`
	TotalPages   int             `json:"total_pages"`
	TotalReviews int64           `json:"total_reviews"`
}

func reviewAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// ForBurger lists a burger's approved reviews, newest first.
func (s *ReviewService) ForBurger(ctx context.Context, burgerID uint, p Page) (*ReviewPage, error) {
	p = p.normalize(defaultReviewLimit, maxReviewLimit)
	db := s.db.WithContext(ctx)

	var total int64
	err := db.Model(&models.Review{}).
		Where("burger_id = ? AND is_approved = ?", burgerID, true).
		Count(&total).Error
	if err != nil {
		return nil, apperr.Internal(err, "count reviews")
	}

	reviews := make([]models.Review, 0, p.Limit)
	err = db.Preload("User", reviewAuthor).
		Where("burger_id = ? AND is_approved = ?", burgerID, true).
		Order("created_at desc").Order("id desc").
		Offset(p.offset()).Limit(p.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal(err, "list reviews")
	}

	return &ReviewPage{
		Reviews:      reviews,
		CurrentPage:  p.Page,
		TotalPages:   totalPages(total, p.Limit),
		TotalReviews: total,
	}, nil
}

// Recent lists the newest approved reviews across all burgers.
func (s *ReviewService) Recent(ctx context.Context, n int) ([]models.Review, error) {
	reviews := make([]models.Review, 0, n)
	err := s.db.WithContext(ctx).
		Preload("User", reviewAuthor).
		Preload("Burger", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "image") }).
		Where("is_approved = ?", true).
		Order("created_at desc").Order("id desc").
		Limit(n).
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.Internal(err, "list recent reviews")
	}
	return reviews, nil
}
