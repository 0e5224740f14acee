package service

import (
	"strings"
	"testing"

	"burger-order-api/apperr"
	"burger-order-api/models"
	"burger-order-api/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodComment = "Juicy and well seasoned, would order again."

func (f *fixture) deliver(t *testing.T, u models.User, burgerID uint) {
	t.Helper()
	order := f.place(t, u, pricing.BurgerLine(burgerID, 1))
	f.setStatus(t, order.OrderID, models.StatusDelivered)
}

func (f *fixture) review(u models.User, burgerID uint, rating int) (*models.Review, error) {
	return f.reviews.Create(f.ctx, actorOf(u), ReviewInput{BurgerID: burgerID, Rating: rating, Comment: goodComment})
}

func TestReviewRequiresDeliveredOrder(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	_, err := f.review(f.customer, f.classic.ID, 5)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden), "never ordered")

	order := f.place(t, f.customer, pricing.BurgerLine(f.classic.ID, 1))
	_, err = f.review(f.customer, f.classic.ID, 5)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden), "not delivered yet")

	f.setStatus(t, order.OrderID, models.StatusDelivered)
	_, err = f.review(f.customer, f.zinger.ID, 5)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden), "different burger")

	_, err = f.review(f.customer, f.classic.ID, 5)
	require.NoError(t, err)
}

func TestReviewCustomItemDoesNotQualify(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	order := f.place(t, f.customer, pricing.CustomLine("Mine", []uint{f.bun.ID}, 1))
	f.setStatus(t, order.OrderID, models.StatusDelivered)

	_, err := f.review(f.customer, f.classic.ID, 4)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestReviewsAggregateRating(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	third := f.createUser(t, "Meera", "meera@example.com", models.RoleUser)

	for _, u := range []models.User{f.customer, f.other, third} {
		f.deliver(t, u, f.classic.ID)
	}

	_, err := f.review(f.customer, f.classic.ID, 4)
	require.NoError(t, err)
	_, err = f.review(f.other, f.classic.ID, 5)
	require.NoError(t, err)
	_, err = f.review(third, f.classic.ID, 3)
	require.NoError(t, err)

	var burger models.Burger
	require.NoError(t, f.db.First(&burger, f.classic.ID).Error)
	assert.Equal(t, 4.0, burger.Rating)
	assert.Equal(t, 3, burger.ReviewCount)

	var zinger models.Burger
	require.NoError(t, f.db.First(&zinger, f.zinger.ID).Error)
	assert.Zero(t, zinger.Rating)
	assert.Zero(t, zinger.ReviewCount)
}

func TestReviewDuplicateConflicts(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.deliver(t, f.customer, f.classic.ID)

	_, err := f.review(f.customer, f.classic.ID, 5)
	require.NoError(t, err)

	_, err = f.review(f.customer, f.classic.ID, 1)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	var burger models.Burger
	require.NoError(t, f.db.First(&burger, f.classic.ID).Error)
	assert.Equal(t, 5.0, burger.Rating)
	assert.Equal(t, 1, burger.ReviewCount)
}

func TestReviewUniqueIndex(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	first := models.Review{UserID: f.customer.ID, BurgerID: f.classic.ID, Rating: 5, Comment: goodComment, IsApproved: true}
	require.NoError(t, f.db.Create(&first).Error)

	dup := models.Review{UserID: f.customer.ID, BurgerID: f.classic.ID, Rating: 1, Comment: goodComment, IsApproved: true}
	err := f.db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), err.Error())
}

func TestReviewValidation(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.deliver(t, f.customer, f.classic.ID)

	tests := []struct {
		name string
		in   ReviewInput
		code apperr.Code
	}{
		{"rating too low", ReviewInput{BurgerID: f.classic.ID, Rating: 0, Comment: goodComment}, apperr.CodeValidation},
		{"rating too high", ReviewInput{BurgerID: f.classic.ID, Rating: 6, Comment: goodComment}, apperr.CodeValidation},
		{"short comment", ReviewInput{BurgerID: f.classic.ID, Rating: 4, Comment: "  tasty   "}, apperr.CodeValidation},
		{"long comment", ReviewInput{BurgerID: f.classic.ID, Rating: 4, Comment: strings.Repeat("a", 501)}, apperr.CodeValidation},
		{"unknown burger", ReviewInput{BurgerID: 9999, Rating: 4, Comment: goodComment}, apperr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reviews.Create(f.ctx, actorOf(f.customer), tt.in)
			assert.True(t, apperr.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		ratings []int
		want    float64
		count   int
	}{
		{nil, 0, 0},
		{[]int{4, 5, 3}, 4.0, 3},
		{[]int{5, 4}, 4.5, 2},
		{[]int{1, 2, 2}, 1.7, 3},
		{[]int{5, 5, 4}, 4.7, 3},
	}
	for _, tt := range tests {
		got, count := averageRating(tt.ratings)
		assert.Equal(t, tt.want, got, "%v", tt.ratings)
		assert.Equal(t, tt.count, count)
	}
}

func TestReviewListing(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	users := []models.User{f.customer, f.other}
	for i := 0; i < 10; i++ {
		users = append(users, f.createUser(t, "Guest", strings.Repeat("g", i+1)+"@example.com", models.RoleUser))
	}
	for _, u := range users {
		f.deliver(t, u, f.classic.ID)
		_, err := f.review(u, f.classic.ID, 4)
		require.NoError(t, err)
	}
	require.NoError(t, f.db.Model(&models.Review{}).Where("user_id = ?", f.other.ID).Update("is_approved", false).Error)

	page, err := f.reviews.ForBurger(f.ctx, f.classic.ID, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.TotalReviews)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Reviews, 10)
	require.NotNil(t, page.Reviews[0].User)
	assert.Equal(t, "Guest", page.Reviews[0].User.Name)
	assert.Empty(t, page.Reviews[0].User.Email)

	page, err = f.reviews.ForBurger(f.ctx, f.classic.ID, Page{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Reviews, 1)

	recent, err := f.reviews.Recent(f.ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
	require.NotNil(t, recent[0].Burger)
	assert.Equal(t, "Classic", recent[0].Burger.Name)
}
