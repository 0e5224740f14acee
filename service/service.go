// Package service holds the storefront's business workflows. Services are
// built once in main with their dependencies and are safe for concurrent
// use; all per-request state lives in arguments.
package service

import (
	"errors"
	"strings"

	"burger-order-api/apperr"
	"burger-order-api/models"

	"gorm.io/gorm"
)

// Actor is the authenticated caller of a workflow.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// lookupErr turns a failed single-row load into NotFound or Internal.
func lookupErr(err error, what string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s %v not found", what, key)
	}
	return apperr.Internal(err, "load %s %v", what, key)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize(defaultLimit, maxLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}

func totalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
