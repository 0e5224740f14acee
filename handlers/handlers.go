// Package handlers exposes the services over gin as JSON endpoints.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"burger-order-api/apperr"
	"burger-order-api/logger"
	"burger-order-api/middleware"
	"burger-order-api/service"
	"burger-order-api/statemachine"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators every handler may use.
type Deps struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Reviews *service.ReviewService
	Admin   *service.AdminService
	Machine *statemachine.Machine
	Tokens  *middleware.Auth
	Log     *slog.Logger
}

type Handler struct {
	auth    *service.AuthService
	catalog *service.CatalogService
	orders  *service.OrderService
	reviews *service.ReviewService
	admin   *service.AdminService
	machine *statemachine.Machine
	tokens  *middleware.Auth
	log     *slog.Logger
}

func New(d Deps) (*Handler, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	return &Handler{
		auth:    d.Auth,
		catalog: d.Catalog,
		orders:  d.Orders,
		reviews: d.Reviews,
		admin:   d.Admin,
		machine: d.Machine,
		tokens:  d.Tokens,
		log:     logger.Component(d.Log, "handlers"),
	}, nil
}

// fail renders err. Anything that is not a typed client error is logged
// and hidden behind a generic 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code == apperr.CodeInternal {
		h.log.Error("Request failed",
			"request_id", middleware.RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":   apperr.CodeInternal,
			"error":  "internal server error",
			"errors": []string{"internal server error"},
		})
		return
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(appErr.Code), gin.H{
		"code":   appErr.Code,
		"error":  appErr.Message,
		"errors": appErr.Messages(),
	})
}

// bindJSON decodes and validates the body, rendering a 400 on failure.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.ValidationList(validationMessages(err)))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.fail(c, apperr.ValidationList(validationMessages(err)))
		return false
	}
	return true
}

// idParam parses a numeric path parameter.
func (h *Handler) idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, apperr.Validation("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}
