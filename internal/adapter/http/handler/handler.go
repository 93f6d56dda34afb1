package handler

import (
	"fmt"
	"strconv"

	"storefront-payments/internal/adapter/http/middleware"
	"storefront-payments/internal/core/domain"
	"storefront-payments/pkg/apperror"
	"storefront-payments/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's retry key for balance checkouts.
const HeaderIdempotencyKey = "Idempotency-Key"

// bindJSON decodes and validates the body, writing a VAL_001 response on failure.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, apperror.Validation("request body too large"))
			return false
		}
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	return true
}

// currentUserID returns the authenticated user, writing AUTH_001 when absent.
func currentUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Error(c, apperror.ErrUnauthorized())
		return "", false
	}
	return uid, true
}

// queryInt parses an optional positive integer query parameter.
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		response.Error(c, apperror.Validation(name+" must be a positive integer"))
		return 0, false
	}
	return n, true
}

// queryPage parses the optional 1-based page parameter, bounded by domain.MaxPage.
func queryPage(c *gin.Context) (int, bool) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return 0, false
	}
	if page > domain.MaxPage {
		response.Error(c, apperror.Validation(fmt.Sprintf("page must not exceed %d", domain.MaxPage)))
		return 0, false
	}
	return page, true
}
