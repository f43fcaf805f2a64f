package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/services"
)

const (
	defaultPageLimit = 6
	maxPageLimit     = 100
)

// respondError 把领域错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyExists),
		errors.Is(err, services.ErrSelfSubscription),
		errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pageParams(c *gin.Context) (offset, limit int) {
	query := struct {
		Offset int `form:"offset"`
		Limit  int `form:"limit"`
	}{}
	offset = 0
	limit = defaultPageLimit
	if err := c.ShouldBindQuery(&query); err == nil {
		offset = query.Offset
		if query.Limit > 0 {
			limit = query.Limit
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
