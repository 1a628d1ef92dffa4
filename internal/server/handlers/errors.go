package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	farmsvc "github.com/mamadbah2/lirio/internal/service/farm"
	"github.com/mamadbah2/lirio/internal/service/reporting"
)

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, farmsvc.ErrPenNotFound), errors.Is(err, farmsvc.ErrFeedTypeNotFound):
		return http.StatusNotFound
	case errors.Is(err, farmsvc.ErrFeedTypeExists), errors.Is(err, farmsvc.ErrFeedTypeInUse):
		return http.StatusConflict
	case errors.Is(err, farmsvc.ErrInsufficientAnimals), errors.Is(err, farmsvc.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, farmsvc.ErrInvalidQuantity), errors.Is(err, farmsvc.ErrInvalidInput),
		errors.Is(err, reporting.ErrInvalidDate), errors.Is(err, reporting.ErrInvalidRange),
		errors.Is(err, reporting.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, reporting.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
