package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/fundamentals-ai-go/internal/database"
	"github.com/irfndi/fundamentals-ai-go/internal/logging"
	"github.com/irfndi/fundamentals-ai-go/internal/middleware"
	"github.com/irfndi/fundamentals-ai-go/internal/services"
	"github.com/irfndi/fundamentals-ai-go/internal/utils"
	"github.com/irfndi/fundamentals-ai-go/pkg/changecode"
)

const (
	maxSymbolLength = 50
	defaultLimit    = 50
	maxLimit        = 500
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9:._-]+$`)

// validateSymbol checks a company symbol such as NYSE:IBM or DEZ:DE.
func validateSymbol(symbol string) error {
	if symbol == "" {
		return utils.NewFieldError("symbol", "is required")
	}
	if len(symbol) > maxSymbolLength {
		return utils.NewFieldError("symbol", "must be at most 50 characters")
	}
	if !symbolPattern.MatchString(symbol) {
		return utils.NewFieldError("symbol", "may only contain letters, digits and : . _ -")
	}
	return nil
}

// symbolParam reads and validates the :symbol path parameter, writing a 400
// response when it is invalid.
func symbolParam(c *gin.Context) (string, bool) {
	symbol := c.Param("symbol")
	if err := validateSymbol(symbol); err != nil {
		respondError(c, nil, err)
		return "", false
	}
	middleware.AddSpanAttribute(c, "company.symbol", symbol)
	return symbol, true
}

// parseLimit reads ?limit=, defaulting to 50 and capping at 500.
func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, utils.NewFieldError("limit", "must be a positive integer")
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, nil
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError maps domain errors onto HTTP statuses. Unexpected errors are
// logged and reported as 500 without their details.
func respondError(c *gin.Context, logger *logging.StandardLogger, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case utils.IsValidationError(err):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, database.ErrNotFound):
		status, message = http.StatusNotFound, "Company not found"
	case errors.Is(err, changecode.ErrInvalidArgument):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrJobRunning):
		status, message = http.StatusConflict, err.Error()
	default:
		middleware.RecordError(c, err, "request failed")
		if logger != nil {
			logger.WithRequestID(middleware.GetRequestID(c)).Error("Request failed",
				"path", c.FullPath(),
				"error", err.Error(),
			)
		}
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
