package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"strings"  // Field name formatting

	"wallet_booking/internal/domain"  // Coin parsing for the coin tag
	"wallet_booking/internal/service" // Service error kinds
	"wallet_booking/internal/utils"   // Pagination

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Gin's validator hook
	"github.com/go-playground/validator/v10" // Validation errors and custom tags
	"github.com/sirupsen/logrus"             // Logging library
)

// statusFor maps service error kinds to HTTP status codes
var statusFor = []struct {
	kind   error
	status int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrInsufficientFunds, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrNoSeats, http.StatusConflict},
	{service.ErrUpstream, http.StatusBadGateway},
}

// respondError writes {"error": msg}. Unexpected errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		for _, m := range statusFor {
			if errors.Is(err, m.kind) {
				c.JSON(m.status, gin.H{"error": svcErr.Msg})
				return
			}
		}
	}
	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"error":  err.Error(),
	}).Error("Unhandled error")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// success writes {"success": true, "message": msg} merged with payload
func success(c *gin.Context, status int, msg string, payload gin.H) {
	body := gin.H{"success": true}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// bindJSON binds the request body and answers 400 on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return false
	}
	return true
}

// bindMessage turns the first validation failure into a readable message
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "coin":
		return "Unsupported coin"
	case "email":
		return field + " must be a valid email"
	case "gt", "gte", "min", "max", "lte", "oneof":
		return fmt.Sprintf("%s is invalid (%s=%s)", field, fe.Tag(), fe.Param())
	}
	return field + " is invalid"
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// idParam parses a positive numeric path parameter, answering 400 otherwise
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// pageQuery reads page and page_size from the query string
func pageQuery(c *gin.Context) utils.Page {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"))
}

// pageBody flattens a page result into the response envelope
func pageBody[T any](name string, p service.PageResult[T]) gin.H {
	return gin.H{
		name:          p.Items,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total":       p.Total,
		"total_pages": p.TotalPages,
		"cached":      p.Cached,
	}
}

// RegisterValidators adds the custom binding tags. Safe to call more than once.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("coin", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseCoin(fl.Field().String())
			return ok
		})
	}
}
