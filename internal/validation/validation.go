// Package validation provides input validation middleware for the Sentinel API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for string fields
const MaxStringLength = 10000

// VPA length bounds per NPCI conventions
const (
	MinVPALength = 5
	MaxVPALength = 50
)

var (
	// vpaRegex validates the characters a UPI virtual payment address may contain.
	// Structural checks (handle presence, length) are done separately so error
	// messages can be specific.
	vpaRegex = regexp.MustCompile(`^[a-zA-Z0-9.@_-]+$`)
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidVPA checks if a string is a plausibly well-formed UPI VPA.
// It only gates on charset and length; deeper format analysis happens
// in the risk engine so malformed identifiers still get scored.
func IsValidVPA(vpa string) bool {
	if len(vpa) < MinVPALength || len(vpa) > MaxVPALength {
		return false
	}
	return vpaRegex.MatchString(vpa)
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	// Trim whitespace
	s = strings.TrimSpace(s)

	// Limit length
	if len(s) > maxLen {
		s = s[:maxLen]
	}

	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	return s
}

// SanitizeVPA normalizes a UPI identifier for lookups
func SanitizeVPA(vpa string) string {
	return strings.ToLower(strings.TrimSpace(vpa))
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidVPA checks if a field is a plausibly well-formed VPA
func ValidVPA(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !IsValidVPA(value) {
			return &ValidationError{Field: field, Message: "must be a UPI identifier (5-50 chars, letters, digits, . @ _ -)"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// VPAParamMiddleware validates the :vpa URL parameter on routes that use it.
// Apply to route groups that include :vpa params to reject malformed
// identifiers early.
func VPAParamMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		vpa := c.Param("vpa")
		if vpa != "" && !IsValidVPA(vpa) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_vpa",
				"message": "vpa must be a UPI identifier (5-50 chars, letters, digits, . @ _ -)",
			})
			return
		}
		c.Next()
	}
}

// ValidAmount checks if a value is a valid rupee amount (must be positive)
func ValidAmount(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		// Should be a positive decimal number with at most one decimal point
		decimalCount := 0
		hasNonZero := false
		for i, c := range value {
			if c == '.' {
				decimalCount++
				if decimalCount > 1 {
					return &ValidationError{Field: field, Message: "invalid amount format"}
				}
				if i == 0 || i == len(value)-1 {
					return &ValidationError{Field: field, Message: "invalid amount format"}
				}
				continue
			}
			if c < '0' || c > '9' {
				return &ValidationError{Field: field, Message: "invalid amount format"}
			}
			if c != '0' {
				hasNonZero = true
			}
		}
		if !hasNonZero {
			return &ValidationError{Field: field, Message: "amount must be greater than zero"}
		}
		return nil
	}
}
