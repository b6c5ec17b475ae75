package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/soupfinance/soupfinance/internal/audit/domain"
	authdomain "github.com/soupfinance/soupfinance/internal/auth/domain"
	"github.com/soupfinance/soupfinance/internal/authorization"
	bankdomain "github.com/soupfinance/soupfinance/internal/bankaccount/domain"
	billdomain "github.com/soupfinance/soupfinance/internal/bill/domain"
	clientdomain "github.com/soupfinance/soupfinance/internal/client/domain"
	invoicedomain "github.com/soupfinance/soupfinance/internal/invoice/domain"
	ledgerdomain "github.com/soupfinance/soupfinance/internal/ledgeraccount/domain"
	organizationdomain "github.com/soupfinance/soupfinance/internal/organization/domain"
	vendordomain "github.com/soupfinance/soupfinance/internal/vendors/domain"
	"github.com/soupfinance/soupfinance/pkg/formbind"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", ""
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if fieldErr := asFieldError(err); fieldErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   fieldErr.Key,
					Code:    "invalid_value",
					Message: "invalid value: " + fieldErr.Value,
				},
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, organizationdomain.ErrForbidden),
		errors.Is(err, organizationdomain.ErrNotMember):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, ledgerdomain.ErrDuplicateCode):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, ErrTooManyRequests),
		errors.Is(err, authdomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func asFieldError(err error) *formbind.FieldError {
	var fErr *formbind.FieldError
	if errors.As(err, &fErr) && fErr != nil {
		return fErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, formbind.ErrUnknownField),
		errors.Is(err, authdomain.ErrWeakPassword):
		return true
	case isInvoiceValidationError(err),
		isBillValidationError(err),
		isClientValidationError(err),
		isVendorValidationError(err),
		isLedgerAccountValidationError(err),
		isBankAccountValidationError(err),
		isOrganizationValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidOrganization),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidClient),
		errors.Is(err, invoicedomain.ErrMissingInvoiceDate),
		errors.Is(err, invoicedomain.ErrMissingPaymentDate),
		errors.Is(err, invoicedomain.ErrNoLineItems),
		errors.Is(err, invoicedomain.ErrEmptyDescription),
		errors.Is(err, invoicedomain.ErrInvalidPercent),
		errors.Is(err, invoicedomain.ErrInvalidStatus):
		return true
	}
	return false
}

func isBillValidationError(err error) bool {
	switch {
	case errors.Is(err, billdomain.ErrInvalidOrganization),
		errors.Is(err, billdomain.ErrInvalidID),
		errors.Is(err, billdomain.ErrInvalidVendor),
		errors.Is(err, billdomain.ErrMissingBillDate),
		errors.Is(err, billdomain.ErrMissingDueDate),
		errors.Is(err, billdomain.ErrNoLineItems),
		errors.Is(err, billdomain.ErrEmptyDescription),
		errors.Is(err, billdomain.ErrInvalidPercent),
		errors.Is(err, billdomain.ErrInvalidStatus):
		return true
	}
	return false
}

func isClientValidationError(err error) bool {
	switch {
	case errors.Is(err, clientdomain.ErrInvalidOrganization),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidEmail),
		errors.Is(err, clientdomain.ErrInvalidID):
		return true
	}
	return false
}

func isVendorValidationError(err error) bool {
	switch {
	case errors.Is(err, vendordomain.ErrInvalidOrganization),
		errors.Is(err, vendordomain.ErrInvalidName),
		errors.Is(err, vendordomain.ErrInvalidEmail),
		errors.Is(err, vendordomain.ErrInvalidID):
		return true
	}
	return false
}

func isLedgerAccountValidationError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrInvalidOrganization),
		errors.Is(err, ledgerdomain.ErrInvalidCode),
		errors.Is(err, ledgerdomain.ErrInvalidName),
		errors.Is(err, ledgerdomain.ErrInvalidType),
		errors.Is(err, ledgerdomain.ErrInvalidID):
		return true
	}
	return false
}

func isBankAccountValidationError(err error) bool {
	switch {
	case errors.Is(err, bankdomain.ErrInvalidOrganization),
		errors.Is(err, bankdomain.ErrInvalidName),
		errors.Is(err, bankdomain.ErrInvalidAccountNumber),
		errors.Is(err, bankdomain.ErrInvalidID):
		return true
	}
	return false
}

func isOrganizationValidationError(err error) bool {
	switch {
	case errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidUser),
		errors.Is(err, organizationdomain.ErrInvalidOrganization),
		errors.Is(err, organizationdomain.ErrInvalidRole):
		return true
	}
	return false
}

func isAuditValidationError(err error) bool {
	switch {
	case errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, billdomain.ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, vendordomain.ErrNotFound),
		errors.Is(err, ledgerdomain.ErrNotFound),
		errors.Is(err, bankdomain.ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, formbind.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, authdomain.ErrWeakPassword):
		return "weak_password"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "no_line_items":
		return "at least one line item is required"
	case "empty_description":
		return "line item description is required"
	case "invalid_percent":
		return "percentages must be between 0 and 100"
	default:
		return "invalid value"
	}
}
