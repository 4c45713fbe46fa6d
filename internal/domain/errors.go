package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing API key",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrTenantNotFound = &AppError{
		Code:       "TENANT_NOT_FOUND",
		Message:    "Tenant not found",
		StatusCode: 404,
	}

	ErrTenantInactive = &AppError{
		Code:       "TENANT_INACTIVE",
		Message:    "Tenant account is inactive",
		StatusCode: 403,
	}

	ErrAPIKeyNotFound = &AppError{
		Code:       "API_KEY_NOT_FOUND",
		Message:    "API key not found",
		StatusCode: 404,
	}

	ErrAPIKeyRevoked = &AppError{
		Code:       "API_KEY_REVOKED",
		Message:    "API key has been revoked",
		StatusCode: 401,
	}

	ErrInvalidAPIKeyFormat = &AppError{
		Code:       "INVALID_API_KEY_FORMAT",
		Message:    "Invalid API key format",
		StatusCode: 401,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Billing errors
	ErrRuleNotFound = &AppError{
		Code:       "RULE_NOT_FOUND",
		Message:    "Billing rule not found",
		StatusCode: 404,
	}

	ErrInvalidRule = &AppError{
		Code:       "INVALID_RULE",
		Message:    "Billing rule failed validation",
		StatusCode: 422,
	}

	ErrPlanNotFound = &AppError{
		Code:       "PLAN_NOT_FOUND",
		Message:    "Plan not found in price table",
		StatusCode: 404,
	}

	ErrCalculationFailed = &AppError{
		Code:       "CALCULATION_FAILED",
		Message:    "Billing calculation failed",
		StatusCode: 500,
	}

	ErrActionFailed = &AppError{
		Code:       "ACTION_FAILED",
		Message:    "Rule action execution failed",
		StatusCode: 502,
	}

	ErrInvalidMetric = &AppError{
		Code:       "INVALID_METRIC",
		Message:    "Unknown usage metric",
		StatusCode: 422,
	}

	ErrInvalidPeriod = &AppError{
		Code:       "INVALID_PERIOD",
		Message:    "Invalid period format, use YYYY-MM",
		StatusCode: 422,
	}
)
