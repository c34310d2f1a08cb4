package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report koanf paths so errors name the key users actually set
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks tag constraints and cross-field rules, returning the first
// violation as a *ConfigError.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fieldError(validationErrors[0])
		}
		return err
	}

	return validateWebClient(&cfg.WebClient)
}

func validateWebClient(cfg *WebClientConfig) error {
	if cfg.RetryPolicy.MaxBackoff < cfg.RetryPolicy.InitialBackoff {
		return NewValidationError("webclient.retry.maxbackoff",
			fmt.Sprintf("must not be less than initialbackoff (%v < %v)", cfg.RetryPolicy.MaxBackoff, cfg.RetryPolicy.InitialBackoff))
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst == 0 {
		return NewValidationError("webclient.ratelimit.burst", "must be at least 1 when rps is set")
	}
	return nil
}

// fieldError converts a validator failure into a ConfigError
func fieldError(fe validator.FieldError) *ConfigError {
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field, envVarName(field), field)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "url":
		return NewValidationError(field, fmt.Sprintf("must be an absolute url, got %q", fmt.Sprint(fe.Value())))
	default:
		return NewValidationError(field, fmt.Sprintf("failed %s=%s check (got %v)", fe.Tag(), fe.Param(), fe.Value()))
	}
}

// fieldPath drops the root struct name: Config.webclient.retry.jitter -> webclient.retry.jitter
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return path
}

func envVarName(field string) string {
	return strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
}
