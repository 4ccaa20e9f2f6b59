package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/storefront-go/apperror"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names ("email") instead of Go names ("Email").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// WriteJSON sends data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// WriteError converts err into an AppError and writes it. Errors that are not
// AppErrors become a generic 500 so internal details never reach the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("An unexpected error occurred.", err)
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", appErr.StatusCode(),
			"code", appErr.Code,
			"error", appErr.Error(),
		)
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// DecodeJSON reads the request body into dst and runs struct validation.
// Any failure is returned as a ValidationError or BadRequestError.
func DecodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewBadRequestError("Request body is required.", err)
		}
		return apperror.NewBadRequestError("Invalid request body.", err)
	}
	return ValidateStruct(dst)
}

// ValidateStruct runs validator tags on v.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperror.NewValidationError(describeValidation(verrs), err)
		}
		return apperror.NewValidationError("Invalid request.", err)
	}
	return nil
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
