package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// FieldError ошибка одного поля запроса
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors набор ошибок полей запроса
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Error())
	}
	return strings.Join(messages, "; ")
}

// Validator проверяет DTO запросов по тегам validate
type Validator struct {
	validate *validator.Validate
}

// New создает валидатор с дополнительными правилами: hhmm, ymd, session_type
func New() (*Validator, error) {
	v := validator.New()

	// В ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"hhmm":         validateTimeOfDay,
		"ymd":          validateDate,
		"session_type": validateSessionType,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}

	return &Validator{validate: v}, nil
}

// MustNew создает валидатор и паникует при ошибке регистрации правил
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct проверяет структуру; при нарушениях возвращает Errors
func (v *Validator) Struct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := types.NewTimeStringFromString(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateFormat, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateSessionType(fl validator.FieldLevel) bool {
	return domain.IsValidSessionType(domain.SessionType(fl.Field().String()))
}

func translate(errs validator.ValidationErrors) Errors {
	result := make(Errors, 0, len(errs))

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = "is required"
		case "max":
			message = fmt.Sprintf("must be at most %s characters", err.Param())
			if err.Kind() == reflect.Map {
				message = fmt.Sprintf("must have at most %s entries", err.Param())
			}
		case "email":
			message = "must be a valid email address"
		case "hhmm":
			message = "must be a time in HH:MM format"
		case "ymd":
			message = "must be a date in YYYY-MM-DD format"
		case "session_type":
			message = fmt.Sprintf("must be one of %s, %s", domain.SessionOnline, domain.SessionPresencial)
		case "timezone":
			message = "must be an IANA time zone"
		case "oneof":
			message = fmt.Sprintf("must be one of %s", err.Param())
		}

		result = append(result, FieldError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return result
}
