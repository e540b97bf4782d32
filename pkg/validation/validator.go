package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "restaurant-orders/pkg/errors"
)

// CustomValidator - обертка над validator.Validate
type CustomValidator struct {
	validator *validator.Validate
}

// Validate проверяет структуру по тегам validate. Ошибка возвращается как
// HttpError 400, в сообщении указано первое неверное поле.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return ToHttpError(err)
	}
	return nil
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New()

	// Field names in errors follow the JSON property names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	if err := registerRules(v); err != nil {
		panic("validator rule registration failed: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// ToHttpError converts validator errors into a classified 400 error. Details
// map every failing property path to its message. Other errors are returned
// untouched.
func ToHttpError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return apperrors.NewValidationError(describe(verrs[0]), details)
}

// fieldPath drops the root struct name: "CreateOrderDTO.items[0].name" -> "items[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	path := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("property '%s' must not be null or undefined", path)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("property '%s' must contain at least %s element(s)", path, fe.Param())
		}
		return fmt.Sprintf("property '%s' must not be empty", path)
	case "gt":
		return fmt.Sprintf("property '%s' must be greater than %s", path, fe.Param())
	case "gte":
		return fmt.Sprintf("property '%s' must be at least %s", path, fe.Param())
	case "order_status":
		return fmt.Sprintf("property '%s' must be one of %s", path, strings.Join(orderStatusNames(), ", "))
	default:
		return fmt.Sprintf("property '%s' is invalid", path)
	}
}
