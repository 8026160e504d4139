package response

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FieldErrors flattens ozzo validation errors into field -> message.
// ok is false when err carries no field errors.
func FieldErrors(err error) (fields map[string]string, ok bool) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields = make(map[string]string, len(verrs))
	for field, fieldErr := range verrs {
		fields[field] = fieldErr.Error()
	}
	return fields, true
}
