package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// messages maps "Field.tag" or "Field" to the text shown to the user.
type messages map[string]string

// formErrors validates s and returns one user facing message per failed field.
func formErrors(v *validator.Validate, s interface{}, msgs messages) []string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		if m, ok := msgs[e.Field()+"."+e.Tag()]; ok {
			out = append(out, m)
		} else if m, ok := msgs[e.Field()]; ok {
			out = append(out, m)
		} else {
			out = append(out, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
	}
	return out
}
