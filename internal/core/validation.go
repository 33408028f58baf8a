// AngelaMos | 2026
// validation.go

package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	return v
}

// DecodeAndValidate reads a JSON body into dst and runs struct validation.
// An empty body decodes as {}, so dst keeps its zero value and required
// fields are reported by validation. The returned error is always an
// *AppError ready for JSONError.
func DecodeAndValidate(
	r *http.Request,
	v *validator.Validate,
	dst any,
) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	err := json.NewDecoder(body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return BadRequestError("invalid request body")
	}

	if err := v.Struct(dst); err != nil {
		return ValidationError(ValidationFields(err))
	}

	return nil
}
