package account

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/conta/internal/account"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return account.ValidCPF(account.NormalizeCPF(fl.Field().String()))
	})

	return v
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// bind decodes the JSON body into T and validates it. On failure the problem response is already
// written and ok is false.
func bind[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid request body", err.Error(), nil)
		return req, false
	}

	if err := validate.Struct(req); err != nil {
		var errs []fieldError

		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
			}
		}

		writeProblem(w, r, http.StatusBadRequest, "Validation failed", "request body failed validation", errs)

		return req, false
	}

	return req, true
}
