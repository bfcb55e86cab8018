package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/avc/frete-console/internal/utils/cpfcnpj"
	"github.com/go-playground/validator/v10"
)

var (
	cepPattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	states     = map[string]bool{
		"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true, "DF": true,
		"ES": true, "GO": true, "MA": true, "MT": true, "MS": true, "MG": true, "PA": true,
		"PB": true, "PR": true, "PE": true, "PI": true, "RJ": true, "RN": true, "RS": true,
		"RO": true, "RR": true, "SC": true, "SP": true, "SE": true, "TO": true,
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В ошибках используем имена полей из JSON, их видит форма
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	mustRegister(v, "cpfcnpj", func(fl validator.FieldLevel) bool {
		return cpfcnpj.Validate(fl.Field().String())
	})
	mustRegister(v, "cep", func(fl validator.FieldLevel) bool {
		return cepPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "uf", func(fl validator.FieldLevel) bool {
		return states[strings.ToUpper(fl.Field().String())]
	})

	v.RegisterStructValidation(carrierFormRules, CarrierForm{})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// FieldError ошибка конкретного поля формы
type FieldError struct {
	Field   string `json:"campo"`
	Message string `json:"mensagem"`
}

// Errors набор ошибок формы; показывается inline по полям
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has проверяет наличие ошибки для поля (полный путь, например "endereco.cep")
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Struct валидирует запрос по тегам validate. Возвращает Errors или nil.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validation: %w", err)
	}

	result := make(Errors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		result = append(result, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return result
}

// fieldPath отрезает имя корневой структуры: "ClientRequest.endereco.cep" -> "endereco.cep"
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório"
	case "email":
		return "E-mail inválido"
	case "cpfcnpj":
		return "CPF/CNPJ inválido"
	case "cep":
		return "CEP inválido"
	case "uf":
		return "UF inválida"
	case "gt":
		return "Deve ser maior que " + fe.Param()
	case "gte":
		return "Deve ser no mínimo " + fe.Param()
	case "lte":
		return "Deve ser no máximo " + fe.Param()
	case "min":
		return "Mínimo de " + fe.Param() + " caracteres"
	case "max":
		return "Máximo de " + fe.Param() + " caracteres"
	case "oneof":
		return "Valor deve ser um de: " + fe.Param()
	case "datetime":
		return "Data inválida"
	case "uuid":
		return "Identificador inválido"
	default:
		return "Valor inválido"
	}
}
