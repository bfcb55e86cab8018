package validation

import (
	"github.com/avc/frete-console/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Минимальные размеры посылки, когда ограничения обязательны
const (
	MinDimensionCM = 2.0
	MinWeightGrams = 100.0
	MaxPercentage  = 100.0
)

// CarrierForm форма настройки перевозчика в редакторе
type CarrierForm struct {
	SurchargeType  domain.SurchargeType `json:"tipo_acrescimo" validate:"required,oneof=VALOR PERCENTUAL"`
	SurchargeValue *float64             `json:"valor_acrescimo" validate:"required,gt=0"`
	MaxHeight      *float64             `json:"altura_maxima" validate:"omitempty,gt=0"`
	MaxWidth       *float64             `json:"largura_maxima" validate:"omitempty,gt=0"`
	MaxLength      *float64             `json:"comprimento_maximo" validate:"omitempty,gt=0"`
	MaxWeight      *float64             `json:"peso_maximo" validate:"omitempty,gt=0"`

	// Задается настройками клиента, не пользователем
	RequireSizeLimits bool `json:"-"`
}

// carrierFormRules проверки, зависящие от нескольких полей
func carrierFormRules(sl validator.StructLevel) {
	form := sl.Current().Interface().(CarrierForm)

	if form.SurchargeType == domain.SurchargePercentage && form.SurchargeValue != nil && *form.SurchargeValue > MaxPercentage {
		sl.ReportError(form.SurchargeValue, "valor_acrescimo", "SurchargeValue", "lte", "100")
	}

	if !form.RequireSizeLimits {
		return
	}

	dimensions := []struct {
		value *float64
		name  string
		field string
	}{
		{form.MaxHeight, "altura_maxima", "MaxHeight"},
		{form.MaxWidth, "largura_maxima", "MaxWidth"},
		{form.MaxLength, "comprimento_maximo", "MaxLength"},
	}
	for _, d := range dimensions {
		if d.value == nil {
			sl.ReportError(d.value, d.name, d.field, "required", "")
		} else if *d.value < MinDimensionCM {
			sl.ReportError(d.value, d.name, d.field, "gte", "2")
		}
	}

	if form.MaxWeight == nil {
		sl.ReportError(form.MaxWeight, "peso_maximo", "MaxWeight", "required", "")
	} else if *form.MaxWeight < MinWeightGrams {
		sl.ReportError(form.MaxWeight, "peso_maximo", "MaxWeight", "gte", "100")
	}
}

// FormFromConfig заполняет форму из настройки перевозчика
func FormFromConfig(cfg domain.CarrierConfig, requireSizeLimits bool) CarrierForm {
	form := CarrierForm{
		SurchargeType:     cfg.SurchargeType,
		MaxHeight:         cfg.MaxHeight,
		MaxWidth:          cfg.MaxWidth,
		MaxLength:         cfg.MaxLength,
		MaxWeight:         cfg.MaxWeight,
		RequireSizeLimits: requireSizeLimits,
	}
	if form.SurchargeType == "" {
		form.SurchargeType = domain.SurchargeFixed
	}
	if cfg.SurchargeValue > 0 {
		v := cfg.SurchargeValue
		form.SurchargeValue = &v
	}
	return form
}

// ApplyTo переносит проверенную форму в настройку перевозчика
func (f CarrierForm) ApplyTo(cfg *domain.CarrierConfig) {
	cfg.SurchargeType = f.SurchargeType
	if f.SurchargeValue != nil {
		cfg.SurchargeValue = *f.SurchargeValue
	}
	cfg.MaxHeight = f.MaxHeight
	cfg.MaxWidth = f.MaxWidth
	cfg.MaxLength = f.MaxLength
	cfg.MaxWeight = f.MaxWeight
}
