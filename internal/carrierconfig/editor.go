// Package carrierconfig редактор настроек перевозчиков клиента.
package carrierconfig

import (
	"errors"
	"fmt"

	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
)

var (
	ErrUnknownCarrier  = errors.New("carrier is not in the editor")
	ErrInactiveCarrier = errors.New("carrier is not active")
)

// RowState состояние строки перевозчика
type RowState string

const (
	StateInactive           RowState = "inativo"
	StateActiveUnconfigured RowState = "ativo_sem_configuracao"
	StateActiveConfigured   RowState = "ativo_configurado"
)

// Row строка редактора
type Row struct {
	Config   domain.CarrierConfig `json:"configuracao"`
	State    RowState             `json:"estado"`
	Expanded bool                 `json:"expandido"`
}

// Edit изменение строки, пришедшее из формы консоли
type Edit struct {
	CarrierID string                  `json:"transportadora_id"`
	Active    bool                    `json:"ativo"`
	Form      *validation.CarrierForm `json:"formulario,omitempty"`
}

// Editor держит строки перевозчиков одного клиента; не потокобезопасен
type Editor struct {
	rows              []Row
	index             map[string]int
	requireSizeLimits bool
}

// NewEditor строит редактор из каталога и сохраненных настроек клиента.
// Настройки перевозчиков, которых нет в каталоге, сохраняются в конце списка.
func NewEditor(catalogue []domain.Carrier, configured []domain.CarrierConfig, requireSizeLimits bool) *Editor {
	e := &Editor{
		rows:              make([]Row, 0, len(catalogue)),
		index:             make(map[string]int, len(catalogue)),
		requireSizeLimits: requireSizeLimits,
	}

	for _, carrier := range catalogue {
		e.add(domain.CarrierConfig{
			CarrierID:     carrier.ID,
			CarrierName:   carrier.Name,
			SurchargeType: domain.SurchargeFixed,
		})
	}

	for _, cfg := range configured {
		i, ok := e.index[cfg.CarrierID]
		if !ok {
			e.add(cfg)
			continue
		}
		name := e.rows[i].Config.CarrierName
		e.rows[i].Config = cfg
		if cfg.CarrierName == "" {
			e.rows[i].Config.CarrierName = name
		}
	}

	return e
}

func (e *Editor) add(cfg domain.CarrierConfig) {
	e.index[cfg.CarrierID] = len(e.rows)
	e.rows = append(e.rows, Row{Config: cfg})
}

func (e *Editor) row(id string) (*Row, error) {
	i, ok := e.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCarrier, id)
	}
	return &e.rows[i], nil
}

// Rows строки с вычисленным состоянием
func (e *Editor) Rows() []Row {
	rows := make([]Row, len(e.rows))
	for i, r := range e.rows {
		r.State = stateOf(r.Config)
		rows[i] = r
	}
	return rows
}

// State состояние строки
func (e *Editor) State(id string) (RowState, error) {
	r, err := e.row(id)
	if err != nil {
		return "", err
	}
	return stateOf(r.Config), nil
}

func stateOf(cfg domain.CarrierConfig) RowState {
	switch {
	case !cfg.Active:
		return StateInactive
	case cfg.SurchargeValue > 0:
		return StateActiveConfigured
	default:
		return StateActiveUnconfigured
	}
}

// Toggle включает или выключает перевозчика.
// Выключенный перевозчик не попадает в Output, даже если был настроен.
func (e *Editor) Toggle(id string) error {
	r, err := e.row(id)
	if err != nil {
		return err
	}
	r.Config.Active = !r.Config.Active
	if !r.Config.Active {
		r.Expanded = false
	}
	return nil
}

// Expand раскрывает форму строки, заполненную текущими значениями
func (e *Editor) Expand(id string) (validation.CarrierForm, error) {
	r, err := e.row(id)
	if err != nil {
		return validation.CarrierForm{}, err
	}
	if !r.Config.Active {
		return validation.CarrierForm{}, fmt.Errorf("%w: %s", ErrInactiveCarrier, id)
	}
	r.Expanded = true
	return validation.FormFromConfig(r.Config, e.requireSizeLimits), nil
}

// Apply проверяет форму и переносит ее в строку; при ошибке строка не меняется
func (e *Editor) Apply(id string, form validation.CarrierForm) error {
	r, err := e.row(id)
	if err != nil {
		return err
	}
	if !r.Config.Active {
		return fmt.Errorf("%w: %s", ErrInactiveCarrier, id)
	}

	form.RequireSizeLimits = e.requireSizeLimits
	if err := validation.Struct(form); err != nil {
		return err
	}

	form.ApplyTo(&r.Config)
	r.Expanded = false
	return nil
}

// Collapse закрывает форму без изменений
func (e *Editor) Collapse(id string) error {
	r, err := e.row(id)
	if err != nil {
		return err
	}
	r.Expanded = false
	return nil
}

// ApplyEdits применяет изменения формы консоли по порядку.
// Ошибки полей собираются с префиксом строки.
func (e *Editor) ApplyEdits(edits []Edit) error {
	var errs validation.Errors
	for i, edit := range edits {
		r, err := e.row(edit.CarrierID)
		if err != nil {
			return err
		}
		if r.Config.Active != edit.Active {
			if err := e.Toggle(edit.CarrierID); err != nil {
				return err
			}
		}
		if edit.Form == nil || !edit.Active {
			continue
		}

		if err := e.Apply(edit.CarrierID, *edit.Form); err != nil {
			var formErrs validation.Errors
			if !errors.As(err, &formErrs) {
				return err
			}
			for _, fe := range formErrs {
				fe.Field = fmt.Sprintf("transportadoras[%d].%s", i, fe.Field)
				errs = append(errs, fe)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Output полный массив активных настроек для сохранения целиком
func (e *Editor) Output() []domain.CarrierConfig {
	out := make([]domain.CarrierConfig, 0, len(e.rows))
	for _, r := range e.rows {
		if r.Config.Active {
			out = append(out, r.Config)
		}
	}
	return out
}

// Incomplete id активных перевозчиков без надбавки
func (e *Editor) Incomplete() []string {
	var ids []string
	for _, r := range e.rows {
		if stateOf(r.Config) == StateActiveUnconfigured {
			ids = append(ids, r.Config.CarrierID)
		}
	}
	return ids
}
