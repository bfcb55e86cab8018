package realtime

import (
	"encoding/json"
	"fmt"
)

// EventType тип изменения строки
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// Имена каналов
const (
	ChannelPixRecharges       = "recargas-pix-changes"
	ChannelCreditTransactions = "transacoes-credito-changes"
	ChannelSessions           = "sessoes-realtime"
)

// Таблицы backend
const (
	TablePixRecharges       = "recargas_pix"
	TableCreditTransactions = "transacoes_credito"
	TableSessions           = "sessoes"
)

// Filter фильтр подписки на изменения таблицы
type Filter struct {
	Event  EventType `json:"event"`
	Schema string    `json:"schema"`
	Table  string    `json:"table"`
	Filter string    `json:"filter,omitempty"`
}

// ClientFilter фильтр по строкам клиента: cliente_id=eq.<id>
func ClientFilter(event EventType, table, clientID string) Filter {
	return Filter{
		Event:  event,
		Schema: "public",
		Table:  table,
		Filter: "cliente_id=eq." + clientID,
	}
}

// Change изменение строки из потока
type Change struct {
	EventType EventType       `json:"eventType"`
	Table     string          `json:"table"`
	Old       json.RawMessage `json:"old"`
	New       json.RawMessage `json:"new"`
}

// UnmarshalJSON принимает обе формы изменения: клиентскую {eventType, old, new}
// и серверную {type, old_record, record}
func (c *Change) UnmarshalJSON(data []byte) error {
	var wire struct {
		EventType EventType       `json:"eventType"`
		Type      EventType       `json:"type"`
		Table     string          `json:"table"`
		Old       json.RawMessage `json:"old"`
		New       json.RawMessage `json:"new"`
		OldRecord json.RawMessage `json:"old_record"`
		Record    json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*c = Change{
		EventType: firstNonEmpty(wire.EventType, wire.Type),
		Table:     wire.Table,
		Old:       firstRecord(wire.Old, wire.OldRecord),
		New:       firstRecord(wire.New, wire.Record),
	}
	return nil
}

func firstNonEmpty(values ...EventType) EventType {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstRecord(records ...json.RawMessage) json.RawMessage {
	for _, r := range records {
		if len(r) > 0 && string(r) != "null" {
			return r
		}
	}
	return nil
}

// DecodeOld разбирает прежнее состояние строки
func (c Change) DecodeOld(v any) error {
	return decodeRecord(c.Old, v)
}

// DecodeNew разбирает новое состояние строки
func (c Change) DecodeNew(v any) error {
	return decodeRecord(c.New, v)
}

func decodeRecord(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("realtime: failed to decode record: %w", err)
	}
	return nil
}
