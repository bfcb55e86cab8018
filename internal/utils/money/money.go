package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount возвращается для значений, которые нельзя однозначно привести к центам
var ErrInvalidAmount = errors.New("invalid monetary amount")

var hundred = decimal.NewFromInt(100)

// Cents денежная сумма в минимальных единицах (сентаво)
type Cents int64

// FromDecimal переводит decimal в центы; больше двух знаков после запятой - ошибка
func FromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Mul(hundred)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than two decimal places", ErrInvalidAmount, d.String())
	}
	return Cents(scaled.IntPart()), nil
}

// FromFloat переводит значение из JSON number в центы с округлением до цента
func FromFloat(f float64) Cents {
	return Cents(decimal.NewFromFloat(f).Mul(hundred).Round(0).IntPart())
}

// Parse разбирает сумму в формате "150.00", "150,00", "1.234,56" или "1,234.56".
// Если в строке есть оба разделителя, десятичным считается последний.
func Parse(s string) (Cents, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(raw, ",") > 1 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		raw = strings.Replace(raw, ",", ".", 1)
	case strings.Count(raw, ".") > 1:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return FromDecimal(d)
}

// Decimal возвращает сумму как decimal в реалах
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Abs модуль суммы
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// String каноническое представление с точкой: "150.00"
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Format представление для интерфейса: "R$ 1.234,56"
func (c Cents) Format() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}

	units := int64(v) / 100
	frac := int64(v) % 100

	digits := fmt.Sprintf("%d", units)
	var b strings.Builder
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}

	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), frac)
}

// MarshalJSON сериализует сумму как JSON number с двумя знаками
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON принимает как number, так и string
func (c *Cents) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := Parse(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
	}
	// Числа из backend иногда приходят с артефактами float (150.0000001)
	*c = Cents(d.Mul(hundred).Round(0).IntPart())
	return nil
}
