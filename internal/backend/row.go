package backend

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// String возвращает значение колонки как строку; отсутствующее значение даёт "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool возвращает значение логической колонки.
func (r Row) Bool(col string) bool {
	v, _ := r[col].(bool)
	return v
}

// Int возвращает значение целочисленной колонки.
func (r Row) Int(col string) int {
	switch v := r[col].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Time возвращает значение колонки времени.
func (r Row) Time(col string) time.Time {
	v, _ := r[col].(time.Time)
	return v
}

// Decimal возвращает значение числовой колонки.
func (r Row) Decimal(col string) decimal.Decimal {
	switch v := r[col].(type) {
	case decimal.Decimal:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	default:
		return decimal.Zero
	}
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
