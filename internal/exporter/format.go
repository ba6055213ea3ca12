package exporter

import (
	"time"

	"offgascli/pkg/contracts/domain"
)

// TimestampLayout is the timestamp format of exported tables.
const TimestampLayout = "2006-01-02 15:04:05"

// cell is one exported value: a number, a timestamp or text.
type cell struct {
	value  domain.Value
	time   time.Time
	isTime bool
	text   string
}

func num(v domain.Value) cell { return cell{value: v} }
func stamp(t time.Time) cell { return cell{time: t, isTime: true} }
func integer(i int) cell { return cell{value: domain.Num(float64(i))} }
func textCell(s string) cell { return cell{text: s, value: domain.Blank()} }

// String formats the cell for CSV output. Blank cells are empty and
// undefined numbers are written as NaN.
func (c cell) String() string {
	switch {
	case c.isTime:
		return formatTime(c.time)
	case c.text != "":
		return c.text
	default:
		return c.value.String()
	}
}

// Any returns the cell for spreadsheet output; missing values are nil.
func (c cell) Any() interface{} {
	switch {
	case c.isTime:
		if c.time.IsZero() {
			return nil
		}
		return c.time
	case c.text != "":
		return c.text
	case c.value.IsDefined():
		return c.value.Float()
	default:
		return nil
	}
}

// formatTime formats a timestamp; the zero time is empty.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}
