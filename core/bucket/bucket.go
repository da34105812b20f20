// Package bucket builds contiguous, zero-filled calendar buckets and routes
// time-stamped records into them.
package bucket

import (
	"fmt"
	"time"

	"github.com/huangsam/pmpulse/schema"
)

// Key layouts.
const (
	monthLayout = "2006-01"
	weekLayout  = "2006-01-02"
)

// Slot is one calendar bucket covering [Start, End).
type Slot struct {
	Key   string    // sortable, year-aware routing key
	Label string    // display label
	Start time.Time // inclusive, UTC
	End   time.Time // exclusive, UTC
}

// monthStart returns midnight UTC on the first day of t's month.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// weekStart returns midnight UTC on the Sunday that starts t's week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// MonthKey returns the routing key of the month containing t.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// WeekKey returns the routing key of the week containing t.
func WeekKey(t time.Time) string {
	return weekStart(t).Format(weekLayout)
}

// WeekLabel renders a week anchor for display.
// The legacy style is month/day of the anchor and is not year-aware.
// The ISO style uses the ISO week of the anchor's Monday.
func WeekLabel(anchor time.Time, style schema.WeekLabelStyle) string {
	if style == schema.ISOWeekLabels {
		year, week := anchor.AddDate(0, 0, 1).ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return fmt.Sprintf("%d/%d", int(anchor.Month()), anchor.Day())
}

// Months returns the last n months ending with the month containing now, oldest first.
func Months(now time.Time, n int) []Slot {
	if n <= 0 {
		return nil
	}
	last := monthStart(now)
	slots := make([]Slot, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := last.AddDate(0, -i, 0)
		key := start.Format(monthLayout)
		slots = append(slots, Slot{
			Key:   key,
			Label: key,
			Start: start,
			End:   start.AddDate(0, 1, 0),
		})
	}
	return slots
}

// Weeks returns the last n weeks ending with the week containing now, oldest first.
func Weeks(now time.Time, n int, style schema.WeekLabelStyle) []Slot {
	if n <= 0 {
		return nil
	}
	last := weekStart(now)
	slots := make([]Slot, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := last.AddDate(0, 0, -7*i)
		slots = append(slots, Slot{
			Key:   start.Format(weekLayout),
			Label: WeekLabel(start, style),
			Start: start,
			End:   start.AddDate(0, 0, 7),
		})
	}
	return slots
}

// Window returns the inclusive lower bound covered by slots, or the zero time when empty.
func Window(slots []Slot) time.Time {
	if len(slots) == 0 {
		return time.Time{}
	}
	return slots[0].Start
}

// Series holds one zero-initialized value per slot.
type Series[T any] struct {
	slots  []Slot
	values []T
}

// NewSeries builds a series with a zero value of T in every slot.
func NewSeries[T any](slots []Slot) *Series[T] {
	return &Series[T]{
		slots:  slots,
		values: make([]T, len(slots)),
	}
}

// find returns the index of the slot containing t, or -1.
func (s *Series[T]) find(t time.Time) int {
	if len(s.slots) == 0 {
		return -1
	}
	t = t.UTC()
	if t.Before(s.slots[0].Start) || !t.Before(s.slots[len(s.slots)-1].End) {
		return -1
	}
	lo, hi := 0, len(s.slots)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case t.Before(s.slots[mid].Start):
			hi = mid - 1
		case !t.Before(s.slots[mid].End):
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// Add folds a record stamped at t into its slot. It returns false and drops
// the record when t falls outside every slot.
func (s *Series[T]) Add(t time.Time, fold func(*T)) bool {
	i := s.find(t)
	if i < 0 {
		return false
	}
	fold(&s.values[i])
	return true
}

// Len returns the number of slots.
func (s *Series[T]) Len() int {
	return len(s.slots)
}

// Slot returns the i-th slot.
func (s *Series[T]) Slot(i int) Slot {
	return s.slots[i]
}

// Value returns the i-th value.
func (s *Series[T]) Value(i int) T {
	return s.values[i]
}

// Map converts every slot and its value into an output point, in slot order.
func Map[T, P any](s *Series[T], fn func(Slot, T) P) []P {
	out := make([]P, len(s.slots))
	for i, slot := range s.slots {
		out[i] = fn(slot, s.values[i])
	}
	return out
}
