package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday indexes the five teaching days, Monday = 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// DaysPerWeek is fixed; weekends are never scheduled.
const DaysPerWeek = 5

var weekdayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// String returns the English day name.
func (d Weekday) String() string {
	if d < 0 || int(d) >= DaysPerWeek {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// DayNames lists the weekday names in scan order.
func DayNames() []string {
	names := make([]string, DaysPerWeek)
	copy(names, weekdayNames[:])
	return names
}

// Slot is a (day, period) coordinate in the weekly grid. Period is zero based.
type Slot struct {
	Day    Weekday `json:"day" yaml:"day"`
	Period int     `json:"period" yaml:"period"`
}

// Label renders the slot as "Monday-P1" (periods are shown one based).
func (s Slot) Label() string {
	return fmt.Sprintf("%s-P%d", s.Day, s.Period+1)
}

func (s Slot) within(periodsPerDay int) bool {
	return s.Day >= 0 && int(s.Day) < DaysPerWeek && s.Period >= 0 && s.Period < periodsPerDay
}

// ParseSlotLabel converts a "Day-Pn" label into a Slot. Day names are case
// insensitive and may be abbreviated to three letters.
func ParseSlotLabel(raw string) (Slot, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("slot label %q: expected Day-Pn", raw)
	}
	day, ok := parseWeekday(parts[0])
	if !ok {
		return Slot{}, fmt.Errorf("slot label %q: unknown day %q", raw, parts[0])
	}
	period := strings.TrimSpace(parts[1])
	if len(period) < 2 || (period[0] != 'P' && period[0] != 'p') {
		return Slot{}, fmt.Errorf("slot label %q: expected period like P1", raw)
	}
	n, err := strconv.Atoi(period[1:])
	if err != nil || n < 1 {
		return Slot{}, fmt.Errorf("slot label %q: invalid period %q", raw, period)
	}
	return Slot{Day: day, Period: n - 1}, nil
}

func parseWeekday(raw string) (Weekday, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if len(name) < 3 {
		return 0, false
	}
	for i, full := range weekdayNames {
		lower := strings.ToLower(full)
		if name == lower || name == lower[:3] {
			return Weekday(i), true
		}
	}
	return 0, false
}
