// Package hours models a restaurant's weekly opening hours.
package hours

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ashendes/restaurant-admin/internal/models"
)

const clockLayout = "15:04"

// Defaults used when a restaurant has no hours configured
const (
	DefaultOpen  = "08:00"
	DefaultClose = "20:00"
)

var (
	// ErrIncomplete is returned when a week does not list all seven days once
	ErrIncomplete = errors.New("business hours must list each day of the week once")
	// ErrBadClock is returned for a time not in HH:MM form
	ErrBadClock = errors.New("time must be HH:MM")
	// ErrCloseBeforeOpen is returned when an open day closes at or before it opens
	ErrCloseBeforeOpen = errors.New("closing time must be after opening time")
)

// Week is one entry per weekday, indexed by day (0=Sunday)
type Week []models.OpeningHours

// Default returns every day open 08:00 to 20:00
func Default() Week {
	w := make(Week, 7)
	for d := range w {
		w[d] = models.OpeningHours{Day: d, Open: DefaultOpen, Close: DefaultClose}
	}
	return w
}

// FromRestaurant returns the restaurant's hours, or Default when none are set
func FromRestaurant(r models.Restaurant) Week {
	if len(r.OpeningHours) == 0 {
		return Default()
	}
	w := append(Week(nil), r.OpeningHours...)
	sort.Slice(w, func(i, j int) bool { return w[i].Day < w[j].Day })
	return w
}

// DayName returns the English weekday name for day
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return time.Weekday(day).String()
}

// Validate checks that every day appears once and open days close after they open
func (w Week) Validate() error {
	if len(w) != 7 {
		return ErrIncomplete
	}
	seen := make(map[int]bool, 7)
	for _, h := range w {
		if h.Day < 0 || h.Day > 6 || seen[h.Day] {
			return ErrIncomplete
		}
		seen[h.Day] = true

		if h.IsClosed {
			continue
		}
		open, err := parseClock(h.Open)
		if err != nil {
			return fmt.Errorf("%s opening: %w", DayName(h.Day), err)
		}
		closing, err := parseClock(h.Close)
		if err != nil {
			return fmt.Errorf("%s closing: %w", DayName(h.Day), err)
		}
		if closing <= open {
			return fmt.Errorf("%s: %w", DayName(h.Day), ErrCloseBeforeOpen)
		}
	}
	return nil
}

// SetDay replaces the open/close times for day
func (w Week) SetDay(day int, open, closing string) Week {
	for i := range w {
		if w[i].Day == day {
			w[i].Open = open
			w[i].Close = closing
		}
	}
	return w
}

// ToggleClosed flips the closed flag for day
func (w Week) ToggleClosed(day int) Week {
	for i := range w {
		if w[i].Day == day {
			w[i].IsClosed = !w[i].IsClosed
		}
	}
	return w
}

// IsOpenAt reports whether t falls inside the hours of t's weekday, in t's location
func (w Week) IsOpenAt(t time.Time) bool {
	day := int(t.Weekday())
	for _, h := range w {
		if h.Day != day || h.IsClosed {
			continue
		}
		open, err := parseClock(h.Open)
		if err != nil {
			return false
		}
		closing, err := parseClock(h.Close)
		if err != nil {
			return false
		}
		now := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
		return now >= open && now < closing
	}
	return false
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrBadClock)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
