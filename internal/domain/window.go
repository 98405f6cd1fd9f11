package domain

import (
	"fmt"
	"time"
)

// Window is the reporting period: the calendar month containing Now, in the configured location.
type Window struct {
	Now   time.Time
	Since time.Time
}

// NewWindow builds the window for the month containing now, evaluated in loc.
func NewWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return Window{
		Now:   local,
		Since: time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc),
	}
}

// Contains reports whether t falls in the same calendar month (and year) as the window.
func (w Window) Contains(t time.Time) bool {
	local := t.In(w.Now.Location())
	return local.Year() == w.Now.Year() && local.Month() == w.Now.Month()
}

// MonthFilename returns the report file name for the window, e.g. "03 - March.md".
func (w Window) MonthFilename(ext string) string {
	return fmt.Sprintf("%02d - %s%s", int(w.Now.Month()), w.Now.Month().String(), ext)
}
