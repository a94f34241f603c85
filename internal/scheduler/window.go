package scheduler

import "time"

// Window is the daily on-hours range [OnHour, OffHour) in local time. Equal
// hours mean always on. OnHour after OffHour wraps past midnight.
type Window struct {
	OnHour  int
	OffHour int
}

// AlwaysOn reports whether the window never turns the display off.
func (w Window) AlwaysOn() bool {
	return w.OnHour == w.OffHour
}

// Active reports whether t falls inside the window.
func (w Window) Active(t time.Time) bool {
	if w.AlwaysOn() {
		return true
	}
	h := t.Hour()
	if w.OnHour < w.OffHour {
		return h >= w.OnHour && h < w.OffHour
	}
	return h >= w.OnHour || h < w.OffHour
}

// NextOn returns the first on-hour boundary strictly after t.
func (w Window) NextOn(t time.Time) time.Time {
	y, m, d := t.Date()
	next := time.Date(y, m, d, w.OnHour, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = time.Date(y, m, d+1, w.OnHour, 0, 0, 0, t.Location())
	}
	return next
}
