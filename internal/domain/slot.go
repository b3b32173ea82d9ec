package domain

import "time"

// AvailableSlot represents a candidate bookable time slot derived from
// configuration, not yet reserved
type AvailableSlot struct {
	Start           time.Time
	DurationMinutes int
}

// End returns the exclusive end instant of the slot interval
func (s AvailableSlot) End() time.Time {
	return s.Start.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// OverlapsBooking reports whether the slot overlaps an existing booking.
// Half-open intervals: back-to-back slots that exactly touch a booking
// are NOT considered conflicting
func (s AvailableSlot) OverlapsBooking(b *Booking) bool {
	return s.Start.Before(b.End()) && s.End().After(b.AppointmentStart)
}
