package models

import (
	"fmt"
	"strings"
)

// Travelers holds the party composition once it is known.
type Travelers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// Total returns the full party size.
func (t Travelers) Total() int {
	return t.Adults + t.Children + t.Infants
}

// IsZero reports whether no traveler information has been captured.
func (t Travelers) IsZero() bool {
	return t.Adults == 0 && t.Children == 0 && t.Infants == 0
}

// String renders the party in the canonical "2 adults, 1 child" form used
// for entity values and conflict records.
func (t Travelers) String() string {
	parts := []string{fmt.Sprintf("%d %s", t.Adults, pluralize(t.Adults, "adult", "adults"))}
	if t.Children > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", t.Children, pluralize(t.Children, "child", "children")))
	}
	if t.Infants > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", t.Infants, pluralize(t.Infants, "infant", "infants")))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// Bookings tracks which reservations the caller has already locked in.
// The engine never writes these; the session manager sets them after a
// hotel or flight is selected.
type Bookings struct {
	HotelSelected  bool `json:"hotelSelected"`
	FlightSelected bool `json:"flightSelected"`
}

// ConfidenceFloor is the lowest aggregate confidence a context may reach.
// Automatic conflict resolution erodes confidence but never below this.
const ConfidenceFloor = 0.3

// TripContext is the accumulated set of trip-planning facts for one
// session. It is passed by value across turn boundaries: the engine works
// on a copy and returns the updated value, so no mutable state is shared
// between concurrent turns.
type TripContext struct {
	DepartureCity   string     `json:"departureCity,omitempty"`
	DestinationCity string     `json:"destinationCity,omitempty"`
	StartDate       string     `json:"startDate,omitempty"`
	EndDate         string     `json:"endDate,omitempty"`
	Travelers       *Travelers `json:"travelers,omitempty"`
	Budget          string     `json:"budget,omitempty"`
	Preferences     []string   `json:"preferences,omitempty"`
	Bookings        Bookings   `json:"bookings"`

	Confidence        float64          `json:"confidence"`
	ConflictsResolved []ConflictRecord `json:"conflictsResolved,omitempty"`
}

// NewTripContext returns an empty context at full confidence.
func NewTripContext() TripContext {
	return TripContext{Confidence: 1.0}
}

// HasDestination reports whether a destination city is known.
func (c TripContext) HasDestination() bool {
	return strings.TrimSpace(c.DestinationCity) != ""
}

// HasDates reports whether a start date is known.
func (c TripContext) HasDates() bool {
	return strings.TrimSpace(c.StartDate) != ""
}

// HasTravelers reports whether the party composition is known.
func (c TripContext) HasTravelers() bool {
	return c.Travelers != nil && !c.Travelers.IsZero()
}

// HasPreference reports whether the given preference is already recorded.
// Comparison is case-insensitive.
func (c TripContext) HasPreference(pref string) bool {
	for _, p := range c.Preferences {
		if strings.EqualFold(p, pref) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Slices and the travelers pointer are copied
// so mutating the clone never leaks into the original snapshot.
func (c TripContext) Clone() TripContext {
	out := c
	if c.Travelers != nil {
		t := *c.Travelers
		out.Travelers = &t
	}
	if len(c.Preferences) > 0 {
		out.Preferences = append([]string(nil), c.Preferences...)
	}
	if len(c.ConflictsResolved) > 0 {
		out.ConflictsResolved = append([]ConflictRecord(nil), c.ConflictsResolved...)
	}
	return out
}
