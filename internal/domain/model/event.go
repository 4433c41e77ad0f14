package model

// Ability identifies the skill behind an event.
type Ability struct {
	Name string `json:"name"`
	GUID int    `json:"guid"`
}

// CastEvent is one entry of the hostile casts stream.
type CastEvent struct {
	Timestamp int64    `json:"timestamp"`
	Type      string   `json:"type"`
	SourceID  *int     `json:"sourceID,omitempty"`
	Ability   *Ability `json:"ability,omitempty"`
	Duration  *int64   `json:"duration,omitempty"`
}

// CastDuration returns the cast bar length, zero when the event carries none.
func (e CastEvent) CastDuration() int64 {
	if e.Duration == nil {
		return 0
	}
	return *e.Duration
}

// DamageEvent is one entry of the damage-taken stream.
type DamageEvent struct {
	Timestamp int64    `json:"timestamp"`
	Type      string   `json:"type"`
	Ability   *Ability `json:"ability,omitempty"`
	TargetID  *int     `json:"targetID,omitempty"`
	Amount    int64    `json:"amount"`
}

// DamageType is the only damage-taken event type turned into markers.
const DamageType = "damage"

// SummaryEvent is one entry of the summary stream. Only targetability
// updates carry Targetable.
type SummaryEvent struct {
	Timestamp  int64  `json:"timestamp"`
	Type       string `json:"type"`
	Targetable *int   `json:"targetable,omitempty"`
}
