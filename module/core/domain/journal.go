package domain

import "time"

type JournalKind string

const (
	JournalTransition  JournalKind = "transition"
	JournalAlert       JournalKind = "alert"
	JournalAcknowledge JournalKind = "acknowledge"
	JournalSuppression JournalKind = "suppression"
)

// JournalEntry is one audit record. Detail holds the direction, alert kind,
// ack action or suppression value depending on Kind.
type JournalEntry struct {
	ID         string      `json:"id"`
	Kind       JournalKind `json:"kind"`
	Detail     string      `json:"detail"`
	Lat        float64     `json:"latitude"`
	Lon        float64     `json:"longitude"`
	Title      string      `json:"title,omitempty"`
	Message    string      `json:"message,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

type JournalQuery struct {
	Limit int
}
