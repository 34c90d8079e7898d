package domain

import "time"

type Visibility string

const (
	VisibilityForeground Visibility = "foreground"
	VisibilityBackground Visibility = "background"
)

// ParseVisibility reports false for anything other than the two known values.
func ParseVisibility(s string) (Visibility, bool) {
	switch v := Visibility(s); v {
	case VisibilityForeground, VisibilityBackground:
		return v, true
	}
	return "", false
}

type DispatchState string

const (
	DispatchArmed     DispatchState = "armed"
	DispatchAlertOwed DispatchState = "alert_owed"
)

type AlertKind string

const (
	// AlertInApp asks the presentation layer to show a dialog now.
	AlertInApp AlertKind = "in_app"
	// AlertDeferred asks the platform to schedule a user-facing notification.
	AlertDeferred AlertKind = "deferred"
)

// AlertRequest is what the dispatcher hands to the presentation layer. For
// deferred requests Message is the notification body.
type AlertRequest struct {
	ID       string    `json:"id"`
	Kind     AlertKind `json:"kind"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Position Position  `json:"position"`
	IssuedAt time.Time `json:"issued_at"`
}

type AckAction string

const (
	// AckGoBack only re-arms the dispatcher.
	AckGoBack AckAction = "go_back"
	// AckResetLocation re-arms and drops the reference point.
	AckResetLocation AckAction = "reset_location"
)

func ParseAckAction(s string) (AckAction, bool) {
	switch a := AckAction(s); a {
	case AckGoBack, AckResetLocation:
		return a, true
	}
	return "", false
}

// AlertText is the title/message pair used for one alert kind.
type AlertText struct {
	Title   string
	Message string
}

type AlertTexts struct {
	InApp    AlertText
	Deferred AlertText
}
