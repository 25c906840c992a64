package models

import "time"

// EventType names the auth events published to Kafka.
type EventType string

const (
	EventUserRegistered EventType = "auth.user.registered"
	EventUserVerified   EventType = "auth.user.verified"
	EventUserLoggedIn   EventType = "auth.user.logged_in"
	EventTokenRefreshed EventType = "auth.token.refreshed"
	EventDeviceRevoked  EventType = "auth.device.revoked"
	EventPasswordReset  EventType = "auth.password.reset"
)

// AuthEvent is the wire shape of every published auth event. UserID keys
// the Kafka message so all events for a user land in one partition.
type AuthEvent struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	DeviceID   string    `json:"device_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
