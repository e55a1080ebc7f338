package enum

// SessionState tracks the lifecycle of one account's IMAP connection.
type SessionState string

const (
	SessionDisconnected     SessionState = "disconnected"
	SessionConnecting       SessionState = "connecting"
	SessionReady            SessionState = "ready"
	SessionReconnectPending SessionState = "reconnect_pending"
)

func (s SessionState) String() string {
	return string(s)
}
