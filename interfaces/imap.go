package interfaces

import (
	"context"
	"time"

	"github.com/emersion/go-imap/client"

	"github.com/belmontdev/mailbot/internal/enum"
)

// AccountSession is a live handle to one account's IMAP connection. The
// session is owned by the connection manager; borrowers must check IsReady
// before use and must not cache the client across scans.
type AccountSession interface {
	Key() string
	Client() *client.Client
	State() enum.SessionState
	IsReady() bool
}

// AccountStatus is a point-in-time snapshot of one session, exposed on the
// status endpoint.
type AccountStatus struct {
	User        string            `json:"user"`
	State       enum.SessionState `json:"state"`
	LastError   string            `json:"lastError,omitempty"`
	ConnectedAt *time.Time        `json:"connectedAt,omitempty"`
}

// ConnectionManager owns one persistent IMAP session per configured account
// and re-establishes dropped sessions indefinitely.
type ConnectionManager interface {
	Start(ctx context.Context) error
	GetSession(accountKey string) (AccountSession, bool)
	Status() map[string]AccountStatus
	Shutdown()
}
