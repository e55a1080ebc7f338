package imapconn

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/belmontdev/mailbot/interfaces"
	"github.com/belmontdev/mailbot/internal/enum"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/models"
	"github.com/belmontdev/mailbot/internal/tracing"
)

const (
	connectTimeout = 30 * time.Second
	logoutTimeout  = 5 * time.Second
)

// Manager owns one Session per configured account. Each account gets its own
// goroutine that connects, probes the inbox, waits for the connection to
// drop, and reconnects after a fixed delay, forever. Connection failures are
// never fatal to the process.
type Manager struct {
	accounts       []models.Account
	reconnectDelay time.Duration
	log            logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(accounts []models.Account, reconnectDelay time.Duration, log logger.Logger) *Manager {
	sessions := make(map[string]*Session, len(accounts))
	for _, account := range accounts {
		sessions[account.Key] = newSession(account.Key, account.User)
	}

	return &Manager{
		accounts:       accounts,
		reconnectDelay: reconnectDelay,
		log:            log,
		sessions:       sessions,
	}
}

var _ interfaces.ConnectionManager = (*Manager)(nil)

// Start launches a connection loop for every configured account. It does not
// wait for any connection to complete.
func (m *Manager) Start(ctx context.Context) error {
	span, ctx := tracing.StartTracerSpan(ctx, "Manager.Start")
	defer span.Finish()
	span.LogFields(tracingLog.Int("account_count", len(m.accounts)))

	m.ctx, m.cancel = context.WithCancel(ctx)

	for _, account := range m.accounts {
		m.log.Infof("[%s] Starting mailbox monitoring for %s", account.Key, account.User)
		m.wg.Add(1)
		go m.runAccount(m.ctx, account)
	}

	return nil
}

// GetSession returns the session for an account key, including one that is
// mid-reconnect. Callers must check IsReady.
func (m *Manager) GetSession(accountKey string) (interfaces.AccountSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[accountKey]
	if !ok {
		return nil, false
	}
	return session, true
}

// Status returns a point-in-time snapshot of every session.
func (m *Manager) Status() map[string]interfaces.AccountStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]interfaces.AccountStatus, len(m.sessions))
	for key, session := range m.sessions {
		state, lastError, connectedAt := session.snapshot()
		result[key] = interfaces.AccountStatus{
			User:        session.user,
			State:       state,
			LastError:   lastError,
			ConnectedAt: connectedAt,
		}
	}

	return result
}

// Shutdown stops the reconnect loops and logs out every live session.
func (m *Manager) Shutdown() {
	m.log.Info("Stopping IMAP connection manager...")

	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.log.Info("All connection loops stopped")
	case <-time.After(10 * time.Second):
		m.log.Warn("Timeout waiting for connection loops to stop")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for key, session := range m.sessions {
		c := session.takeClient()
		session.setState(enum.SessionDisconnected, "")
		if c == nil {
			continue
		}
		m.log.Infof("[%s] Disconnecting", key)
		c.Timeout = logoutTimeout
		_ = c.Logout() // Ignore errors during shutdown
	}

	m.log.Info("IMAP connection manager stopped")
}

// runAccount is the per-account connection loop.
func (m *Manager) runAccount(ctx context.Context, account models.Account) {
	defer m.wg.Done()

	session := m.sessions[account.Key]

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		session.setState(enum.SessionConnecting, "")
		m.log.Infof("[%s] Connecting to %s:%d", account.Key, account.Host, account.Port)

		c, err := m.connect(ctx, account)
		if err != nil {
			m.log.Errorf("[%s] Error with IMAP connection: %v", account.Key, err)
			session.setState(enum.SessionReconnectPending, err.Error())
			if !m.sleepForReconnect(ctx, account.Key) {
				return
			}
			continue
		}

		session.setReady(c)
		m.log.Infof("[%s] Connected to email server", account.Key)
		m.probeInbox(account.Key, c)

		// Block until the server side goes away or we are shutting down.
		select {
		case <-c.LoggedOut():
			m.log.Warnf("[%s] IMAP connection ended. Scheduling reconnect...", account.Key)
			session.takeClient()
			session.setState(enum.SessionReconnectPending, "connection ended")
			if !m.sleepForReconnect(ctx, account.Key) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// connect dials and authenticates one IMAP session.
func (m *Manager) connect(ctx context.Context, account models.Account) (*client.Client, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "Manager.connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, account.Key)

	serverAddr := fmt.Sprintf("%s:%d", account.Host, account.Port)

	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	tlsConfig := &tls.Config{
		ServerName: account.Host,
	}

	c, err := client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	if err != nil {
		err = errors.Wrapf(err, "failed to connect to %s", serverAddr)
		tracing.TraceErr(span, err)
		return nil, err
	}

	c.Timeout = connectTimeout
	if err := c.Login(account.User, account.Password); err != nil {
		_ = c.Logout()
		err = errors.Wrapf(err, "failed to login as %s", account.User)
		tracing.TraceErr(span, err)
		return nil, err
	}
	c.Timeout = 0

	return c, nil
}

// probeInbox opens the INBOX read-only to confirm the account is usable. It
// does not consume messages; failures only log.
func (m *Manager) probeInbox(accountKey string, c *client.Client) {
	c.Timeout = connectTimeout
	mbox, err := c.Select("INBOX", true)
	c.Timeout = 0
	if err != nil {
		m.log.Errorf("[%s] Error opening inbox: %v", accountKey, err)
		return
	}

	m.log.Infof("[%s] Inbox opened. Total messages: %d", accountKey, mbox.Messages)
}

// sleepForReconnect waits out the fixed reconnect delay. There is no backoff
// and no retry cap. Returns false when the manager is shutting down.
func (m *Manager) sleepForReconnect(ctx context.Context, accountKey string) bool {
	m.log.Infof("[%s] Scheduling reconnect in %s...", accountKey, m.reconnectDelay)

	select {
	case <-time.After(m.reconnectDelay):
		return true
	case <-ctx.Done():
		return false
	}
}
