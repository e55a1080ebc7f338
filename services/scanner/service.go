package scanner

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/belmontdev/mailbot/interfaces"
	custom_err "github.com/belmontdev/mailbot/internal/errors"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/tracing"
)

const fetchTimeout = 60 * time.Second

// Service scans one account's inbox for unseen messages, parses them, and
// hands every message not yet in the ledger to the responder. An identifier
// is committed to the ledger only after the responder dispatched the reply
// without error, so a failed reply is retried on the next scan.
type Service struct {
	sessions  interfaces.ConnectionManager
	ledger    interfaces.Ledger
	responder interfaces.Responder
	log       logger.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(sessions interfaces.ConnectionManager, ledger interfaces.Ledger, responder interfaces.Responder, log logger.Logger) *Service {
	return &Service{
		sessions:  sessions,
		ledger:    ledger,
		responder: responder,
		log:       log,
		inFlight:  make(map[string]bool),
	}
}

var _ interfaces.Scanner = (*Service)(nil)

// Scan runs one inbox scan for the account. Overlapping scans for the same
// account are skipped: whichever trigger got there first finishes its pass
// before another can observe the same messages as unseen.
func (s *Service) Scan(ctx context.Context, accountKey string) error {
	if !s.begin(accountKey) {
		s.log.Warnf("[%s] Scan already in progress, skipping", accountKey)
		return custom_err.ErrScanInProgress
	}
	defer s.end(accountKey)

	span, ctx := tracing.StartTracerSpan(ctx, "Scanner.Scan")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, accountKey)

	session, ok := s.sessions.GetSession(accountKey)
	if !ok {
		err := errors.Wrapf(custom_err.ErrSessionNotFound, "account %s", accountKey)
		s.log.Errorf("[%s] IMAP session not available", accountKey)
		tracing.TraceErr(span, err)
		return err
	}

	if !session.IsReady() {
		err := errors.Wrapf(custom_err.ErrSessionNotReady, "account %s in state %s", accountKey, session.State())
		s.log.Errorf("[%s] IMAP session not ready (state %s)", accountKey, session.State())
		tracing.TraceErr(span, err)
		return err
	}

	c := session.Client()

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		err = errors.Wrap(err, "error opening inbox")
		s.log.Errorf("[%s] Error opening inbox: %v", accountKey, err)
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("[%s] Checking for new emails... (%d messages total)", accountKey, mbox.Messages)

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqNums, err := c.Search(criteria)
	if err != nil {
		err = errors.Wrap(err, "error searching emails")
		s.log.Errorf("[%s] Error searching emails: %v", accountKey, err)
		tracing.TraceErr(span, err)
		return err
	}

	if len(seqNums) == 0 {
		s.log.Infof("[%s] No new emails found", accountKey)
		return nil
	}

	span.LogFields(tracingLog.Int("unseen_count", len(seqNums)))
	s.log.Infof("[%s] Found %d unseen message(s)", accountKey, len(seqNums))

	c.Timeout = fetchTimeout
	err = s.fetchAndProcess(ctx, accountKey, c, seqNums)
	c.Timeout = 0
	return err
}

// fetchAndProcess fetches the full raw body of every matched message and
// runs each through the parse / ledger / respond pipeline. A fetch-stream
// error ends the batch; messages already handled stay handled.
func (s *Service) fetchAndProcess(ctx context.Context, accountKey string, c imapFetcher, seqNums []uint32) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)

	go func() {
		done <- c.Fetch(seqSet, items, messages)
	}()

	for msg := range messages {
		literal := msg.GetBody(section)
		if literal == nil {
			s.log.Warnf("[%s] Message %d has no body section", accountKey, msg.SeqNum)
			continue
		}

		raw, err := io.ReadAll(literal)
		if err != nil {
			s.log.Errorf("[%s] Error reading message %d body: %v", accountKey, msg.SeqNum, err)
			continue
		}

		s.processRaw(ctx, accountKey, raw)
	}

	if err := <-done; err != nil {
		err = errors.Wrap(err, "fetch error")
		s.log.Errorf("[%s] Fetch error: %v", accountKey, err)
		return err
	}

	s.log.Infof("[%s] Done fetching all messages", accountKey)
	return nil
}

// imapFetcher is the slice of the IMAP client the fetch step needs.
type imapFetcher interface {
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
}

// processRaw handles exactly one message: parse, gate on the ledger, respond,
// commit. Failures affect only this message; the batch continues.
func (s *Service) processRaw(ctx context.Context, accountKey string, raw []byte) {
	span, ctx := tracing.StartTracerSpan(ctx, "Scanner.processRaw")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, accountKey)

	msg, err := parseInbound(raw)
	if err != nil {
		s.log.Errorf("[%s] Error parsing message: %v", accountKey, err)
		tracing.TraceErr(span, err)
		return
	}
	msg.AccountKey = accountKey
	tracing.TagMessageId(span, msg.ID)

	if msg.ID == "" {
		s.log.Warnf("[%s] Message has no Message-Id header, skipping", accountKey)
		return
	}

	if msg.Sender == "" {
		s.log.Warnf("[%s] No email address found in the message headers", accountKey)
		return
	}

	if s.ledger.Contains(msg.ID) {
		s.log.Infof("[%s] Email with ID %s has already been processed. Skipping.", accountKey, msg.ID)
		return
	}

	s.log.Infof("[%s] Email found in message headers: %s", accountKey, msg.Sender)

	if err := s.responder.Respond(ctx, msg.BodyText, msg.Sender); err != nil {
		s.log.Errorf("[%s] Error replying to %s: %v", accountKey, msg.Sender, err)
		tracing.TraceErr(span, err)
		return
	}

	s.ledger.Add(msg.ID)
	s.log.Infof("[%s] Email sent to %s", accountKey, msg.Sender)
}

func (s *Service) begin(accountKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[accountKey] {
		return false
	}
	s.inFlight[accountKey] = true
	return true
}

func (s *Service) end(accountKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, accountKey)
}
