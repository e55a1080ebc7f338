package interfaces

import (
	"context"

	"github.com/belmontdev/mailbot/internal/models"
)

// Scanner runs the inbox-scan / fetch / parse pipeline for one account.
type Scanner interface {
	Scan(ctx context.Context, accountKey string) error
}

// Responder turns an inbound message body into a generated reply and
// dispatches it through the outbound relay.
type Responder interface {
	Respond(ctx context.Context, body, senderAddress string) error
	// SendDirect runs the generate-and-send pipeline for an ad-hoc request,
	// bypassing the processed-message ledger.
	SendDirect(ctx context.Context, to, subject, message string) error
}

// Ledger is the durable set of message identifiers already replied to.
type Ledger interface {
	Load() error
	Flush() error
	Contains(id string) bool
	Add(id string)
}

// AIService generates reply text for an inbound message body.
type AIService interface {
	GenerateReply(ctx context.Context, messageBody string) (string, error)
}

// EmailSender dispatches a composed reply through the outbound relay.
type EmailSender interface {
	Send(ctx context.Context, reply *models.OutboundReply) error
}
