package responder

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/belmontdev/mailbot/config"
	"github.com/belmontdev/mailbot/interfaces"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/models"
	"github.com/belmontdev/mailbot/internal/tracing"
)

const signatureBlock = `
<p>Att,</p>
<p>Felipe Belmont</p>
<p>contact@efelipebelmont.com</p>
<p>+55 21 98373-5922</p>

<div>
    <a href="https://www.facebook.com/belmontfelipe/" style="color: #000; text-decoration: none;">
        <img src="cid:facebook" alt="Facebook" style="width: 40px; height: 40px;">
    </a>
    <a href="https://www.instagram.com/eubellmont/" style="color: #000; text-decoration: none;">
        <img src="cid:instagram" alt="Instagram" style="width: 40px; height: 40px;">
    </a>
    <a href="https://www.youtube.com/@eubellmont" style="color: #000; text-decoration: none;">
        <img src="cid:youtube" alt="YouTube" style="width: 40px; height: 40px;">
    </a>
    <a href="https://twitter.com/eubellmont" style="color: #000; text-decoration: none;">
        <img src="cid:twitter" alt="Twitter" style="width: 40px; height: 40px;">
    </a>
    <a href="https://www.linkedin.com/in/belmontprogramador/" style="color: #000; text-decoration: none;">
        <img src="cid:linkedin" alt="LinkedIn" style="width: 40px; height: 40px;">
    </a>
    <a href="https://t.me/bigboss_trader01" style="color: #000; text-decoration: none;">
        <img src="cid:telegram" alt="Telegram" style="width: 40px; height: 40px;">
    </a>
</div>
<img src="cid:logo" alt="logo" style="width: 100%;">
`

// Service turns an inbound message body into a generated reply and dispatches
// it through the outbound relay. It does not touch the ledger; committing the
// identifier is the caller's job and only happens when Respond returns nil.
type Service struct {
	ai     interfaces.AIService
	sender interfaces.EmailSender
	cfg    *config.ReplyConfig
	log    logger.Logger
}

func NewService(ai interfaces.AIService, sender interfaces.EmailSender, cfg *config.ReplyConfig, log logger.Logger) *Service {
	return &Service{
		ai:     ai,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

var _ interfaces.Responder = (*Service)(nil)

// Respond generates a completion for the message body and mails it to the
// sender with the fixed reply subject.
func (s *Service) Respond(ctx context.Context, body, senderAddress string) error {
	return s.generateAndSend(ctx, senderAddress, s.cfg.Subject, body)
}

// SendDirect handles an ad-hoc outbound request with a caller-chosen subject.
// The processed-message ledger is not involved.
func (s *Service) SendDirect(ctx context.Context, to, subject, message string) error {
	s.log.Infof("Processing request to send email to %s", to)
	return s.generateAndSend(ctx, to, subject, message)
}

func (s *Service) generateAndSend(ctx context.Context, to, subject, message string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ResponderService.generateAndSend")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	completion, err := s.ai.GenerateReply(ctx, message)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "completion request failed")
	}

	reply := s.composeReply(to, subject, completion)

	if err := s.sender.Send(ctx, reply); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to send reply to %s", to)
	}

	return nil
}

// composeReply renders the branded HTML reply around the completion text.
func (s *Service) composeReply(to, subject, completion string) *models.OutboundReply {
	var sb strings.Builder
	sb.WriteString("<h1>Dev Felipe Belmont</h1>\n")
	for _, paragraph := range strings.Split(completion, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		escaped := html.EscapeString(paragraph)
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")
		sb.WriteString(fmt.Sprintf("<p>%s</p>\n", escaped))
	}
	sb.WriteString(signatureBlock)

	return &models.OutboundReply{
		To:       to,
		Subject:  subject,
		BodyHTML: sb.String(),
		Images:   s.cfg.SignatureImages(),
	}
}
