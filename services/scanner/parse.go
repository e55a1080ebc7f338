package scanner

import (
	"bytes"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/belmontdev/mailbot/internal/models"
	"github.com/belmontdev/mailbot/internal/utils"
)

// parseInbound turns one raw RFC 822 message into an InboundMessage.
// HTML-only messages get a down-converted text body. A missing sender address
// leaves Sender empty; the pipeline decides what to do with that.
func parseInbound(raw []byte) (*models.InboundMessage, error) {
	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse message")
	}

	msg := &models.InboundMessage{
		ID:       utils.NormalizeMessageID(envelope.GetHeader("Message-Id")),
		Subject:  envelope.GetHeader("Subject"),
		BodyText: envelope.Text,
	}

	addresses, err := envelope.AddressList("From")
	if err == nil && len(addresses) > 0 {
		msg.Sender = addresses[0].Address
	}

	return msg, nil
}
