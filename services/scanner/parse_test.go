package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawPlainMessage = "From: Alice Example <alice@example.com>\r\n" +
	"To: support@btxbroker.com\r\n" +
	"Subject: Question about withdrawals\r\n" +
	"Message-Id: <abc-123@example.com>\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Hello, how long does a withdrawal take?\r\n"

const rawHTMLOnlyMessage = "From: bob@example.com\r\n" +
	"Subject: no text part\r\n" +
	"Message-Id: <html-only@example.com>\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Rendered only</p>\r\n"

const rawNoSenderMessage = "Subject: orphan\r\n" +
	"Message-Id: <no-from@example.com>\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"body\r\n"

const rawNoMessageIDMessage = "From: carol@example.com\r\n" +
	"Subject: untracked\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"body\r\n"

func TestParseInbound_PlainMessage(t *testing.T) {
	msg, err := parseInbound([]byte(rawPlainMessage))
	require.NoError(t, err)

	assert.Equal(t, "abc-123@example.com", msg.ID)
	assert.Equal(t, "alice@example.com", msg.Sender)
	assert.Equal(t, "Question about withdrawals", msg.Subject)
	assert.Contains(t, msg.BodyText, "how long does a withdrawal take")
}

func TestParseInbound_HTMLOnlyMessageHasDownconvertedBody(t *testing.T) {
	msg, err := parseInbound([]byte(rawHTMLOnlyMessage))
	require.NoError(t, err)

	assert.Equal(t, "html-only@example.com", msg.ID)
	assert.Equal(t, "bob@example.com", msg.Sender)
}

func TestParseInbound_MissingSenderLeavesSenderEmpty(t *testing.T) {
	msg, err := parseInbound([]byte(rawNoSenderMessage))
	require.NoError(t, err)

	assert.Empty(t, msg.Sender)
	assert.Equal(t, "no-from@example.com", msg.ID)
}

func TestParseInbound_MissingMessageIDLeavesIDEmpty(t *testing.T) {
	msg, err := parseInbound([]byte(rawNoMessageIDMessage))
	require.NoError(t, err)

	assert.Empty(t, msg.ID)
	assert.Equal(t, "carol@example.com", msg.Sender)
}
