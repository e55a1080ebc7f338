package responder

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belmontdev/mailbot/config"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/models"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

type fakeAI struct {
	reply string
	err   error
	calls int
}

func (f *fakeAI) GenerateReply(ctx context.Context, messageBody string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeSender struct {
	sent []*models.OutboundReply
	err  error
}

func (f *fakeSender) Send(ctx context.Context, reply *models.OutboundReply) error {
	f.sent = append(f.sent, reply)
	return f.err
}

func testReplyConfig() *config.ReplyConfig {
	return &config.ReplyConfig{
		Subject:       "Support BTX Broker",
		ImageLogo:     "images/assinatura.png",
		ImageFacebook: "images/facebook.png",
	}
}

func TestRespond_SendsComposedReply(t *testing.T) {
	ai := &fakeAI{reply: "Thanks for reaching out.\n\nWe will get back to you."}
	sender := &fakeSender{}
	s := NewService(ai, sender, testReplyConfig(), getLogger())

	err := s.Respond(context.Background(), "original question", "alice@example.com")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	reply := sender.sent[0]
	assert.Equal(t, "alice@example.com", reply.To)
	assert.Equal(t, "Support BTX Broker", reply.Subject)
	assert.Contains(t, reply.BodyHTML, "<h1>Dev Felipe Belmont</h1>")
	assert.Contains(t, reply.BodyHTML, "<p>Thanks for reaching out.</p>")
	assert.Contains(t, reply.BodyHTML, "<p>We will get back to you.</p>")
	assert.Contains(t, reply.BodyHTML, `src="cid:logo"`)
	assert.Len(t, reply.Images, 2)
}

func TestRespond_EscapesCompletionHTML(t *testing.T) {
	ai := &fakeAI{reply: "Use <script>alert(1)</script> & enjoy"}
	sender := &fakeSender{}
	s := NewService(ai, sender, testReplyConfig(), getLogger())

	err := s.Respond(context.Background(), "question", "alice@example.com")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	body := sender.sent[0].BodyHTML
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "&amp; enjoy")
}

func TestRespond_SingleNewlinesBecomeLineBreaks(t *testing.T) {
	ai := &fakeAI{reply: "line one\nline two"}
	sender := &fakeSender{}
	s := NewService(ai, sender, testReplyConfig(), getLogger())

	require.NoError(t, s.Respond(context.Background(), "question", "alice@example.com"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].BodyHTML, "<p>line one<br>line two</p>")
}

func TestRespond_AIFailureSkipsSend(t *testing.T) {
	ai := &fakeAI{err: errors.New("completion backend down")}
	sender := &fakeSender{}
	s := NewService(ai, sender, testReplyConfig(), getLogger())

	err := s.Respond(context.Background(), "question", "alice@example.com")

	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestRespond_SenderFailurePropagates(t *testing.T) {
	ai := &fakeAI{reply: "text"}
	sender := &fakeSender{err: errors.New("relay refused")}
	s := NewService(ai, sender, testReplyConfig(), getLogger())

	err := s.Respond(context.Background(), "question", "alice@example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send reply to alice@example.com")
}

func TestSendDirect_UsesCallerSubject(t *testing.T) {
	ai := &fakeAI{reply: "custom text"}
	sender := &fakeSender{}
	s := NewService(ai, sender, testReplyConfig(), getLogger())

	err := s.SendDirect(context.Background(), "bob@example.com", "Onboarding", "welcome bob")
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Onboarding", sender.sent[0].Subject)
	assert.Equal(t, "bob@example.com", sender.sent[0].To)
	assert.Equal(t, 1, ai.calls)
}
