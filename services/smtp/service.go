package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/belmontdev/mailbot/config"
	"github.com/belmontdev/mailbot/interfaces"
	"github.com/belmontdev/mailbot/internal/enum"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/models"
	"github.com/belmontdev/mailbot/internal/tracing"
	"github.com/belmontdev/mailbot/internal/utils"
)

// Service submits composed replies through the configured SMTP relay using a
// single authenticated sender identity.
type Service struct {
	cfg *config.SMTPConfig
	log logger.Logger
}

func NewService(cfg *config.SMTPConfig, log logger.Logger) *Service {
	return &Service{
		cfg: cfg,
		log: log,
	}
}

var _ interfaces.EmailSender = (*Service)(nil)

func (s *Service) Send(ctx context.Context, reply *models.OutboundReply) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if reply == nil {
		err := errors.New("reply cannot be nil")
		tracing.TraceErr(span, err)
		return err
	}
	if reply.To == "" {
		err := errors.New("recipient is required")
		tracing.TraceErr(span, err)
		return err
	}

	buffer, err := s.buildMessage(reply)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err = s.sendToServer(ctx, s.cfg.Username, []string{reply.To}, buffer)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("Email successfully sent to %s", reply.To)
	return nil
}

// buildMessage renders the reply as a multipart/related message: one HTML
// part plus the inline signature images referenced by Content-ID.
func (s *Service) buildMessage(reply *models.OutboundReply) (*bytes.Buffer, error) {
	body := bytes.NewBuffer(nil)
	writer := multipart.NewWriter(body)

	if err := addHTMLPart(writer, reply.BodyHTML); err != nil {
		return nil, err
	}

	for _, image := range reply.Images {
		if err := addInlineImage(writer, image); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close multipart writer")
	}

	domain := utils.ExtractDomainFromEmail(s.cfg.Username)
	buffer := bytes.NewBuffer(nil)
	writeHeaders(map[string]string{
		"From":         s.cfg.Username,
		"To":           reply.To,
		"Subject":      mime.QEncoding.Encode("utf-8", reply.Subject),
		"Message-ID":   utils.GenerateMessageID(domain, reply.To),
		"MIME-Version": "1.0",
		"Content-Type": fmt.Sprintf("multipart/related; boundary=%q", writer.Boundary()),
	}, buffer)
	buffer.Write(body.Bytes())
	return buffer, nil
}

// writeHeaders writes email headers to the buffer
func writeHeaders(headers map[string]string, buffer *bytes.Buffer) {
	for k, v := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	buffer.WriteString("\r\n")
}

// addHTMLPart adds the quoted-printable HTML part
func addHTMLPart(writer *multipart.Writer, content string) error {
	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create HTML part")
	}

	qp := quotedprintable.NewWriter(htmlPart)
	if _, err := qp.Write([]byte(content)); err != nil {
		return errors.Wrap(err, "failed to write HTML content")
	}
	return qp.Close()
}

// addInlineImage adds one base64-encoded image part referenced by Content-ID
func addInlineImage(writer *multipart.Writer, image models.InlineImage) error {
	content, err := os.ReadFile(image.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to read attachment %s", image.Path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(image.Path))
	if contentType == "" {
		contentType = "image/png"
	}

	imagePart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, image.Filename)},
		"Content-Disposition":       {fmt.Sprintf("inline; filename=%q", image.Filename)},
		"Content-ID":                {fmt.Sprintf("<%s>", image.CID)},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create attachment part for %s", image.Filename)
	}

	return writeBase64(imagePart, content)
}

// writeBase64 writes content base64-encoded in RFC 2045 76-column lines
func writeBase64(w io.Writer, content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:n]); err != nil {
			return errors.Wrap(err, "failed to write attachment content")
		}
		encoded = encoded[n:]
	}
	return nil
}

// sendToServer dispatches the prepared message per the configured security
// mode. The default deployment uses implicit TLS on port 465.
func (s *Service) sendToServer(ctx context.Context, from string, recipients []string, buffer *bytes.Buffer) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPService.sendToServer")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("smtp_server", s.cfg.Host)
	span.LogKV("smtp_port", s.cfg.Port)
	span.LogKV("from_address", from)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	switch s.cfg.Security {
	case enum.EmailSecuritySSL:
		return s.sendWithTLS(addr, auth, from, recipients, buffer)
	case enum.EmailSecurityStartTLS:
		return s.sendWithSTARTTLS(addr, auth, from, recipients, buffer)
	default:
		// Standard SMTP (may still upgrade to STARTTLS if the server offers it)
		if err := smtp.SendMail(addr, auth, from, recipients, buffer.Bytes()); err != nil {
			return errors.Wrap(err, "failed to send email")
		}
		return nil
	}
}

// sendWithTLS speaks SMTP over an implicit TLS connection.
func (s *Service) sendWithTLS(addr string, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}
	defer client.Close()

	return submit(client, auth, from, recipients, buffer)
}

// sendWithSTARTTLS connects in the clear and upgrades before authenticating.
func (s *Service) sendWithSTARTTLS(addr string, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return errors.Wrap(err, "failed to start TLS")
	}

	return submit(client, auth, from, recipients, buffer)
}

func submit(client *smtp.Client, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	if err := client.Auth(auth); err != nil {
		return errors.Wrap(err, "SMTP authentication failed")
	}

	if err := client.Mail(from); err != nil {
		return errors.Wrap(err, "SMTP MAIL command failed")
	}

	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return errors.Wrapf(err, "SMTP RCPT command failed for %s", recipient)
		}
	}

	dataWriter, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "SMTP DATA command failed")
	}

	if _, err := dataWriter.Write(buffer.Bytes()); err != nil {
		return errors.Wrap(err, "failed to write email data")
	}

	if err := dataWriter.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize email data")
	}

	return client.Quit()
}
