package services

import (
	"time"

	"github.com/belmontdev/mailbot/config"
	"github.com/belmontdev/mailbot/interfaces"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/services/ai"
	"github.com/belmontdev/mailbot/services/imapconn"
	"github.com/belmontdev/mailbot/services/ledger"
	"github.com/belmontdev/mailbot/services/responder"
	"github.com/belmontdev/mailbot/services/scanner"
	"github.com/belmontdev/mailbot/services/smtp"
)

type Services struct {
	ConnectionManager interfaces.ConnectionManager
	Scanner           interfaces.Scanner
	Responder         interfaces.Responder
	Ledger            interfaces.Ledger
	AIService         interfaces.AIService
	EmailSender       interfaces.EmailSender
}

func InitServices(cfg *config.Config, log logger.Logger) (*Services, error) {
	processed := ledger.NewFileLedger(cfg.Ledger.FilePath, log)
	if err := processed.Load(); err != nil {
		return nil, err
	}

	aiService := ai.NewAIService(cfg.OpenAI)
	sender := smtp.NewService(cfg.SMTP, log)
	respond := responder.NewService(aiService, sender, cfg.Reply, log)

	reconnectDelay := time.Duration(cfg.IMAP.ReconnectDelaySeconds) * time.Second
	manager := imapconn.NewManager(cfg.IMAP.Accounts(), reconnectDelay, log)

	services := Services{
		ConnectionManager: manager,
		Scanner:           scanner.NewService(manager, processed, respond, log),
		Responder:         respond,
		Ledger:            processed,
		AIService:         aiService,
		EmailSender:       sender,
	}

	return &services, nil
}
