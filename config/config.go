package config

import (
	"github.com/belmontdev/mailbot/internal/enum"
	"github.com/belmontdev/mailbot/internal/models"
)

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"3000"`
	APIKey  string `env:"API_KEY"`
}

type IMAPConfig struct {
	Host                  string `env:"IMAP_HOST" envDefault:"imap.hostinger.com"`
	Port                  int    `env:"IMAP_PORT" envDefault:"993"`
	User1                 string `env:"EMAIL_USER,required"`
	Password1             string `env:"EMAIL_PASSWORD,required"`
	User2                 string `env:"EMAIL_USER2"`
	Password2             string `env:"EMAIL_PASSWORD2"`
	ReconnectDelaySeconds int    `env:"IMAP_RECONNECT_DELAY_SECONDS" envDefault:"10"`
}

// Accounts expands the credential pairs into account records. The second
// account is optional.
func (c *IMAPConfig) Accounts() []models.Account {
	accounts := []models.Account{
		{
			Key:      models.PrimaryAccountKey,
			User:     c.User1,
			Password: c.Password1,
			Host:     c.Host,
			Port:     c.Port,
		},
	}

	if c.User2 != "" {
		accounts = append(accounts, models.Account{
			Key:      models.SecondaryAccountKey,
			User:     c.User2,
			Password: c.Password2,
			Host:     c.Host,
			Port:     c.Port,
		})
	}

	return accounts
}

type SMTPConfig struct {
	Host     string             `env:"EMAIL_HOST,required"`
	Port     int                `env:"EMAIL_PORT" envDefault:"465"`
	Username string             `env:"EMAIL_USER,required"`
	Password string             `env:"EMAIL_PASSWORD,required"`
	Security enum.EmailSecurity `env:"SMTP_SECURITY" envDefault:"ssl"`
}

type OpenAIConfig struct {
	APIKey       string `env:"OPENAI_API_KEY,required"`
	URL          string `env:"OPENAI_API_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	Model        string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	SystemPrompt string `env:"OPENAI_SYSTEM_PROMPT" envDefault:"You are Turbo Max, the virtual assistant of developer Felipe Belmont. Your job is to schedule meetings for Felipe and to answer questions about web design and JavaScript programming, especially React on the frontend and Node.js on the backend."`
}

type ReplyConfig struct {
	Subject        string `env:"REPLY_SUBJECT" envDefault:"Support BTX Broker"`
	ImageLogo      string `env:"IMAGE_LOGO"`
	ImageFacebook  string `env:"IMAGE_FACEBOOK"`
	ImageInstagram string `env:"IMAGE_INSTAGRAM"`
	ImageYoutube   string `env:"IMAGE_YOUTUBE"`
	ImageTwitter   string `env:"IMAGE_TWITTER"`
	ImageLinkedin  string `env:"IMAGE_LINKEDIN"`
	ImageTelegram  string `env:"IMAGE_TELEGRAM"`
}

// SignatureImages returns the inline attachments referenced by Content-ID in
// the reply template. Images with no configured path are left out.
func (c *ReplyConfig) SignatureImages() []models.InlineImage {
	all := []models.InlineImage{
		{Filename: "assinatura.png", Path: c.ImageLogo, CID: "logo"},
		{Filename: "facebook.png", Path: c.ImageFacebook, CID: "facebook"},
		{Filename: "instagram.png", Path: c.ImageInstagram, CID: "instagram"},
		{Filename: "youtube.png", Path: c.ImageYoutube, CID: "youtube"},
		{Filename: "twitter.png", Path: c.ImageTwitter, CID: "twitter"},
		{Filename: "linkedin.png", Path: c.ImageLinkedin, CID: "linkedin"},
		{Filename: "telegram.png", Path: c.ImageTelegram, CID: "telegram"},
	}

	images := make([]models.InlineImage, 0, len(all))
	for _, img := range all {
		if img.Path != "" {
			images = append(images, img)
		}
	}

	return images
}

type LedgerConfig struct {
	FilePath string `env:"PROCESSED_IDS_FILE" envDefault:"processed_message_ids.json"`
}
