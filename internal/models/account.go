package models

// Well-known account keys. The first account is the one manual HTTP triggers
// scan; the second is optional and covered by the cron schedule only.
const (
	PrimaryAccountKey   = "user1"
	SecondaryAccountKey = "user2"
)

// Account holds the IMAP credentials for one monitored mailbox.
type Account struct {
	Key      string
	User     string
	Password string
	Host     string
	Port     int
}
