package utils

import (
	"strings"
)

// NormalizeMessageID strips the surrounding angle brackets from a
// Message-Id header value so the same message hashes to the same key
// regardless of how the server quoted it.
func NormalizeMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")
	return messageID
}

// ExtractDomainFromEmail returns the part after the last @, or "" if the
// address has no domain.
func ExtractDomainFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
