package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMessageID(t *testing.T) {
	assert.Equal(t, "abc@example.com", NormalizeMessageID("<abc@example.com>"))
	assert.Equal(t, "abc@example.com", NormalizeMessageID("abc@example.com"))
	assert.Equal(t, "abc@example.com", NormalizeMessageID("  <abc@example.com>  "))
	assert.Equal(t, "", NormalizeMessageID(""))
}

func TestExtractDomainFromEmail(t *testing.T) {
	assert.Equal(t, "btxbroker.com", ExtractDomainFromEmail("support@btxbroker.com"))
	assert.Equal(t, "", ExtractDomainFromEmail("no-at-sign"))
	assert.Equal(t, "", ExtractDomainFromEmail("trailing@"))
	assert.Equal(t, "b.com", ExtractDomainFromEmail("quoted@a@b.com"))
}

func TestGenerateMessageID(t *testing.T) {
	id := GenerateMessageID("btxbroker.com", "alice@example.com")

	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@btxbroker.com>"))

	other := GenerateMessageID("btxbroker.com", "alice@example.com")
	assert.NotEqual(t, id, other)
}

func TestGenerateMessageID_NoMetadata(t *testing.T) {
	id := GenerateMessageID("btxbroker.com", "")

	assert.NotContains(t, id, "..")
	assert.True(t, strings.HasSuffix(id, "@btxbroker.com>"))
}
