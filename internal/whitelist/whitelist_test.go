package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_IsWhitelisted(t *testing.T) {
	c := NewChecker([]string{"+1 (555) 010-0000", "MyBank", "72404", "  "}, "US", zap.NewNop())

	assert.True(t, c.IsWhitelisted("+15550100000"))
	assert.True(t, c.IsWhitelisted("+1 555 010 0000"))
	assert.True(t, c.IsWhitelisted("(555) 010-0000"))
	assert.True(t, c.IsWhitelisted("mybank"))
	assert.True(t, c.IsWhitelisted("72404"))
	assert.False(t, c.IsWhitelisted("+15550100001"))
	assert.False(t, c.IsWhitelisted(""))
}

func TestChecker_Region(t *testing.T) {
	c := NewChecker([]string{"07700 900123"}, "GB", zap.NewNop())
	assert.True(t, c.IsWhitelisted("+44 7700 900123"))
	assert.False(t, c.IsWhitelisted("+1 7700 900123"))
}

func TestChecker_Empty(t *testing.T) {
	c := NewChecker(nil, "US", nil)
	assert.False(t, c.IsWhitelisted("anything"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "+15550100000", Normalize(" +1 (555) 010-0000 ", "US"))
	assert.Equal(t, "+447700900123", Normalize("+44 7700 900123", "US"))
	assert.Equal(t, "vmhdfcbk", Normalize("VM-HDFCBK", "US"))
	assert.Equal(t, "", Normalize("   ", "US"))
}
