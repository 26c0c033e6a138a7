package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("parent@example.com"))
	assert.True(t, ValidEmail("clinic.admin+invite@care-center.co.uk"))

	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("missing@tld"))
	assert.False(t, ValidEmail("two words@example.com"))
	assert.False(t, ValidEmail("@example.com"))

	// Must fit the column
	long := strings.Repeat("a", 250) + "@example.com"
	assert.False(t, ValidEmail(long))
}
