package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/clinic-applications", nil)
	r.RemoteAddr = "203.0.113.40:51234"
	assert.Equal(t, "203.0.113.40", RealClientIP(r))

	// No port: return the address as-is
	r.RemoteAddr = "203.0.113.40"
	assert.Equal(t, "203.0.113.40", RealClientIP(r))

	// IPv6 with port loses the brackets
	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", RealClientIP(r))

	// Proxy headers are ignored on purpose
	r.RemoteAddr = "203.0.113.40:51234"
	r.Header.Set("X-Forwarded-For", "198.51.100.9")
	assert.Equal(t, "203.0.113.40", RealClientIP(r))
}
