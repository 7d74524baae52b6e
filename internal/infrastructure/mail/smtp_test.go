package mail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

func TestCompose(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	raw := string(compose("portal@example.com", domain.Email{
		To:      "pat@example.com",
		Subject: "Complaint Status Updated: Roads",
		Body:    "Hello Pat,\n\nDone.",
	}, now))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found, "missing header/body separator")

	assert.Contains(t, headers, "From: portal@example.com\r\n")
	assert.Contains(t, headers, "To: pat@example.com\r\n")
	assert.Contains(t, headers, "Subject: Complaint Status Updated: Roads\r\n")
	assert.Contains(t, headers, "Content-Type: text/plain")
	assert.Equal(t, "Hello Pat,\r\n\r\nDone.", body)
}

func TestCompose_EncodesNonASCIISubject(t *testing.T) {
	raw := string(compose("portal@example.com", domain.Email{To: "a@b.c", Subject: "Queja de año"}, time.Now()))
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
}

func TestConfig_Configured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{Host: "smtp.example.com"}.Configured())
	assert.True(t, Config{Host: "smtp.example.com", Username: "portal@example.com"}.Configured())
}

func TestSMTPSender_DialFailure(t *testing.T) {
	s := NewSMTPSender(Config{Host: "127.0.0.1", Port: 1, Username: "portal@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Send(ctx, domain.Email{To: "pat@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp dial")
}

func TestLogSender(t *testing.T) {
	var buf strings.Builder
	s := NewLogSender(zerolog.New(&buf))

	require.NoError(t, s.Send(context.Background(), domain.Email{To: "pat@example.com", Subject: "Hi"}))
	assert.Contains(t, buf.String(), `"to":"pat@example.com"`)
}
