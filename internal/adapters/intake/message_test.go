package intake

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPosting(subject, body string, headers map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: poster@example.com\r\n")
	fmt.Fprintf(&b, "To: intake@fixer.example\r\n")
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	for k, v := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

func readMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestDecodeEncodedHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Fence repair", "Fence repair"},
		{"utf-8 q-encoded", "=?UTF-8?Q?Caf=C3=A9_cleanup?=", "Café cleanup"},
		{"windows-1252", "=?windows-1252?Q?na=EFve_posting?=", "naïve posting"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeEncodedHeader(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSubmission(t *testing.T) {
	t.Run("amount header parsed", func(t *testing.T) {
		msg := readMessage(t, rawPosting("Fence repair", "Fix two broken fence panels in my back yard.",
			map[string]string{"X-Fixer-Amount": "45.50"}))

		sub, err := parseSubmission("poster@example.com", msg, "X-Fixer-Amount")
		require.NoError(t, err)
		assert.Equal(t, "poster@example.com", sub.PosterEmail)
		assert.Equal(t, "Fence repair", sub.Title)
		assert.Equal(t, "Fix two broken fence panels in my back yard.", sub.Description)
		assert.Equal(t, 45.50, sub.Amount)
		assert.Equal(t, "smtp", sub.Source)
	})

	t.Run("missing amount defaults to zero", func(t *testing.T) {
		msg := readMessage(t, rawPosting("Fence repair", "Fix two broken fence panels in my back yard.", nil))

		sub, err := parseSubmission("poster@example.com", msg, "X-Fixer-Amount")
		require.NoError(t, err)
		assert.Zero(t, sub.Amount)
	})

	t.Run("unparseable amount becomes NaN", func(t *testing.T) {
		msg := readMessage(t, rawPosting("Fence repair", "Fix two broken fence panels in my back yard.",
			map[string]string{"X-Fixer-Amount": "fifty bucks"}))

		sub, err := parseSubmission("poster@example.com", msg, "X-Fixer-Amount")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(sub.Amount))
	})

	t.Run("encoded subject decoded", func(t *testing.T) {
		msg := readMessage(t, rawPosting("=?UTF-8?Q?Caf=C3=A9_cleanup?=", "Deep clean the kitchen after closing on Sunday.", nil))

		sub, err := parseSubmission("poster@example.com", msg, "X-Fixer-Amount")
		require.NoError(t, err)
		assert.Equal(t, "Café cleanup", sub.Title)
	})
}

func TestExtractPostingText_Multipart(t *testing.T) {
	raw := "From: poster@example.com\r\n" +
		"Subject: Fence repair\r\n" +
		"Content-Type: multipart/alternative; boundary=\"sep\"\r\n" +
		"\r\n" +
		"--sep\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Fix two broken fence panels.\r\n" +
		"--sep\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Fix two broken fence panels.</p>\r\n" +
		"--sep--\r\n"

	msg := readMessage(t, raw)
	text, err := extractPostingText(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Fix two broken fence panels.")
	assert.NotContains(t, text, "<p>")
}

func TestExtractPostingText_PlainBody(t *testing.T) {
	msg := readMessage(t, rawPosting("Fence repair", "Fix two broken fence panels.", nil))
	text, err := extractPostingText(msg)
	require.NoError(t, err)
	assert.Equal(t, "Fix two broken fence panels.", text)
}
