package intake

import (
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

func newTestSMTPGateway(t *testing.T, blockRejected bool) *SMTPGateway {
	t.Helper()
	// No relay address: messages are moderated, stamped and dropped
	return NewSMTPGateway(newTestService(t), zap.NewNop(), "127.0.0.1:0", "", blockRejected,
		"X-Fixer-Approved", "X-Fixer-Rule", "X-Fixer-Reason", "X-Fixer-Amount")
}

func newTestSession(g *SMTPGateway) *smtpSession {
	s := &smtpSession{gateway: g, recipients: make([]string, 0)}
	s.sender = "poster@example.com"
	s.recipients = append(s.recipients, "intake@fixer.example")
	return s
}

const cleanPosting = "Need help with yard work this weekend. Rake leaves and bag them."
const shadyPosting = "Easy work, cash only, no questions asked. Just deliver some packages."

func TestSMTPSession_AcceptsCleanPosting(t *testing.T) {
	g := newTestSMTPGateway(t, true)
	s := newTestSession(g)

	raw := rawPosting("Yard work", cleanPosting, map[string]string{"X-Fixer-Amount": "50"})
	err := s.Data(strings.NewReader(raw))
	assert.NoError(t, err)
}

func TestSMTPSession_BlocksRejectedPosting(t *testing.T) {
	g := newTestSMTPGateway(t, true)
	s := newTestSession(g)

	raw := rawPosting("Quick gig", shadyPosting, map[string]string{"X-Fixer-Amount": "50"})
	err := s.Data(strings.NewReader(raw))
	require.Error(t, err)

	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	assert.Equal(t, 550, smtpErr.Code)
	assert.Contains(t, smtpErr.Message, "suspicious")
}

func TestSMTPSession_StampsWhenNotBlocking(t *testing.T) {
	g := newTestSMTPGateway(t, false)
	s := newTestSession(g)

	raw := rawPosting("Quick gig", shadyPosting, map[string]string{"X-Fixer-Amount": "50"})
	err := s.Data(strings.NewReader(raw))
	assert.NoError(t, err)
}

func TestSMTPSession_StampVerdict(t *testing.T) {
	g := newTestSMTPGateway(t, false)
	s := newTestSession(g)

	raw := rawPosting("Yard work", cleanPosting, nil)
	msg := readMessage(t, raw)

	verdict := &core.ModerationVerdict{
		Approved: false,
		Reason:   "content suggests suspicious activity",
		Rule:     "suspicious_keywords",
	}
	stamped := string(s.stampVerdict(msg, []byte(raw), verdict, nil))

	assert.Contains(t, stamped, "X-Fixer-Approved: false\r\n")
	assert.Contains(t, stamped, "X-Fixer-Rule: suspicious_keywords\r\n")
	assert.Contains(t, stamped, "X-Fixer-Reason: content suggests suspicious activity\r\n")
	assert.Contains(t, stamped, "Subject: Yard work\r\n")
	assert.True(t, strings.HasSuffix(stamped, cleanPosting))
}

func TestSMTPSession_Reset(t *testing.T) {
	g := newTestSMTPGateway(t, false)
	s := newTestSession(g)

	s.Reset()
	assert.Empty(t, s.sender)
	assert.Empty(t, s.recipients)
}
