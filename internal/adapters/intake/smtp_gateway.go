package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// SMTPGateway accepts mail-in postings on an SMTP hop. The subject is the
// posting title and the text body its description. Each message is
// moderated and then either rejected at DATA or stamped with verdict
// headers and relayed to the upstream intake hop.
type SMTPGateway struct {
	service        *core.ModerationService
	logger         *zap.Logger
	listenAddr     string
	relayAddr      string
	blockRejected  bool
	approvedHeader string
	ruleHeader     string
	reasonHeader   string
	amountHeader   string
	server         *smtp.Server
}

// NewSMTPGateway creates a new SMTP intake gateway
func NewSMTPGateway(
	service *core.ModerationService,
	logger *zap.Logger,
	listenAddr string,
	relayAddr string,
	blockRejected bool,
	approvedHeader string,
	ruleHeader string,
	reasonHeader string,
	amountHeader string,
) *SMTPGateway {
	return &SMTPGateway{
		service:        service,
		logger:         logger,
		listenAddr:     listenAddr,
		relayAddr:      relayAddr,
		blockRejected:  blockRejected,
		approvedHeader: approvedHeader,
		ruleHeader:     ruleHeader,
		reasonHeader:   reasonHeader,
		amountHeader:   amountHeader,
	}
}

// Start starts the SMTP server in the background
func (g *SMTPGateway) Start() error {
	g.server = smtp.NewServer(&smtpBackend{gateway: g})

	g.server.Addr = g.listenAddr
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 10 * 1024 * 1024 // 10MB
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("SMTP gateway starting", zap.String("address", g.listenAddr))

	go func() {
		if err := g.server.ListenAndServe(); err != nil {
			if !errors.Is(err, smtp.ErrServerClosed) {
				g.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (g *SMTPGateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// ProcessSubmission moderates a submission directly, bypassing SMTP.
// Mainly used for testing or direct calls.
func (g *SMTPGateway) ProcessSubmission(ctx context.Context, sub *core.JobSubmission) (*core.ModerationVerdict, error) {
	return g.service.ModerateSubmission(ctx, sub)
}

// relayUpstream sends the stamped message to the upstream intake hop
func (g *SMTPGateway) relayUpstream(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", g.relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			g.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The message is already accepted at this point
		g.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	gateway *SMTPGateway
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		gateway:    b.gateway,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	gateway    *SMTPGateway
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data moderates the message and relays or rejects it
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.gateway.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.gateway.logger.Error("Failed to parse message", zap.Error(err))
		return err
	}

	sub, err := parseSubmission(s.sender, msg, s.gateway.amountHeader)
	if err != nil {
		s.gateway.logger.Error("Failed to parse submission", zap.Error(err))
		return err
	}

	senderDomain := "unknown"
	if parts := strings.Split(s.sender, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	verdict, moderr := s.gateway.service.ModerateSubmission(ctx, sub)
	if moderr != nil {
		s.gateway.logger.Error("Failed to moderate submission",
			zap.Error(moderr),
			zap.String("sender", s.sender),
			zap.String("sender_domain", senderDomain))

		// Fail open so a moderation outage never bounces mail
		verdict = &core.ModerationVerdict{
			Approved:   true,
			Reason:     fmt.Sprintf("error during moderation: %v", moderr),
			ReviewedBy: "error",
			DecidedAt:  time.Now(),
		}
	}

	if !verdict.Approved && s.gateway.blockRejected && moderr == nil {
		s.gateway.logger.Info("Rejecting posting",
			zap.String("from", s.sender),
			zap.String("sender_domain", senderDomain),
			zap.String("rule", verdict.Rule),
			zap.String("reason", verdict.Reason))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Posting rejected: %s", verdict.Reason),
		}
	}

	stamped := s.stampVerdict(msg, rawData, verdict, moderr)

	if s.gateway.relayAddr != "" {
		if err := s.gateway.relayUpstream(s.sender, s.recipients, stamped); err != nil {
			s.gateway.logger.Error("Failed to relay message upstream",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.gateway.logger.Warn("No relay configured, dropping message after moderation")
	}

	s.gateway.logger.Info("Processed posting",
		zap.String("from", s.sender),
		zap.String("sender_domain", senderDomain),
		zap.Bool("approved", verdict.Approved),
		zap.String("rule", verdict.Rule))

	return nil
}

// stampVerdict rebuilds the message with the verdict headers prepended,
// preserving the original headers and body bytes.
func (s *smtpSession) stampVerdict(msg *mail.Message, rawData []byte, verdict *core.ModerationVerdict, moderr error) []byte {
	var stamped bytes.Buffer

	fmt.Fprintf(&stamped, "%s: %t\r\n", s.gateway.approvedHeader, verdict.Approved)
	if verdict.Rule != "" {
		fmt.Fprintf(&stamped, "%s: %s\r\n", s.gateway.ruleHeader, verdict.Rule)
	}
	if verdict.Reason != "" {
		fmt.Fprintf(&stamped, "%s: %s\r\n", s.gateway.reasonHeader, verdict.Reason)
	}
	if moderr != nil {
		fmt.Fprintf(&stamped, "X-Fixer-Moderation-Error: %s\r\n", moderr.Error())
	}

	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&stamped, "%s: %s\r\n", key, value)
		}
	}
	fmt.Fprintf(&stamped, "\r\n")

	// Body bytes are copied raw so MIME parts survive untouched
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		stamped.Write(rawData[idx+4:])
	} else if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		stamped.Write(rawData[idx+2:])
	}

	return stamped.Bytes()
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
