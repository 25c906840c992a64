package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
	"github.com/SatuKas/api/internal/utils/metrics"
)

// MailTransport delivers a single HTML message. Implementations:
// SmtpTransport and ApiTransport, selected once at the composition root.
type MailTransport interface {
	SendMail(ctx context.Context, to, subject, html string) error
}

const (
	SubjectVerifyEmail   = "Verify your email address"
	SubjectResetPassword = "Reset your password"
)

// Mailer renders templates and hands the result to the configured transport.
type Mailer struct {
	transport MailTransport
	cfg       config.AppConfig
	logger    *zap.Logger
}

// NewMailer creates a Mailer over the given transport.
func NewMailer(transport MailTransport, cfg config.AppConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		transport: transport,
		cfg:       cfg,
		logger:    logger.Named("mailer"),
	}
}

// NewTransport selects the outbound mail driver from config.
func NewTransport(cfg config.MailConfig, logger *zap.Logger) MailTransport {
	if cfg.Driver == "api" {
		return NewApiTransport(cfg, logger)
	}
	return NewSmtpTransport(cfg, logger)
}

// verificationURL builds the link embedded in a verification or reset email.
// Depending on config the link points at the frontend app or at this
// service's own HTML confirmation endpoint.
func (m *Mailer) verificationURL(path, frontendPath, token string) string {
	if m.cfg.VerificationVia == "frontend" {
		return fmt.Sprintf("%s%s%s", m.cfg.FrontendURL, frontendPath, token)
	}
	return fmt.Sprintf("%s%s%s", m.cfg.BackendURL, path, token)
}

// SendVerificationEmail sends the address-confirmation message.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	url := m.verificationURL("/api/v1/auth/email/verify/", "/verify-email?token=", token)
	html, err := renderVerifyEmail(name, url)
	if err != nil {
		return err
	}
	return m.send(ctx, "verification", to, SubjectVerifyEmail, html)
}

// SendPasswordResetEmail sends the reset-password message. The link always
// targets the frontend since the user has to type a new password there.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	url := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, token)
	html, err := renderResetPassword(name, url)
	if err != nil {
		return err
	}
	return m.send(ctx, "password_reset", to, SubjectResetPassword, html)
}

func (m *Mailer) send(ctx context.Context, kind, to, subject, html string) error {
	if err := m.transport.SendMail(ctx, to, subject, html); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, metrics.StatusFailure).Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues(kind, metrics.StatusSuccess).Inc()
	return nil
}
