package service

import (
	"context"
	"fmt"

	"github.com/shopportal/accounts-service/internal/domain"
	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/identity"
	"github.com/shopportal/accounts-service/internal/mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// verificationMailer resolves verification links from the identity provider
// and delivers them by email. Without a transport it logs the link instead,
// which keeps development environments working without an SMTP account.
type verificationMailer struct {
	provider    identity.Provider
	transport   mail.Transport
	from        string
	frontendURL string
	logger      *zap.Logger
	dispatches  metric.Int64Counter
}

// NewVerificationMailer creates a verification mailer. transport may be nil
// when SMTP is not configured.
func NewVerificationMailer(
	provider identity.Provider,
	transport mail.Transport,
	from string,
	frontendURL string,
	logger *zap.Logger,
) VerificationMailer {
	dispatches, err := otel.Meter("accounts-service").Int64Counter(
		"verification_email_dispatches_total",
		metric.WithDescription("Verification email dispatch attempts by outcome"),
	)
	if err != nil {
		logger.Warn("failed to create dispatch counter", zap.Error(err))
	}

	return &verificationMailer{
		provider:    provider,
		transport:   transport,
		from:        from,
		frontendURL: frontendURL,
		logger:      logger,
		dispatches:  dispatches,
	}
}

// Dispatch resolves a verification link for email and attempts delivery.
// Transport failures are wrapped in domain.ErrEmailDispatch so callers can
// treat them as non-fatal.
func (m *verificationMailer) Dispatch(ctx context.Context, uid, email string) (dto.VerificationDispatch, error) {
	link, err := m.provider.GenerateVerificationLink(ctx, email, m.frontendURL)
	if err != nil {
		return dto.VerificationDispatch{}, fmt.Errorf("failed to resolve verification link: %w", err)
	}

	if m.transport == nil {
		m.logger.Info("smtp not configured, verification link logged",
			zap.String("uid", uid),
			zap.String("email", email),
			zap.String("link", link),
		)
		m.record(ctx, "logged")
		return dto.VerificationDispatch{Success: true, Logged: true, Link: link}, nil
	}

	body, err := mail.RenderVerification(link)
	if err != nil {
		m.record(ctx, "failed")
		return dto.VerificationDispatch{}, fmt.Errorf("verification email for %s not rendered: %v: %w", email, err, domain.ErrEmailDispatch)
	}

	if err := m.transport.Send(ctx, m.from, email, mail.VerificationSubject, body); err != nil {
		m.record(ctx, "failed")
		return dto.VerificationDispatch{}, fmt.Errorf("verification email to %s not sent: %v: %w", email, err, domain.ErrEmailDispatch)
	}

	m.logger.Info("verification email sent",
		zap.String("uid", uid),
		zap.String("email", email),
	)
	m.record(ctx, "sent")

	return dto.VerificationDispatch{Success: true}, nil
}

func (m *verificationMailer) record(ctx context.Context, outcome string) {
	if m.dispatches != nil {
		m.dispatches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
