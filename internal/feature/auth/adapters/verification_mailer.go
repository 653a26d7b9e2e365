package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/feature/auth/usecase"
	"internship_backend/internal/platform/mail"
)

// verificationMailer renders verification links pointing at the frontend.
type verificationMailer struct {
	sender      mail.Sender
	frontendURL string
	ttl         time.Duration
}

var _ usecase.VerificationMailer = (*verificationMailer)(nil)

func NewVerificationMailer(sender mail.Sender, frontendURL string, ttl time.Duration) *verificationMailer {
	return &verificationMailer{
		sender:      sender,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		ttl:         ttl,
	}
}

// Link returns <frontend>/verify-email?token=<raw>.
func (m *verificationMailer) Link(rawToken string) string {
	return m.frontendURL + "/verify-email?token=" + url.QueryEscape(rawToken)
}

func (m *verificationMailer) SendVerification(ctx context.Context, u *entity.User, rawToken string) error {
	msg, err := mail.VerificationMessage(u.Email, u.Name, m.Link(rawToken), m.ttl)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
