package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/platform/mail"
)

type senderFunc func(ctx context.Context, msg mail.Message) error

func (f senderFunc) Send(ctx context.Context, msg mail.Message) error { return f(ctx, msg) }

func TestVerificationMailer(t *testing.T) {
	var sent mail.Message
	m := NewVerificationMailer(senderFunc(func(_ context.Context, msg mail.Message) error {
		sent = msg
		return nil
	}), "https://portal.example/", 24*time.Hour)

	assert.Equal(t, "https://portal.example/verify-email?token=a%2Bb", m.Link("a+b"))

	u := &entity.User{Name: "Sam", Email: "sam@example.com"}
	require.NoError(t, m.SendVerification(context.Background(), u, "tok123"))
	assert.Equal(t, "sam@example.com", sent.To)
	assert.Contains(t, sent.Text, "https://portal.example/verify-email?token=tok123")
	assert.Contains(t, sent.HTML, "Sam")

	failing := NewVerificationMailer(senderFunc(func(context.Context, mail.Message) error {
		return errors.New("relay down")
	}), "https://portal.example", time.Hour)
	assert.Error(t, failing.SendVerification(context.Background(), u, "tok"))
}
