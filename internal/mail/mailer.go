package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers the plaintext login code to the user's mailbox.
type Mailer interface {
	SendLoginCode(ctx context.Context, to, code string) error
}

type resendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *resendMailer {
	return &resendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *resendMailer) SendLoginCode(ctx context.Context, to, code string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Seu código de acesso FitScan",
		Text:    fmt.Sprintf("Seu código FitScan é: %s\n\nEle expira em 10 minutos.", code),
	}

	_, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send login code email: %w", err)
	}
	return nil
}

// logMailer prints codes to the server log instead of sending email.
// Used in development when no Resend key is configured.
type logMailer struct{}

func NewLogMailer() *logMailer {
	return &logMailer{}
}

func (m *logMailer) SendLoginCode(_ context.Context, to, code string) error {
	log.Printf("[mail] login code for %s: %s", to, code)
	return nil
}
