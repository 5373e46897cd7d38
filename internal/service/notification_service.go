package service

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/config"
	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// emailSender is the part of the resend client used for delivery.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// NotificationService delivers account mails. Without an API key mails are only logged.
type NotificationService struct {
	sender emailSender
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &NotificationService{logger: logger, cfg: cfg}
	if strings.TrimSpace(cfg.ResendAPIKey) != "" {
		n.sender = resend.NewClient(cfg.ResendAPIKey).Emails
	} else {
		logger.Warn("RESEND_API_KEY not provided; account mails will only be logged")
	}
	return n
}

// SendVerification mails the email confirmation link.
func (n *NotificationService) SendVerification(ctx context.Context, account *domain.Account, link string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p><p>Confirm your email address by opening <a href="%s">this link</a>.</p>`,
		html.EscapeString(account.Name), html.EscapeString(link))
	return n.send(ctx, account.Email, "Confirm your email address", body, link)
}

// SendRecovery mails the password recovery link.
func (n *NotificationService) SendRecovery(ctx context.Context, account *domain.Account, link string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p><p>Reset your password by opening <a href="%s">this link</a>. If you did not ask for this, ignore this mail.</p>`,
		html.EscapeString(account.Name), html.EscapeString(link))
	return n.send(ctx, account.Email, "Reset your password", body, link)
}

func (n *NotificationService) send(ctx context.Context, to, subject, body, link string) error {
	if n.sender == nil || strings.TrimSpace(n.cfg.EmailFrom) == "" {
		n.logger.Info("mail delivery skipped",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("link", redactSecret(link)))
		return nil
	}

	sent, err := n.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.cfg.EmailFrom,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	n.logger.Debug("mail sent", zap.String("to", to), zap.String("id", sent.Id))
	return nil
}

// redactSecret masks the one-time secret of an account link before it is logged.
func redactSecret(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "[unparseable link]"
	}
	q := u.Query()
	if q.Has("secret") {
		q.Set("secret", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
