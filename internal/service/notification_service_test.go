package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/devsanbid/bravo-test-sub001/internal/config"
	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

func TestSkippedMailDoesNotLogSecret(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewNotificationService(zap.New(core), config.NotificationConfig{EmailFrom: "noreply@example.com"})

	link := "https://prep.example.com/forgotpassword?secret=s3cr3t-value&userId=acc-1"
	err := n.SendRecovery(context.Background(), &domain.Account{Email: "asha@example.com", Name: "Asha"}, link)
	require.NoError(t, err)

	skipped := logs.FilterMessage("mail delivery skipped").All()
	require.Len(t, skipped, 1)
	logged := skipped[0].ContextMap()["link"].(string)
	assert.Contains(t, logged, "userId=acc-1")
	assert.Contains(t, logged, "secret=REDACTED")

	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			if s, ok := v.(string); ok {
				assert.False(t, strings.Contains(s, "s3cr3t-value"), entry.Message)
			}
		}
	}
}

func TestRedactSecretKeepsLinksWithoutSecret(t *testing.T) {
	assert.Equal(t, "https://prep.example.com/verify?userId=u1", redactSecret("https://prep.example.com/verify?userId=u1"))
}
