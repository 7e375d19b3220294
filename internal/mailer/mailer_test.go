package mailer

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestLogSender_KeepsBodyOutOfInfoLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	msg := Message{
		To:      "a@x.com",
		Subject: "Password reset",
		Text:    "http://mentor.test/auth/password-reset/confirm?token=secret-token",
	}

	require.NoError(t, LogSender{Logger: logger}.Send(context.Background(), msg))
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	require.Equal(t, logrus.InfoLevel, entry.Level)
	require.Equal(t, "a@x.com", entry.Data["to"])
	require.NotContains(t, entry.Message, "secret-token")

	hook.Reset()
	logger.SetLevel(logrus.DebugLevel)
	require.NoError(t, LogSender{Logger: logger}.Send(context.Background(), msg))
	require.Len(t, hook.AllEntries(), 2)
	require.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	require.Contains(t, hook.LastEntry().Message, "secret-token")
}
