package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mentor-connect/internal/mailer"
	"mentor-connect/internal/repository/sqlite"
)

func TestContactService_Submit(t *testing.T) {
	f := newFixture(t)
	dispatcher := &recordingDispatcher{}
	svc := NewContactService(sqlite.NewContactRepository(f.db), dispatcher, "staff@mentor.test", quietLogger())

	msg, err := svc.Submit(context.Background(), ContactInput{
		Name:    " Eve ",
		Email:   "Eve@X.com",
		Subject: "Mentors",
		Message: "How do I find a mentor?",
	})
	require.NoError(t, err)
	require.NotZero(t, msg.ID)
	require.Equal(t, "Eve", msg.Name)
	require.Equal(t, "eve@x.com", msg.Email)
	require.Equal(t, 1, f.count(t, "contact_messages"))

	sent := dispatcher.notifications()
	require.Len(t, sent, 1)
	require.Equal(t, "staff@mentor.test", sent[0].To)
	require.Equal(t, mailer.TemplateContactMessage, sent[0].Template)
	require.Equal(t, "Mentors", sent[0].Data["Subject"])
}

func TestContactService_NoInboxOnlyStores(t *testing.T) {
	f := newFixture(t)
	dispatcher := &recordingDispatcher{}
	svc := NewContactService(sqlite.NewContactRepository(f.db), dispatcher, "", quietLogger())

	_, err := svc.Submit(context.Background(), ContactInput{Name: "Eve", Email: "eve@x.com", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)
	require.Empty(t, dispatcher.notifications())
	require.Equal(t, 1, f.count(t, "contact_messages"))
}

func TestContactService_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewContactService(sqlite.NewContactRepository(f.db), nil, "", quietLogger())

	_, err := svc.Submit(context.Background(), ContactInput{
		Email:   "eve",
		Subject: strings.Repeat("s", 201),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "This field is required.", verr.Fields["name"])
	require.Equal(t, "Enter a valid email address.", verr.Fields["email"])
	require.Equal(t, "Ensure this value has at most 200 characters.", verr.Fields["subject"])
	require.Equal(t, "This field is required.", verr.Fields["message"])
	require.Equal(t, 0, f.count(t, "contact_messages"))
}
