package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/mail"
)

func newContactServiceFixture(t *testing.T) (*ContactService, *MockUserRepository, *captureSender) {
	t.Helper()
	users := NewMockUserRepository()
	sender := newCaptureSender()
	mailer := mail.NewMailer(sender, mail.Config{
		SiteName:   "Bronte",
		ClientURL:  testClientURL,
		AdminEmail: "admin@example.com",
	}, zerolog.Nop())
	return NewContactService(users, mailer, zerolog.Nop()), users, sender
}

func TestContactService_ContactSite(t *testing.T) {
	svc, _, sender := newContactServiceFixture(t)

	err := svc.ContactSite(context.Background(), ContactInput{
		Name:    "Reader",
		Email:   "reader@example.com",
		Message: "Love the site.",
	})
	require.NoError(t, err)

	msg, ok := sender.wait(time.Second)
	require.True(t, ok, "expected contact mail to be dispatched")
	require.Equal(t, "admin@example.com", msg.To)
	require.Contains(t, msg.HTML, "reader@example.com")
	require.Contains(t, msg.HTML, "Love the site.")
}

func TestContactService_ContactSite_BlankMessage(t *testing.T) {
	svc, _, _ := newContactServiceFixture(t)

	for _, message := range []string{"", "   ", "\n\t"} {
		err := svc.ContactSite(context.Background(), ContactInput{
			Name:    "Reader",
			Email:   "reader@example.com",
			Message: message,
		})
		require.ErrorIs(t, err, ErrMessageRequired)
	}

	err := svc.ContactAuthor(context.Background(), "whoever", ContactInput{
		Name:    "Reader",
		Email:   "reader@example.com",
		Message: " ",
	})
	require.ErrorIs(t, err, ErrMessageRequired)
}

func TestContactService_ContactAuthor(t *testing.T) {
	svc, users, sender := newContactServiceFixture(t)
	author := seedUser(t, users, "author@example.com", "secret123")

	err := svc.ContactAuthor(context.Background(), author.Username, ContactInput{
		Name:    "Fan",
		Email:   "fan@example.com",
		Message: "Great post!",
	})
	require.NoError(t, err)

	msg, ok := sender.wait(time.Second)
	require.True(t, ok, "expected author contact mail to be dispatched")
	require.Equal(t, "author@example.com", msg.To)
	require.Contains(t, msg.HTML, "fan@example.com")
}

func TestContactService_ContactAuthor_UnknownAuthor(t *testing.T) {
	svc, _, _ := newContactServiceFixture(t)

	err := svc.ContactAuthor(context.Background(), "nobody", ContactInput{
		Name:    "Fan",
		Email:   "fan@example.com",
		Message: "Hello?",
	})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
