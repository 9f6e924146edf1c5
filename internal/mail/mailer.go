package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// dispatchTimeout bounds a single background delivery attempt.
const dispatchTimeout = 30 * time.Second

// Mailer composes the platform's transactional messages and dispatches them.
// Dispatch is fire-and-forget: the HTTP response is sent once the message is
// handed to the transport goroutine, not once it is delivered. Delivery is
// at-least-attempted, never guaranteed.
type Mailer struct {
	sender     Sender
	siteName   string
	clientURL  string
	adminEmail string
	logger     zerolog.Logger
}

// Config holds the site identity used in message bodies.
type Config struct {
	SiteName   string
	ClientURL  string
	AdminEmail string
}

// NewMailer creates a Mailer on top of the given Sender.
func NewMailer(sender Sender, cfg Config, logger zerolog.Logger) *Mailer {
	return &Mailer{
		sender:     sender,
		siteName:   cfg.SiteName,
		clientURL:  cfg.ClientURL,
		adminEmail: cfg.AdminEmail,
		logger:     logger.With().Str("component", "mailer").Logger(),
	}
}

// dispatch sends the message on a background goroutine, logging failures.
func (m *Mailer) dispatch(msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := m.sender.Send(ctx, msg); err != nil {
			m.logger.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("failed to send mail")
			return
		}
		m.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail sent")
	}()
}

// DispatchActivationLink emails the account activation link.
func (m *Mailer) DispatchActivationLink(email, token string) {
	m.dispatch(Message{
		To:      email,
		Subject: "Account activation link",
		HTML: fmt.Sprintf(`
      <p>To activate your account, please use the following link:</p>
      <p>%s/auth/account/activate/%s</p>
      <hr />
      <p>This email may contain sensitive information</p>
      <p>%s</p>
    `, m.clientURL, token, m.clientURL),
	})
}

// DispatchResetLink emails the password reset link.
func (m *Mailer) DispatchResetLink(email, token string) {
	m.dispatch(Message{
		To:      email,
		Subject: "Password reset link",
		HTML: fmt.Sprintf(`
      <p>To reset your password, please use the following link:</p>
      <p>%s/auth/password/reset/%s</p>
      <hr />
      <p>This email may contain sensitive information</p>
      <p>%s</p>
    `, m.clientURL, token, m.clientURL),
	})
}

// DispatchContactForm relays a contact form submission to the site admin.
func (m *Mailer) DispatchContactForm(name, email, message string) {
	m.dispatch(Message{
		To:      m.adminEmail,
		Subject: fmt.Sprintf("Contact form - %s", m.siteName),
		HTML:    contactBody(name, email, message, m.clientURL),
	})
}

// DispatchAuthorContact relays a reader message to a blog author.
func (m *Mailer) DispatchAuthorContact(authorEmail, name, email, message string) {
	m.dispatch(Message{
		To:      authorEmail,
		Subject: fmt.Sprintf("Someone sent you a message from %s", m.siteName),
		HTML:    contactBody(name, email, message, m.clientURL),
	})
}

func contactBody(name, email, message, clientURL string) string {
	return fmt.Sprintf(`
      <h4>Message received from:</h4>
      <p>Sender name: %s</p>
      <p>Sender email: %s</p>
      <p>Sender message: %s</p>
      <hr />
      <p>This email may contain sensitive information</p>
      <p>%s</p>
    `, name, email, message, clientURL)
}
