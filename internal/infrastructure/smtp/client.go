package smtp

import (
	"bytes"
	"fmt"
	"html/template"

	"habit-tracker/internal/config"

	"gopkg.in/gomail.v2"
)

const welcomeTemplate = `
<html>
<body>
	<h2>Welcome to Habit Tracker</h2>
	<p>Your account {{.Email}} is ready.</p>
	<p>Create your first habit and register your Telegram chat to receive reminders.</p>
</body>
</html>
`

// Client sends transactional email over SMTP
type Client struct {
	cfg     *config.SMTPConfig
	welcome *template.Template
}

// NewClient creates a new SMTP client
func NewClient(cfg *config.SMTPConfig) (*Client, error) {
	tmpl, err := template.New("welcome").Parse(welcomeTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse welcome template: %w", err)
	}

	return &Client{
		cfg:     cfg,
		welcome: tmpl,
	}, nil
}

// SendWelcomeEmail sends the post-registration welcome message
func (c *Client) SendWelcomeEmail(email string) error {
	var body bytes.Buffer
	if err := c.welcome.Execute(&body, struct{ Email string }{Email: email}); err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.cfg.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Habit Tracker")
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(c.cfg.Host, c.cfg.Port, c.cfg.Username, c.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}
