package service

import (
	"fmt"
	"html"

	"trackify/config"

	"gopkg.in/gomail.v2"
)

// EmailService sends transactional mail over SMTP.
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates an email service.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendContactNotification forwards a contact-form submission to the site
// owner address configured in email.owner_to.
func (s *EmailService) SendContactNotification(name, email, message string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("email service is disabled")
	}
	if s.cfg.OwnerTo == "" {
		return fmt.Errorf("email.owner_to is not configured")
	}

	subject := fmt.Sprintf("[Trackify] New contact message from %s", name)
	body := s.generateContactBody(name, email, message)

	return s.sendEmail(s.cfg.OwnerTo, subject, body)
}

// generateContactBody renders the HTML notification body.
func (s *EmailService) generateContactBody(name, email, message string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .message { background: #f8f9fa; border-left: 4px solid #2563eb; padding: 15px; border-radius: 4px; white-space: pre-wrap; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>📬 Trackify Contact Form</h1>
        </div>
        <div class="content">
            <p><strong>From:</strong> %s &lt;%s&gt;</p>
            <div class="message">%s</div>
        </div>
        <div class="footer">
            <p>This email was sent automatically, do not reply</p>
            <p>© Trackify — personal finance tracker</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(name), html.EscapeString(email), html.EscapeString(message))
}

// sendEmail delivers a single HTML message.
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
