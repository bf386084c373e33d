package services

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/wearmade/wearmade-api/config"
)

// Notification templates
const (
	TemplateEstimateReceived = "estimate_received"
	TemplateEstimateAccepted = "estimate_accepted"
)

// Notifier delivers lifecycle notifications to users. Delivery is strictly
// best-effort: callers fire after the state transition has committed and a
// failed send must never surface to the API client.
type Notifier interface {
	Notify(recipientEmail, templateName string, args map[string]string) error
}

var notifierInstance Notifier = &LogNotifier{}

// GetNotifier returns the configured notifier instance
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (used at boot and in tests)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// NotifyAsync dispatches a notification in the background, logging and
// swallowing any delivery failure
func NotifyAsync(recipientEmail, templateName string, args map[string]string) {
	n := notifierInstance
	go func() {
		if err := n.Notify(recipientEmail, templateName, args); err != nil {
			log.Printf("Notification delivery failed (template=%s, to=%s): %v", templateName, recipientEmail, err)
		}
	}()
}

// LogNotifier writes notifications to the application log. Used in development
// and whenever SMTP is not configured.
type LogNotifier struct{}

// Notify logs the notification instead of delivering it
func (n *LogNotifier) Notify(recipientEmail, templateName string, args map[string]string) error {
	log.Printf("Notification (template=%s) to %s: %v", templateName, recipientEmail, args)
	return nil
}

// SMTPNotifier delivers notifications as plain-text email over SMTP
type SMTPNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPNotifier creates an SMTP-backed notifier from the application config
func NewSMTPNotifier(cfg *config.Config) (*SMTPNotifier, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	if cfg.SMTPUser == "" {
		return nil, fmt.Errorf("SMTP_USER not set")
	}
	if cfg.SMTPPass == "" {
		return nil, fmt.Errorf("SMTP_PASS not set")
	}

	return &SMTPNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.SMTPFrom,
	}, nil
}

// Notify renders the template and sends it via SMTP
func (n *SMTPNotifier) Notify(recipientEmail, templateName string, args map[string]string) error {
	subject, body := renderTemplate(templateName, args)

	addr := fmt.Sprintf("%s:%s", n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)

	msg := []byte(
		"From: " + n.from + "\r\n" +
			"To: " + recipientEmail + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, n.from, []string{recipientEmail}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}

// renderTemplate maps a template name and its arguments to a subject and body
func renderTemplate(templateName string, args map[string]string) (string, string) {
	switch templateName {
	case TemplateEstimateReceived:
		return "You received a new estimate",
			fmt.Sprintf("Tailor %s sent an estimate of $%s for your order %q. Log in to review it.",
				args["tailor_name"], args["price"], args["order_title"])
	case TemplateEstimateAccepted:
		return "Your estimate was accepted",
			fmt.Sprintf("Your estimate for order %q was accepted. The chat with your customer is now open.",
				args["order_title"])
	default:
		return "WearMade notification", fmt.Sprintf("%v", args)
	}
}
