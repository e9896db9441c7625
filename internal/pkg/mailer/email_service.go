package mailer

import (
	"errors"
	"fmt"
	"html"

	"ai-jobassist-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

var ErrMailerNotConfigured = errors.New("mailer: smtp host is not configured")

type IEmailService interface {
	SendPaymentFailed(toEmail, fullName, planName string) error
	SendSubscriptionCanceled(toEmail, fullName, planName string) error
}

type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderName string
	ClientURL  string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
	clientURL   string
	logger      logger.ILogger
}

func NewEmailService(cfg Config, log logger.ILogger) IEmailService {
	var d sender
	if cfg.Host != "" {
		d = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return &emailService{
		dialer:      d,
		senderEmail: cfg.Username,
		senderName:  cfg.SenderName,
		clientURL:   cfg.ClientURL,
		logger:      log,
	}
}

func (s *emailService) SendPaymentFailed(toEmail, fullName, planName string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>We couldn't process your payment</h2>
			<p>Hi %s,</p>
			<p>The latest payment for your <strong>%s</strong> plan did not go through. Your paid features are paused until the payment succeeds.</p>
			<a href="%s/settings/billing" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Update payment method</a>
		</div>
	`, html.EscapeString(fullName), html.EscapeString(planName), s.clientURL)

	return s.send(toEmail, "Action needed: payment failed", body)
}

func (s *emailService) SendSubscriptionCanceled(toEmail, fullName, planName string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your subscription has ended</h2>
			<p>Hi %s,</p>
			<p>Your <strong>%s</strong> plan is canceled and your account is back on the free tier. Your documents stay available.</p>
			<a href="%s/pricing" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">See plans</a>
		</div>
	`, html.EscapeString(fullName), html.EscapeString(planName), s.clientURL)

	return s.send(toEmail, "Your subscription has been canceled", body)
}

func (s *emailService) send(toEmail, subject, body string) error {
	if s.dialer == nil {
		return ErrMailerNotConfigured
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send email", map[string]interface{}{
			"to":      toEmail,
			"subject": subject,
			"error":   err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Email sent", map[string]interface{}{"to": toEmail, "subject": subject})
	return nil
}
