package services

import (
	"backoffice/config"
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Sender отправляет готовое письмо
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService предоставляет методы для отправки email и подписывается на события Notifier
type EmailService struct {
	sender Sender
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)
	return NewEmailServiceWithSender(dialer, cfg.SMTP.From)
}

// NewEmailServiceWithSender создает EmailService с произвольным отправителем
func NewEmailServiceWithSender(sender Sender, from string) *EmailService {
	return &EmailService{sender: sender, from: from}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

func (s *EmailService) Name() string { return "email" }

// Notify отправляет письмо каждому получателю события с известным адресом
func (s *EmailService) Notify(_ context.Context, event Event) error {
	var firstErr error
	for _, r := range event.Recipients {
		if r.Email == "" {
			continue
		}
		if err := s.SendEmail(r.Email, event.Title, renderEventBody(event)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func renderEventBody(event Event) string {
	return fmt.Sprintf(`
		<h2>%s</h2>
		<p>%s</p>
		<p>Дата: %s</p>
	`, html.EscapeString(event.Title), html.EscapeString(event.Body), event.CreatedAt.Format("02.01.2006 15:04:05"))
}
