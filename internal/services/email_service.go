package services

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendLoginCodeEmail(email, code string, minutesValid int) error
	SendLowStockEmail(email, productName string, quantity, threshold int) error
	SendReportEmail(email, subject, body, filename string, attachment []byte, contentType string) error
}

type emailService struct {
	dialer   *gomail.Dialer
	from     string
	shopName string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, shopName string) EmailService {
	return &emailService{
		dialer:   gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:     fromEmail,
		shopName: shopName,
	}
}

func (s *emailService) SendLoginCodeEmail(email, code string, minutesValid int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("%s — Your login code", s.shopName))

	body := fmt.Sprintf(
		"Your login code is: %s\n\n"+
			"This code is valid for %d minutes.\n"+
			"If you did not request this code, ignore this email.\n\n"+
			"— The %s Team",
		code, minutesValid, s.shopName,
	)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send login code email: %w", err)
	}
	return nil
}

func (s *emailService) SendLowStockEmail(email, productName string, quantity, threshold int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Low stock: %s", productName))

	body := fmt.Sprintf(`
		<h3>Low stock alert</h3>
		<p>Product <strong>%s</strong> is down to %d units (threshold %d).</p>
		<p>Consider reordering.</p>
	`, productName, quantity, threshold)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send low stock email: %w", err)
	}
	return nil
}

func (s *emailService) SendReportEmail(email, subject, body, filename string, attachment []byte, contentType string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.Attach(filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
	)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}
