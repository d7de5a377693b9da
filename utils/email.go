package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// GetEmailConfig reads SMTP settings from the environment. Callers that have
// a settings row should prefer its values and fall back to this.
func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// Merge overlays non-empty values from other onto the config. Used to apply
// the salon settings row over the environment defaults.
func (c *EmailConfig) Merge(other EmailConfig) {
	if other.Host != "" {
		c.Host = other.Host
	}
	if other.Port != "" {
		c.Port = other.Port
	}
	if other.Username != "" {
		c.Username = other.Username
	}
	if other.Password != "" {
		c.Password = other.Password
	}
	if other.From != "" {
		c.From = other.From
	}
}

func SendEmail(to, subject, htmlBody string) error {
	return SendEmailWithConfig(GetEmailConfig(), to, subject, htmlBody)
}

func SendEmailWithConfig(config *EmailConfig, to, subject, htmlBody string) error {
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome to Ferney Nails!"
		body := fmt.Sprintf(`<h2>Welcome, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Book appointments online</li>
<li>Earn loyalty points on every visit</li>
<li>Track your appointment history</li>
</ul>
<p>See you soon!</p>
<p>The Ferney Nails Team</p>`, strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

// SendInvoiceEmail delivers an invoice asynchronously. Failures are logged
// and never surfaced to the request that triggered them.
func SendInvoiceEmail(config *EmailConfig, email, invoiceNumber, htmlBody string) {
	go func() {
		subject := fmt.Sprintf("Your invoice %s - Ferney Nails", invoiceNumber)
		if err := SendEmailWithConfig(config, email, subject, htmlBody); err != nil {
			log.Printf("Failed to send invoice %s to %s: %v", invoiceNumber, email, err)
		}
	}()
}

func SendAppointmentConfirmation(email, name, serviceName, date, timeOfDay string) {
	go func() {
		subject := "Appointment Confirmed - Ferney Nails"
		body := fmt.Sprintf(`<h2>Appointment Confirmed!</h2>
<p>Hi %s,</p>
<p>Your appointment for <strong>%s</strong> is booked on <strong>%s</strong> at <strong>%s</strong>.</p>
<p>See you soon!</p>
<p>The Ferney Nails Team</p>`, strings.Split(name, " ")[0], serviceName, date, timeOfDay)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send appointment confirmation to %s: %v", email, err)
		}
	}()
}
