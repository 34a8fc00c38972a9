package mailer

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"gorm.io/gorm"

	"pawphysio/config"
	"pawphysio/models"
)

// Message describes one transactional email to send.
type Message struct {
	Type      string
	To        string
	ToName    string
	BookingID string
	UserID    uint
	Language  string
	Data      map[string]interface{}
}

// Mailer sends transactional email over SMTP and records every attempt in
// the email_logs table. A failed attempt keeps its log row with status
// failed; retries append new rows and never touch old ones.
type Mailer struct {
	db           *gorm.DB
	host         string
	port         int
	user         string
	password     string
	from         string
	fromName     string
	timeout      time.Duration
	sendDisabled bool
}

// New constructs a Mailer from the global settings.
func New(db *gorm.DB) *Mailer {
	cfg := config.Settings
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		db:           db,
		host:         cfg.SMTPHost,
		port:         cfg.SMTPPort,
		user:         cfg.SMTPUser,
		password:     cfg.SMTPPassword,
		from:         from,
		fromName:     cfg.MailFromName,
		timeout:      time.Duration(cfg.SMTPTimeoutSec) * time.Second,
		sendDisabled: cfg.EmailSendDisabled,
	}
}

// Send renders, logs and delivers one email. The returned log row reflects
// the outcome (sent or failed); the error mirrors a failed delivery.
func (m *Mailer) Send(msg Message) (*models.EmailLog, error) {
	language := strings.ToLower(strings.TrimSpace(msg.Language))
	if language == "" {
		language = config.Settings.DefaultLanguage
	}

	subject, body, err := renderTemplate(msg.Type, language, msg.Data)
	if err != nil {
		return nil, err
	}

	entry := &models.EmailLog{
		EmailType:      msg.Type,
		Status:         models.EmailPending,
		RecipientEmail: msg.To,
		RecipientName:  msg.ToName,
		Subject:        subject,
		BookingID:      msg.BookingID,
		UserID:         msg.UserID,
		Language:       language,
	}
	entry.SetData(msg.Data)

	if err := m.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record email log: %w", err)
	}

	sendErr := m.deliver(msg.To, subject, body)
	if sendErr != nil {
		entry.Status = models.EmailFailed
		entry.ErrorDetail = sendErr.Error()
		log.Printf("mailer: send to %s failed: %v", msg.To, sendErr)
	} else {
		entry.Status = models.EmailSent
	}

	if err := m.db.Save(entry).Error; err != nil {
		log.Printf("mailer: failed to update email log %d: %v", entry.ID, err)
	}

	return entry, sendErr
}

// deliver pushes the rendered message over SMTP with STARTTLS and a
// connection-level deadline.
func (m *Mailer) deliver(to, subject, htmlBody string) error {
	if m.sendDisabled {
		log.Printf("mailer: send disabled, skipping delivery to %s", to)
		return nil
	}

	fromHeader := fmt.Sprintf("%s <%s>", m.fromName, m.from)
	raw := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	conn, err := net.DialTimeout("tcp", addr, m.timeout)
	if err != nil {
		return err
	}
	// Deadline covers the whole SMTP conversation, not just the dial.
	_ = conn.SetDeadline(time.Now().Add(m.timeout))

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}

	if m.user != "" {
		auth := smtp.PlainAuth("", m.user, m.password, m.host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(raw)); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
