package email

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
)

// Message письмо с текстовой и html-версией
type Message struct {
	Subject string
	From    string
	To      []string
	Text    string
	HTML    string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	send sendFunc
}

func NewSender(host string, port int, username, password, from string) *Sender {
	return &Sender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		send:     smtp.SendMail,
	}
}

// Send отправляет письмо. Без настроенного сервера письмо только пишется в лог.
func (s *Sender) Send(msg Message) error {
	if msg.From == "" {
		msg.From = s.From
	}

	if s.Host == "" {
		slog.Info("mail server is not configured, email not sent",
			"to", strings.Join(msg.To, ", "),
			"subject", msg.Subject,
			"body", msg.Text,
		)
		return nil
	}

	raw, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	addr := s.Host + ":" + strconv.Itoa(s.Port)

	return s.send(addr, auth, msg.From, msg.To, raw)
}

// SendAsync отправляет письмо в фоне; ошибка только логируется
func (s *Sender) SendAsync(msg Message) {
	go func() {
		if err := s.Send(msg); err != nil {
			slog.Error("failed to send email", "to", strings.Join(msg.To, ", "), "subject", msg.Subject, "error", err)
		}
	}()
}

// Bytes собирает письмо в формате multipart/alternative
func (m Message) Bytes() ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=\"UTF-8\"", m.Text},
		{"text/html; charset=\"UTF-8\"", m.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", m.From)
	fmt.Fprintf(&out, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&out, "Subject: %s\r\n", m.Subject)
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}
