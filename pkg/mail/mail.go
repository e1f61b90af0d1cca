// Package mail delivers transactional email (welcome, password reset,
// order receipts) over SMTP with a small fluent builder:
//
//	mail.To("ana@example.com").
//	    Subject("Your order #42").
//	    Body("<h1>Thanks!</h1>").
//	    Send()
//
// Mail jobs run on the queue, so Send may block on the SMTP dialog
// without holding up a request.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/feria/config"
)

// Transport performs the actual delivery. Swappable so tests can
// capture outgoing messages instead of speaking SMTP.
type Transport func(from string, to []string, raw []byte) error

var transport Transport = smtpTransport

// SetTransport replaces the delivery mechanism. Pass nil to restore the
// default SMTP transport.
func SetTransport(t Transport) {
	if t == nil {
		t = smtpTransport
	}
	transport = t
}

// Message accumulates an email before Send.
type Message struct {
	to      []string
	cc      []string
	bcc     []string
	subject string
	body    string
	html    bool
}

// To starts a message to the given recipients. Bodies are HTML unless
// Text is used.
func To(addresses ...string) *Message {
	return &Message{to: addresses, html: true}
}

func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

func (m *Message) BCC(addresses ...string) *Message {
	m.bcc = append(m.bcc, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	m.html = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.html = false
	return m
}

// Send renders the message and hands it to the transport.
func (m *Message) Send() error {
	fromName := config.Get("MAIL_FROM_NAME", "Feria")
	fromAddr := config.Get("MAIL_FROM", "hello@feria.app")

	all := make([]string, 0, len(m.to)+len(m.cc)+len(m.bcc))
	all = append(all, m.to...)
	all = append(all, m.cc...)
	all = append(all, m.bcc...)

	raw := m.render(fmt.Sprintf("%s <%s>", fromName, fromAddr))
	return transport(fromAddr, all, raw)
}

func (m *Message) render(from string) []byte {
	contentType := "text/plain"
	if m.html {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	if len(m.cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}

// smtpTransport sends through the server named by the MAIL_* settings.
// Port 465 gets an implicit-TLS dialog; 587 and 25 use STARTTLS via
// net/smtp.
func smtpTransport(from string, to []string, raw []byte) error {
	host := config.Get("MAIL_HOST", "smtp.mailtrap.io")
	port := config.Get("MAIL_PORT", "587")
	username := config.Get("MAIL_USERNAME", "")
	password := config.Get("MAIL_PASSWORD", "")
	if username == "" {
		return fmt.Errorf("mail: MAIL_USERNAME not configured")
	}

	addr := host + ":" + port
	auth := smtp.PlainAuth("", username, password, host)
	if port == "465" {
		return sendImplicitTLS(addr, host, auth, from, to, raw)
	}
	return smtp.SendMail(addr, auth, from, to, raw)
}

func sendImplicitTLS(addr, host string, auth smtp.Auth, from string, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit() //nolint:errcheck

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}
