// Package jobs defines the background jobs pushed onto the queue. Register
// every job type at boot so the workers can decode payloads:
//
//	queue.Register("welcome_mail", func() queue.Job { return &WelcomeMailJob{} })
package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/feria/config"
	"github.com/shashiranjanraj/feria/pkg/mail"
	"github.com/shashiranjanraj/feria/pkg/queue"
)

func contactInbox() string {
	return config.Get("CONTACT_INBOX", "support@feria.app")
}

// Job type names used with queue.Register.
const (
	TypeWelcomeMail       = "welcome_mail"
	TypePasswordResetMail = "password_reset_mail"
	TypeContactMail       = "contact_mail"
	TypeOrderReceiptMail  = "order_receipt_mail"
)

// RegisterAll registers every job constructor with the queue.
func RegisterAll() {
	queue.Register(TypeWelcomeMail, func() queue.Job { return &WelcomeMailJob{} })
	queue.Register(TypePasswordResetMail, func() queue.Job { return &PasswordResetMailJob{} })
	queue.Register(TypeContactMail, func() queue.Job { return &ContactMailJob{} })
	queue.Register(TypeOrderReceiptMail, func() queue.Job { return &OrderReceiptMailJob{} })
}

// WelcomeMailJob greets a fresh signup and carries their verification token.
type WelcomeMailJob struct {
	Email    string `json:"email"`
	UserName string `json:"name"`
	Token    string `json:"token"`
}

func (j *WelcomeMailJob) Name() string { return TypeWelcomeMail }

func (j *WelcomeMailJob) Handle() error {
	return mail.To(j.Email).
		Subject("Welcome to Feria!").
		Body(fmt.Sprintf("<h1>Hi %s</h1><p>Verify your account with token <b>%s</b>.</p>", j.UserName, j.Token)).
		Send()
}

// PasswordResetMailJob sends a password reset token.
type PasswordResetMailJob struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (j *PasswordResetMailJob) Name() string { return TypePasswordResetMail }

func (j *PasswordResetMailJob) Handle() error {
	return mail.To(j.Email).
		Subject("Reset your Feria password").
		Body(fmt.Sprintf("<p>Use token <b>%s</b> to reset your password.</p>", j.Token)).
		Send()
}

// ContactMailJob forwards a contact form submission to the site inbox.
type ContactMailJob struct {
	UserName string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

func (j *ContactMailJob) Name() string { return TypeContactMail }

func (j *ContactMailJob) Handle() error {
	return mail.To(contactInbox()).
		Subject(fmt.Sprintf("Contact form: %s", j.UserName)).
		Body(fmt.Sprintf("<p>From: %s &lt;%s&gt;</p><p>%s</p>", j.UserName, j.Email, j.Message)).
		Send()
}

// OrderReceiptMailJob confirms a placed order to the client.
type OrderReceiptMailJob struct {
	Email       string  `json:"email"`
	UserName    string  `json:"name"`
	OrderNumber int64   `json:"order_number"`
	Total       float64 `json:"total"`
}

func (j *OrderReceiptMailJob) Name() string { return TypeOrderReceiptMail }

func (j *OrderReceiptMailJob) Handle() error {
	return mail.To(j.Email).
		Subject(fmt.Sprintf("Your order #%d", j.OrderNumber)).
		Body(fmt.Sprintf("<h1>Thanks, %s!</h1><p>Order <b>#%d</b> for a total of %.2f was received.</p>",
			j.UserName, j.OrderNumber, j.Total)).
		Send()
}
