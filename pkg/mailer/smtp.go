package mailer

import (
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"

	amqp "github.com/streadway/amqp"
)

// SMTPSender delivers queued mail jobs over plain SMTP.
type SMTPSender struct {
	addr string // host:port
	from string
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(addr, from string) *SMTPSender {
	return &SMTPSender{addr: addr, from: from}
}

// HandleJob is the queue consumer callback: it decodes a Job and delivers it.
func (s *SMTPSender) HandleJob(msg amqp.Delivery) error {
	var job Job
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		return fmt.Errorf("failed to decode mail job: %w", err)
	}
	return s.deliver(job)
}

func (s *SMTPSender) deliver(job Job) error {
	subject, body := render(job)
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", job.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	if err := smtp.SendMail(s.addr, nil, s.from, []string{job.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", job.To, err)
	}
	return nil
}

func render(job Job) (subject, body string) {
	switch job.Template {
	case TemplateOrderReceipt:
		return "Your order is confirmed",
			fmt.Sprintf("Order %s was placed successfully. Receipt: %s",
				job.Data["order_id"], job.Data["receipt_url"])
	case TemplateOrderCancelled:
		return "Your order was cancelled",
			fmt.Sprintf("Order %s was cancelled and a refund has been started.",
				job.Data["order_id"])
	default:
		return "Notification", "You have a new notification."
	}
}
