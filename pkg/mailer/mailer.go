// Package mailer provides best-effort transactional email. The coordinators
// publish jobs through the Mailer interface; a worker drains the queue and
// delivers over SMTP. A mail failure is reported as a boolean to the caller
// and never escalates to a request failure.
package mailer

import (
	"encoding/json"
	"fmt"

	"storefront/pkg/rabbitmq"
)

// Job is one email to send.
type Job struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// Templates known to the worker.
const (
	TemplateOrderReceipt   = "order_receipt"
	TemplateOrderCancelled = "order_cancelled"
)

// Mailer enqueues an email for delivery.
type Mailer interface {
	Send(to, template string, data map[string]string) error
}

// QueueMailer publishes mail jobs onto the RabbitMQ mail queue.
type QueueMailer struct {
	mq *rabbitmq.Client
}

// NewQueueMailer creates a new QueueMailer.
func NewQueueMailer(mq *rabbitmq.Client) *QueueMailer {
	return &QueueMailer{mq: mq}
}

// Send enqueues the job. Delivery happens asynchronously in the worker.
func (m *QueueMailer) Send(to, template string, data map[string]string) error {
	if m.mq == nil {
		return fmt.Errorf("mail queue is not available")
	}
	body, err := json.Marshal(Job{To: to, Template: template, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}
	if err := m.mq.Publish(rabbitmq.MailQueue, body); err != nil {
		return fmt.Errorf("failed to enqueue mail job: %w", err)
	}
	return nil
}
