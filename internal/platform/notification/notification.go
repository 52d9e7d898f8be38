// Package notification delivers patient-facing email and SMS messages with
// template rendering, in-memory delivery records, and retry for failed sends.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Channel is the delivery channel for a message.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Message is one outbound notification and its delivery record.
type Message struct {
	ID           string            `json:"id"`
	Channel      Channel           `json:"channel"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// EmailSender sends one email message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender sends one SMS message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// Template is a reusable message with {{key}} placeholders.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine stores templates and renders them with data maps.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates an engine with the built-in telehealth templates
// registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range builtInTemplates {
		tpl := t
		e.templates[t.ID] = &tpl
	}
	return e
}

var builtInTemplates = []Template{
	{
		ID:      "appointment-reminder",
		Name:    "Appointment Reminder",
		Subject: "Your appointment on {{date}}",
		Body:    "Hello {{patient_name}}, this is a reminder of your {{type}} appointment with {{clinician}} on {{date}} at {{time}}.",
		Channel: ChannelEmail,
	},
	{
		ID:      "order-status",
		Name:    "Medicine Order Update",
		Subject: "Your medicine order is {{status}}",
		Body:    "Hello {{patient_name}}, your order {{order_id}} is now {{status}}.",
		Channel: ChannelEmail,
	},
	{
		ID:      "dispatch-update",
		Name:    "Emergency Dispatch Update",
		Body:    "Update on your emergency request {{dispatch_id}}: {{status}}.",
		Channel: ChannelSMS,
	},
	{
		ID:      "visit-summary",
		Name:    "Visit Summary",
		Subject: "Summary of your consult on {{date}}",
		Body:    "Hello {{patient_name}}, here is a summary of your video consult on {{date}}: {{summary}}",
		Channel: ChannelEmail,
	},
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Get returns a template by ID.
func (e *TemplateEngine) Get(id string) (*Template, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %q not found", id)
	}
	return t, nil
}

// Render fills a template's placeholders from the data map. Placeholders with
// no matching key are left as-is.
func (e *TemplateEngine) Render(id string, data map[string]string) (subject, body string, err error) {
	t, err := e.Get(id)
	if err != nil {
		return "", "", err
	}
	subject, body = t.Subject, t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// ---------------------------------------------------------------------------
// Manager
// ---------------------------------------------------------------------------

// Manager sends messages over the right channel and keeps an in-memory
// delivery record per message so failed sends can be retried.
type Manager struct {
	email     EmailSender
	sms       SMSSender
	templates *TemplateEngine
	log       zerolog.Logger

	mu       sync.RWMutex
	messages map[string]*Message
}

func NewManager(email EmailSender, sms SMSSender, templates *TemplateEngine, log zerolog.Logger) *Manager {
	return &Manager{
		email:     email,
		sms:       sms,
		templates: templates,
		log:       log,
		messages:  make(map[string]*Message),
	}
}

// Send delivers the message and records the outcome. The record is kept even
// when delivery fails so the message can be retried.
func (m *Manager) Send(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now().UTC()
	msg.Status = StatusPending

	err := m.deliver(ctx, msg)
	m.record(msg, err)

	m.mu.Lock()
	m.messages[msg.ID] = msg
	m.mu.Unlock()

	return err
}

// SendFromTemplate renders a template and sends the result on the template's
// channel.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Message, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	tpl, err := m.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Channel:      tpl.Channel,
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}
	if err := m.Send(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// Retry re-sends a failed message.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	msg, ok := m.messages[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("message %q not found", id)
	}
	if msg.Status != StatusFailed {
		return fmt.Errorf("message %q is not failed (current: %s)", id, msg.Status)
	}

	err := m.deliver(ctx, msg)
	m.record(msg, err)
	return err
}

// Get returns a delivery record by ID.
func (m *Manager) Get(id string) (*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %q not found", id)
	}
	return msg, nil
}

// ListByRecipient returns up to limit messages sent to the recipient.
func (m *Manager) ListByRecipient(recipient string, limit int) []*Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Message
	for _, msg := range m.messages {
		if msg.Recipient == recipient {
			out = append(out, msg)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Stats returns message counts grouped by status.
func (m *Manager) Stats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := make(map[string]int)
	for _, msg := range m.messages {
		stats[msg.Status]++
	}
	return stats
}

func (m *Manager) deliver(ctx context.Context, msg *Message) error {
	switch msg.Channel {
	case ChannelEmail:
		return m.email.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body)
	case ChannelSMS:
		return m.sms.SendSMS(ctx, msg.Recipient, msg.Body)
	default:
		return fmt.Errorf("unsupported channel %q", msg.Channel)
	}
}

func (m *Manager) record(msg *Message, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		msg.Status = StatusFailed
		msg.Error = err.Error()
		m.log.Warn().Err(err).Str("message_id", msg.ID).Str("channel", string(msg.Channel)).Msg("notification delivery failed")
		return
	}
	now := time.Now().UTC()
	msg.Status = StatusSent
	msg.SentAt = &now
	msg.Error = ""
}

// ---------------------------------------------------------------------------
// Senders
// ---------------------------------------------------------------------------

// LogSender writes deliveries to the log instead of a real gateway. It is the
// default when no email or SMS provider is configured.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.Log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("email (log sender)")
	return nil
}

func (s LogSender) SendSMS(_ context.Context, to, body string) error {
	s.Log.Info().Str("to", to).Str("body", body).Msg("sms (log sender)")
	return nil
}

// EmailCall records one SendEmail invocation.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender records calls and can be made to fail.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SMSCall records one SendSMS invocation.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender records calls and can be made to fail.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New("sms gateway unavailable")
	}
	return nil
}

func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}
