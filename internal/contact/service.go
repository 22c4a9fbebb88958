// Package contact implements the contact-form pipeline: persist the inbound
// message, then notify the administrator and acknowledge the submitter.
// Persistence failure is fatal to the operation; mail failures are logged and
// swallowed, so the submitter gets success once the message is stored.
package contact

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"studentportal/internal/email"
	"studentportal/internal/shared"
)

// Store is the persistence collaborator for contact messages.
type Store interface {
	Insert(ctx context.Context, msg *shared.ContactMessage) error
	FindByID(ctx context.Context, id string) (*shared.ContactMessage, error)
	Update(ctx context.Context, msg *shared.ContactMessage) error
	List(ctx context.Context, status string, page, limit int) ([]shared.ContactMessage, int64, error)
}

// Service handles contact message submission and administration.
type Service struct {
	store      Store
	mailer     email.Service
	adminEmail string
}

// NewService creates a new contact Service instance
func NewService(store Store, mailer email.Service, adminEmail string) *Service {
	return &Service{
		store:      store,
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

// SubmitInput is the validated contact-form payload.
type SubmitInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Submit persists the message and triggers both notification emails.
// The emails are best-effort: a failed send never rolls back the stored
// message and never fails the call.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*shared.ContactMessage, error) {
	now := time.Now()
	msg := &shared.ContactMessage{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    shared.ContactPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("saving contact message: %w", err)
	}

	if err := s.mailer.Send(ctx, s.adminNotification(msg)); err != nil {
		log.Printf("WARN: contact %s: admin notification failed: %v", msg.ID, err)
	}
	if err := s.mailer.Send(ctx, s.acknowledgment(msg)); err != nil {
		log.Printf("WARN: contact %s: acknowledgment to %s failed: %v", msg.ID, msg.Email, err)
	}

	return msg, nil
}

// List returns contact messages filtered by optional status, newest first.
func (s *Service) List(ctx context.Context, status string, page, limit int) ([]shared.ContactMessage, *shared.Pagination, error) {
	if status != "" && !shared.IsValidContactStatus(status) {
		return nil, nil, shared.NewValidationError("invalid status: %s", status)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	msgs, total, err := s.store.List(ctx, status, page, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("listing contact messages: %w", err)
	}

	return msgs, &shared.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: shared.NumPages(total, limit),
	}, nil
}

// MarkRead transitions a pending message to read.
func (s *Service) MarkRead(ctx context.Context, id string) (*shared.ContactMessage, error) {
	msg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	msg.Status = shared.ContactRead
	msg.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating contact message: %w", err)
	}
	return msg, nil
}

// Reply records the administrator's reply and sends it to the submitter.
// The send follows the same best-effort policy as submission notifications.
func (s *Service) Reply(ctx context.Context, id, replyMessage string) (*shared.ContactMessage, error) {
	if replyMessage == "" {
		return nil, shared.NewValidationError("reply message is required")
	}

	msg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Status == shared.ContactArchived {
		return nil, &shared.ConflictError{Message: "cannot reply to an archived message"}
	}

	now := time.Now()
	msg.Status = shared.ContactReplied
	msg.RepliedAt = &now
	msg.ReplyMessage = replyMessage
	msg.UpdatedAt = now
	if err := s.store.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating contact message: %w", err)
	}

	if err := s.mailer.Send(ctx, s.replyMail(msg)); err != nil {
		log.Printf("WARN: contact %s: reply to %s failed: %v", msg.ID, msg.Email, err)
	}

	return msg, nil
}

// Archive retires a message. Messages are never deleted.
func (s *Service) Archive(ctx context.Context, id string) (*shared.ContactMessage, error) {
	msg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	msg.Status = shared.ContactArchived
	msg.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating contact message: %w", err)
	}
	return msg, nil
}

// ============================================================================
// Mail Bodies
// ============================================================================

func (s *Service) adminNotification(msg *shared.ContactMessage) email.Message {
	phone := msg.Phone
	if phone == "" {
		phone = "Not provided"
	}

	return email.Message{
		ToEmail: s.adminEmail,
		Subject: "New Contact Form Submission",
		HTMLBody: fmt.Sprintf(`<h3>New Contact Form Submission</h3>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>
<p><strong>Submitted at:</strong> %s</p>`,
			msg.Name, msg.Email, phone, msg.Message, msg.CreatedAt.Format(time.RFC1123)),
	}
}

func (s *Service) acknowledgment(msg *shared.ContactMessage) email.Message {
	return email.Message{
		ToName:  msg.Name,
		ToEmail: msg.Email,
		Subject: "Thank you for contacting us",
		HTMLBody: fmt.Sprintf(`<h3>Thank you for contacting us!</h3>
<p>Dear %s,</p>
<p>We have received your message and will get back to you within 24-48 hours.</p>
<p><strong>Your message:</strong></p>
<p>%s</p>
<br>
<p>Best regards,</p>
<p>Student Portal Team</p>`, msg.Name, msg.Message),
	}
}

func (s *Service) replyMail(msg *shared.ContactMessage) email.Message {
	return email.Message{
		ToName:  msg.Name,
		ToEmail: msg.Email,
		Subject: "Re: your message to Student Portal",
		HTMLBody: fmt.Sprintf(`<p>Dear %s,</p>
<p>%s</p>
<br>
<p>Best regards,</p>
<p>Student Portal Team</p>`, msg.Name, msg.ReplyMessage),
	}
}
