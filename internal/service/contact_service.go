package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/mailer"
	"mentor-connect/internal/repository"
)

type ContactInput struct {
	Name    string `form:"name" json:"name" validate:"required,max=100"`
	Email   string `form:"email" json:"email" validate:"required,email"`
	Subject string `form:"subject" json:"subject" validate:"required,max=200"`
	Message string `form:"message" json:"message" validate:"required,max=5000"`
}

// ContactService stores contact form submissions and forwards them to the
// staff inbox when one is configured.
type ContactService interface {
	Submit(ctx context.Context, in ContactInput) (*domain.ContactMessage, error)
}

type contactService struct {
	messages   repository.ContactRepository
	dispatcher mailer.Dispatcher
	inbox      string
	logger     logrus.FieldLogger
}

func NewContactService(messages repository.ContactRepository, dispatcher mailer.Dispatcher, inbox string, logger logrus.FieldLogger) ContactService {
	if logger == nil {
		logger = logrus.New()
	}
	return &contactService{
		messages:   messages,
		dispatcher: dispatcher,
		inbox:      strings.TrimSpace(inbox),
		logger:     logger,
	}
}

func (s *contactService) Submit(ctx context.Context, in ContactInput) (*domain.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	verr := &ValidationError{}
	if err := check(verr, in); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	msg := &domain.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}
	id, err := s.messages.Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}
	msg.ID = id

	if s.inbox != "" && s.dispatcher != nil {
		err := s.dispatcher.Dispatch(ctx, mailer.Notification{
			To:       s.inbox,
			Template: mailer.TemplateContactMessage,
			Data: map[string]any{
				"Name":    msg.Name,
				"Email":   msg.Email,
				"Subject": msg.Subject,
				"Message": msg.Message,
			},
		})
		if err != nil {
			s.logger.WithError(err).WithField("contact_id", id).Error("failed to forward contact message")
		}
	}
	return msg, nil
}
