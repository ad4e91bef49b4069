package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

const (
	defaultCourseWelcomeBody = "Hi {{name}},\n\n" +
		"Welcome to {{course_name}}! You now have full access to the course.\n\n" +
		"Sign in at {{login_url}} to get started.\n\n" +
		"Warm regards,\nNeuro Progeny Team"

	defaultTestSubject = "Test Email from Neuro Progeny University"
	defaultTestBody    = "This is a test email. If you received this, Gmail API is working!"
)

type EmailService interface {
	SendTemplated(ctx context.Context, req *models.SendEmailRequest) (*models.EmailResponse, *ServiceError)
	SendTest(ctx context.Context, req *models.TestEmailRequest) (*models.EmailResponse, *ServiceError)
}

type emailServiceImpl struct {
	mailer           *Mailer
	catalog          repository.CatalogRepository
	loginURL         string
	defaultRecipient string
	logger           *zap.Logger
}

func NewEmailService(mailer *Mailer, catalog repository.CatalogRepository, loginURL, defaultRecipient string, logger *zap.Logger) EmailService {
	return &emailServiceImpl{
		mailer:           mailer,
		catalog:          catalog,
		loginURL:         loginURL,
		defaultRecipient: defaultRecipient,
		logger:           logger,
	}
}

// SendTemplated renders a type-driven template. Only course_welcome exists.
// A failed send is reported in the body with success=false, not as an error.
func (s *emailServiceImpl) SendTemplated(ctx context.Context, req *models.SendEmailRequest) (*models.EmailResponse, *ServiceError) {
	email := strings.TrimSpace(req.Email)
	if req.Type == "" || email == "" {
		return nil, badRequest("Missing type or email")
	}
	if s.catalog == nil {
		return nil, errDatabaseNotConfigured
	}
	if req.Type != models.EmailTypeCourseWelcome || req.CourseID == nil {
		return nil, badRequest("Invalid email type")
	}

	course, err := s.catalog.FindCourse(ctx, *req.CourseID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to load course", zap.String("course_id", req.CourseID.String()), zap.Error(err))
		}
		return nil, notFound("Course not found")
	}

	data := MergeData{
		Name:       req.Name,
		Email:      email,
		CourseName: course.Title,
		LoginURL:   s.loginURL,
	}
	if req.CohortID != nil {
		cohort, err := s.catalog.FindCohort(ctx, *req.CohortID)
		if err == nil {
			data = data.withCohort(cohort)
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load cohort", zap.String("cohort_id", req.CohortID.String()), zap.Error(err))
		}
	}

	subject := fmt.Sprintf("Welcome to %s!", course.Title)
	if t := deref(course.WelcomeEmailSubject); t != "" {
		subject = ApplyMergeTags(t, data)
	}
	body := ApplyMergeTags(defaultCourseWelcomeBody, data)
	if t := deref(course.WelcomeEmailBody); t != "" {
		body = ApplyMergeTags(t, data)
	}

	courseID := course.ID
	err = s.mailer.Deliver(ctx, models.EmailMessage{
		To:            email,
		RecipientName: optionalString(req.Name),
		Subject:       subject,
		Body:          body,
		EmailType:     req.Type,
		SourceType:    models.EmailSourceCourse,
		SourceID:      &courseID,
	})
	if err != nil {
		return &models.EmailResponse{Success: false, Message: "Failed to send"}, nil
	}
	return &models.EmailResponse{Success: true, Message: "Email sent to " + email}, nil
}

// SendTest sends an ad-hoc message, defaulting every empty field.
func (s *emailServiceImpl) SendTest(ctx context.Context, req *models.TestEmailRequest) (*models.EmailResponse, *ServiceError) {
	recipient := strings.TrimSpace(req.To)
	if recipient == "" {
		recipient = s.defaultRecipient
	}
	if recipient == "" {
		return nil, badRequest("Missing recipient")
	}

	subject := req.Subject
	if subject == "" {
		subject = defaultTestSubject
	}
	body := req.CustomBody
	if body == "" {
		body = req.Body
	}
	if body == "" {
		body = defaultTestBody
	}

	err := s.mailer.Deliver(ctx, models.EmailMessage{
		To:         recipient,
		Subject:    subject,
		Body:       body,
		EmailType:  models.EmailTypeTest,
		SourceType: models.EmailTypeTest,
	})
	if err != nil {
		return nil, internalError("Failed to send email")
	}
	return &models.EmailResponse{Success: true, Message: "Email sent to " + recipient}, nil
}
