package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"regexp"
	"strings"
	texttemplate "text/template"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mlmadmin/internal/events"
	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

var templateKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

type EmailTemplateServiceInterface interface {
	List(ctx context.Context) ([]resp.EmailTemplateResponse, error)
	Get(ctx context.Context, key string) (*resp.EmailTemplateResponse, error)
	Upsert(ctx context.Context, key string, request request_models.EmailTemplateRequest) (*resp.EmailTemplateResponse, error)
	Delete(ctx context.Context, key string) error
	Preview(ctx context.Context, key string, data map[string]any) (*resp.RenderedEmail, error)
	SendTest(ctx context.Context, key, to string, data map[string]any) error

	// RenderForEvent renders an active template; events.ErrNoTemplate means
	// the caller should fall back to a generic message.
	RenderForEvent(ctx context.Context, key string, data map[string]any) (*resp.RenderedEmail, error)
}

type EmailTemplateService struct {
	repo repositories.EmailTemplateRepository
	mail IMailService
}

func NewEmailTemplateService(repo repositories.EmailTemplateRepository, mail IMailService) EmailTemplateServiceInterface {
	return &EmailTemplateService{repo: repo, mail: mail}
}

func (s *EmailTemplateService) List(ctx context.Context) ([]resp.EmailTemplateResponse, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]resp.EmailTemplateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, toTemplateResponse(&templates[i]))
	}
	return out, nil
}

func (s *EmailTemplateService) Get(ctx context.Context, key string) (*resp.EmailTemplateResponse, error) {
	tpl, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if tpl == nil {
		return nil, utils.RecordNotFound
	}
	out := toTemplateResponse(tpl)
	return &out, nil
}

// Upsert refuses bodies that do not parse, so a broken template never
// reaches the notification path.
func (s *EmailTemplateService) Upsert(ctx context.Context, key string, request request_models.EmailTemplateRequest) (*resp.EmailTemplateResponse, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !templateKeyPattern.MatchString(key) {
		return nil, utils.ErrInvalidInput
	}

	candidate := db_models.EmailTemplate{
		Key:      key,
		Subject:  request.Subject,
		HTMLBody: request.HTMLBody,
		TextBody: request.TextBody,
	}
	if _, err := parseTemplates(&candidate); err != nil {
		logrus.WithField("key", key).WithError(err).Info("rejected email template")
		return nil, utils.ErrInvalidInput
	}

	tpl, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if tpl == nil {
		tpl = &db_models.EmailTemplate{Key: key}
	}
	tpl.Name = strings.TrimSpace(request.Name)
	tpl.Subject = request.Subject
	tpl.HTMLBody = request.HTMLBody
	tpl.TextBody = request.TextBody
	tpl.IsActive = request.IsActive == nil || *request.IsActive

	if err := s.repo.Save(ctx, tpl); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, utils.ErrDuplicateRecord
		}
		return nil, utils.ErrDatabaseError
	}
	out := toTemplateResponse(tpl)
	return &out, nil
}

func (s *EmailTemplateService) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RecordNotFound
		}
		return utils.ErrDatabaseError
	}
	return nil
}

// Preview renders regardless of the active flag.
func (s *EmailTemplateService) Preview(ctx context.Context, key string, data map[string]any) (*resp.RenderedEmail, error) {
	tpl, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if tpl == nil {
		return nil, utils.RecordNotFound
	}
	rendered, err := renderTemplate(tpl, data)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("preview render failed")
		return nil, utils.ErrTemplateRender
	}
	return rendered, nil
}

func (s *EmailTemplateService) SendTest(ctx context.Context, key, to string, data map[string]any) error {
	rendered, err := s.Preview(ctx, key, data)
	if err != nil {
		return err
	}
	if err := s.mail.SendRendered(to, "[TEST] "+rendered.Subject, rendered.HTML, rendered.Text); err != nil {
		logrus.WithField("key", key).WithError(err).Error("send test email")
		return utils.ErrMailDeliveryFailed
	}
	return nil
}

func (s *EmailTemplateService) RenderForEvent(ctx context.Context, key string, data map[string]any) (*resp.RenderedEmail, error) {
	tpl, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if tpl == nil || !tpl.IsActive {
		return nil, events.ErrNoTemplate
	}
	return renderTemplate(tpl, data)
}

type parsedTemplate struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

func parseTemplates(tpl *db_models.EmailTemplate) (*parsedTemplate, error) {
	subject, err := texttemplate.New("subject").Parse(tpl.Subject)
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	html, err := htmltemplate.New("html").Parse(tpl.HTMLBody)
	if err != nil {
		return nil, fmt.Errorf("html body: %w", err)
	}
	out := &parsedTemplate{subject: subject, html: html}
	if strings.TrimSpace(tpl.TextBody) != "" {
		if out.text, err = texttemplate.New("text").Parse(tpl.TextBody); err != nil {
			return nil, fmt.Errorf("text body: %w", err)
		}
	}
	return out, nil
}

func renderTemplate(tpl *db_models.EmailTemplate, data map[string]any) (*resp.RenderedEmail, error) {
	parsed, err := parseTemplates(tpl)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}

	var subject, html, text bytes.Buffer
	if err := parsed.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	if err := parsed.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("html body: %w", err)
	}
	if parsed.text != nil {
		if err := parsed.text.Execute(&text, data); err != nil {
			return nil, fmt.Errorf("text body: %w", err)
		}
	}

	return &resp.RenderedEmail{
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func toTemplateResponse(t *db_models.EmailTemplate) resp.EmailTemplateResponse {
	return resp.EmailTemplateResponse{
		Key:      t.Key,
		Name:     t.Name,
		Subject:  t.Subject,
		HTMLBody: t.HTMLBody,
		TextBody: t.TextBody,
		IsActive: t.IsActive,
	}
}

// DefaultEmailTemplates are seeded by the migrate command, one per
// subscription event.
func DefaultEmailTemplates() []db_models.EmailTemplate {
	row := func(key, name, subject, line string) db_models.EmailTemplate {
		return db_models.EmailTemplate{
			Key:      key,
			Name:     name,
			Subject:  subject,
			HTMLBody: "<p>Hi {{.Name}},</p><p>" + line + "</p>",
			TextBody: "Hi {{.Name}},\n\n" + line + "\n",
			IsActive: true,
		}
	}
	return []db_models.EmailTemplate{
		row(string(events.SubscriptionActivated), "Subscription activated",
			"Welcome to {{.PlanName}}",
			"Your {{.PlanName}} subscription is active until {{.PeriodEnd}}."),
		row(string(events.SubscriptionRenewed), "Subscription renewed",
			"Your {{.PlanName}} subscription was renewed",
			"We charged {{.Amount}} and your subscription now runs until {{.PeriodEnd}}."),
		row(string(events.SubscriptionRenewalFailed), "Renewal failed",
			"We could not renew {{.PlanName}}",
			"The renewal payment failed ({{.Reason}}). Please update your payment method to keep your benefits."),
		row(string(events.SubscriptionCanceled), "Subscription canceled",
			"Your {{.PlanName}} subscription was canceled",
			"Your subscription has been canceled. You can subscribe again at any time."),
		row(string(events.SubscriptionExpired), "Subscription expired",
			"Your {{.PlanName}} subscription expired",
			"Your subscription has expired. Renew it to keep earning network commissions."),
	}
}
