package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/pkg/utils"
)

// ErrNoTemplate is returned by a TemplateRenderer when the event has no
// active template.
var ErrNoTemplate = errors.New("no active template")

type TemplateRenderer interface {
	RenderForEvent(ctx context.Context, key string, data map[string]any) (*resp.RenderedEmail, error)
}

type Mailer interface {
	SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error
	SendRendered(to, subject, htmlBody, textBody string) error
}

type AccountFinder interface {
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error)
}

type AuditWriter interface {
	Insert(ctx context.Context, entry *db_models.AuditLog) error
}

// NotificationSubscriber emails the member about each lifecycle transition,
// using the template keyed by the event type when one is active.
func NotificationSubscriber(accounts AccountFinder, templates TemplateRenderer, mailer Mailer, appBaseURL string) Handler {
	return func(ctx context.Context, evt SubscriptionEvent) error {
		account, err := accounts.FindById(ctx, evt.AccountID)
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}
		if account == nil {
			return fmt.Errorf("account %s not found", evt.AccountID)
		}

		data := TemplateData(evt, account)
		rendered, err := templates.RenderForEvent(ctx, string(evt.Type), data)
		if err == nil {
			return mailer.SendRendered(account.Email, rendered.Subject, rendered.HTML, rendered.Text)
		}
		if !errors.Is(err, ErrNoTemplate) {
			logrus.WithField("event", evt.Type).WithError(err).Warn("template render failed, sending generic notification")
		}

		subject, body := genericMessage(evt)
		ctaURL := strings.TrimRight(appBaseURL, "/") + "/account/subscription"
		return mailer.SendMailToNotifyUser(account.Email, subject, body, "View subscription", ctaURL)
	}
}

// AuditSubscriber records every lifecycle transition as a system audit entry.
func AuditSubscriber(audit AuditWriter) Handler {
	return func(ctx context.Context, evt SubscriptionEvent) error {
		meta, err := json.Marshal(map[string]any{
			"account_id":   evt.AccountID,
			"plan_code":    evt.PlanCode,
			"provider":     evt.Provider,
			"amount_minor": evt.AmountMinor,
			"currency":     evt.Currency,
			"gateway_ref":  evt.GatewayRef,
			"reason":       evt.Reason,
		})
		if err != nil {
			return err
		}

		return audit.Insert(ctx, &db_models.AuditLog{
			Action:     string(evt.Type),
			EntityType: "subscription",
			EntityID:   evt.SubscriptionID.String(),
			IP:         "system",
			Metadata:   meta,
		})
	}
}

// TemplateData is the map email templates for subscription events render
// against.
func TemplateData(evt SubscriptionEvent, account *db_models.Account) map[string]any {
	data := map[string]any{
		"Name":           account.Name,
		"Email":          account.Email,
		"PlanCode":       evt.PlanCode,
		"PlanName":       evt.PlanName,
		"Provider":       evt.Provider,
		"Amount":         utils.FormatMinor(evt.AmountMinor, evt.Currency),
		"Reason":         evt.Reason,
		"SubscriptionID": evt.SubscriptionID.String(),
	}
	if !evt.PeriodEnd.IsZero() {
		data["PeriodEnd"] = evt.PeriodEnd.Format("January 2, 2006")
	}
	return data
}

func genericMessage(evt SubscriptionEvent) (string, string) {
	plan := evt.PlanName
	if plan == "" {
		plan = evt.PlanCode
	}

	switch evt.Type {
	case SubscriptionActivated:
		return "Your subscription is active", fmt.Sprintf("Your %s subscription is now active.", plan)
	case SubscriptionRenewed:
		return "Your subscription was renewed", fmt.Sprintf("We charged %s and renewed your %s subscription.", utils.FormatMinor(evt.AmountMinor, evt.Currency), plan)
	case SubscriptionRenewalFailed:
		return "We could not renew your subscription", fmt.Sprintf("The renewal payment for your %s subscription failed. Please update your payment method to keep your benefits.", plan)
	case SubscriptionCanceled:
		return "Your subscription was canceled", fmt.Sprintf("Your %s subscription has been canceled.", plan)
	case SubscriptionExpired:
		return "Your subscription has expired", fmt.Sprintf("Your %s subscription expired after the renewal grace period.", plan)
	default:
		return "Subscription update", fmt.Sprintf("There is an update on your %s subscription.", plan)
	}
}
