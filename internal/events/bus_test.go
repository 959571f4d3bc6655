package events

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
)

func TestBusCallsHandlersInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var calls []string

	bus.Subscribe("first", func(ctx context.Context, evt SubscriptionEvent) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe("second", func(ctx context.Context, evt SubscriptionEvent) error {
		calls = append(calls, "second")
		return nil
	})

	bus.Publish(context.Background(), SubscriptionEvent{Type: SubscriptionRenewed})

	if strings.Join(calls, ",") != "first,second" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	var reached bool

	bus.Subscribe("broken", func(ctx context.Context, evt SubscriptionEvent) error {
		return errors.New("boom")
	})
	bus.Subscribe("panics", func(ctx context.Context, evt SubscriptionEvent) error {
		panic("unexpected")
	})
	bus.Subscribe("healthy", func(ctx context.Context, evt SubscriptionEvent) error {
		reached = true
		return nil
	})

	bus.Publish(context.Background(), SubscriptionEvent{Type: SubscriptionExpired})

	if !reached {
		t.Fatal("handler after a failing one was not called")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	var count int

	unsubscribe := bus.Subscribe("counter", func(ctx context.Context, evt SubscriptionEvent) error {
		count++
		return nil
	})

	bus.Publish(context.Background(), SubscriptionEvent{})
	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), SubscriptionEvent{})

	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if bus.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", bus.Len())
	}
}

func TestBusStampsOccurredAt(t *testing.T) {
	bus := NewBus()
	var got SubscriptionEvent
	bus.Subscribe("capture", func(ctx context.Context, evt SubscriptionEvent) error {
		got = evt
		return nil
	})

	bus.Publish(context.Background(), SubscriptionEvent{Type: SubscriptionCanceled})

	if got.OccurredAt.IsZero() {
		t.Fatal("OccurredAt was not set")
	}
}

type fakeAccounts struct {
	account *db_models.Account
}

func (f *fakeAccounts) FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error) {
	return f.account, nil
}

type fakeRenderer struct {
	rendered *resp.RenderedEmail
	err      error
	keys     []string
}

func (f *fakeRenderer) RenderForEvent(ctx context.Context, key string, data map[string]any) (*resp.RenderedEmail, error) {
	f.keys = append(f.keys, key)
	return f.rendered, f.err
}

type sentMail struct {
	to, subject, body string
	generic           bool
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body, generic: true})
	return nil
}

func (f *fakeMailer) SendRendered(to, subject, htmlBody, textBody string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func TestNotificationSubscriberUsesTemplate(t *testing.T) {
	accounts := &fakeAccounts{account: &db_models.Account{Name: "Ann", Email: "ann@example.com"}}
	renderer := &fakeRenderer{rendered: &resp.RenderedEmail{Subject: "Renewed!", HTML: "<p>ok</p>", Text: "ok"}}
	mailer := &fakeMailer{}

	handler := NotificationSubscriber(accounts, renderer, mailer, "https://shop.example")
	err := handler(context.Background(), SubscriptionEvent{Type: SubscriptionRenewed, AccountID: uuid.New()})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(renderer.keys) != 1 || renderer.keys[0] != "subscription.renewed" {
		t.Fatalf("rendered keys = %v", renderer.keys)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].generic || mailer.sent[0].subject != "Renewed!" {
		t.Fatalf("sent = %+v", mailer.sent)
	}
}

func TestNotificationSubscriberFallsBackToGenericMail(t *testing.T) {
	accounts := &fakeAccounts{account: &db_models.Account{Name: "Ann", Email: "ann@example.com"}}
	renderer := &fakeRenderer{err: ErrNoTemplate}
	mailer := &fakeMailer{}

	handler := NotificationSubscriber(accounts, renderer, mailer, "https://shop.example")
	err := handler(context.Background(), SubscriptionEvent{
		Type:      SubscriptionRenewalFailed,
		AccountID: uuid.New(),
		PlanName:  "Pro Monthly",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(mailer.sent) != 1 || !mailer.sent[0].generic {
		t.Fatalf("sent = %+v", mailer.sent)
	}
	if !strings.Contains(mailer.sent[0].body, "Pro Monthly") {
		t.Fatalf("body %q does not name the plan", mailer.sent[0].body)
	}
}

type fakeAudit struct {
	entries []*db_models.AuditLog
}

func (f *fakeAudit) Insert(ctx context.Context, entry *db_models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func TestAuditSubscriberWritesEntry(t *testing.T) {
	audit := &fakeAudit{}
	subID := uuid.New()

	err := AuditSubscriber(audit)(context.Background(), SubscriptionEvent{
		Type:           SubscriptionExpired,
		SubscriptionID: subID,
		AccountID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("entries = %d", len(audit.entries))
	}
	e := audit.entries[0]
	if e.Action != "subscription.expired" || e.EntityType != "subscription" || e.EntityID != subID.String() {
		t.Fatalf("entry = %+v", e)
	}
	if e.ActorID != nil {
		t.Fatal("system entries must not carry an actor")
	}
}
