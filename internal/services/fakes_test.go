package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/events"
	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
)

// ------------------- accounts -------------------

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*db_models.Account
	err      error
	// referralErr fails only the referral tree reads.
	referralErr error
	// beforeInsert runs ahead of every Insert; a non-nil error aborts it.
	beforeInsert func(account *db_models.Account) error
	inserts      int
}

func newFakeAccountRepo(accounts ...*db_models.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: map[uuid.UUID]*db_models.Account{}}
	for _, a := range accounts {
		r.add(a)
	}
	return r
}

func (r *fakeAccountRepo) add(a *db_models.Account) *db_models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = db_models.AccountActive
	}
	r.accounts[a.ID] = a
	return a
}

func (r *fakeAccountRepo) Insert(ctx context.Context, account *db_models.Account) error {
	r.mu.Lock()
	r.inserts++
	hook := r.beforeInsert
	r.mu.Unlock()
	if hook != nil {
		if err := hook(account); err != nil {
			return err
		}
	}
	r.add(account)
	return nil
}

func (r *fakeAccountRepo) FindById(ctx context.Context, id uuid.UUID) (*db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByReferralCode(ctx context.Context, code string) (*db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ReferralCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) List(ctx context.Context, page, pageSize int, search string) ([]db_models.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]db_models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAccountRepo) UpdatePhase(ctx context.Context, id uuid.UUID, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return errNotFound
	}
	a.PhaseLevel = level
	return nil
}

func (r *fakeAccountRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status db_models.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return errNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAccountRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			a.PasswordHash = passwordHash
			return nil
		}
	}
	return errNotFound
}

func (r *fakeAccountRepo) CountDirectReferrals(ctx context.Context, id uuid.UUID) (int64, error) {
	ids, err := r.ListReferralIDs(ctx, []uuid.UUID{id})
	return int64(len(ids)), err
}

func (r *fakeAccountRepo) ListReferralIDs(ctx context.Context, sponsorIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.referralErr != nil {
		return nil, r.referralErr
	}
	wanted := make(map[uuid.UUID]bool, len(sponsorIDs))
	for _, id := range sponsorIDs {
		wanted[id] = true
	}
	var out []uuid.UUID
	for _, a := range r.accounts {
		if a.SponsorID != nil && wanted[*a.SponsorID] {
			out = append(out, a.ID)
		}
	}
	return out, nil
}

var errNotFound = errors.New("record not found")

// ------------------- phases and commissions -------------------

type fakePhaseRepo struct {
	phases map[int]db_models.Phase
	err    error
}

func (r *fakePhaseRepo) List(ctx context.Context) ([]db_models.Phase, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]db_models.Phase, 0, len(r.phases))
	for _, p := range r.phases {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePhaseRepo) FindByLevel(ctx context.Context, level int) (*db_models.Phase, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.phases[level]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePhaseRepo) Upsert(ctx context.Context, phase *db_models.Phase) error {
	if r.phases == nil {
		r.phases = map[int]db_models.Phase{}
	}
	r.phases[phase.Level] = *phase
	return nil
}

type fakeCommissionRepo struct {
	mu      sync.Mutex
	created []db_models.Commission
}

func (r *fakeCommissionRepo) CreateWithCredit(ctx context.Context, c *db_models.Commission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.created {
		if existing.BeneficiaryID == c.BeneficiaryID && existing.Source == c.Source &&
			existing.RefID == c.RefID && existing.Level == c.Level {
			return repositories.ErrCommissionExists
		}
	}
	c.ID = uuid.New()
	r.created = append(r.created, *c)
	return nil
}

func (r *fakeCommissionRepo) List(ctx context.Context, filter repositories.CommissionFilter, page, pageSize int) ([]db_models.Commission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]db_models.Commission(nil), r.created...), int64(len(r.created)), nil
}

func (r *fakeCommissionRepo) paidTo(id uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, c := range r.created {
		if c.BeneficiaryID == id {
			sum += c.AmountMinor
		}
	}
	return sum
}

type distributeCall struct {
	originID uuid.UUID
	amount   int64
	source   db_models.CommissionSource
	ref      string
}

// fakeCommissions records Distribute calls and leaves the rest unimplemented.
type fakeCommissions struct {
	CommissionServiceInterface
	calls []distributeCall
}

func (f *fakeCommissions) Distribute(ctx context.Context, originID uuid.UUID, amountMinor int64, currency string, source db_models.CommissionSource, ref string) ([]resp.CommissionResponse, error) {
	f.calls = append(f.calls, distributeCall{originID: originID, amount: amountMinor, source: source, ref: ref})
	return nil, nil
}

// ------------------- subscriptions and payments -------------------

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]db_models.Subscription
	// failSaves makes the next n saves fail.
	failSaves int
}

func newFakeSubscriptionRepo(subs ...db_models.Subscription) *fakeSubscriptionRepo {
	r := &fakeSubscriptionRepo{subs: map[uuid.UUID]db_models.Subscription{}}
	for _, s := range subs {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		r.subs[s.ID] = s
	}
	return r
}

func (r *fakeSubscriptionRepo) get(id uuid.UUID) db_models.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs[id]
}

func (r *fakeSubscriptionRepo) filter(keep func(s db_models.Subscription) bool) []db_models.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Subscription
	for _, s := range r.subs {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func isLive(s db_models.Subscription) bool {
	for _, st := range db_models.LiveStatuses {
		if s.Status == st {
			return true
		}
	}
	return false
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *db_models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return r.Save(ctx, sub)
}

func (r *fakeSubscriptionRepo) Save(ctx context.Context, sub *db_models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSaves > 0 {
		r.failSaves--
		return errors.New("connection reset")
	}
	r.subs[sub.ID] = *sub
	return nil
}

func (r *fakeSubscriptionRepo) FindById(ctx context.Context, id uuid.UUID) (*db_models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSubscriptionRepo) FindCurrent(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	found := r.filter(func(s db_models.Subscription) bool { return s.AccountID == accountID && isLive(s) })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *fakeSubscriptionRepo) ListDue(ctx context.Context, now int64) ([]db_models.Subscription, error) {
	return r.filter(func(s db_models.Subscription) bool {
		return isLive(s) && s.AutoRenew && s.EndsAt <= now
	}), nil
}

func (r *fakeSubscriptionRepo) ListPastDueSince(ctx context.Context, cutoff int64) ([]db_models.Subscription, error) {
	return r.filter(func(s db_models.Subscription) bool {
		return s.Status == db_models.SubStatusPastDue && s.PastDueAt != nil && *s.PastDueAt <= cutoff
	}), nil
}

func (r *fakeSubscriptionRepo) ListLapsed(ctx context.Context, now int64) ([]db_models.Subscription, error) {
	return r.filter(func(s db_models.Subscription) bool {
		return isLive(s) && !s.AutoRenew && s.EndsAt <= now
	}), nil
}

func (r *fakeSubscriptionRepo) List(ctx context.Context, status string, page, pageSize int) ([]db_models.Subscription, int64, error) {
	out := r.filter(func(s db_models.Subscription) bool { return status == "" || string(s.Status) == status })
	return out, int64(len(out)), nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []db_models.Payment
	// failCreates makes the next n inserts fail.
	failCreates int
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *db_models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreates > 0 {
		r.failCreates--
		return errors.New("connection reset")
	}
	if p.GatewayRef != nil {
		for _, existing := range r.payments {
			if existing.GatewayRef != nil && *existing.GatewayRef == *p.GatewayRef {
				return repositories.ErrDuplicateGatewayRef
			}
		}
	}
	p.ID = uuid.New()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *fakePaymentRepo) FindByGatewayRef(ctx context.Context, gateway, ref string) (*db_models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.Gateway == gateway && p.GatewayRef != nil && *p.GatewayRef == ref {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) withStatus(status db_models.PaymentStatus) []db_models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Payment
	for _, p := range r.payments {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// ------------------- gateways and events -------------------

type fakeGateway struct {
	name  string
	ref   string
	err   error
	calls []ChargeRequest
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	// Like a real processor, a repeated idempotency key returns the same charge.
	ref := g.ref
	if ref == "" {
		ref = fmt.Sprintf("%s_%s", g.name, req.IdempotencyKey)
	}
	return &ChargeResult{GatewayRef: ref}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.SubscriptionEvent
}

func (p *fakePublisher) Publish(ctx context.Context, evt events.SubscriptionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *fakePublisher) ofType(t events.EventType) []events.SubscriptionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.SubscriptionEvent
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ------------------- wallet -------------------

type fakeWallets struct {
	WalletServiceInterface
	balances map[uuid.UUID]int64
	err      error
}

func (w *fakeWallets) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if w.err != nil {
		return 0, w.err
	}
	return w.balances[accountID], nil
}

type fakeSubscriptions struct {
	SubscriptionServiceInterface
	current *resp.SubscriptionResponse
	err     error
}

func (f *fakeSubscriptions) GetCurrent(ctx context.Context, accountID uuid.UUID) (*resp.SubscriptionResponse, error) {
	return f.current, f.err
}

// ------------------- catalog -------------------

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[uuid.UUID]db_models.Plan
}

func newFakePlanRepo(plans ...db_models.Plan) *fakePlanRepo {
	r := &fakePlanRepo{plans: map[uuid.UUID]db_models.Plan{}}
	for _, p := range plans {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *db_models.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.Code == plan.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	plan.ID = uuid.New()
	r.plans[plan.ID] = *plan
	return nil
}

func (r *fakePlanRepo) Save(ctx context.Context, plan *db_models.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID] = *plan
	return nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePlanRepo) GetPlanByCode(ctx context.Context, code string) (*db_models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.Code == code {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) GetAllPlans(ctx context.Context, activeOnly bool) ([]db_models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Plan
	for _, p := range r.plans {
		if !activeOnly || p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]db_models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]db_models.Product{}}
}

func (r *fakeProductRepo) skuTaken(sku string, except uuid.UUID) bool {
	for id, p := range r.products {
		if id != except && p.SKU == sku {
			return true
		}
	}
	return false
}

func (r *fakeProductRepo) Create(ctx context.Context, product *db_models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skuTaken(product.SKU, uuid.Nil) {
		return gorm.ErrDuplicatedKey
	}
	product.ID = uuid.New()
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Save(ctx context.Context, product *db_models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skuTaken(product.SKU, product.ID) {
		return gorm.ErrDuplicatedKey
	}
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) FindById(ctx context.Context, id uuid.UUID) (*db_models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter repositories.ProductFilter, page, pageSize int) ([]db_models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Product
	for _, p := range r.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

// ------------------- site content -------------------

type fakeSiteContentRepo struct {
	mu       sync.Mutex
	settings db_models.SiteSettings
	blocks   map[string]db_models.LandingBlock
	// reads counts published block listings, i.e. cache misses.
	reads int
}

func newFakeSiteContentRepo(blocks ...db_models.LandingBlock) *fakeSiteContentRepo {
	r := &fakeSiteContentRepo{
		settings: db_models.SiteSettings{ID: db_models.SiteSettingsID},
		blocks:   map[string]db_models.LandingBlock{},
	}
	for _, b := range blocks {
		r.blocks[b.Key] = b
	}
	return r
}

func (r *fakeSiteContentRepo) GetSettings(ctx context.Context) (*db_models.SiteSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.settings
	return &s, nil
}

func (r *fakeSiteContentRepo) SaveSettings(ctx context.Context, settings *db_models.SiteSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings.ID = db_models.SiteSettingsID
	r.settings = *settings
	return nil
}

func (r *fakeSiteContentRepo) ListBlocks(ctx context.Context, publishedOnly bool) ([]db_models.LandingBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if publishedOnly {
		r.reads++
	}
	out := make([]db_models.LandingBlock, 0, len(r.blocks))
	for _, b := range r.blocks {
		if !publishedOnly || b.IsPublished {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (r *fakeSiteContentRepo) FindBlockByKey(ctx context.Context, key string) (*db_models.LandingBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blocks[key]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *fakeSiteContentRepo) SaveBlock(ctx context.Context, block *db_models.LandingBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[block.Key] = *block
	return nil
}

func (r *fakeSiteContentRepo) DeleteBlock(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.blocks, key)
	return nil
}

// SetPositions is all-or-nothing like the transactional implementation.
func (r *fakeSiteContentRepo) SetPositions(ctx context.Context, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		if _, ok := r.blocks[k]; !ok {
			return gorm.ErrRecordNotFound
		}
	}
	for i, k := range keys {
		b := r.blocks[k]
		b.Position = i
		r.blocks[k] = b
	}
	return nil
}
