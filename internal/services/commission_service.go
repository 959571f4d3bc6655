package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

// DefaultPhases is the compensation plan seeded by the migrator and used
// whenever a member's level has no row in the phases table.
func DefaultPhases() []db_models.Phase {
	return []db_models.Phase{
		{Level: 0, Name: "Starter", CommissionRate: decimal.NewFromInt(8), NetworkRate: decimal.Zero, MaxNetworkDepth: 0},
		{Level: 1, Name: "Bronze", CommissionRate: decimal.NewFromInt(15), NetworkRate: decimal.NewFromInt(3), MaxNetworkDepth: 1, MinPersonalVolume: 50_000},
		{Level: 2, Name: "Silver", CommissionRate: decimal.NewFromInt(30), NetworkRate: decimal.NewFromInt(5), MaxNetworkDepth: 2, MinPersonalVolume: 150_000},
		{Level: 3, Name: "Gold", CommissionRate: decimal.NewFromInt(40), NetworkRate: decimal.NewFromInt(7), MaxNetworkDepth: 3, MinPersonalVolume: 500_000},
	}
}

// UplineMember is one sponsor above the origin; Level 1 is the direct sponsor.
type UplineMember struct {
	Level   int
	Account db_models.Account
}

type SaleInput struct {
	SellerID    uuid.UUID
	BuyerID     uuid.UUID
	AmountMinor int64
	Currency    string
	OrderRef    string
}

type SaleResult struct {
	Seller  *resp.CommissionResponse  `json:"seller"`
	Network []resp.CommissionResponse `json:"network"`
}

type CommissionServiceInterface interface {
	GetUplineChain(ctx context.Context, accountID uuid.UUID, maxDepth int) ([]UplineMember, error)
	SellerCommission(ctx context.Context, sellerID uuid.UUID, amountMinor int64, currency, ref string) (*resp.CommissionResponse, error)
	// Distribute pays network overrides to the upline of originID.
	Distribute(ctx context.Context, originID uuid.UUID, amountMinor int64, currency string, source db_models.CommissionSource, ref string) ([]resp.CommissionResponse, error)
	RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error)

	ListPhases(ctx context.Context) ([]resp.PhaseResponse, error)
	UpdatePhase(ctx context.Context, level int, req request_models.UpdatePhaseRequest) (*resp.PhaseResponse, error)
	ListCommissions(ctx context.Context, beneficiaryID *uuid.UUID, start, end time.Time, page, pageSize int) ([]resp.CommissionResponse, int64, error)
}

type CommissionService struct {
	accountRepo    repositories.AccountRepository
	phaseRepo      repositories.PhaseRepository
	commissionRepo repositories.CommissionRepository
	maxDepth       int
}

func NewCommissionService(
	accountRepo repositories.AccountRepository,
	phaseRepo repositories.PhaseRepository,
	commissionRepo repositories.CommissionRepository,
	maxUplineDepth int,
) CommissionServiceInterface {
	return &CommissionService{
		accountRepo:    accountRepo,
		phaseRepo:      phaseRepo,
		commissionRepo: commissionRepo,
		maxDepth:       maxUplineDepth,
	}
}

// GetUplineChain follows sponsor pointers for at most maxDepth hops. The walk
// ends early at a root member, at a sponsor that no longer exists, or when a
// member is seen twice. A non-positive maxDepth uses the configured bound.
func (s *CommissionService) GetUplineChain(ctx context.Context, accountID uuid.UUID, maxDepth int) ([]UplineMember, error) {
	if maxDepth <= 0 {
		maxDepth = s.maxDepth
	}

	current, err := s.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if current == nil {
		return nil, utils.ErrAccountNotFound
	}

	seen := map[uuid.UUID]bool{current.ID: true}
	chain := make([]UplineMember, 0, maxDepth)

	for level := 1; level <= maxDepth; level++ {
		if current.SponsorID == nil {
			break
		}
		sponsorID := *current.SponsorID
		if seen[sponsorID] {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"sponsor_id": sponsorID,
			}).Warn("sponsor cycle detected, stopping upline walk")
			break
		}

		sponsor, err := s.accountRepo.FindById(ctx, sponsorID)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if sponsor == nil {
			break
		}

		seen[sponsorID] = true
		chain = append(chain, UplineMember{Level: level, Account: *sponsor})
		current = sponsor
	}
	return chain, nil
}

func (s *CommissionService) SellerCommission(ctx context.Context, sellerID uuid.UUID, amountMinor int64, currency, ref string) (*resp.CommissionResponse, error) {
	if amountMinor <= 0 {
		return nil, utils.ErrInvalidAmount
	}

	seller, err := s.accountRepo.FindById(ctx, sellerID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if seller == nil {
		return nil, utils.ErrAccountNotFound
	}

	phases, err := s.loadPhases(ctx)
	if err != nil {
		return nil, err
	}
	phase := phases.lookup(seller.PhaseLevel)

	commission := &db_models.Commission{
		BeneficiaryID: seller.ID,
		OriginID:      seller.ID,
		Source:        db_models.SourceSale,
		RefID:         ref,
		Level:         0,
		PhaseLevel:    phase.Level,
		Rate:          phase.CommissionRate,
		BaseMinor:     amountMinor,
		AmountMinor:   utils.ApplyRate(amountMinor, phase.CommissionRate),
		Currency:      currency,
	}
	if commission.AmountMinor == 0 {
		return nil, nil
	}

	if err := s.commissionRepo.CreateWithCredit(ctx, commission); err != nil {
		if errors.Is(err, repositories.ErrCommissionExists) {
			return nil, utils.ErrDuplicateRecord
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return toCommissionResponse(commission), nil
}

func (s *CommissionService) Distribute(ctx context.Context, originID uuid.UUID, amountMinor int64, currency string, source db_models.CommissionSource, ref string) ([]resp.CommissionResponse, error) {
	if amountMinor <= 0 {
		return nil, utils.ErrInvalidAmount
	}

	chain, err := s.GetUplineChain(ctx, originID, s.maxDepth)
	if err != nil {
		return nil, err
	}
	phases, err := s.loadPhases(ctx)
	if err != nil {
		return nil, err
	}

	paid := make([]resp.CommissionResponse, 0, len(chain))
	for _, member := range chain {
		if member.Account.Status != db_models.AccountActive {
			continue
		}
		phase := phases.lookup(member.Account.PhaseLevel)
		if member.Level > phase.MaxNetworkDepth {
			continue
		}
		payout := utils.ApplyRate(amountMinor, phase.NetworkRate)
		if payout == 0 {
			continue
		}

		commission := &db_models.Commission{
			BeneficiaryID: member.Account.ID,
			OriginID:      originID,
			Source:        source,
			RefID:         ref,
			Level:         member.Level,
			PhaseLevel:    phase.Level,
			Rate:          phase.NetworkRate,
			BaseMinor:     amountMinor,
			AmountMinor:   payout,
			Currency:      currency,
		}
		err := s.commissionRepo.CreateWithCredit(ctx, commission)
		if errors.Is(err, repositories.ErrCommissionExists) {
			logrus.WithFields(logrus.Fields{
				"beneficiary_id": member.Account.ID,
				"source":         source,
				"ref":            ref,
				"level":          member.Level,
			}).Info("commission already paid, skipping")
			continue
		}
		if err != nil {
			return paid, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		paid = append(paid, *toCommissionResponse(commission))
	}
	return paid, nil
}

// RecordSale pays the seller's own commission, then network overrides to the
// seller's upline, all keyed by the order reference.
func (s *CommissionService) RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error) {
	buyer, err := s.accountRepo.FindById(ctx, in.BuyerID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if buyer == nil {
		return nil, utils.ErrAccountNotFound
	}

	seller, err := s.SellerCommission(ctx, in.SellerID, in.AmountMinor, in.Currency, in.OrderRef)
	if err != nil && !errors.Is(err, utils.ErrDuplicateRecord) {
		return nil, err
	}

	network, err := s.Distribute(ctx, in.SellerID, in.AmountMinor, in.Currency, db_models.SourceSale, in.OrderRef)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Seller: seller, Network: network}, nil
}

func (s *CommissionService) ListPhases(ctx context.Context) ([]resp.PhaseResponse, error) {
	phases, err := s.phaseRepo.List(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if len(phases) == 0 {
		phases = DefaultPhases()
	}

	out := make([]resp.PhaseResponse, 0, len(phases))
	for i := range phases {
		out = append(out, toPhaseResponse(&phases[i]))
	}
	return out, nil
}

func (s *CommissionService) UpdatePhase(ctx context.Context, level int, req request_models.UpdatePhaseRequest) (*resp.PhaseResponse, error) {
	commissionRate, err := decimal.NewFromString(req.CommissionRate)
	if err != nil || commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, utils.ErrInvalidInput
	}
	networkRate, err := decimal.NewFromString(req.NetworkRate)
	if err != nil || networkRate.IsNegative() || networkRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, utils.ErrInvalidInput
	}
	if level < 0 {
		return nil, utils.ErrPhaseNotFound
	}

	phase := &db_models.Phase{
		Level:             level,
		Name:              req.Name,
		CommissionRate:    commissionRate,
		NetworkRate:       networkRate,
		MaxNetworkDepth:   *req.MaxNetworkDepth,
		MinPersonalVolume: *req.MinPersonalVolume,
	}
	if err := s.phaseRepo.Upsert(ctx, phase); err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := toPhaseResponse(phase)
	return &out, nil
}

func (s *CommissionService) ListCommissions(ctx context.Context, beneficiaryID *uuid.UUID, start, end time.Time, page, pageSize int) ([]resp.CommissionResponse, int64, error) {
	rows, total, err := s.commissionRepo.List(ctx, repositories.CommissionFilter{
		BeneficiaryID: beneficiaryID,
		Start:         start,
		End:           end,
	}, page, pageSize)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}

	out := make([]resp.CommissionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toCommissionResponse(&rows[i]))
	}
	return out, total, nil
}

type phaseTable map[int]db_models.Phase

// lookup falls back to the default plan, then to a zero-rate phase.
func (t phaseTable) lookup(level int) db_models.Phase {
	if p, ok := t[level]; ok {
		return p
	}
	for _, p := range DefaultPhases() {
		if p.Level == level {
			return p
		}
	}
	return db_models.Phase{Level: level, Name: "Unranked"}
}

func (s *CommissionService) loadPhases(ctx context.Context) (phaseTable, error) {
	phases, err := s.phaseRepo.List(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	table := make(phaseTable, len(phases))
	for _, p := range phases {
		table[p.Level] = p
	}
	return table, nil
}

func toPhaseResponse(p *db_models.Phase) resp.PhaseResponse {
	return resp.PhaseResponse{
		Level:             p.Level,
		Name:              p.Name,
		CommissionRate:    p.CommissionRate.String(),
		NetworkRate:       p.NetworkRate.String(),
		MaxNetworkDepth:   p.MaxNetworkDepth,
		MinPersonalVolume: p.MinPersonalVolume,
	}
}

func toCommissionResponse(c *db_models.Commission) *resp.CommissionResponse {
	return &resp.CommissionResponse{
		ID:            c.ID,
		BeneficiaryID: c.BeneficiaryID,
		OriginID:      c.OriginID,
		Source:        string(c.Source),
		RefID:         c.RefID,
		Level:         c.Level,
		PhaseLevel:    c.PhaseLevel,
		Rate:          c.Rate.String(),
		BaseMinor:     c.BaseMinor,
		AmountMinor:   c.AmountMinor,
		Currency:      c.Currency,
		CreatedAt:     c.CreatedAt,
	}
}
