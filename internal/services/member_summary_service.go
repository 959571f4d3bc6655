package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

const (
	summaryPhase        = "phase"
	summarySubscription = "subscription"
	summaryWallet       = "wallet"
	summaryNetwork      = "network"
)

type MemberSummaryServiceInterface interface {
	Summary(ctx context.Context, accountID uuid.UUID) (*resp.MemberSummary, error)
}

type MemberSummaryService struct {
	accounts      repositories.AccountRepository
	phases        repositories.PhaseRepository
	subscriptions SubscriptionServiceInterface
	wallets       WalletServiceInterface
	maxDepth      int
	currency      string
}

func NewMemberSummaryService(
	accounts repositories.AccountRepository,
	phases repositories.PhaseRepository,
	subscriptions SubscriptionServiceInterface,
	wallets WalletServiceInterface,
	maxDepth int,
	currency string,
) MemberSummaryServiceInterface {
	return &MemberSummaryService{
		accounts:      accounts,
		phases:        phases,
		subscriptions: subscriptions,
		wallets:       wallets,
		maxDepth:      maxDepth,
		currency:      currency,
	}
}

// Summary issues the four reads concurrently. A failed read leaves its
// field at the default and is named in Degraded; only a missing account
// fails the whole call.
func (s *MemberSummaryService) Summary(ctx context.Context, accountID uuid.UUID) (*resp.MemberSummary, error) {
	starter := DefaultPhases()[0]
	out := &resp.MemberSummary{
		AccountID: accountID,
		Phase:     toPhaseResponse(&starter),
		Wallet:    resp.WalletResponse{AccountID: accountID, Currency: s.currency},
	}

	var (
		mu       sync.Mutex
		degraded []string
		missing  bool
	)
	fail := func(field string, err error) {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"field":      field,
		}).WithError(err).Warn("member summary read failed, using default")
		mu.Lock()
		degraded = append(degraded, field)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		account, err := s.accounts.FindById(gctx, accountID)
		if err != nil {
			fail(summaryPhase, err)
			return nil
		}
		if account == nil {
			mu.Lock()
			missing = true
			mu.Unlock()
			return nil
		}
		phase, err := s.phases.FindByLevel(gctx, account.PhaseLevel)
		if err != nil {
			fail(summaryPhase, err)
			return nil
		}
		if phase == nil {
			p := phaseTable(nil).lookup(account.PhaseLevel)
			phase = &p
		}
		out.Phase = toPhaseResponse(phase)
		return nil
	})

	g.Go(func() error {
		sub, err := s.subscriptions.GetCurrent(gctx, accountID)
		if errors.Is(err, utils.ErrSubscriptionNotFound) {
			return nil
		}
		if err != nil {
			fail(summarySubscription, err)
			return nil
		}
		out.Subscription = sub
		return nil
	})

	g.Go(func() error {
		balance, err := s.wallets.Balance(gctx, accountID)
		if err != nil {
			fail(summaryWallet, err)
			return nil
		}
		out.Wallet.BalanceMinor = balance
		return nil
	})

	g.Go(func() error {
		network, err := s.network(gctx, accountID)
		if err != nil {
			fail(summaryNetwork, err)
			return nil
		}
		out.Network = *network
		return nil
	})

	// Every goroutine returns nil; Wait is only a barrier.
	_ = g.Wait()

	if missing {
		return nil, utils.ErrAccountNotFound
	}
	out.Degraded = degraded
	return out, nil
}

// network counts direct referrals and the downline size, level by level,
// down to maxDepth.
func (s *MemberSummaryService) network(ctx context.Context, accountID uuid.UUID) (*resp.NetworkSummary, error) {
	direct, err := s.accounts.CountDirectReferrals(ctx, accountID)
	if err != nil {
		return nil, err
	}

	visited := map[uuid.UUID]struct{}{accountID: {}}
	frontier := []uuid.UUID{accountID}
	var size int64

	for depth := 0; depth < s.maxDepth && len(frontier) > 0; depth++ {
		children, err := s.accounts.ListReferralIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		next := make([]uuid.UUID, 0, len(children))
		for _, id := range children {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			next = append(next, id)
		}
		size += int64(len(next))
		frontier = next
	}

	return &resp.NetworkSummary{DirectReferrals: direct, NetworkSize: size}, nil
}

