package service

import (
	"context"

	"github.com/shopspring/decimal"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/storage"
)

// PostbackService maps validated broker events onto ledger mutations and
// pushes the funnel forward. Ledger writes fail loudly; everything after
// a successful write (advance, notifications, ops forwarding) is
// best-effort.
type PostbackService interface {
	Registration(ctx context.Context, traderID string, teleID int64) error
	// Deposit appends a ledger row and reports whether this event made
	// the user VIP.
	Deposit(ctx context.Context, traderID string, teleID int64, amount decimal.Decimal) (becameVIP bool, err error)
	Withdraw(ctx context.Context, traderID string, teleID int64, amount decimal.Decimal) error
}

type postbackService struct {
	stg      storage.IStorage
	log      logger.ILogger
	flow     FlowService
	notifier OpsNotifier
}

func NewPostbackService(stg storage.IStorage, log logger.ILogger, flow FlowService, n OpsNotifier) PostbackService {
	return &postbackService{
		stg:      stg,
		log:      log,
		flow:     flow,
		notifier: n,
	}
}

func (s *postbackService) Registration(ctx context.Context, traderID string, teleID int64) error {
	// The partner may report users who never opened the bot; create the
	// record anyway, it is needed for attribution.
	user, err := s.stg.User().GetOrCreate(ctx, teleID, "")
	if err != nil {
		return err
	}
	if traderID != "" {
		if err := s.stg.User().SetTraderID(ctx, user.ID, traderID); err != nil {
			return err
		}
	}
	if err := s.stg.User().SetRegistered(ctx, user.ID, true); err != nil {
		return err
	}

	if err := s.flow.Advance(ctx, teleID); err != nil {
		s.log.Error("advance after registration postback failed",
			logger.Int64("tele_id", teleID), logger.Error(err))
	}

	s.forward(ctx, models.EventRegistration, traderID, teleID, decimal.Zero)
	return nil
}

func (s *postbackService) Deposit(ctx context.Context, traderID string, teleID int64, amount decimal.Decimal) (bool, error) {
	user, err := s.stg.User().GetOrCreate(ctx, teleID, "")
	if err != nil {
		return false, err
	}
	if traderID != "" {
		if err := s.stg.User().SetTraderID(ctx, user.ID, traderID); err != nil {
			return false, err
		}
	}

	if _, err := s.stg.Deposit().Create(ctx, user.ID, amount); err != nil {
		return false, err
	}
	total, err := s.stg.Deposit().TotalFor(ctx, user.ID)
	if err != nil {
		return false, err
	}
	settings, err := s.stg.Settings().Get(ctx)
	if err != nil {
		return false, err
	}

	becameVIP := false
	threshold := settings.VIPThresholdAmount
	if threshold.Sign() > 0 && total.GreaterThanOrEqual(threshold) && !user.VIP {
		if err := s.stg.User().SetVIP(ctx, user.ID, true); err != nil {
			return false, err
		}
		becameVIP = true
	}

	if err := s.flow.Advance(ctx, teleID); err != nil {
		s.log.Error("advance after deposit postback failed",
			logger.Int64("tele_id", teleID), logger.Error(err))
	}
	if becameVIP {
		if err := s.flow.NotifyVIPGranted(ctx, teleID); err != nil {
			s.log.Error("vip notification failed",
				logger.Int64("tele_id", teleID), logger.Error(err))
		}
	}

	s.forward(ctx, models.EventDeposit, traderID, teleID, amount)
	return becameVIP, nil
}

// Withdraw touches no ledger state; withdrawals do not affect access
// eligibility. Only the ops chat hears about them.
func (s *postbackService) Withdraw(ctx context.Context, traderID string, teleID int64, amount decimal.Decimal) error {
	s.forward(ctx, models.EventWithdraw, traderID, teleID, amount)
	return nil
}

// forward pushes the event to the operational chat when enabled in the
// settings. Reads settings fresh and swallows delivery failures.
func (s *postbackService) forward(ctx context.Context, kind models.EventKind, traderID string, teleID int64, amount decimal.Decimal) {
	settings, err := s.stg.Settings().Get(ctx)
	if err != nil {
		s.log.Error("failed to load settings for ops forwarding", logger.Error(err))
		return
	}
	chatID := settings.PostbacksChatIDValue()
	if chatID == "" || !settings.ForwardEnabled(kind) {
		return
	}
	if err := s.notifier.ForwardEvent(ctx, chatID, kind, traderID, teleID, amount); err != nil {
		s.log.Error("failed to forward postback to ops chat",
			logger.String("kind", kind.String()), logger.Error(err))
	}
}
