package service

import (
	"context"
	"fmt"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/storage"
)

// FlowService is the access-flow engine. Advance moves a user to the next
// unsatisfied funnel step (subscription -> registration -> deposit ->
// grant) and presents exactly one screen. Every persisted mutation
// happens before the corresponding message is sent, so presentation
// always reflects committed state.
type FlowService interface {
	Advance(ctx context.Context, teleID int64) error
	NotifyAccessLimited(ctx context.Context, teleID int64, tier models.Tier) error
	NotifyVIPGranted(ctx context.Context, teleID int64) error
}

type flowService struct {
	stg       storage.IStorage
	log       logger.ILogger
	presenter Presenter
	subs      SubscriptionChecker
}

func NewFlowService(stg storage.IStorage, log logger.ILogger, p Presenter, sc SubscriptionChecker) FlowService {
	return &flowService{
		stg:       stg,
		log:       log,
		presenter: p,
		subs:      sc,
	}
}

// present delivers a screen best-effort: a failed send never rolls back
// or blocks the state transition that preceded it.
func (s *flowService) present(teleID int64, fn func() error) {
	if err := fn(); err != nil {
		s.log.Error("failed to present flow step", logger.Int64("tele_id", teleID), logger.Error(err))
	}
}

func (s *flowService) Advance(ctx context.Context, teleID int64) error {
	user, err := s.stg.User().GetOrCreate(ctx, teleID, "")
	if err != nil {
		return err
	}
	settings, err := s.stg.Settings().Get(ctx)
	if err != nil {
		return err
	}

	// Access already granted: fallback path, the normal route is the
	// direct mini-app button shown at grant time.
	if user.HasAccess() {
		s.present(teleID, func() error { return s.presenter.ShowDestination(ctx, user, settings) })
		return nil
	}

	// Step 1: channel subscription.
	if settings.RequireSubscription {
		if !user.Subscribed {
			ok, err := s.subs.IsSubscribed(ctx, settings.ChannelIDValue(), teleID)
			if err != nil {
				// Fail closed: an unreachable platform means "not subscribed".
				s.log.Warning("subscription check failed", logger.Int64("tele_id", teleID), logger.Error(err))
				ok = false
			}
			if ok {
				if err := s.stg.User().SetSubscribed(ctx, user.ID, true); err != nil {
					return err
				}
				// Re-read instead of patching the snapshot; later steps
				// must see committed state only.
				user, err = s.stg.User().GetByID(ctx, user.ID)
				if err != nil {
					return err
				}
				if user == nil {
					// Account deleted between the write and the re-read.
					return fmt.Errorf("account for %d not found after update", teleID)
				}
			}
		}
		if !user.Subscribed {
			s.present(teleID, func() error { return s.presenter.ShowSubscription(ctx, user, settings) })
			return nil
		}
	}

	// Step 2: broker registration. Always enforced; a set trader id
	// satisfies it even when the flag was never flipped.
	if !user.HasRegistered() {
		if settings.RefLinkValue() == "" {
			s.present(teleID, func() error { return s.presenter.ShowConfigError(ctx, user) })
			return nil
		}
		s.present(teleID, func() error { return s.presenter.ShowRegistration(ctx, user, settings) })
		return nil
	}

	total, err := s.stg.Deposit().TotalFor(ctx, user.ID)
	if err != nil {
		return err
	}

	// Step 3: deposit threshold.
	if settings.RequireDeposit {
		required := settings.DepositRequiredAmount
		if required.Sign() <= 0 {
			s.present(teleID, func() error { return s.presenter.ShowConfigError(ctx, user) })
			return nil
		}
		if total.LessThan(required) {
			if settings.DepositLinkValue() == "" {
				s.present(teleID, func() error { return s.presenter.ShowConfigError(ctx, user) })
				return nil
			}
			s.present(teleID, func() error {
				return s.presenter.ShowDeposit(ctx, user, settings, required, total)
			})
			return nil
		}
	}

	// Step 4: grant. VIP rides along when the cumulative sum crosses the
	// threshold; an existing VIP flag is never downgraded here.
	vipThreshold := settings.VIPThresholdAmount
	becameVIP := !user.VIP && vipThreshold.Sign() > 0 && total.GreaterThanOrEqual(vipThreshold)

	if err := s.stg.User().SetBasicAccess(ctx, user.ID, true); err != nil {
		return err
	}
	if becameVIP {
		if err := s.stg.User().SetVIP(ctx, user.ID, true); err != nil {
			return err
		}
	}
	user, err = s.stg.User().GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	s.present(teleID, func() error {
		return s.presenter.ShowAccessGranted(ctx, user, settings, becameVIP)
	})
	return nil
}

// NotifyAccessLimited pushes the "top up to re-enable" message after an
// admin revokes a flag. Reads fresh state, mutates nothing.
func (s *flowService) NotifyAccessLimited(ctx context.Context, teleID int64, tier models.Tier) error {
	user, err := s.stg.User().GetOrCreate(ctx, teleID, "")
	if err != nil {
		return err
	}
	settings, err := s.stg.Settings().Get(ctx)
	if err != nil {
		return err
	}
	return s.presenter.ShowAccessLimited(ctx, user, settings, tier)
}

// NotifyVIPGranted pushes the VIP message with the destination link. The
// caller is expected to have persisted the VIP flag already.
func (s *flowService) NotifyVIPGranted(ctx context.Context, teleID int64) error {
	user, err := s.stg.User().GetOrCreate(ctx, teleID, "")
	if err != nil {
		return err
	}
	settings, err := s.stg.Settings().Get(ctx)
	if err != nil {
		return err
	}
	return s.presenter.ShowVIPGranted(ctx, user, settings)
}
