package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/storage"
	"signalbot/storage/memory"
)

const teleID int64 = 111222333

func TestAdvanceStopsAtSubscriptionWhenNotMember(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	h.checker.subscribed = false

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, []string{"subscription"}, h.presenter.calls)
	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.False(t, user.Subscribed)
	require.False(t, user.BasicAccess)
}

func TestAdvanceFailsClosedWhenCheckErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	h.checker.err = context.DeadlineExceeded

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, "subscription", h.presenter.last())
	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.False(t, user.Subscribed)
}

func TestAdvancePersistsSubscriptionAndMovesOn(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, []string{"registration"}, h.presenter.calls)
	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.True(t, user.Subscribed)
}

func TestAdvanceDoesNotRecheckPersistedSubscription(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))
	require.Equal(t, 1, h.checker.calls)

	// The platform may be down next time; the persisted flag is trusted.
	h.checker.subscribed = false
	h.checker.err = context.DeadlineExceeded
	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, 1, h.checker.calls)
	require.Equal(t, "registration", h.presenter.last())
}

func TestAdvanceConfigErrorWhenRefLinkMissing(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	require.NoError(t, h.stg.Settings().UpdateRefLink(ctx, ""))

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, "config_error", h.presenter.last())
	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.False(t, user.BasicAccess)
}

func TestAdvanceShowsDepositProgress(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	user, err := h.stg.User().GetOrCreate(ctx, teleID, "trader")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetRegistered(ctx, user.ID, true))
	_, err = h.stg.Deposit().Create(ctx, user.ID, decimal.NewFromInt(30))
	require.NoError(t, err)

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, "deposit", h.presenter.last())
	require.True(t, h.presenter.lastRequired.Equal(decimal.NewFromInt(50)))
	require.True(t, h.presenter.lastCurrent.Equal(decimal.NewFromInt(30)))
}

func TestAdvanceConfigErrorOnBadDepositSettings(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	user, err := h.stg.User().GetOrCreate(ctx, teleID, "")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetRegistered(ctx, user.ID, true))

	// Threshold not set.
	require.NoError(t, h.stg.Settings().UpdateDepositRequiredAmount(ctx, decimal.Zero))
	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))
	require.Equal(t, "config_error", h.presenter.last())

	// Threshold set, deposit link missing.
	require.NoError(t, h.stg.Settings().UpdateDepositRequiredAmount(ctx, decimal.NewFromInt(50)))
	require.NoError(t, h.stg.Settings().UpdateDepositLink(ctx, ""))
	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))
	require.Equal(t, "config_error", h.presenter.last())
}

func TestAdvanceGrantsAccessAndPersistsFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	user, err := h.stg.User().GetOrCreate(ctx, teleID, "")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetRegistered(ctx, user.ID, true))
	_, err = h.stg.Deposit().Create(ctx, user.ID, decimal.NewFromInt(60))
	require.NoError(t, err)

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, "access_granted", h.presenter.last())
	require.False(t, h.presenter.lastVIPGranted)

	stored, err := h.stg.User().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.BasicAccess)
	require.False(t, stored.VIP)
}

func TestAdvanceGrantsVIPAtThreshold(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	user, err := h.stg.User().GetOrCreate(ctx, teleID, "")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetRegistered(ctx, user.ID, true))
	_, err = h.stg.Deposit().Create(ctx, user.ID, decimal.NewFromInt(250))
	require.NoError(t, err)

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, "access_granted", h.presenter.last())
	require.True(t, h.presenter.lastVIPGranted)

	stored, err := h.stg.User().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.VIP)
}

func TestAdvanceShortCircuitsWhenAccessHeld(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	user, err := h.stg.User().GetOrCreate(ctx, teleID, "")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetBasicAccess(ctx, user.ID, true))

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, []string{"destination"}, h.presenter.calls)
	require.Zero(t, h.checker.calls)
}

func TestAdvanceNeverRevokesVIP(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	// The VIP threshold was raised after the grant; the flag still counts
	// as access and is never re-evaluated downward.
	user, err := h.stg.User().GetOrCreate(ctx, teleID, "")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetRegistered(ctx, user.ID, true))
	require.NoError(t, h.stg.User().SetVIP(ctx, user.ID, true))
	_, err = h.stg.Deposit().Create(ctx, user.ID, decimal.NewFromInt(60))
	require.NoError(t, err)
	require.NoError(t, h.stg.Settings().UpdateVIPThresholdAmount(ctx, decimal.NewFromInt(1000)))

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, []string{"destination"}, h.presenter.calls)
	stored, err := h.stg.User().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.VIP)
}

func TestAdvanceSkipsDisabledSteps(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	require.NoError(t, h.stg.Settings().SetRequireSubscription(ctx, false))
	require.NoError(t, h.stg.Settings().SetRequireDeposit(ctx, false))

	user, err := h.stg.User().GetOrCreate(ctx, teleID, "")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetRegistered(ctx, user.ID, true))

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, []string{"access_granted"}, h.presenter.calls)
	require.Zero(t, h.checker.calls)
}

func TestAdvanceRegistrationRequiredEvenWithStepsOff(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	require.NoError(t, h.stg.Settings().SetRequireSubscription(ctx, false))
	require.NoError(t, h.stg.Settings().SetRequireDeposit(ctx, false))

	// Fresh account, no flag, no trader id: the toggles cannot skip
	// registration.
	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	require.Equal(t, []string{"registration"}, h.presenter.calls)
	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.False(t, user.Registered)
	require.False(t, user.BasicAccess)
	require.False(t, user.VIP)
}

func TestAdvanceTraderIDSatisfiesRegistration(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	user, err := h.stg.User().GetOrCreate(ctx, teleID, "")
	require.NoError(t, err)
	require.NoError(t, h.stg.User().SetTraderID(ctx, user.ID, "tr-1"))

	require.NoError(t, h.svc.Flow().Advance(ctx, teleID))

	// Past registration straight to the deposit screen.
	require.Equal(t, "deposit", h.presenter.last())
}

// vanishingUserStore drops every re-read, standing in for a concurrent
// account deletion between a write and the follow-up load.
type vanishingUserStore struct{ storage.IUserStorage }

func (vanishingUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return nil, nil
}

type vanishingStore struct{ *memory.Store }

func (s vanishingStore) User() storage.IUserStorage {
	return vanishingUserStore{s.Store.User()}
}

func TestAdvanceErrorsWhenAccountVanishesMidStep(t *testing.T) {
	ctx := context.Background()
	pres := &fakePresenter{}
	svc := New(vanishingStore{memory.New()}, logger.New("test", "error"),
		pres, &fakeChecker{subscribed: true}, &fakeNotifier{})

	err := svc.Flow().Advance(ctx, teleID)

	require.Error(t, err)
	// No screen is ever rendered for a record that no longer exists.
	require.Empty(t, pres.calls)
}

func TestNotifyHelpers(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	require.NoError(t, h.svc.Flow().NotifyAccessLimited(ctx, teleID, models.TierVIP))
	require.Equal(t, "access_limited", h.presenter.last())
	require.Equal(t, models.TierVIP, h.presenter.lastTier)

	require.NoError(t, h.svc.Flow().NotifyVIPGranted(ctx, teleID))
	require.Equal(t, "vip_granted", h.presenter.last())
}
