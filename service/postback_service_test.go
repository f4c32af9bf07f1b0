package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"signalbot/pkg/models"
)

func TestRegistrationCreatesUnknownUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-777", teleID))

	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.True(t, user.Registered)
	require.NotNil(t, user.TraderID)
	require.Equal(t, "tr-777", *user.TraderID)

	// The flow pushed the user onward: next stop is the deposit screen.
	require.Equal(t, "deposit", h.presenter.last())
}

func TestRegistrationKeepsFirstTraderID(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-first", teleID))
	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-second", teleID))

	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.Equal(t, "tr-first", *user.TraderID)
}

func TestDepositsAccumulateToGrant(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-1", teleID))

	vip, err := h.svc.Postback().Deposit(ctx, "tr-1", teleID, decimal.NewFromInt(30))
	require.NoError(t, err)
	require.False(t, vip)
	require.Equal(t, "deposit", h.presenter.last())

	vip, err = h.svc.Postback().Deposit(ctx, "tr-1", teleID, decimal.NewFromInt(25))
	require.NoError(t, err)
	require.False(t, vip)
	require.Equal(t, "access_granted", h.presenter.last())

	user, err := h.stg.User().Get(ctx, teleID)
	require.NoError(t, err)
	require.True(t, user.BasicAccess)
	require.False(t, user.VIP)
}

func TestDepositVIPTransitionFiresOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-1", teleID))

	vip, err := h.svc.Postback().Deposit(ctx, "tr-1", teleID, decimal.NewFromInt(150))
	require.NoError(t, err)
	require.False(t, vip)

	vip, err = h.svc.Postback().Deposit(ctx, "tr-1", teleID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, vip)
	require.Equal(t, "vip_granted", h.presenter.last())

	vip, err = h.svc.Postback().Deposit(ctx, "tr-1", teleID, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.False(t, vip)
}

func TestWithdrawTouchesNoLedgerState(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)
	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-1", teleID))
	before := len(h.presenter.calls)

	require.NoError(t, h.svc.Postback().Withdraw(ctx, "tr-1", teleID, decimal.NewFromInt(40)))

	total, err := h.stg.Deposit().TotalFor(ctx, 1)
	require.NoError(t, err)
	require.True(t, total.IsZero())
	// No screen was pushed to the user.
	require.Len(t, h.presenter.calls, before)
}

func TestForwardingRespectsSettings(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.configureFunnel(ctx)

	// No ops chat configured: nothing is forwarded.
	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-1", teleID))
	require.Empty(t, h.notifier.events)

	require.NoError(t, h.stg.Settings().UpdatePostbacksChatID(ctx, "-1001234"))
	require.NoError(t, h.stg.Settings().SetForwardEnabled(ctx, models.EventDeposit, true))

	// Registration forwarding is still off.
	require.NoError(t, h.svc.Postback().Registration(ctx, "tr-1", teleID))
	require.Empty(t, h.notifier.events)

	_, err := h.svc.Postback().Deposit(ctx, "tr-1", teleID, decimal.NewFromInt(20))
	require.NoError(t, err)
	require.Len(t, h.notifier.events, 1)

	ev := h.notifier.events[0]
	require.Equal(t, "-1001234", ev.chatID)
	require.Equal(t, models.EventDeposit, ev.kind)
	require.Equal(t, "tr-1", ev.traderID)
	require.Equal(t, teleID, ev.teleID)
	require.True(t, ev.amount.Equal(decimal.NewFromInt(20)))
}
