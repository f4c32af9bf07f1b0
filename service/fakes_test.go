package service

import (
	"context"

	"github.com/shopspring/decimal"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/storage/memory"
)

// fakePresenter records every screen the engine asked for, in order.
type fakePresenter struct {
	calls []string

	lastRequired   decimal.Decimal
	lastCurrent    decimal.Decimal
	lastVIPGranted bool
	lastTier       models.Tier
}

func (p *fakePresenter) ShowSubscription(ctx context.Context, user *models.User, st *models.Settings) error {
	p.calls = append(p.calls, "subscription")
	return nil
}

func (p *fakePresenter) ShowRegistration(ctx context.Context, user *models.User, st *models.Settings) error {
	p.calls = append(p.calls, "registration")
	return nil
}

func (p *fakePresenter) ShowDeposit(ctx context.Context, user *models.User, st *models.Settings, required, current decimal.Decimal) error {
	p.calls = append(p.calls, "deposit")
	p.lastRequired = required
	p.lastCurrent = current
	return nil
}

func (p *fakePresenter) ShowConfigError(ctx context.Context, user *models.User) error {
	p.calls = append(p.calls, "config_error")
	return nil
}

func (p *fakePresenter) ShowAccessGranted(ctx context.Context, user *models.User, st *models.Settings, vipGranted bool) error {
	p.calls = append(p.calls, "access_granted")
	p.lastVIPGranted = vipGranted
	return nil
}

func (p *fakePresenter) ShowDestination(ctx context.Context, user *models.User, st *models.Settings) error {
	p.calls = append(p.calls, "destination")
	return nil
}

func (p *fakePresenter) ShowAccessLimited(ctx context.Context, user *models.User, st *models.Settings, tier models.Tier) error {
	p.calls = append(p.calls, "access_limited")
	p.lastTier = tier
	return nil
}

func (p *fakePresenter) ShowVIPGranted(ctx context.Context, user *models.User, st *models.Settings) error {
	p.calls = append(p.calls, "vip_granted")
	return nil
}

func (p *fakePresenter) last() string {
	if len(p.calls) == 0 {
		return ""
	}
	return p.calls[len(p.calls)-1]
}

type fakeChecker struct {
	subscribed bool
	err        error
	calls      int
}

func (c *fakeChecker) IsSubscribed(ctx context.Context, channelID string, teleID int64) (bool, error) {
	c.calls++
	return c.subscribed, c.err
}

type forwardedEvent struct {
	chatID   string
	kind     models.EventKind
	traderID string
	teleID   int64
	amount   decimal.Decimal
}

type fakeNotifier struct {
	events []forwardedEvent
}

func (n *fakeNotifier) ForwardEvent(ctx context.Context, chatID string, kind models.EventKind, traderID string, teleID int64, amount decimal.Decimal) error {
	n.events = append(n.events, forwardedEvent{chatID, kind, traderID, teleID, amount})
	return nil
}

type harness struct {
	stg       *memory.Store
	presenter *fakePresenter
	checker   *fakeChecker
	notifier  *fakeNotifier
	svc       IServiceManager
}

func newHarness() *harness {
	h := &harness{
		stg:       memory.New(),
		presenter: &fakePresenter{},
		checker:   &fakeChecker{subscribed: true},
		notifier:  &fakeNotifier{},
	}
	h.svc = New(h.stg, logger.New("test", "error"), h.presenter, h.checker, h.notifier)
	return h
}

// configureFunnel fills in the operator settings every funnel step needs.
func (h *harness) configureFunnel(ctx context.Context) {
	st := h.stg.Settings()
	_ = st.UpdateRefLink(ctx, "https://broker.example/ref?click_id={{click_id}}")
	_ = st.UpdateDepositLink(ctx, "https://broker.example/deposit")
	_ = st.UpdateChannelID(ctx, "@signals")
	_ = st.UpdateDepositRequiredAmount(ctx, decimal.NewFromInt(50))
	_ = st.UpdateVIPThresholdAmount(ctx, decimal.NewFromInt(200))
}
