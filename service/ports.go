package service

import (
	"context"

	"github.com/shopspring/decimal"

	"signalbot/pkg/models"
)

// Presenter renders the engine's decisions. Exactly one Show call is made
// per Advance invocation; the concrete rendering (texts, keyboards,
// locales) lives in pkg/bot and is a collaborator concern.
type Presenter interface {
	ShowSubscription(ctx context.Context, user *models.User, st *models.Settings) error
	ShowRegistration(ctx context.Context, user *models.User, st *models.Settings) error
	ShowDeposit(ctx context.Context, user *models.User, st *models.Settings, required, current decimal.Decimal) error
	ShowConfigError(ctx context.Context, user *models.User) error
	ShowAccessGranted(ctx context.Context, user *models.User, st *models.Settings, vipGranted bool) error
	// ShowDestination opens the mini-app for users who already hold access.
	ShowDestination(ctx context.Context, user *models.User, st *models.Settings) error
	ShowAccessLimited(ctx context.Context, user *models.User, st *models.Settings, tier models.Tier) error
	ShowVIPGranted(ctx context.Context, user *models.User, st *models.Settings) error
}

// SubscriptionChecker is the live membership query against the messaging
// platform. Failures are treated as "not subscribed".
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, channelID string, teleID int64) (bool, error)
}

// OpsNotifier forwards broker events to the operational chat.
type OpsNotifier interface {
	ForwardEvent(ctx context.Context, chatID string, kind models.EventKind, traderID string, teleID int64, amount decimal.Decimal) error
}
