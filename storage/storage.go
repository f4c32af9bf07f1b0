package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"signalbot/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Deposit() IDepositStorage
	Settings() ISettingsStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IUserStorage interface {
	GetOrCreate(ctx context.Context, teleID int64, username string) (*models.User, error)
	Get(ctx context.Context, teleID int64) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	UpdateLanguage(ctx context.Context, teleID int64, lang string) error
	UpdateUsername(ctx context.Context, teleID int64, username string) error
	SetSubscribed(ctx context.Context, id int64, subscribed bool) error
	SetRegistered(ctx context.Context, id int64, registered bool) error
	SetTraderID(ctx context.Context, id int64, traderID string) error
	SetBasicAccess(ctx context.Context, id int64, access bool) error
	SetVIP(ctx context.Context, id int64, vip bool) error
	Delete(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (total, registered, withAccess, vip int, err error)
}

type IDepositStorage interface {
	Create(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Deposit, error)
	TotalFor(ctx context.Context, userID int64) (decimal.Decimal, error)
	TotalAll(ctx context.Context) (decimal.Decimal, error)
}

type ISettingsStorage interface {
	// Get lazily creates the singleton row on first access.
	Get(ctx context.Context) (*models.Settings, error)
	UpdateRefLink(ctx context.Context, link string) error
	UpdateDepositLink(ctx context.Context, link string) error
	UpdateChannelID(ctx context.Context, channelID string) error
	UpdateChannelURL(ctx context.Context, url string) error
	UpdateSupportURL(ctx context.Context, url string) error
	SetRequireSubscription(ctx context.Context, required bool) error
	SetRequireDeposit(ctx context.Context, required bool) error
	UpdateDepositRequiredAmount(ctx context.Context, amount decimal.Decimal) error
	UpdateVIPThresholdAmount(ctx context.Context, amount decimal.Decimal) error
	UpdatePostbacksChatID(ctx context.Context, chatID string) error
	SetForwardEnabled(ctx context.Context, kind models.EventKind, enabled bool) error
}
