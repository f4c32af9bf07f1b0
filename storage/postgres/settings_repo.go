package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/storage"
)

const settingsColumns = `id, ref_link, deposit_link, channel_id, channel_url, support_url,
	require_subscription, require_deposit, deposit_required_amount, vip_threshold_amount,
	postbacks_chat_id, send_postbacks_registration, send_postbacks_deposit, send_postbacks_withdraw`

type settingsRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewSettingsRepo(db *pgxpool.Pool, log logger.ILogger) storage.ISettingsStorage {
	return &settingsRepo{db: db, log: log}
}

// Get returns the singleton row, creating it with defaults on first read.
func (r *settingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	query := `
		INSERT INTO settings (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING ` + settingsColumns
	err := r.db.QueryRow(ctx, query, models.SettingsID).Scan(
		&s.ID, &s.RefLink, &s.DepositLink, &s.ChannelID, &s.ChannelURL, &s.SupportURL,
		&s.RequireSubscription, &s.RequireDeposit, &s.DepositRequiredAmount, &s.VIPThresholdAmount,
		&s.PostbacksChatID, &s.SendPostbacksRegistration, &s.SendPostbacksDeposit, &s.SendPostbacksWithdraw,
	)
	if err != nil {
		r.log.Error("failed to get settings", logger.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepo) setText(ctx context.Context, column, value string) error {
	// Empty input clears the field back to "unconfigured".
	query := fmt.Sprintf("UPDATE settings SET %s = NULLIF($1, '') WHERE id = $2", column)
	_, err := r.db.Exec(ctx, query, value, models.SettingsID)
	return err
}

func (r *settingsRepo) UpdateRefLink(ctx context.Context, link string) error {
	return r.setText(ctx, "ref_link", link)
}

func (r *settingsRepo) UpdateDepositLink(ctx context.Context, link string) error {
	return r.setText(ctx, "deposit_link", link)
}

func (r *settingsRepo) UpdateChannelID(ctx context.Context, channelID string) error {
	return r.setText(ctx, "channel_id", channelID)
}

func (r *settingsRepo) UpdateChannelURL(ctx context.Context, url string) error {
	return r.setText(ctx, "channel_url", url)
}

func (r *settingsRepo) UpdateSupportURL(ctx context.Context, url string) error {
	return r.setText(ctx, "support_url", url)
}

func (r *settingsRepo) UpdatePostbacksChatID(ctx context.Context, chatID string) error {
	return r.setText(ctx, "postbacks_chat_id", chatID)
}

func (r *settingsRepo) SetRequireSubscription(ctx context.Context, required bool) error {
	_, err := r.db.Exec(ctx,
		"UPDATE settings SET require_subscription=$1 WHERE id=$2", required, models.SettingsID)
	return err
}

func (r *settingsRepo) SetRequireDeposit(ctx context.Context, required bool) error {
	_, err := r.db.Exec(ctx,
		"UPDATE settings SET require_deposit=$1 WHERE id=$2", required, models.SettingsID)
	return err
}

func (r *settingsRepo) UpdateDepositRequiredAmount(ctx context.Context, amount decimal.Decimal) error {
	_, err := r.db.Exec(ctx,
		"UPDATE settings SET deposit_required_amount=$1 WHERE id=$2", amount, models.SettingsID)
	return err
}

func (r *settingsRepo) UpdateVIPThresholdAmount(ctx context.Context, amount decimal.Decimal) error {
	_, err := r.db.Exec(ctx,
		"UPDATE settings SET vip_threshold_amount=$1 WHERE id=$2", amount, models.SettingsID)
	return err
}

func (r *settingsRepo) SetForwardEnabled(ctx context.Context, kind models.EventKind, enabled bool) error {
	var column string
	switch kind {
	case models.EventRegistration:
		column = "send_postbacks_registration"
	case models.EventDeposit:
		column = "send_postbacks_deposit"
	case models.EventWithdraw:
		column = "send_postbacks_withdraw"
	default:
		return fmt.Errorf("unknown event kind %v", kind)
	}
	query := fmt.Sprintf("UPDATE settings SET %s=$1 WHERE id=$2", column)
	_, err := r.db.Exec(ctx, query, enabled, models.SettingsID)
	return err
}
