package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/storage"
)

type depositRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDepositRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDepositStorage {
	return &depositRepo{db: db, log: log}
}

func (r *depositRepo) Create(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Deposit, error) {
	var dep models.Deposit
	query := `
		INSERT INTO deposits (user_id, amount)
		VALUES ($1, $2)
		RETURNING id, user_id, amount, created_at`
	err := r.db.QueryRow(ctx, query, userID, amount).Scan(
		&dep.ID, &dep.UserID, &dep.Amount, &dep.CreatedAt,
	)
	if err != nil {
		r.log.Error("failed to create deposit", logger.Error(err))
		return nil, err
	}
	return &dep, nil
}

func (r *depositRepo) TotalFor(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM deposits WHERE user_id = $1", userID).Scan(&total)
	if err != nil {
		r.log.Error("failed to sum deposits", logger.Error(err))
		return decimal.Zero, err
	}
	return total, nil
}

func (r *depositRepo) TotalAll(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, "SELECT COALESCE(SUM(amount), 0) FROM deposits").Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
