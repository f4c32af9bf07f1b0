package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
	"signalbot/storage"
)

const userColumns = `id, telegram_id, username, language, is_subscribed, is_registered, has_basic_access, is_vip, trader_id, created_at, updated_at`

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.Language,
		&u.Subscribed, &u.Registered, &u.BasicAccess, &u.VIP,
		&u.TraderID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreate is the single entry point for resolving a telegram identity.
// The upsert keeps concurrent postback delivery from creating duplicates.
func (r *userRepo) GetOrCreate(ctx context.Context, teleID int64, username string) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			updated_at = NOW()
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, teleID, username))
	if err != nil {
		r.log.Error("failed to get or create user", logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Get(ctx context.Context, teleID int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, teleID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get user", logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get user by id", logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&count)
	return count, err
}

func (r *userRepo) UpdateLanguage(ctx context.Context, teleID int64, lang string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET language=$1, updated_at=NOW() WHERE telegram_id=$2", lang, teleID)
	return err
}

func (r *userRepo) UpdateUsername(ctx context.Context, teleID int64, username string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET username=$1, updated_at=NOW() WHERE telegram_id=$2", username, teleID)
	return err
}

func (r *userRepo) SetSubscribed(ctx context.Context, id int64, subscribed bool) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET is_subscribed=$1, updated_at=NOW() WHERE id=$2", subscribed, id)
	return err
}

func (r *userRepo) SetRegistered(ctx context.Context, id int64, registered bool) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET is_registered=$1, updated_at=NOW() WHERE id=$2", registered, id)
	return err
}

// SetTraderID writes the broker-side id once; later writes are no-ops.
func (r *userRepo) SetTraderID(ctx context.Context, id int64, traderID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET trader_id=$1, updated_at=NOW() WHERE id=$2 AND trader_id IS NULL", traderID, id)
	return err
}

func (r *userRepo) SetBasicAccess(ctx context.Context, id int64, access bool) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET has_basic_access=$1, updated_at=NOW() WHERE id=$2", access, id)
	return err
}

func (r *userRepo) SetVIP(ctx context.Context, id int64, vip bool) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET is_vip=$1, updated_at=NOW() WHERE id=$2", vip, id)
	return err
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM users WHERE id=$1", id)
	return err
}

func (r *userRepo) GetStats(ctx context.Context) (total, registered, withAccess, vip int, err error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE is_registered OR trader_id IS NOT NULL),
			count(*) FILTER (WHERE has_basic_access),
			count(*) FILTER (WHERE is_vip)
		FROM users`
	err = r.db.QueryRow(ctx, query).Scan(&total, &registered, &withAccess, &vip)
	if err != nil {
		r.log.Error("failed to get user stats", logger.Error(err))
	}
	return total, registered, withAccess, vip, err
}
