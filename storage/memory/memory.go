// Package memory implements storage.IStorage on plain maps. It backs the
// service and postback tests and keeps the same semantics as the postgres
// repos: get-or-create upsert, first-write-wins trader id, lazily created
// settings row.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"signalbot/pkg/models"
	"signalbot/storage"
)

type Store struct {
	mu sync.Mutex

	nextUserID    int64
	nextDepositID int64
	users         map[int64]*models.User // keyed by internal id
	deposits      []*models.Deposit
	settings      *models.Settings
}

func New() *Store {
	return &Store{
		nextUserID:    1,
		nextDepositID: 1,
		users:         make(map[int64]*models.User),
	}
}

func (s *Store) User() storage.IUserStorage         { return (*userStore)(s) }
func (s *Store) Deposit() storage.IDepositStorage   { return (*depositStore)(s) }
func (s *Store) Settings() storage.ISettingsStorage { return (*settingsStore)(s) }

func (s *Store) Close() {}

func (s *Store) GetPool() *pgxpool.Pool { return nil }

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.Language != nil {
		lang := *u.Language
		c.Language = &lang
	}
	if u.TraderID != nil {
		tid := *u.TraderID
		c.TraderID = &tid
	}
	return &c
}

// ---- users ----

type userStore Store

func (s *userStore) findByTeleID(teleID int64) *models.User {
	for _, u := range s.users {
		if u.TelegramID == teleID {
			return u
		}
	}
	return nil
}

func (s *userStore) GetOrCreate(ctx context.Context, teleID int64, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.findByTeleID(teleID); u != nil {
		if username != "" && u.Username != username {
			u.Username = username
			u.UpdatedAt = time.Now()
		}
		return cloneUser(u), nil
	}

	now := time.Now()
	u := &models.User{
		ID:         s.nextUserID,
		TelegramID: teleID,
		Username:   username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.nextUserID++
	s.users[u.ID] = u
	return cloneUser(u), nil
}

func (s *userStore) Get(ctx context.Context, teleID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.findByTeleID(teleID); u != nil {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (s *userStore) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*models.User
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, cloneUser(s.users[ids[i]]))
	}
	return out, nil
}

func (s *userStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *userStore) update(id int64, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *userStore) updateByTeleID(teleID int64, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByTeleID(teleID)
	if u == nil {
		return nil
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *userStore) UpdateLanguage(ctx context.Context, teleID int64, lang string) error {
	return s.updateByTeleID(teleID, func(u *models.User) { u.Language = &lang })
}

func (s *userStore) UpdateUsername(ctx context.Context, teleID int64, username string) error {
	return s.updateByTeleID(teleID, func(u *models.User) { u.Username = username })
}

func (s *userStore) SetSubscribed(ctx context.Context, id int64, subscribed bool) error {
	return s.update(id, func(u *models.User) { u.Subscribed = subscribed })
}

func (s *userStore) SetRegistered(ctx context.Context, id int64, registered bool) error {
	return s.update(id, func(u *models.User) { u.Registered = registered })
}

func (s *userStore) SetTraderID(ctx context.Context, id int64, traderID string) error {
	return s.update(id, func(u *models.User) {
		if u.TraderID == nil {
			u.TraderID = &traderID
		}
	})
}

func (s *userStore) SetBasicAccess(ctx context.Context, id int64, access bool) error {
	return s.update(id, func(u *models.User) { u.BasicAccess = access })
}

func (s *userStore) SetVIP(ctx context.Context, id int64, vip bool) error {
	return s.update(id, func(u *models.User) { u.VIP = vip })
}

func (s *userStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	kept := s.deposits[:0]
	for _, d := range s.deposits {
		if d.UserID != id {
			kept = append(kept, d)
		}
	}
	s.deposits = kept
	return nil
}

func (s *userStore) GetStats(ctx context.Context) (total, registered, withAccess, vip int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		total++
		if u.HasRegistered() {
			registered++
		}
		if u.BasicAccess {
			withAccess++
		}
		if u.VIP {
			vip++
		}
	}
	return total, registered, withAccess, vip, nil
}

// ---- deposits ----

type depositStore Store

func (s *depositStore) Create(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dep := &models.Deposit{
		ID:        s.nextDepositID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	s.nextDepositID++
	s.deposits = append(s.deposits, dep)
	out := *dep
	return &out, nil
}

func (s *depositStore) TotalFor(ctx context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, d := range s.deposits {
		if d.UserID == userID {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}

func (s *depositStore) TotalAll(ctx context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, d := range s.deposits {
		total = total.Add(d.Amount)
	}
	return total, nil
}

// ---- settings ----

type settingsStore Store

func (s *settingsStore) get() *models.Settings {
	if s.settings == nil {
		s.settings = &models.Settings{
			ID:                  models.SettingsID,
			RequireSubscription: true,
			RequireDeposit:      true,
		}
	}
	return s.settings
}

func (s *settingsStore) Get(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *s.get()
	return &out, nil
}

func (s *settingsStore) UpdateRefLink(ctx context.Context, link string) error {
	return s.setTextField(func(st *models.Settings) **string { return &st.RefLink }, link)
}

func (s *settingsStore) setTextField(sel func(*models.Settings) **string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	field := sel(s.get())
	if value == "" {
		*field = nil
	} else {
		v := value
		*field = &v
	}
	return nil
}

func (s *settingsStore) UpdateDepositLink(ctx context.Context, link string) error {
	return s.setTextField(func(st *models.Settings) **string { return &st.DepositLink }, link)
}

func (s *settingsStore) UpdateChannelID(ctx context.Context, channelID string) error {
	return s.setTextField(func(st *models.Settings) **string { return &st.ChannelID }, channelID)
}

func (s *settingsStore) UpdateChannelURL(ctx context.Context, url string) error {
	return s.setTextField(func(st *models.Settings) **string { return &st.ChannelURL }, url)
}

func (s *settingsStore) UpdateSupportURL(ctx context.Context, url string) error {
	return s.setTextField(func(st *models.Settings) **string { return &st.SupportURL }, url)
}

func (s *settingsStore) UpdatePostbacksChatID(ctx context.Context, chatID string) error {
	return s.setTextField(func(st *models.Settings) **string { return &st.PostbacksChatID }, chatID)
}

func (s *settingsStore) SetRequireSubscription(ctx context.Context, required bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get().RequireSubscription = required
	return nil
}

func (s *settingsStore) SetRequireDeposit(ctx context.Context, required bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get().RequireDeposit = required
	return nil
}

func (s *settingsStore) UpdateDepositRequiredAmount(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get().DepositRequiredAmount = amount
	return nil
}

func (s *settingsStore) UpdateVIPThresholdAmount(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get().VIPThresholdAmount = amount
	return nil
}

func (s *settingsStore) SetForwardEnabled(ctx context.Context, kind models.EventKind, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get()
	switch kind {
	case models.EventRegistration:
		st.SendPostbacksRegistration = enabled
	case models.EventDeposit:
		st.SendPostbacksDeposit = enabled
	case models.EventWithdraw:
		st.SendPostbacksWithdraw = enabled
	default:
		return fmt.Errorf("unknown event kind %v", kind)
	}
	return nil
}
