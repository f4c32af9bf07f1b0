package models

import "time"

// User is the bot's record for one telegram identity. TelegramID is the
// join key for broker postbacks (click_id), not the internal ID.
type User struct {
	ID          int64     `json:"id"`
	TelegramID  int64     `json:"telegram_id"`
	Username    string    `json:"username"`
	Language    *string   `json:"language"`
	Subscribed  bool      `json:"is_subscribed"`
	Registered  bool      `json:"is_registered"`
	BasicAccess bool      `json:"has_basic_access"`
	VIP         bool      `json:"is_vip"`
	TraderID    *string   `json:"trader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasRegistered reports whether the registration step is satisfied.
// A set trader id counts even if the flag was never flipped.
func (u *User) HasRegistered() bool {
	return u.Registered || (u.TraderID != nil && *u.TraderID != "")
}

// HasAccess reports whether any access tier is open.
func (u *User) HasAccess() bool {
	return u.BasicAccess || u.VIP
}

// Lang returns the chosen language or the fallback.
func (u *User) Lang(fallback string) string {
	if u.Language != nil && *u.Language != "" {
		return *u.Language
	}
	return fallback
}

// Tier is an access level referenced by the limited-access notifications.
type Tier string

const (
	TierBasic Tier = "basic"
	TierVIP   Tier = "vip"
)
