package models

import "github.com/shopspring/decimal"

// SettingsID is the fixed id of the single settings row.
const SettingsID = 1

// Settings is the global configuration singleton. Nil link fields mean
// "unconfigured", which the flow engine treats as a hard stop for the
// step that needs them.
type Settings struct {
	ID int64 `json:"id"`

	RefLink     *string `json:"ref_link"`
	DepositLink *string `json:"deposit_link"`
	ChannelID   *string `json:"channel_id"`
	ChannelURL  *string `json:"channel_url"`
	SupportURL  *string `json:"support_url"`

	RequireSubscription bool `json:"require_subscription"`
	RequireDeposit      bool `json:"require_deposit"`

	DepositRequiredAmount decimal.Decimal `json:"deposit_required_amount"`
	VIPThresholdAmount    decimal.Decimal `json:"vip_threshold_amount"`

	PostbacksChatID           *string `json:"postbacks_chat_id"`
	SendPostbacksRegistration bool    `json:"send_postbacks_registration"`
	SendPostbacksDeposit      bool    `json:"send_postbacks_deposit"`
	SendPostbacksWithdraw     bool    `json:"send_postbacks_withdraw"`
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *Settings) RefLinkValue() string     { return strOrEmpty(s.RefLink) }
func (s *Settings) DepositLinkValue() string { return strOrEmpty(s.DepositLink) }
func (s *Settings) ChannelIDValue() string   { return strOrEmpty(s.ChannelID) }
func (s *Settings) ChannelURLValue() string  { return strOrEmpty(s.ChannelURL) }
func (s *Settings) SupportURLValue() string  { return strOrEmpty(s.SupportURL) }

func (s *Settings) PostbacksChatIDValue() string { return strOrEmpty(s.PostbacksChatID) }

// ForwardEnabled reports whether postbacks of the given kind should be
// forwarded to the operational chat.
func (s *Settings) ForwardEnabled(kind EventKind) bool {
	switch kind {
	case EventRegistration:
		return s.SendPostbacksRegistration
	case EventDeposit:
		return s.SendPostbacksDeposit
	case EventWithdraw:
		return s.SendPostbacksWithdraw
	}
	return false
}
