package bot

import (
	"context"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"signalbot/pkg/logger"
	"signalbot/service"
)

// subscriptionChecker asks telegram whether a user is currently a member
// of the funnel channel.
type subscriptionChecker struct {
	bot *tele.Bot
}

func newSubscriptionChecker(bot *tele.Bot) service.SubscriptionChecker {
	return &subscriptionChecker{bot: bot}
}

func (s *subscriptionChecker) IsSubscribed(ctx context.Context, channelID string, teleID int64) (bool, error) {
	// No channel configured: nothing to gate on, the step passes.
	if channelID == "" {
		return true, nil
	}
	chat, err := resolveRecipient(s.bot, channelID)
	if err != nil {
		return false, err
	}
	member, err := s.bot.ChatMemberOf(chat, tele.ChatID(teleID))
	if err != nil {
		return false, err
	}
	switch member.Role {
	case tele.Creator, tele.Administrator, tele.Member:
		return true, nil
	}
	return false, nil
}

// resolveRecipient turns an admin-entered chat reference (numeric id or
// @username) into something telebot can send to.
func resolveRecipient(bot *tele.Bot, ref string) (tele.Recipient, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return tele.ChatID(id), nil
	}
	return bot.ChatByUsername(ref)
}

// handleChatMember is the autopush: when the configured channel reports
// a join for a known user, persist the flag and run the funnel so the
// next step arrives without another button press.
func (b *Bot) handleChatMember(c tele.Context) error {
	upd := c.ChatMember()
	if upd == nil || upd.NewChatMember == nil || upd.NewChatMember.User == nil {
		return nil
	}

	ctx := context.Background()
	settings, err := b.Stg.Settings().Get(ctx)
	if err != nil {
		return nil
	}
	target := settings.ChannelIDValue()
	if !settings.RequireSubscription || target == "" {
		return nil
	}
	if !chatMatches(target, upd.Chat) {
		return nil
	}

	wasOutside := upd.OldChatMember != nil &&
		(upd.OldChatMember.Role == tele.Left || upd.OldChatMember.Role == tele.Kicked)
	isMember := upd.NewChatMember.Role == tele.Member ||
		upd.NewChatMember.Role == tele.Administrator ||
		upd.NewChatMember.Role == tele.Creator
	if !wasOutside || !isMember {
		return nil
	}

	teleID := upd.NewChatMember.User.ID
	user, err := b.Stg.User().Get(ctx, teleID)
	if err != nil || user == nil {
		return nil
	}
	if err := b.Stg.User().SetSubscribed(ctx, user.ID, true); err != nil {
		b.Log.Error("failed to persist subscription", logger.Error(err))
		return nil
	}
	if err := b.Svc.Flow().Advance(ctx, teleID); err != nil {
		b.Log.Error("advance after channel join failed",
			logger.Int64("tele_id", teleID), logger.Error(err))
	}
	return nil
}

func chatMatches(target string, chat *tele.Chat) bool {
	if chat == nil {
		return false
	}
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "@") {
		return chat.Username != "" &&
			strings.EqualFold(chat.Username, strings.TrimPrefix(target, "@"))
	}
	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return false
	}
	return chat.ID == id
}
