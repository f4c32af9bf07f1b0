package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
)

const usersPageSize = 5

func (b *Bot) handleAdminEntry(c tele.Context) error {
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}
	b.session(c.Sender().ID).State = StateIdle
	return b.sendAdminMenu(c)
}

func (b *Bot) sendAdminMenu(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("📊 Stats", "admin:stats")),
		menu.Row(menu.Data("🔗 Links", "admin:links"), menu.Data("🧩 Steps", "admin:steps")),
		menu.Row(menu.Data("📨 Postback group", "admin:pbgroup"), menu.Data("🌐 Postback URLs", "admin:postbacks")),
		menu.Row(menu.Data("👥 Users", "admin:users")),
	)
	return c.Send("🛠 <b>Admin panel</b>", menu)
}

func (b *Bot) handleAdminCallback(c tele.Context, action string) error {
	if !b.isAdmin(c.Sender().ID) {
		return c.Respond(&tele.CallbackResponse{Text: "No access", ShowAlert: true})
	}
	_ = c.Respond()
	session := b.session(c.Sender().ID)

	switch {
	case action == "menu":
		session.State = StateIdle
		_ = c.Delete()
		return b.sendAdminMenu(c)

	case action == "stats":
		_ = c.Delete()
		return b.sendStatsWindow(c)

	case action == "links":
		session.State = StateIdle
		_ = c.Delete()
		return b.sendLinksWindow(c)

	case strings.HasPrefix(action, "links:edit:"):
		return b.startLinkEdit(c, session, strings.TrimPrefix(action, "links:edit:"))

	case action == "steps":
		session.State = StateIdle
		_ = c.Delete()
		return b.sendStepsWindow(c)

	case strings.HasPrefix(action, "steps:toggle:"):
		return b.toggleStep(c, strings.TrimPrefix(action, "steps:toggle:"))

	case strings.HasPrefix(action, "steps:edit:"):
		return b.startThresholdEdit(c, session, strings.TrimPrefix(action, "steps:edit:"))

	case action == "pbgroup":
		session.State = StateIdle
		_ = c.Delete()
		return b.sendPostbackGroupWindow(c)

	case strings.HasPrefix(action, "pbgroup:toggle:"):
		return b.togglePostbackForward(c, strings.TrimPrefix(action, "pbgroup:toggle:"))

	case action == "pbgroup:edit_chat":
		session.State = StateAwaitPostbacksChat
		_ = c.Delete()
		return c.Send("Send the chat id (or @username) for postback forwarding, or «-» to clear:")

	case action == "postbacks":
		_ = c.Delete()
		return b.sendPostbackURLsWindow(c)

	case action == "users":
		session.UsersPage = 1
		_ = c.Delete()
		return b.sendUsersList(c, 1)

	case strings.HasPrefix(action, "users:page:"):
		page, err := strconv.Atoi(strings.TrimPrefix(action, "users:page:"))
		if err != nil || page < 1 {
			return nil
		}
		session.UsersPage = page
		_ = c.Delete()
		return b.sendUsersList(c, page)

	case strings.HasPrefix(action, "user:"):
		return b.handleUserAction(c, session, strings.TrimPrefix(action, "user:"))
	}

	return nil
}

// ---- stats ----

func (b *Bot) sendStatsWindow(c tele.Context) error {
	ctx := context.Background()
	total, registered, withAccess, vip, err := b.Stg.User().GetStats(ctx)
	if err != nil {
		return c.Send("Failed to load stats.")
	}
	deposits, err := b.Stg.Deposit().TotalAll(ctx)
	if err != nil {
		deposits = decimal.Zero
	}
	body := fmt.Sprintf(
		"📊 <b>Stats</b>\n\nUsers: <b>%d</b>\nRegistered: <b>%d</b>\nWith access: <b>%d</b>\nVIP: <b>%d</b>\nDeposits total: <b>%s$</b>",
		total, registered, withAccess, vip, deposits.StringFixed(2),
	)
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("⬅️ Back", "admin:menu")))
	return c.Send(body, menu)
}

// ---- links ----

func orDash(v string) string {
	if v == "" {
		return "—"
	}
	return v
}

func (b *Bot) sendLinksWindow(c tele.Context) error {
	settings, err := b.Stg.Settings().Get(context.Background())
	if err != nil {
		return c.Send("Failed to load settings.")
	}
	body := fmt.Sprintf(
		"🔗 <b>Links</b>\n\nRef link: %s\nDeposit link: %s\nChannel id: %s\nChannel url: %s\nSupport url: %s",
		orDash(settings.RefLinkValue()),
		orDash(settings.DepositLinkValue()),
		orDash(settings.ChannelIDValue()),
		orDash(settings.ChannelURLValue()),
		orDash(settings.SupportURLValue()),
	)
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✏️ Ref link", "admin:links:edit:ref"), menu.Data("✏️ Deposit link", "admin:links:edit:deposit")),
		menu.Row(menu.Data("✏️ Channel id", "admin:links:edit:channel_id"), menu.Data("✏️ Channel url", "admin:links:edit:channel_url")),
		menu.Row(menu.Data("✏️ Support url", "admin:links:edit:support")),
		menu.Row(menu.Data("⬅️ Back", "admin:menu")),
	)
	return c.Send(body, menu)
}

func (b *Bot) startLinkEdit(c tele.Context, session *AdminSession, field string) error {
	prompts := map[string]struct {
		state, prompt string
	}{
		"ref":         {StateAwaitRefLink, "Send the new broker ref link, or «-» to clear:"},
		"deposit":     {StateAwaitDepositLink, "Send the new deposit link, or «-» to clear:"},
		"channel_id":  {StateAwaitChannelID, "Send the channel id (-100...) or @username, or «-» to clear:"},
		"channel_url": {StateAwaitChannelURL, "Send the public channel url, or «-» to clear:"},
		"support":     {StateAwaitSupportURL, "Send the support url, or «-» to clear:"},
	}
	p, ok := prompts[field]
	if !ok {
		return nil
	}
	session.State = p.state
	_ = c.Delete()
	return c.Send(p.prompt)
}

// ---- steps ----

func onOff(v bool) string {
	if v {
		return "✅"
	}
	return "❌"
}

func (b *Bot) sendStepsWindow(c tele.Context) error {
	settings, err := b.Stg.Settings().Get(context.Background())
	if err != nil {
		return c.Send("Failed to load settings.")
	}
	body := fmt.Sprintf(
		"🧩 <b>Funnel steps</b>\n\nSubscription check: %s\nDeposit check: %s\nDeposit required: <b>%s$</b>\nVIP threshold: <b>%s$</b>\n\nRegistration is always required.",
		onOff(settings.RequireSubscription),
		onOff(settings.RequireDeposit),
		settings.DepositRequiredAmount.StringFixed(2),
		settings.VIPThresholdAmount.StringFixed(2),
	)
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("🔁 Subscription", "admin:steps:toggle:subscription"), menu.Data("🔁 Deposit", "admin:steps:toggle:deposit")),
		menu.Row(menu.Data("✏️ Deposit amount", "admin:steps:edit:deposit_amount"), menu.Data("✏️ VIP amount", "admin:steps:edit:vip_amount")),
		menu.Row(menu.Data("⬅️ Back", "admin:menu")),
	)
	return c.Send(body, menu)
}

func (b *Bot) toggleStep(c tele.Context, which string) error {
	ctx := context.Background()
	settings, err := b.Stg.Settings().Get(ctx)
	if err != nil {
		return nil
	}
	switch which {
	case "subscription":
		err = b.Stg.Settings().SetRequireSubscription(ctx, !settings.RequireSubscription)
	case "deposit":
		err = b.Stg.Settings().SetRequireDeposit(ctx, !settings.RequireDeposit)
	default:
		return nil
	}
	if err != nil {
		b.Log.Error("failed to toggle step", logger.Error(err))
		return nil
	}
	_ = c.Delete()
	return b.sendStepsWindow(c)
}

func (b *Bot) startThresholdEdit(c tele.Context, session *AdminSession, which string) error {
	switch which {
	case "deposit_amount":
		session.State = StateAwaitDepositAmount
		_ = c.Delete()
		return c.Send("Send the required deposit amount (e.g. 100 or 49.99):")
	case "vip_amount":
		session.State = StateAwaitVIPAmount
		_ = c.Delete()
		return c.Send("Send the VIP threshold amount (0 disables VIP):")
	}
	return nil
}

// ---- postback group ----

func (b *Bot) sendPostbackGroupWindow(c tele.Context) error {
	settings, err := b.Stg.Settings().Get(context.Background())
	if err != nil {
		return c.Send("Failed to load settings.")
	}
	body := fmt.Sprintf(
		"📨 <b>Postback group</b>\n\nChat: %s\nRegistrations: %s\nDeposits: %s\nWithdrawals: %s",
		orDash(settings.PostbacksChatIDValue()),
		onOff(settings.SendPostbacksRegistration),
		onOff(settings.SendPostbacksDeposit),
		onOff(settings.SendPostbacksWithdraw),
	)
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✏️ Chat", "admin:pbgroup:edit_chat")),
		menu.Row(
			menu.Data("🔁 Reg", "admin:pbgroup:toggle:registration"),
			menu.Data("🔁 Dep", "admin:pbgroup:toggle:deposit"),
			menu.Data("🔁 Wdr", "admin:pbgroup:toggle:withdraw"),
		),
		menu.Row(menu.Data("⬅️ Back", "admin:menu")),
	)
	return c.Send(body, menu)
}

func (b *Bot) togglePostbackForward(c tele.Context, which string) error {
	ctx := context.Background()
	settings, err := b.Stg.Settings().Get(ctx)
	if err != nil {
		return nil
	}
	var kind models.EventKind
	var current bool
	switch which {
	case "registration":
		kind, current = models.EventRegistration, settings.SendPostbacksRegistration
	case "deposit":
		kind, current = models.EventDeposit, settings.SendPostbacksDeposit
	case "withdraw":
		kind, current = models.EventWithdraw, settings.SendPostbacksWithdraw
	default:
		return nil
	}
	if err := b.Stg.Settings().SetForwardEnabled(ctx, kind, !current); err != nil {
		b.Log.Error("failed to toggle postback forwarding", logger.Error(err))
		return nil
	}
	_ = c.Delete()
	return b.sendPostbackGroupWindow(c)
}

func (b *Bot) sendPostbackURLsWindow(c tele.Context) error {
	base := b.Cfg.PostbackBaseURL
	body := fmt.Sprintf(
		"🌐 <b>Postback URLs</b>\n\nRegistration:\n<code>%s/postback/registration?trader_id={{trader_id}}&click_id={{click_id}}</code>\n\nFirst deposit:\n<code>%s/postback/first_deposit?trader_id={{trader_id}}&click_id={{click_id}}&sumdep={{sumdep}}</code>\n\nRedeposit:\n<code>%s/postback/redeposit?trader_id={{trader_id}}&click_id={{click_id}}&sumdep={{sumdep}}</code>\n\nWithdraw:\n<code>%s/postback/withdraw?trader_id={{trader_id}}&click_id={{click_id}}&wdr_sum={{wdr_sum}}</code>",
		base, base, base, base,
	)
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("⬅️ Back", "admin:menu")))
	return c.Send(body, menu)
}

// ---- users ----

func (b *Bot) sendUsersList(c tele.Context, page int) error {
	ctx := context.Background()
	total, err := b.Stg.User().Count(ctx)
	if err != nil {
		return c.Send("Failed to load users.")
	}
	users, err := b.Stg.User().List(ctx, (page-1)*usersPageSize, usersPageSize)
	if err != nil {
		return c.Send("Failed to load users.")
	}

	body := fmt.Sprintf("👥 <b>Users</b> (%d total), page %d", total, page)
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, u := range users {
		name := u.Username
		if name == "" {
			name = strconv.FormatInt(u.TelegramID, 10)
		}
		title := fmt.Sprintf("#%d %s", u.ID, name)
		if u.VIP {
			title += " 👑"
		} else if u.BasicAccess {
			title += " ✅"
		}
		rows = append(rows, menu.Row(menu.Data(title, fmt.Sprintf("admin:user:%d:view", u.ID))))
	}

	var nav tele.Row
	if page > 1 {
		nav = append(nav, menu.Data("⬅️", fmt.Sprintf("admin:users:page:%d", page-1)))
	}
	if page*usersPageSize < total {
		nav = append(nav, menu.Data("➡️", fmt.Sprintf("admin:users:page:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, menu.Row(menu.Data("⬅️ Back", "admin:menu")))
	menu.Inline(rows...)
	return c.Send(body, menu)
}

func (b *Bot) sendUserCard(c tele.Context, userID int64, page int) error {
	ctx := context.Background()
	user, err := b.Stg.User().GetByID(ctx, userID)
	if err != nil || user == nil {
		return c.Send("User not found.")
	}
	total, err := b.Stg.Deposit().TotalFor(ctx, user.ID)
	if err != nil {
		total = decimal.Zero
	}

	trader := "—"
	if user.TraderID != nil {
		trader = *user.TraderID
	}
	body := fmt.Sprintf(
		"👤 <b>User #%d</b>\n\ntg_id: <code>%d</code>\nusername: %s\nlanguage: %s\ntrader_id: <code>%s</code>\n\nSubscribed: %s\nRegistered: %s\nAccess: %s\nVIP: %s\nDeposits: <b>%s$</b>",
		user.ID, user.TelegramID, orDash(user.Username), orDash(user.Lang("")),
		trader,
		onOff(user.Subscribed), onOff(user.HasRegistered()),
		onOff(user.BasicAccess), onOff(user.VIP),
		total.StringFixed(2),
	)

	menu := &tele.ReplyMarkup{}
	id := user.ID
	menu.Inline(
		menu.Row(
			menu.Data("📝 Give reg", fmt.Sprintf("admin:user:%d:give_reg", id)),
			menu.Data("💰 Give dep", fmt.Sprintf("admin:user:%d:give_dep", id)),
		),
		menu.Row(
			menu.Data("👑 Give VIP", fmt.Sprintf("admin:user:%d:give_vip", id)),
			menu.Data("🚫 Revoke VIP", fmt.Sprintf("admin:user:%d:revoke_vip", id)),
		),
		menu.Row(
			menu.Data("🔒 Revoke access", fmt.Sprintf("admin:user:%d:revoke_access", id)),
			menu.Data("🗑 Delete", fmt.Sprintf("admin:user:%d:delete", id)),
		),
		menu.Row(menu.Data("⬅️ Back", fmt.Sprintf("admin:users:page:%d", page))),
	)
	return c.Send(body, menu)
}

// handleUserAction runs one admin override on a user card. Mutations go
// through the same flow/notification paths as organic events.
func (b *Bot) handleUserAction(c tele.Context, session *AdminSession, rest string) error {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return nil
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil
	}
	action := parts[1]
	page := session.UsersPage
	if page < 1 {
		page = 1
	}

	ctx := context.Background()

	if action == "view" {
		_ = c.Delete()
		return b.sendUserCard(c, userID, page)
	}

	user, err := b.Stg.User().GetByID(ctx, userID)
	if err != nil || user == nil {
		return c.Send("User not found.")
	}

	switch action {
	case "give_reg":
		if err := b.Stg.User().SetRegistered(ctx, user.ID, true); err != nil {
			return err
		}
		if err := b.Svc.Flow().Advance(ctx, user.TelegramID); err != nil {
			b.Log.Error("advance after manual registration failed", logger.Error(err))
		}

	case "give_dep":
		settings, err := b.Stg.Settings().Get(ctx)
		if err != nil {
			return err
		}
		amount := settings.DepositRequiredAmount
		if amount.Sign() <= 0 {
			amount = decimal.NewFromInt(1)
		}
		if _, err := b.Stg.Deposit().Create(ctx, user.ID, amount); err != nil {
			return err
		}
		if err := b.Svc.Flow().Advance(ctx, user.TelegramID); err != nil {
			b.Log.Error("advance after manual deposit failed", logger.Error(err))
		}

	case "give_vip":
		if err := b.Stg.User().SetVIP(ctx, user.ID, true); err != nil {
			return err
		}
		if err := b.Svc.Flow().NotifyVIPGranted(ctx, user.TelegramID); err != nil {
			b.Log.Error("vip notification failed", logger.Error(err))
		}

	case "revoke_access":
		if err := b.Stg.User().SetBasicAccess(ctx, user.ID, false); err != nil {
			return err
		}
		if err := b.Svc.Flow().NotifyAccessLimited(ctx, user.TelegramID, models.TierBasic); err != nil {
			b.Log.Error("limited notification failed", logger.Error(err))
		}

	case "revoke_vip":
		if err := b.Stg.User().SetVIP(ctx, user.ID, false); err != nil {
			return err
		}
		if err := b.Svc.Flow().NotifyAccessLimited(ctx, user.TelegramID, models.TierVIP); err != nil {
			b.Log.Error("limited notification failed", logger.Error(err))
		}

	case "delete":
		if err := b.Stg.User().Delete(ctx, user.ID); err != nil {
			return err
		}
		_ = c.Delete()
		return b.sendUsersList(c, page)

	default:
		return nil
	}

	_ = c.Delete()
	return b.sendUserCard(c, userID, page)
}

// ---- text input ----

func (b *Bot) handleAdminInput(c tele.Context, session *AdminSession) error {
	ctx := context.Background()
	input := strings.TrimSpace(c.Text())
	// «-» clears optional fields.
	if input == "-" {
		input = ""
	}

	state := session.State
	session.State = StateIdle

	var err error
	switch state {
	case StateAwaitRefLink:
		err = b.Stg.Settings().UpdateRefLink(ctx, input)
	case StateAwaitDepositLink:
		err = b.Stg.Settings().UpdateDepositLink(ctx, input)
	case StateAwaitChannelID:
		err = b.Stg.Settings().UpdateChannelID(ctx, input)
	case StateAwaitChannelURL:
		err = b.Stg.Settings().UpdateChannelURL(ctx, input)
	case StateAwaitSupportURL:
		err = b.Stg.Settings().UpdateSupportURL(ctx, input)
	case StateAwaitPostbacksChat:
		err = b.Stg.Settings().UpdatePostbacksChatID(ctx, input)

	case StateAwaitDepositAmount, StateAwaitVIPAmount:
		amount, parseErr := decimal.NewFromString(input)
		if parseErr != nil || amount.Sign() < 0 {
			session.State = state
			return c.Send("Not a valid amount, try again (e.g. 100 or 49.99):")
		}
		if state == StateAwaitDepositAmount {
			err = b.Stg.Settings().UpdateDepositRequiredAmount(ctx, amount)
		} else {
			err = b.Stg.Settings().UpdateVIPThresholdAmount(ctx, amount)
		}

	default:
		return nil
	}

	if err != nil {
		b.Log.Error("failed to save admin input", logger.Error(err))
		return c.Send("Failed to save, check logs.")
	}

	switch state {
	case StateAwaitDepositAmount, StateAwaitVIPAmount:
		return b.sendStepsWindow(c)
	case StateAwaitPostbacksChat:
		return b.sendPostbackGroupWindow(c)
	default:
		return b.sendLinksWindow(c)
	}
}
