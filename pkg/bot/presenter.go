package bot

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"signalbot/pkg/models"
	"signalbot/service"
)

// presenter renders flow-engine decisions into telegram messages with
// inline keyboards. One screen per decision.
type presenter struct {
	b *Bot
}

func newPresenter(b *Bot) service.Presenter {
	return &presenter{b: b}
}

func (p *presenter) send(teleID int64, text string, markup *tele.ReplyMarkup) error {
	if markup != nil {
		_, err := p.b.Bot.Send(tele.ChatID(teleID), text, markup)
		return err
	}
	_, err := p.b.Bot.Send(tele.ChatID(teleID), text)
	return err
}

func (p *presenter) urlWithBackMarkup(lang, labelKey, url string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	back := menu.Data(label(lang, "back_to_menu"), "menu:back_to_menu")
	if url != "" {
		menu.Inline(menu.Row(menu.URL(label(lang, labelKey), url)), menu.Row(back))
	} else {
		menu.Inline(menu.Row(back))
	}
	return menu
}

// accessOpenedMarkup mirrors the main menu's signal button: WebApp when a
// destination is configured, funnel callback as the fallback.
func (p *presenter) accessOpenedMarkup(lang string, user *models.User) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var btn tele.Btn
	if url := p.b.miniappURL(user); url != "" {
		btn = menu.WebApp(label(lang, "get_signal"), &tele.WebApp{URL: url})
	} else {
		btn = menu.Data(label(lang, "get_signal"), "menu:get_signal")
	}
	menu.Inline(
		menu.Row(btn),
		menu.Row(menu.Data(label(lang, "back_to_menu"), "menu:back_to_menu")),
	)
	return menu
}

func (p *presenter) ShowSubscription(ctx context.Context, user *models.User, st *models.Settings) error {
	lang := p.b.userLang(user)
	return p.send(user.TelegramID, text(subscriptionText, lang),
		p.urlWithBackMarkup(lang, "subscribe", st.ChannelURLValue()))
}

func (p *presenter) ShowRegistration(ctx context.Context, user *models.User, st *models.Settings) error {
	lang := p.b.userLang(user)
	return p.send(user.TelegramID, text(registrationText, lang),
		p.urlWithBackMarkup(lang, "register", st.RefLinkValue()))
}

func (p *presenter) ShowDeposit(ctx context.Context, user *models.User, st *models.Settings, required, current decimal.Decimal) error {
	lang := p.b.userLang(user)
	body := fmt.Sprintf(text(depositText, lang), required.StringFixed(2), current.StringFixed(2))
	return p.send(user.TelegramID, body,
		p.urlWithBackMarkup(lang, "make_deposit", st.DepositLinkValue()))
}

func (p *presenter) ShowConfigError(ctx context.Context, user *models.User) error {
	lang := p.b.userLang(user)
	return p.send(user.TelegramID, text(configErrorText, lang), nil)
}

func (p *presenter) ShowAccessGranted(ctx context.Context, user *models.User, st *models.Settings, vipGranted bool) error {
	lang := p.b.userLang(user)
	body := text(accessOpenText, lang)
	if vipGranted {
		body += "\n\n" + text(vipGrantedText, lang)
	}
	return p.send(user.TelegramID, body, p.accessOpenedMarkup(lang, user))
}

func (p *presenter) ShowDestination(ctx context.Context, user *models.User, st *models.Settings) error {
	lang := p.b.userLang(user)
	if p.b.miniappURL(user) == "" {
		return p.send(user.TelegramID,
			"⚠️ Mini-app URL is not configured. Set BASIC_MINIAPP_URL / VIP_MINIAPP_URL.", nil)
	}
	return p.send(user.TelegramID, "🚀", p.accessOpenedMarkup(lang, user))
}

func (p *presenter) ShowAccessLimited(ctx context.Context, user *models.User, st *models.Settings, tier models.Tier) error {
	lang := p.b.userLang(user)
	var body string
	if tier == models.TierVIP {
		body = fmt.Sprintf(text(limitedVIPText, lang), st.VIPThresholdAmount.StringFixed(2))
	} else {
		body = fmt.Sprintf(text(limitedBasicText, lang), st.DepositRequiredAmount.StringFixed(2))
	}
	return p.send(user.TelegramID, body,
		p.urlWithBackMarkup(lang, "make_deposit", st.DepositLinkValue()))
}

func (p *presenter) ShowVIPGranted(ctx context.Context, user *models.User, st *models.Settings) error {
	lang := p.b.userLang(user)
	return p.send(user.TelegramID, text(vipGrantedText, lang), p.accessOpenedMarkup(lang, user))
}
