package bot

import (
	"context"

	tele "gopkg.in/telebot.v3"

	"signalbot/pkg/logger"
	"signalbot/pkg/models"
)

func (b *Bot) userLang(user *models.User) string {
	return user.Lang(b.Cfg.DefaultLanguage)
}

// miniappURL picks which mini-app a user opens. VIP users get the VIP
// app when it is configured, everyone else falls back to the basic one.
func (b *Bot) miniappURL(user *models.User) string {
	if user.VIP && b.Cfg.VIPMiniappURL != "" {
		return b.Cfg.VIPMiniappURL
	}
	return b.Cfg.BasicMiniappURL
}

func (b *Bot) sendLanguageChoice(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	var row tele.Row
	for _, lt := range langTitles {
		row = append(row, menu.Data(lt.Title, "set_lang:"+lt.Code))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	menu.Inline(rows...)
	return c.Send(chooseLanguageText, menu)
}

func (b *Bot) mainMenuMarkup(lang string, st *models.Settings, user *models.User) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}

	btnInstruction := menu.Data(label(lang, "instruction"), "menu:instruction")

	var btnSupport tele.Btn
	if st.SupportURLValue() != "" {
		btnSupport = menu.URL(label(lang, "support"), st.SupportURLValue())
	} else {
		btnSupport = menu.Data(label(lang, "support"), "menu:support_empty")
	}

	btnLanguage := menu.Data(label(lang, "change_language"), "menu:change_language")

	// Once access is open the signal button becomes a WebApp link; until
	// then it drives the funnel.
	var btnSignal tele.Btn
	if url := b.miniappURL(user); user.HasAccess() && url != "" {
		btnSignal = menu.WebApp(label(lang, "get_signal"), &tele.WebApp{URL: url})
	} else {
		btnSignal = menu.Data(label(lang, "get_signal"), "menu:get_signal")
	}

	menu.Inline(
		menu.Row(btnInstruction),
		menu.Row(btnSupport, btnLanguage),
		menu.Row(btnSignal),
	)
	return menu
}

func (b *Bot) backMarkup(lang string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data(label(lang, "back_to_menu"), "menu:back_to_menu")))
	return menu
}

func (b *Bot) sendMainMenu(c tele.Context, user *models.User) error {
	settings, err := b.Stg.Settings().Get(context.Background())
	if err != nil {
		return err
	}
	lang := b.userLang(user)
	return c.Send(text(mainMenuText, lang), b.mainMenuMarkup(lang, settings, user))
}

func (b *Bot) handleSetLanguage(c tele.Context, code string) error {
	if _, ok := menuLabels[code]; !ok {
		return c.Respond()
	}
	ctx := context.Background()
	if err := b.Stg.User().UpdateLanguage(ctx, c.Sender().ID, code); err != nil {
		b.Log.Error("failed to set language", logger.Error(err))
		return c.Respond()
	}
	_ = c.Delete()
	_ = c.Respond()
	user, err := b.Stg.User().Get(ctx, c.Sender().ID)
	if err != nil || user == nil {
		return err
	}
	return b.sendMainMenu(c, user)
}

func (b *Bot) handleMenuCallback(c tele.Context, action string) error {
	ctx := context.Background()

	switch action {
	case "instruction":
		_ = c.Respond()
		user, err := b.Stg.User().GetOrCreate(ctx, c.Sender().ID, c.Sender().Username)
		if err != nil {
			return err
		}
		_ = c.Delete()
		lang := b.userLang(user)
		return c.Send(text(instructionText, lang), b.backMarkup(lang))

	case "get_signal":
		// Only reachable while access is closed; afterwards the button
		// is a WebApp link and never calls back.
		_ = c.Respond()
		_ = c.Delete()
		return b.Svc.Flow().Advance(ctx, c.Sender().ID)

	case "change_language":
		_ = c.Respond()
		_ = c.Delete()
		return b.sendLanguageChoice(c)

	case "back_to_menu":
		_ = c.Respond()
		_ = c.Delete()
		user, err := b.Stg.User().GetOrCreate(ctx, c.Sender().ID, c.Sender().Username)
		if err != nil {
			return err
		}
		return b.sendMainMenu(c, user)

	case "support_empty":
		return c.Respond(&tele.CallbackResponse{Text: "Support link is not configured.", ShowAlert: true})
	}

	return c.Respond()
}
