package bot

import (
	"context"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"signalbot/config"
	"signalbot/pkg/logger"
	"signalbot/service"
	"signalbot/storage"
)

// AdminSession tracks which text input the admin panel is waiting for.
type AdminSession struct {
	State string
	// Paging position, kept so a card can return to the right page.
	UsersPage int
}

const (
	StateIdle = "idle"

	StateAwaitRefLink       = "awaiting_ref_link"
	StateAwaitDepositLink   = "awaiting_deposit_link"
	StateAwaitChannelID     = "awaiting_channel_id"
	StateAwaitChannelURL    = "awaiting_channel_url"
	StateAwaitSupportURL    = "awaiting_support_url"
	StateAwaitDepositAmount = "awaiting_deposit_amount"
	StateAwaitVIPAmount     = "awaiting_vip_amount"
	StateAwaitPostbacksChat = "awaiting_postbacks_chat"
)

type Bot struct {
	Bot      *tele.Bot
	Log      logger.ILogger
	Cfg      *config.Config
	Stg      storage.IStorage
	Svc      service.IServiceManager
	Sessions map[int64]*AdminSession
}

func New(cfg *config.Config, stg storage.IStorage, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:     cfg.TelegramBotToken,
		ParseMode: tele.ModeHTML,
		Poller: &tele.LongPoller{
			Timeout: 10 * time.Second,
			// chat_member updates are not delivered unless asked for.
			AllowedUpdates: []string{"message", "callback_query", "chat_member", "my_chat_member"},
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		Bot:      b,
		Log:      log,
		Cfg:      cfg,
		Stg:      stg,
		Sessions: make(map[int64]*AdminSession),
	}
	bot.Svc = service.New(
		stg,
		log,
		newPresenter(bot),
		newSubscriptionChecker(b),
		newOpsNotifier(b),
	)
	bot.registerHandlers()
	return bot, nil
}

func (b *Bot) Start() {
	b.Log.Info("🤖 Bot started...")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle("/admin", b.handleAdminEntry)
	b.Bot.Handle(tele.OnCallback, b.handleCallback)
	b.Bot.Handle(tele.OnText, b.handleText)
	b.Bot.Handle(tele.OnChatMember, b.handleChatMember)
}

func (b *Bot) isAdmin(teleID int64) bool {
	for _, id := range b.Cfg.AdminIDs {
		if id == teleID {
			return true
		}
	}
	return false
}

func (b *Bot) session(teleID int64) *AdminSession {
	s, ok := b.Sessions[teleID]
	if !ok {
		s = &AdminSession{State: StateIdle, UsersPage: 1}
		b.Sessions[teleID] = s
	}
	return s
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()
	user, err := b.Stg.User().GetOrCreate(ctx, c.Sender().ID, c.Sender().Username)
	if err != nil {
		b.Log.Error("failed to resolve user on /start", logger.Error(err))
		return err
	}

	b.session(c.Sender().ID).State = StateIdle

	if user.Language == nil {
		return b.sendLanguageChoice(c)
	}
	return b.sendMainMenu(c, user)
}

// handleCallback fans out all inline-button presses. telebot prefixes
// callback data built via menu.Data with "\f".
func (b *Bot) handleCallback(c tele.Context) error {
	data := strings.TrimPrefix(strings.TrimSpace(c.Callback().Data), "\f")

	switch {
	case strings.HasPrefix(data, "set_lang:"):
		return b.handleSetLanguage(c, strings.TrimPrefix(data, "set_lang:"))
	case strings.HasPrefix(data, "menu:"):
		return b.handleMenuCallback(c, strings.TrimPrefix(data, "menu:"))
	case strings.HasPrefix(data, "admin:"):
		return b.handleAdminCallback(c, strings.TrimPrefix(data, "admin:"))
	}
	return c.Respond()
}

func (b *Bot) handleText(c tele.Context) error {
	if !b.isAdmin(c.Sender().ID) {
		return nil
	}
	session := b.session(c.Sender().ID)
	if session.State == StateIdle {
		return nil
	}
	return b.handleAdminInput(c, session)
}
