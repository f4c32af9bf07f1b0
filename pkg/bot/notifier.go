package bot

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"signalbot/pkg/models"
	"signalbot/service"
)

// opsNotifier forwards broker events to the operational chat.
type opsNotifier struct {
	bot *tele.Bot
}

func newOpsNotifier(bot *tele.Bot) service.OpsNotifier {
	return &opsNotifier{bot: bot}
}

func (n *opsNotifier) ForwardEvent(ctx context.Context, chatID string, kind models.EventKind, traderID string, teleID int64, amount decimal.Decimal) error {
	rec, err := resolveRecipient(n.bot, chatID)
	if err != nil {
		return err
	}

	var body string
	switch kind {
	case models.EventRegistration:
		body = fmt.Sprintf(
			"📝 <b>Registration</b>\ntrader_id: <code>%s</code>\ntg_id: <code>%d</code>",
			traderID, teleID)
	case models.EventDeposit:
		body = fmt.Sprintf(
			"💰 <b>Deposit</b>\ntrader_id: <code>%s</code>\ntg_id: <code>%d</code>\nsumdep: <b>%s$</b>",
			traderID, teleID, amount.StringFixed(2))
	case models.EventWithdraw:
		body = fmt.Sprintf(
			"💸 <b>Withdrawal</b>\ntrader_id: <code>%s</code>\ntg_id: <code>%d</code>\nwdr_sum: <b>%s$</b>",
			traderID, teleID, amount.StringFixed(2))
	default:
		return fmt.Errorf("unknown event kind %v", kind)
	}

	_, err = n.bot.Send(rec, body)
	return err
}
