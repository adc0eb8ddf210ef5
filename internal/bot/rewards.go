package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vip-access-bot/internal/flow"
	"vip-access-bot/internal/referral"
)

// requireApprovedUser gates the reward flow on an approved VIP request.
// Returns the internal user id on success.
func (b *BotService) requireApprovedUser(cb *tgbotapi.CallbackQuery) (int64, bool) {
	chatID := cb.From.ID

	userID, err := b.upsertUser(cb.From)
	if err != nil {
		b.log.Error("reward gate: user upsert failed", zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return 0, false
	}

	approved, err := b.requests.HasApproved(userID, flow.CampaignVIPAccess)
	if err != nil {
		b.log.Error("reward gate: approval check failed", zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return 0, false
	}

	if !approved {
		b.reply(chatID, msgRewardLocked)
		return 0, false
	}

	return userID, true
}

func (b *BotService) rewardStatus(cb *tgbotapi.CallbackQuery) {
	chatID := cb.From.ID

	userID, ok := b.requireApprovedUser(cb)
	if !ok {
		return
	}

	status, err := b.ledger.Status(userID)
	if err != nil {
		b.log.Error("reward status failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	text := fmt.Sprintf(
		"Your invite code: %s\n\nPeople brought in: %d\nPrizes available now: %d\n\nEvery %d people = 1 gift card worth %d EUR.\n\n",
		status.Code, status.Count, status.Units, referral.UnitSize, referral.PrizeValue)

	keyboard := postApprovalMenu()

	if status.Units > 0 {
		text += "You can claim a prize now: press Claim a prize."
		keyboard = tgbotapi.NewInlineKeyboardMarkup(append(
			[][]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("Claim a prize", cbClaimReward),
				),
			},
			keyboard.InlineKeyboard...,
		)...)
	} else {
		text += fmt.Sprintf("You don't have enough people yet (you need at least %d).", referral.UnitSize)
	}

	b.sendMarkup(chatID, text, keyboard)
}

func (b *BotService) claimReward(cb *tgbotapi.CallbackQuery) {
	chatID := cb.From.ID

	userID, ok := b.requireApprovedUser(cb)
	if !ok {
		return
	}

	status, err := b.ledger.Status(userID)
	if err != nil {
		b.log.Error("reward claim: status failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	if status.Units == 0 {
		b.sendMarkup(chatID,
			fmt.Sprintf("You don't have %d people yet. Once you reach %d you can claim a prize.", referral.UnitSize, referral.UnitSize),
			postApprovalMenu())
		return
	}

	b.sendMarkup(chatID,
		fmt.Sprintf("Choose the gift card you want (worth %d EUR).\n\nPrizes available now: %d", referral.PrizeValue, status.Units),
		prizesKeyboard())
}

func (b *BotService) redeemPrize(cb *tgbotapi.CallbackQuery, prize string) {
	chatID := cb.From.ID

	if !referral.ValidPrize(prize) {
		b.reply(chatID, "Unknown prize.")
		return
	}

	userID, ok := b.requireApprovedUser(cb)
	if !ok {
		return
	}

	redemption, err := b.ledger.Redeem(userID, prize)
	if err != nil {
		b.log.Error("redemption failed", zap.Int64("user_id", userID), zap.String("prize", prize), zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	if !redemption.OK {
		b.sendMarkup(chatID,
			fmt.Sprintf("You don't have enough people (minimum %d).", referral.UnitSize),
			postApprovalMenu())
		return
	}

	b.notifyAdminsPrizeClaim(cb.From, prize, redemption)

	b.sendMarkup(chatID, fmt.Sprintf(
		"Claim sent!\n\nChosen prize: %s (%d EUR)\nWe will contact you here as soon as it is ready.\n\nPeople brought in now: %d\nPrizes available now: %d",
		prize, referral.PrizeValue, redemption.Count, redemption.Count/referral.UnitSize),
		postApprovalMenu())
}

func (b *BotService) notifyAdminsPrizeClaim(from *tgbotapi.User, prize string, redemption referral.Redemption) {
	text := fmt.Sprintf(
		"PRIZE CLAIM\nPrize: %s (%d EUR)\nUser: %s (%d)\nInvite code: %s\nCounter left (after -%d): %d",
		prize, referral.PrizeValue, userHandle(from), from.ID, redemption.Code, referral.UnitSize, redemption.Count)

	for _, adminID := range b.cfg.AdminChatIDs {
		if err := b.api.SendText(adminID, text); err != nil {
			b.log.Error("prize claim notify failed", zap.Int64("admin_chat_id", adminID), zap.Error(err))
		}
	}
}
