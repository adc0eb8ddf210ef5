package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vip-access-bot/internal/flow"
	"vip-access-bot/internal/referral"
)

// Callback data prefixes. Parameterized actions carry their argument after
// the colon.
const (
	cbFlow         = "flow"
	cbSupport      = "support"
	cbRefStatus    = "ref_status"
	cbClaimReward  = "claim_reward"
	cbPrize        = "prize"
	cbChoice       = "op"
	cbSkip         = "skip"
	cbSubmit       = "submit"
	cbEdit         = "edit"
	cbCancel       = "cancel"
	cbApprove      = "approve"
	cbReject       = "reject"
	cbAskInfo      = "ask"
	cbSupportReply = "sreply"
)

func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Request VIP access", cbFlow+":"+flow.CampaignVIPAccess),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Request deposit cashback", cbFlow+":"+flow.CampaignDepositCashback),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Support", cbSupport),
		),
	)
}

func postApprovalMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Invite rewards", cbRefStatus),
		),
	)
}

func confirmMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Submit", cbSubmit),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Edit", cbEdit),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", cbCancel),
		),
	)
}

func skipMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Skip (I don't have one)", cbSkip),
		),
	)
}

// choiceKeyboard lays out a choice step's options two per row.
func choiceKeyboard(step *flow.Step) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, choice := range step.Choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(choice.Label, cbChoice+":"+choice.Key))

		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}

	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func prizesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, prize := range referral.Prizes {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(prize, cbPrize+":"+prize))

		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}

	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Back", cbRefStatus),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminDecisionKeyboard(requestID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve", fmt.Sprintf("%s:%d", cbApprove, requestID)),
			tgbotapi.NewInlineKeyboardButtonData("Reject", fmt.Sprintf("%s:%d", cbReject, requestID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Ask info", fmt.Sprintf("%s:%d", cbAskInfo, requestID)),
		),
	)
}

func supportReplyKeyboard(userChatID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Reply", fmt.Sprintf("%s:%d", cbSupportReply, userChatID)),
		),
	)
}
