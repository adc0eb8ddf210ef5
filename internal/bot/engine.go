package bot

import (
	"fmt"
	"strings"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vip-access-bot/internal/db"
	"vip-access-bot/internal/flow"
	"vip-access-bot/internal/session"
)

func (b *BotService) startFlow(cb *tgbotapi.CallbackQuery, campaignName string) {
	campaign, ok := b.campaigns[campaignName]
	if !ok {
		b.log.Warn("unknown campaign requested", zap.String("campaign", campaignName))
		return
	}

	chatID := cb.From.ID

	userID, err := b.upsertUser(cb.From)
	if err != nil {
		b.log.Error("flow start: user upsert failed", zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	requestID, err := b.requests.CreateDraft(userID, campaign.Name)
	if err != nil {
		b.log.Error("flow start: draft creation failed", zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	b.sessions.SetUser(chatID, session.UserState{
		Campaign:  campaign.Name,
		StepIndex: 0,
		RequestID: requestID,
		UserID:    userID,
	})

	b.promptStep(chatID, campaign.Step(0))
}

func (b *BotService) promptStep(chatID int64, step *flow.Step) {
	switch {
	case step.Kind == flow.KindChoice:
		b.sendMarkup(chatID, step.Prompt, choiceKeyboard(step))
	case step.Skippable:
		b.sendMarkup(chatID, step.Prompt, skipMenu())
	default:
		b.reply(chatID, step.Prompt)
	}
}

// repromptStep re-sends the step's expectation after invalid input. No
// state advances and nothing is persisted.
func (b *BotService) repromptStep(chatID int64, step *flow.Step, text string) {
	if step.Skippable {
		b.sendMarkup(chatID, text, skipMenu())
		return
	}

	b.reply(chatID, text)
}

func (b *BotService) handleFlowMessage(msg *tgbotapi.Message, state session.UserState) {
	chatID := msg.Chat.ID

	campaign, ok := b.campaigns[state.Campaign]
	if !ok || state.RequestID == 0 {
		b.sessions.DeleteUser(chatID)
		b.reply(chatID, msgSessionExpired)
		return
	}

	if state.Confirming {
		b.sendMarkup(chatID, "Use the buttons below to submit or edit.", confirmMenu())
		return
	}

	step := campaign.Step(state.StepIndex)
	if step == nil {
		b.sessions.DeleteUser(chatID)
		b.reply(chatID, msgSessionExpired)
		return
	}

	switch step.Kind {
	case flow.KindText:
		b.consumeTextStep(msg, state, campaign, step)
	case flow.KindChoice:
		b.sendMarkup(chatID, step.WrongPayload(), choiceKeyboard(step))
	case flow.KindAttachment:
		b.consumeAttachmentStep(msg, state, campaign, step)
	}
}

func (b *BotService) consumeTextStep(msg *tgbotapi.Message, state session.UserState, campaign *flow.Campaign, step *flow.Step) {
	chatID := msg.Chat.ID

	if msg.Text == "" {
		b.repromptStep(chatID, step, step.WrongPayload())
		return
	}

	value := strings.TrimSpace(msg.Text)

	if step.Validate != nil {
		if err := step.Validate(value); err != nil {
			b.repromptStep(chatID, step, err.Error())
			return
		}
	}

	if step.Transform != nil {
		value = step.Transform(value)
	}

	if err := b.requests.SetField(state.RequestID, step.Field, pointer.ToString(value)); err != nil {
		b.log.Error("step persist failed",
			zap.Int64("request_id", state.RequestID),
			zap.String("field", step.Field),
			zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	b.advance(chatID, state, campaign)
}

func (b *BotService) consumeAttachmentStep(msg *tgbotapi.Message, state session.UserState, campaign *flow.Campaign, step *flow.Step) {
	chatID := msg.Chat.ID

	fileID := attachmentFileID(msg)
	if fileID == "" {
		b.reply(chatID, step.WrongPayload())
		return
	}

	// Local archiving is best effort; the telegram file reference alone is
	// enough to review the request.
	var path *string
	if b.archiver != nil {
		saved, err := b.archiver.SaveFile(fileID)
		if err != nil {
			b.log.Warn("screenshot archive failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
		} else {
			path = &saved
		}
	}

	if err := b.requests.SetScreenshot(state.RequestID, fileID, path); err != nil {
		b.log.Error("screenshot persist failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	b.advance(chatID, state, campaign)
}

func attachmentFileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}

	if msg.Document != nil {
		return msg.Document.FileID
	}

	return ""
}

// advance moves the cursor one step forward; past the last step it shows
// the confirmation summary.
func (b *BotService) advance(chatID int64, state session.UserState, campaign *flow.Campaign) {
	state.StepIndex++

	next := campaign.Step(state.StepIndex)
	if next != nil {
		b.sessions.SetUser(chatID, state)
		b.promptStep(chatID, next)
		return
	}

	state.Confirming = true
	b.sessions.SetUser(chatID, state)

	req, err := b.requests.GetByID(state.RequestID)
	if err != nil {
		b.log.Error("summary load failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	b.sendMarkup(chatID, confirmSummary(req), confirmMenu())
}

func (b *BotService) chooseOption(cb *tgbotapi.CallbackQuery, key string) {
	chatID := cb.From.ID

	state, ok := b.sessions.User(chatID)
	if !ok {
		b.reply(chatID, msgSessionExpired)
		return
	}

	campaign := b.campaigns[state.Campaign]
	if campaign == nil || state.Confirming {
		return
	}

	step := campaign.Step(state.StepIndex)
	if step == nil || step.Kind != flow.KindChoice {
		return
	}

	choice, found := step.FindChoice(key)
	if !found {
		b.sendMarkup(chatID, step.WrongPayload(), choiceKeyboard(step))
		return
	}

	if err := b.requests.SetField(state.RequestID, step.Field, pointer.ToString(choice.Label)); err != nil {
		b.log.Error("choice persist failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	b.reply(chatID, fmt.Sprintf("Selected: %s", choice.Label))
	b.advance(chatID, state, campaign)
}

func (b *BotService) skipOptional(cb *tgbotapi.CallbackQuery) {
	chatID := cb.From.ID

	state, ok := b.sessions.User(chatID)
	if !ok {
		b.reply(chatID, msgSessionExpired)
		return
	}

	campaign := b.campaigns[state.Campaign]
	if campaign == nil || state.Confirming {
		return
	}

	step := campaign.Step(state.StepIndex)
	if step == nil || !step.Skippable {
		return
	}

	if err := b.requests.SetField(state.RequestID, step.Field, nil); err != nil {
		b.log.Error("skip persist failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
		b.reply(chatID, msgTemporaryError)
		return
	}

	b.advance(chatID, state, campaign)
}

func (b *BotService) submitRequest(cb *tgbotapi.CallbackQuery) {
	chatID := cb.From.ID

	state, ok := b.sessions.User(chatID)
	if !ok || state.RequestID == 0 {
		b.reply(chatID, msgSessionExpired)
		return
	}

	if err := b.requests.SetStatus(state.RequestID, db.StatusSubmitted, nil); err != nil {
		b.log.Error("submit failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
		b.reply(chatID, "Error while sending. Please try again.")
		return
	}

	req, err := b.requests.GetByID(state.RequestID)
	if err != nil {
		b.log.Error("submit: request load failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
		b.reply(chatID, "Error while sending. Please try again.")
		return
	}

	// Crediting failures must not block the submission.
	if err := b.ledger.Credit(req); err != nil {
		b.log.Error("referral crediting failed", zap.Int64("request_id", req.ID), zap.Error(err))
	}

	b.notifyAdminsNewRequest(req, cb.From)

	b.sessions.DeleteUser(chatID)
	b.reply(chatID, "Request sent! We will update you after the review (within 72 hours).")
}

// editRequest rewinds to the first step. The request id is kept, so new
// answers overwrite the same row.
func (b *BotService) editRequest(cb *tgbotapi.CallbackQuery) {
	chatID := cb.From.ID

	state, ok := b.sessions.User(chatID)
	if !ok || state.RequestID == 0 {
		b.reply(chatID, msgSessionExpired)
		return
	}

	campaign := b.campaigns[state.Campaign]
	if campaign == nil {
		b.sessions.DeleteUser(chatID)
		b.reply(chatID, msgSessionExpired)
		return
	}

	state.StepIndex = 0
	state.Confirming = false
	b.sessions.SetUser(chatID, state)

	b.promptStep(chatID, campaign.Step(0))
}

func (b *BotService) cancelRequest(cb *tgbotapi.CallbackQuery) {
	b.sessions.DeleteUser(cb.From.ID)
	b.reply(cb.From.ID, "Operation cancelled. Start again from the menu whenever you want.")
}

func (b *BotService) sendMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if err := b.api.SendMarkup(chatID, text, markup); err != nil {
		b.log.Error("send with markup failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
