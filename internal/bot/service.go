package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vip-access-bot/internal/config"
	"vip-access-bot/internal/db"
	"vip-access-bot/internal/flow"
	"vip-access-bot/internal/referral"
	"vip-access-bot/internal/session"
)

type UserStore interface {
	Upsert(telegramID int64, username, firstName, lastName *string) (int64, error)
	GetTelegramID(userID int64) (int64, error)
}

type RequestStore interface {
	CreateDraft(userID int64, campaign string) (int64, error)
	GetByID(requestID int64) (*db.Request, error)
	SetField(requestID int64, field string, value *string) error
	SetScreenshot(requestID int64, fileID string, path *string) error
	SetStatus(requestID int64, status string, adminNote *string) error
	Decide(requestID int64, status string, adminNote *string) (bool, error)
	MarkInfoRequested(requestID int64, note string) error
	HasApproved(userID int64, campaign string) (bool, error)
}

type InviteCodes interface {
	EnsureCode(userID int64) (string, error)
}

// Archiver stores a local copy of a submitted screenshot.
type Archiver interface {
	SaveFile(fileID string) (string, error)
}

type BotService struct {
	api       Telegram
	cfg       *config.Config
	users     UserStore
	requests  RequestStore
	invites   InviteCodes
	ledger    *referral.Ledger
	sessions  session.Store
	archiver  Archiver
	campaigns map[string]*flow.Campaign
	log       *zap.Logger
}

func New(
	api Telegram,
	cfg *config.Config,
	users UserStore,
	requests RequestStore,
	invites InviteCodes,
	ledger *referral.Ledger,
	sessions session.Store,
	archiver Archiver,
	log *zap.Logger,
) *BotService {
	return &BotService{
		api:       api,
		cfg:       cfg,
		users:     users,
		requests:  requests,
		invites:   invites,
		ledger:    ledger,
		sessions:  sessions,
		archiver:  archiver,
		campaigns: flow.Registry(),
		log:       log,
	}
}

// Start consumes the update channel. Updates are handled one at a time;
// handler bodies run to completion before the next event is read.
func (b *BotService) Start(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		b.HandleUpdate(update)
	}
}

func (b *BotService) HandleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(update.Message)
	}
}

func (b *BotService) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Acknowledge before any side effect; a duplicate ack is a no-op.
	b.api.AnswerCallback(cb.ID)

	if cb.From == nil {
		return
	}

	action, arg, _ := strings.Cut(cb.Data, ":")

	switch action {
	case cbFlow:
		b.startFlow(cb, arg)
	case cbSupport:
		b.openSupport(cb)
	case cbRefStatus:
		b.rewardStatus(cb)
	case cbClaimReward:
		b.claimReward(cb)
	case cbPrize:
		b.redeemPrize(cb, arg)
	case cbChoice:
		b.chooseOption(cb, arg)
	case cbSkip:
		b.skipOptional(cb)
	case cbSubmit:
		b.submitRequest(cb)
	case cbEdit:
		b.editRequest(cb)
	case cbCancel:
		b.cancelRequest(cb)
	case cbApprove:
		b.approveRequest(cb, arg)
	case cbReject:
		b.rejectRequest(cb, arg)
	case cbAskInfo:
		b.askInfo(cb, arg)
	case cbSupportReply:
		b.openSupportReply(cb, arg)
	default:
		b.log.Debug("unknown callback action", zap.String("data", cb.Data))
	}
}

func (b *BotService) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	chatID := msg.Chat.ID

	if msg.IsCommand() && msg.Command() == "start" {
		b.handleStart(msg)
		return
	}

	if b.cfg.IsAdmin(chatID) {
		b.handleAdminMessage(msg)
		return
	}

	// An open support ticket consumes the next message, whatever its kind.
	if b.sessions.SupportPending(chatID) {
		b.forwardSupportTicket(msg)
		return
	}

	state, hasFlow := b.sessions.User(chatID)

	// A pending ask-info obligation wins only when no flow is active.
	if !hasFlow {
		if pending, ok := b.sessions.Reply(chatID); ok {
			b.forwardInfoReply(msg, pending)
			return
		}

		// No conversation, no obligation: silently ignore.
		return
	}

	b.handleFlowMessage(msg, state)
}

func (b *BotService) handleStart(msg *tgbotapi.Message) {
	if _, err := b.upsertUser(msg.From); err != nil {
		b.log.Error("start: user upsert failed", zap.Error(err))
		b.reply(msg.Chat.ID, msgTemporaryError)
		return
	}

	if err := b.api.SendMarkup(msg.Chat.ID, introMessage(), mainMenu()); err != nil {
		b.log.Error("start: intro send failed", zap.Error(err))
	}
}

// upsertUser refreshes the user row and makes sure an invite code exists,
// returning the internal user id.
func (b *BotService) upsertUser(from *tgbotapi.User) (int64, error) {
	userID, err := b.users.Upsert(from.ID, optString(from.UserName), optString(from.FirstName), optString(from.LastName))
	if err != nil {
		return 0, err
	}

	if _, err := b.invites.EnsureCode(userID); err != nil {
		return 0, err
	}

	return userID, nil
}

func (b *BotService) reply(chatID int64, text string) {
	if err := b.api.SendText(chatID, text); err != nil {
		b.log.Error("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func optString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
