package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vip-access-bot/internal/db"
	"vip-access-bot/internal/session"
)

const rejectionNote = "Rejected by admin"

// notifyAdminsNewRequest fans a submitted request out to the whole admin
// set with the decision controls. Per-admin delivery failures are logged
// and do not stop the fan-out.
func (b *BotService) notifyAdminsNewRequest(req *db.Request, from *tgbotapi.User) {
	summary := adminRequestSummary(req, from)
	keyboard := adminDecisionKeyboard(req.ID)

	for _, adminID := range b.cfg.AdminChatIDs {
		if err := b.api.SendMarkup(adminID, summary, keyboard); err != nil {
			b.log.Error("admin notify failed", zap.Int64("admin_chat_id", adminID), zap.Error(err))
			continue
		}

		if req.ScreenshotFileID != nil {
			caption := fmt.Sprintf("Deposit screenshot - request %d", req.ID)
			if err := b.api.SendAttachment(adminID, *req.ScreenshotFileID, caption); err != nil {
				b.log.Error("screenshot delivery failed", zap.Int64("admin_chat_id", adminID), zap.Error(err))
			}
		}
	}
}

// requireAdmin rejects the action for anyone outside the admin set.
func (b *BotService) requireAdmin(cb *tgbotapi.CallbackQuery) bool {
	if b.cfg.IsAdmin(cb.From.ID) {
		return true
	}

	b.reply(cb.From.ID, msgNotAuthorized)
	return false
}

func parseRequestID(arg string) (int64, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	return id, err == nil && id > 0
}

func (b *BotService) approveRequest(cb *tgbotapi.CallbackQuery, arg string) {
	if !b.requireAdmin(cb) {
		return
	}

	adminID := cb.From.ID

	requestID, ok := parseRequestID(arg)
	if !ok {
		b.reply(adminID, "Invalid request id.")
		return
	}

	req, err := b.requests.GetByID(requestID)
	if err != nil {
		b.reportAdminError(adminID, requestID, "approval", err)
		return
	}

	decided, err := b.requests.Decide(requestID, db.StatusApproved, nil)
	if err != nil {
		b.reportAdminError(adminID, requestID, "approval", err)
		return
	}

	// A stale keyboard on another admin's copy cannot flip a decided
	// request; only re-approving the same outcome passes.
	if !decided {
		b.stripControls(cb)
		b.reply(adminID, fmt.Sprintf("Request %d was already decided (%s).", requestID, req.Status))
		return
	}

	// From here on the status write stands; delivery failures are reported
	// to the admin but not rolled back. Pressing Approve again re-sends
	// the link to the user.
	userChatID, err := b.users.GetTelegramID(req.UserID)
	if err != nil {
		b.reportAdminError(adminID, requestID, "approval", err)
		return
	}

	link := b.cfg.PublicChannelURL
	singleUse := false

	if b.cfg.VIPChannelID != 0 {
		link, err = b.api.CreateInviteLink(b.cfg.VIPChannelID, 24*time.Hour, 1)
		if err != nil {
			b.reportAdminError(adminID, requestID, "invite link", err)
			return
		}
		singleUse = true
	}

	if link == "" {
		b.reply(adminID, "Missing PUBLIC_CHANNEL_URL and/or VIP_CHANNEL_ID configuration - cannot deliver the access link.")
		return
	}

	inviteCode, err := b.invites.EnsureCode(req.UserID)
	if err != nil {
		b.reportAdminError(adminID, requestID, "invite code", err)
		return
	}

	if err := b.api.SendMarkup(userChatID, approvalMessage(link, singleUse, inviteCode), postApprovalMenu()); err != nil {
		b.reportAdminError(adminID, requestID, "user notification", err)
		return
	}

	b.stripControls(cb)
	b.reply(adminID, fmt.Sprintf("Approved (ID %d). Link and invite code sent to the user.", requestID))
}

func (b *BotService) rejectRequest(cb *tgbotapi.CallbackQuery, arg string) {
	if !b.requireAdmin(cb) {
		return
	}

	adminID := cb.From.ID

	requestID, ok := parseRequestID(arg)
	if !ok {
		b.reply(adminID, "Invalid request id.")
		return
	}

	req, err := b.requests.GetByID(requestID)
	if err != nil {
		b.reportAdminError(adminID, requestID, "rejection", err)
		return
	}

	decided, err := b.requests.Decide(requestID, db.StatusRejected, pointer.ToString(rejectionNote))
	if err != nil {
		b.reportAdminError(adminID, requestID, "rejection", err)
		return
	}

	if !decided {
		b.stripControls(cb)
		b.reply(adminID, fmt.Sprintf("Request %d was already decided (%s).", requestID, req.Status))
		return
	}

	userChatID, err := b.users.GetTelegramID(req.UserID)
	if err != nil {
		b.reportAdminError(adminID, requestID, "rejection", err)
		return
	}

	notice := "Your request was rejected.\nIf you think this is a mistake, reply here and we will ask you for the missing info."
	if err := b.api.SendText(userChatID, notice); err != nil {
		b.reportAdminError(adminID, requestID, "user notification", err)
		return
	}

	b.stripControls(cb)
	b.reply(adminID, fmt.Sprintf("Rejected (ID %d). The user has been notified.", requestID))
}

// askInfo opens a one-question/one-answer relay bound to the request: the
// admin's next text message goes to the user, and the user's next message
// comes back to this admin.
func (b *BotService) askInfo(cb *tgbotapi.CallbackQuery, arg string) {
	if !b.requireAdmin(cb) {
		return
	}

	adminID := cb.From.ID

	requestID, ok := parseRequestID(arg)
	if !ok {
		b.reply(adminID, "Invalid request id.")
		return
	}

	req, err := b.requests.GetByID(requestID)
	if err != nil {
		b.reportAdminError(adminID, requestID, "ask info", err)
		return
	}

	userChatID, err := b.users.GetTelegramID(req.UserID)
	if err != nil {
		b.reportAdminError(adminID, requestID, "ask info", err)
		return
	}

	b.sessions.SetAdmin(adminID, session.AdminState{
		Mode:         session.ModeAskInfo,
		RequestID:    requestID,
		TargetChatID: userChatID,
	})

	b.reply(adminID, fmt.Sprintf(
		"Type the message for the user now (request ID %d).\nThe user's FIRST reply will be forwarded back here.\n\nTo abort: /cancel",
		requestID))
}

func (b *BotService) handleAdminMessage(msg *tgbotapi.Message) {
	adminID := msg.Chat.ID

	if msg.IsCommand() && msg.Command() == "cancel" {
		b.sessions.DeleteAdmin(adminID)
		b.reply(adminID, "Operation cancelled.")
		return
	}

	state, ok := b.sessions.Admin(adminID)
	if !ok {
		return
	}

	switch state.Mode {
	case session.ModeAskInfo:
		b.relayAskInfo(msg, state)
	case session.ModeSupportReply:
		b.relaySupportReply(msg, state)
	}
}

func (b *BotService) relayAskInfo(msg *tgbotapi.Message, state session.AdminState) {
	adminID := msg.Chat.ID

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		b.reply(adminID, "Send a text message (not a photo or file), or /cancel.")
		return
	}

	relayed := fmt.Sprintf("Message from the admin:\n%s\n\nReply here in this chat.", text)
	if err := b.api.SendText(state.TargetChatID, relayed); err != nil {
		b.sessions.DeleteAdmin(adminID)
		b.reply(adminID, fmt.Sprintf("Could not deliver the message: %v", err))
		return
	}

	b.sessions.SetReply(state.TargetChatID, session.PendingReply{
		AdminChatID: adminID,
		RequestID:   state.RequestID,
	})

	if err := b.requests.MarkInfoRequested(state.RequestID, "Admin asked info: "+text); err != nil {
		b.log.Error("info request mark failed", zap.Int64("request_id", state.RequestID), zap.Error(err))
	}

	b.sessions.DeleteAdmin(adminID)
	b.reply(adminID, "Message sent. Now waiting for the user's reply.")
}

// forwardInfoReply relays the user's one answer back to the asking admin
// and clears the obligation. A later message produces no further relay.
func (b *BotService) forwardInfoReply(msg *tgbotapi.Message, pending session.PendingReply) {
	chatID := msg.Chat.ID
	tag := fmt.Sprintf("request ID %d - %s (%d)", pending.RequestID, userHandle(msg.From), chatID)

	var err error

	if fileID := attachmentFileID(msg); fileID != "" {
		err = b.api.SendAttachment(pending.AdminChatID, fileID, "From user - "+tag)
	} else {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return
		}

		err = b.api.SendText(pending.AdminChatID, fmt.Sprintf("User reply (%s)\n\n%s", tag, text))
	}

	if err != nil {
		b.log.Error("info reply forward failed", zap.Int64("admin_chat_id", pending.AdminChatID), zap.Error(err))
		b.reply(chatID, "Could not forward your reply to the admin. Please try again.")
		return
	}

	b.sessions.DeleteReply(chatID)
	b.reply(chatID, "Message received. We forwarded it to the admin.")
}

func (b *BotService) stripControls(cb *tgbotapi.CallbackQuery) {
	if cb.Message != nil {
		b.api.RemoveMarkup(cb.Message.Chat.ID, cb.Message.MessageID)
	}
}

// reportAdminError surfaces the raw collaborator error to the acting
// admin; regular users never see it.
func (b *BotService) reportAdminError(adminID, requestID int64, action string, err error) {
	b.log.Error("admin action failed",
		zap.Int64("request_id", requestID),
		zap.String("action", action),
		zap.Error(err))
	b.reply(adminID, fmt.Sprintf("Error during %s (ID %d): %v", action, requestID, err))
}
