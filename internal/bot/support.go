package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vip-access-bot/internal/session"
)

func (b *BotService) openSupport(cb *tgbotapi.CallbackQuery) {
	b.sessions.SetSupportPending(cb.From.ID)
	b.reply(cb.From.ID, "Support\nDescribe your problem here (you can also send photos or files).")
}

// forwardSupportTicket turns the user's next message into a ticket: every
// admin gets a header with a Reply control plus the message content.
func (b *BotService) forwardSupportTicket(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.sessions.DeleteSupportPending(chatID)

	header := fmt.Sprintf("SUPPORT\nUser: %s (%d)\nPress Reply to answer this user.", userHandle(msg.From), chatID)
	keyboard := supportReplyKeyboard(chatID)

	for _, adminID := range b.cfg.AdminChatIDs {
		if err := b.api.SendMarkup(adminID, header, keyboard); err != nil {
			b.log.Error("support header failed", zap.Int64("admin_chat_id", adminID), zap.Error(err))
			continue
		}

		var err error
		if fileID := attachmentFileID(msg); fileID != "" {
			err = b.api.SendAttachment(adminID, fileID, "Support attachment")
		} else if text := strings.TrimSpace(msg.Text); text != "" {
			err = b.api.SendText(adminID, "Support message:\n"+text)
		}

		if err != nil {
			b.log.Error("support content forward failed", zap.Int64("admin_chat_id", adminID), zap.Error(err))
		}
	}

	b.reply(chatID, "Support request sent. We will answer you here as soon as possible.")
}

func (b *BotService) openSupportReply(cb *tgbotapi.CallbackQuery, arg string) {
	if !b.requireAdmin(cb) {
		return
	}

	adminID := cb.From.ID

	userChatID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || userChatID == 0 {
		b.reply(adminID, "Invalid user id.")
		return
	}

	b.sessions.SetAdmin(adminID, session.AdminState{
		Mode:         session.ModeSupportReply,
		TargetChatID: userChatID,
	})

	b.reply(adminID, fmt.Sprintf(
		"Support - reply to user (%d)\nWrite the answer here (text, photo, or file).\nTo abort: /cancel",
		userChatID))
}

// relaySupportReply delivers the admin's one answer and closes the
// session; further exchanges need a new ticket.
func (b *BotService) relaySupportReply(msg *tgbotapi.Message, state session.AdminState) {
	adminID := msg.Chat.ID

	var err error

	if fileID := attachmentFileID(msg); fileID != "" {
		err = b.api.SendAttachment(state.TargetChatID, fileID, "Support (admin)")
	} else {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			b.reply(adminID, "Write a text (or send a photo/file), or /cancel.")
			return
		}

		err = b.api.SendText(state.TargetChatID, "Support (admin):\n"+text)
	}

	b.sessions.DeleteAdmin(adminID)

	if err != nil {
		b.reply(adminID, fmt.Sprintf("Could not deliver the support reply: %v", err))
		return
	}

	b.reply(adminID, "Support reply sent to the user.")
}
