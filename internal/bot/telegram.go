package bot

import (
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram is the outbound messaging boundary. The update loop, the
// decision protocol, and the relays only talk to this interface.
type Telegram interface {
	SendText(chatID int64, text string) error
	SendMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error
	// SendAttachment delivers a stored file reference whose media kind is
	// not known in advance: photo delivery is attempted first, generic
	// document delivery on failure.
	SendAttachment(chatID int64, fileID, caption string) error
	CreateInviteLink(channelID int64, ttl time.Duration, memberLimit int) (string, error)
	AnswerCallback(callbackID string)
	RemoveMarkup(chatID int64, messageID int)
}

type telegramClient struct {
	api *tgbotapi.BotAPI
	log *zap.Logger
}

func NewTelegramClient(api *tgbotapi.BotAPI, log *zap.Logger) Telegram {
	return &telegramClient{
		api: api,
		log: log,
	}
}

func (c *telegramClient) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram.SendText: %w", err)
	}

	return nil
}

func (c *telegramClient) SendMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram.SendMarkup: %w", err)
	}

	return nil
}

func (c *telegramClient) SendAttachment(chatID int64, fileID, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption

	if _, err := c.api.Send(photo); err == nil {
		return nil
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	doc.Caption = caption

	if _, err := c.api.Send(doc); err != nil {
		return fmt.Errorf("telegram.SendAttachment: %w", err)
	}

	return nil
}

func (c *telegramClient) CreateInviteLink(channelID int64, ttl time.Duration, memberLimit int) (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: channelID},
		ExpireDate:  int(time.Now().Add(ttl).Unix()),
		MemberLimit: memberLimit,
	}

	resp, err := c.api.Request(cfg)
	if err != nil {
		return "", fmt.Errorf("telegram.CreateInviteLink: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("telegram.CreateInviteLink: %w", err)
	}

	return link.InviteLink, nil
}

func (c *telegramClient) AnswerCallback(callbackID string) {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		c.log.Debug("callback ack failed", zap.Error(err))
	}
}

func (c *telegramClient) RemoveMarkup(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})

	if _, err := c.api.Request(edit); err != nil {
		c.log.Debug("markup removal failed", zap.Error(err))
	}
}
