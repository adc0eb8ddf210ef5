package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vip-access-bot/internal/config"
	"vip-access-bot/internal/db"
	"vip-access-bot/internal/flow"
	"vip-access-bot/internal/referral"
	"vip-access-bot/internal/session"
)

const (
	adminChatID = int64(900)
	userChatID  = int64(5000)
	publicURL   = "https://t.me/vip_public"
)

type sentMessage struct {
	chatID    int64
	text      string
	hasMarkup bool
	markup    tgbotapi.InlineKeyboardMarkup
}

type sentAttachment struct {
	chatID  int64
	fileID  string
	caption string
}

// fakeTelegram records every outbound call; delivery to a chat listed in
// failSendTo fails.
type fakeTelegram struct {
	sent        []sentMessage
	attachments []sentAttachment
	answered    []string
	removals    int
	failSendTo  map[int64]bool
	inviteLink  string
	inviteErr   error
	inviteCalls []int64
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{failSendTo: make(map[int64]bool)}
}

func (f *fakeTelegram) SendText(chatID int64, text string) error {
	if f.failSendTo[chatID] {
		return errors.New("send failed")
	}

	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeTelegram) SendMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	if f.failSendTo[chatID] {
		return errors.New("send failed")
	}

	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, hasMarkup: true, markup: markup})
	return nil
}

func (f *fakeTelegram) SendAttachment(chatID int64, fileID, caption string) error {
	if f.failSendTo[chatID] {
		return errors.New("send failed")
	}

	f.attachments = append(f.attachments, sentAttachment{chatID: chatID, fileID: fileID, caption: caption})
	return nil
}

func (f *fakeTelegram) CreateInviteLink(channelID int64, ttl time.Duration, memberLimit int) (string, error) {
	f.inviteCalls = append(f.inviteCalls, channelID)

	if f.inviteErr != nil {
		return "", f.inviteErr
	}

	return f.inviteLink, nil
}

func (f *fakeTelegram) AnswerCallback(callbackID string) {
	f.answered = append(f.answered, callbackID)
}

func (f *fakeTelegram) RemoveMarkup(chatID int64, messageID int) {
	f.removals++
}

func (f *fakeTelegram) textsTo(chatID int64) []string {
	var texts []string
	for _, m := range f.sent {
		if m.chatID == chatID {
			texts = append(texts, m.text)
		}
	}

	return texts
}

func (f *fakeTelegram) lastTo(chatID int64) (sentMessage, bool) {
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].chatID == chatID {
			return f.sent[i], true
		}
	}

	return sentMessage{}, false
}

func (f *fakeTelegram) reset() {
	f.sent = nil
	f.attachments = nil
	f.removals = 0
	f.inviteCalls = nil
}

type fakeUsers struct {
	nextID int64
	byTG   map[int64]int64
	byID   map[int64]int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byTG: make(map[int64]int64), byID: make(map[int64]int64)}
}

func (f *fakeUsers) Upsert(telegramID int64, username, firstName, lastName *string) (int64, error) {
	if id, ok := f.byTG[telegramID]; ok {
		return id, nil
	}

	f.nextID++
	f.byTG[telegramID] = f.nextID
	f.byID[f.nextID] = telegramID
	return f.nextID, nil
}

func (f *fakeUsers) GetTelegramID(userID int64) (int64, error) {
	tg, ok := f.byID[userID]
	if !ok {
		return 0, fmt.Errorf("unknown user %d", userID)
	}

	return tg, nil
}

// fakeRequests mimics the requests table: one row per draft, writes by
// whitelisted field name, status transitions stamp timestamps.
type fakeRequests struct {
	nextID int64
	rows   map[int64]*db.Request
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{rows: make(map[int64]*db.Request)}
}

func (f *fakeRequests) CreateDraft(userID int64, campaign string) (int64, error) {
	f.nextID++
	f.rows[f.nextID] = &db.Request{
		ID:        f.nextID,
		UserID:    userID,
		Campaign:  campaign,
		Status:    db.StatusDraft,
		CreatedAt: time.Now(),
	}

	return f.nextID, nil
}

func (f *fakeRequests) GetByID(requestID int64) (*db.Request, error) {
	row, ok := f.rows[requestID]
	if !ok {
		return nil, fmt.Errorf("request %d not found", requestID)
	}

	cp := *row
	return &cp, nil
}

func (f *fakeRequests) SetField(requestID int64, field string, value *string) error {
	row, ok := f.rows[requestID]
	if !ok {
		return fmt.Errorf("request %d not found", requestID)
	}

	switch field {
	case "full_name":
		row.FullName = value
	case "email":
		row.Email = value
	case "operator":
		row.Operator = value
	case "operator_account_id":
		row.OperatorAccountID = value
	case "invite_code":
		row.InviteCode = value
	case "deposit_amount":
		row.DepositAmount = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}

	return nil
}

func (f *fakeRequests) SetScreenshot(requestID int64, fileID string, path *string) error {
	row, ok := f.rows[requestID]
	if !ok {
		return fmt.Errorf("request %d not found", requestID)
	}

	row.ScreenshotFileID = &fileID
	row.ScreenshotPath = path
	return nil
}

func (f *fakeRequests) SetStatus(requestID int64, status string, adminNote *string) error {
	row, ok := f.rows[requestID]
	if !ok {
		return fmt.Errorf("request %d not found", requestID)
	}

	now := time.Now()
	row.Status = status

	switch status {
	case db.StatusSubmitted:
		row.SubmittedAt = &now
	case db.StatusApproved, db.StatusRejected:
		row.DecidedAt = &now
	}

	if adminNote != nil {
		row.AdminNote = adminNote
	}

	return nil
}

func (f *fakeRequests) Decide(requestID int64, status string, adminNote *string) (bool, error) {
	row, ok := f.rows[requestID]
	if !ok {
		return false, fmt.Errorf("request %d not found", requestID)
	}

	if row.Status != db.StatusSubmitted && row.Status != status {
		return false, nil
	}

	now := time.Now()
	row.Status = status
	row.DecidedAt = &now

	if adminNote != nil {
		row.AdminNote = adminNote
	}

	return true, nil
}

func (f *fakeRequests) MarkInfoRequested(requestID int64, note string) error {
	row, ok := f.rows[requestID]
	if !ok {
		return fmt.Errorf("request %d not found", requestID)
	}

	now := time.Now()
	row.InfoRequestedAt = &now
	row.AdminNote = &note
	return nil
}

func (f *fakeRequests) MarkReferralCredited(requestID int64) error {
	row, ok := f.rows[requestID]
	if !ok {
		return fmt.Errorf("request %d not found", requestID)
	}

	row.ReferralCredited = true
	return nil
}

func (f *fakeRequests) HasApproved(userID int64, campaign string) (bool, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.Campaign == campaign && row.Status == db.StatusApproved {
			return true, nil
		}
	}

	return false, nil
}

// fakeInvites backs both the bot's code lookups and the referral ledger.
type fakeInvites struct {
	codes  map[int64]string
	counts map[int64]int
}

func newFakeInvites() *fakeInvites {
	return &fakeInvites{codes: make(map[int64]string), counts: make(map[int64]int)}
}

func (f *fakeInvites) EnsureCode(userID int64) (string, error) {
	if code, ok := f.codes[userID]; ok {
		return code, nil
	}

	code := fmt.Sprintf("VIP-TEST%d", userID)
	f.codes[userID] = code
	return code, nil
}

func (f *fakeInvites) GetByUserID(userID int64) (*db.Invite, error) {
	code, ok := f.codes[userID]
	if !ok {
		return nil, fmt.Errorf("no invite for user %d", userID)
	}

	return &db.Invite{UserID: userID, Code: code, ReferralsCount: f.counts[userID]}, nil
}

func (f *fakeInvites) GetByCode(code string) (*db.Invite, error) {
	for userID, c := range f.codes {
		if c == code {
			return &db.Invite{UserID: userID, Code: c, ReferralsCount: f.counts[userID]}, nil
		}
	}

	return nil, nil
}

func (f *fakeInvites) Increment(userID int64) (int, error) {
	f.counts[userID]++
	return f.counts[userID], nil
}

func (f *fakeInvites) RedeemUnit(userID int64) (bool, int, error) {
	if f.counts[userID] < referral.UnitSize {
		return false, f.counts[userID], nil
	}

	f.counts[userID] -= referral.UnitSize
	return true, f.counts[userID], nil
}

type fakeClaims struct {
	prizes []string
}

func (f *fakeClaims) Create(userID int64, prize string, note *string) error {
	f.prizes = append(f.prizes, prize)
	return nil
}

type fakeArchiver struct {
	saved []string
	err   error
}

func (f *fakeArchiver) SaveFile(fileID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	f.saved = append(f.saved, fileID)
	return "/tmp/doc_files/" + fileID + ".jpg", nil
}

type harness struct {
	bot      *BotService
	tg       *fakeTelegram
	users    *fakeUsers
	requests *fakeRequests
	invites  *fakeInvites
	claims   *fakeClaims
	archiver *fakeArchiver
	sessions session.Store
	cfg      *config.Config
}

func newHarness() *harness {
	cfg := &config.Config{
		AdminChatIDs:     []int64{adminChatID},
		PublicChannelURL: publicURL,
	}

	tg := newFakeTelegram()
	users := newFakeUsers()
	requests := newFakeRequests()
	invites := newFakeInvites()
	claims := &fakeClaims{}
	archiver := &fakeArchiver{}
	sessions := session.NewMemoryStore()
	ledger := referral.NewLedger(invites, requests, claims, zap.NewNop())

	return &harness{
		bot:      New(tg, cfg, users, requests, invites, ledger, sessions, archiver, zap.NewNop()),
		tg:       tg,
		users:    users,
		requests: requests,
		invites:  invites,
		claims:   claims,
		archiver: archiver,
		sessions: sessions,
		cfg:      cfg,
	}
}

func tgUser(chatID int64) *tgbotapi.User {
	return &tgbotapi.User{ID: chatID, UserName: fmt.Sprintf("user%d", chatID)}
}

func textMessage(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: tgUser(chatID),
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}

func commandMessage(chatID int64, command string) tgbotapi.Update {
	text := "/" + command
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     tgUser(chatID),
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func photoMessage(chatID int64, fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:  tgUser(chatID),
		Chat:  &tgbotapi.Chat{ID: chatID},
		Photo: []tgbotapi.PhotoSize{{FileID: "thumb-" + fileID}, {FileID: fileID}},
	}}
}

func documentMessage(chatID int64, fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     tgUser(chatID),
		Chat:     &tgbotapi.Chat{ID: chatID},
		Document: &tgbotapi.Document{FileID: fileID},
	}}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-" + data,
		From: tgUser(chatID),
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 77,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
	}}
}

// seedUser registers the chat and returns the internal user id.
func (h *harness) seedUser(t *testing.T, chatID int64) int64 {
	t.Helper()

	userID, err := h.users.Upsert(chatID, nil, nil, nil)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := h.invites.EnsureCode(userID); err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	return userID
}

// seedSubmitted creates a submitted vip_access request for the chat and
// returns its id.
func (h *harness) seedSubmitted(t *testing.T, chatID int64) int64 {
	t.Helper()

	userID := h.seedUser(t, chatID)

	requestID, err := h.requests.CreateDraft(userID, flow.CampaignVIPAccess)
	if err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	name := "John Smith"
	h.requests.rows[requestID].FullName = &name

	if err := h.requests.SetStatus(requestID, db.StatusSubmitted, nil); err != nil {
		t.Fatalf("seed submit: %v", err)
	}

	return requestID
}

// seedApproved creates an approved vip_access request for the chat and
// returns the internal user id.
func (h *harness) seedApproved(t *testing.T, chatID int64) int64 {
	t.Helper()

	requestID := h.seedSubmitted(t, chatID)
	if err := h.requests.SetStatus(requestID, db.StatusApproved, nil); err != nil {
		t.Fatalf("seed approve: %v", err)
	}

	return h.requests.rows[requestID].UserID
}

func wantContains(t *testing.T, text, needle string) {
	t.Helper()

	if !strings.Contains(text, needle) {
		t.Errorf("message %q does not contain %q", text, needle)
	}
}
