package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vip-access-bot/internal/db"
	"vip-access-bot/internal/flow"
	"vip-access-bot/internal/referral"
)

func introMessage() string {
	var sb strings.Builder

	sb.WriteString("VIP access + rewards\n\n")
	sb.WriteString("To take part:\n")
	sb.WriteString("1. Register on ONE of these links:\n")

	for _, op := range flow.Operators {
		fmt.Fprintf(&sb, "- %s: %s\n", op.Label, op.Link)
	}

	sb.WriteString("\n2. Make a deposit (following the promo rules of the link)\n")
	sb.WriteString("3. Send the requested details + the deposit screenshot here\n\n")
	fmt.Fprintf(&sb, "Available prizes (gift cards): %s.\n\n", strings.Join(referral.Prizes, ", "))
	sb.WriteString("Review takes up to 72 hours. If your request is approved you will receive the link to join the VIP channel.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Valid only if you use one of the links above\n")
	sb.WriteString("- One participation per person\n")
	sb.WriteString("- Fake or edited screenshots mean immediate exclusion")

	return sb.String()
}

func inviteExplanation(code string) string {
	return fmt.Sprintf(
		"Your invite code: %s\n\n"+
			"Bring people into the channel with your code and earn rewards.\n\n"+
			"Prize: %d EUR in gift cards (your pick of %s).\n\n"+
			"Every %d people registered with your code earn you 1 prize: 3 people mean 0 prizes, 4-7 mean 1, 8-11 mean 2, and so on.\n\n"+
			"Once you reach at least %d, use the Invite rewards button to claim the gift card you want.",
		code, referral.PrizeValue, strings.Join(referral.Prizes, ", "),
		referral.UnitSize, referral.UnitSize)
}

func orDash(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "-"
	}

	return strings.ReplaceAll(*value, "\x00", "")
}

func userHandle(user *tgbotapi.User) string {
	if user == nil {
		return "n/a"
	}

	if user.UserName != "" {
		return "@" + user.UserName
	}

	return "n/a"
}

// summaryFields renders the collected fields present on the request, in
// questionnaire order.
func summaryFields(req *db.Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Name: %s\n", orDash(req.FullName))

	if req.Email != nil {
		fmt.Fprintf(&sb, "Email: %s\n", orDash(req.Email))
	}

	if req.Operator != nil {
		fmt.Fprintf(&sb, "Operator: %s\n", orDash(req.Operator))
	}

	if req.OperatorAccountID != nil {
		fmt.Fprintf(&sb, "Operator account ID: %s\n", orDash(req.OperatorAccountID))
	}

	if req.DepositAmount != nil {
		fmt.Fprintf(&sb, "Deposit amount: %s EUR\n", orDash(req.DepositAmount))
	}

	fmt.Fprintf(&sb, "Invite code: %s\n", orDash(req.InviteCode))

	if req.ScreenshotFileID != nil {
		sb.WriteString("Screenshot: attached")
	} else {
		sb.WriteString("Screenshot: missing")
	}

	return sb.String()
}

func confirmSummary(req *db.Request) string {
	return "Request summary\n" + summaryFields(req) +
		"\n\nIf everything is correct, press Submit."
}

func adminRequestSummary(req *db.Request, from *tgbotapi.User) string {
	var fromID int64
	if from != nil {
		fromID = from.ID
	}

	return fmt.Sprintf("New request: %s\nID: %d\nUser: %s (%d)\n%s",
		req.Campaign, req.ID, userHandle(from), fromID, summaryFields(req))
}

func approvalMessage(link string, singleUse bool, inviteCode string) string {
	validity := "Note: this is a static link (not single-use).\n\n"
	if singleUse {
		validity = "Valid for 24 hours and a single join.\n\n"
	}

	return "Your request has been approved!\n\n" +
		"Link to join the VIP channel:\n" + link + "\n\n" +
		validity +
		inviteExplanation(inviteCode)
}

const (
	msgTemporaryError = "Temporary error. Please try again shortly."
	msgSessionExpired = "Your session has expired. Start again from the menu with /start."
	msgNotAuthorized  = "Not authorized."
	msgRewardLocked   = "This feature unlocks after your VIP access request is approved."
)
