package flow

import "strings"

const (
	CampaignVIPAccess       = "vip_access"
	CampaignDepositCashback = "deposit_cashback"
)

type Operator struct {
	Key   string
	Label string
	Link  string
}

// Operators lists the bookmakers a VIP applicant registers with. The links
// appear in the intro message; the labels back the operator choice step.
var Operators = []Operator{
	{Key: "EUROBET", Label: "Eurobet", Link: "https://record.betpartners.it/_Klv9utJ3bqpKqXDxdQZqW2Nd7ZgqdRLk/1/"},
	{Key: "BWIN", Label: "bwin", Link: "https://www.bwin.it/it/engage/lan/s/p/sports/accaboost?wm=5596580"},
	{Key: "BETSSON", Label: "Betsson", Link: "https://record.betsson.it/_dYA2EWAR45qw8pi7H3I6R2Nd7ZgqdRLk/1/"},
	{Key: "STARCASINO", Label: "Starcasino", Link: "https://record.starcasino.it/_dYA2EWAR45rPSO5RLscKcGNd7ZgqdRLk/1/"},
}

func OperatorLabel(key string) string {
	for _, op := range Operators {
		if op.Key == key {
			return op.Label
		}
	}

	return key
}

func operatorChoices() []Choice {
	choices := make([]Choice, 0, len(Operators))
	for _, op := range Operators {
		choices = append(choices, Choice{Key: op.Key, Label: op.Label})
	}

	return choices
}

func inviteCodeStep() Step {
	return Step{
		Field:     "invite_code",
		Prompt:    "Do you have an invite code? Type it now, or press Skip.",
		Kind:      KindText,
		Skippable: true,
		Validate:  MinLen(4, "That code is too short. Type it again, or press Skip."),
		// Codes are issued uppercase; store what the owner was given.
		Transform: strings.ToUpper,
	}
}

func screenshotStep() Step {
	return Step{
		Field:  "screenshot",
		Prompt: "Now send the deposit screenshot (photo or file).",
		Kind:   KindAttachment,
	}
}

// VIPAccess is the primary campaign: approval grants the VIP channel link
// and unlocks the reward-claim flow.
func VIPAccess() *Campaign {
	return &Campaign{
		Name:  CampaignVIPAccess,
		Title: "VIP access request",
		Steps: []Step{
			{
				Field:    "full_name",
				Prompt:   "Great. Send your first and last name:",
				Kind:     KindText,
				Validate: MinLen(3, "That name is not valid. Send your first and last name again:"),
			},
			{
				Field:   "operator",
				Prompt:  "Select the operator you registered with:",
				Kind:    KindChoice,
				Choices: operatorChoices(),
			},
			{
				Field:    "operator_account_id",
				Prompt:   "Now send your operator account ID (the one on your bookmaker account):",
				Kind:     KindText,
				Validate: MinLen(2, "That value is not valid. Send your operator account ID again:"),
			},
			inviteCodeStep(),
			screenshotStep(),
		},
	}
}

// DepositCashback is a campaign variant with a different field set; the
// same engine interprets it.
func DepositCashback() *Campaign {
	return &Campaign{
		Name:  CampaignDepositCashback,
		Title: "Deposit cashback request",
		Steps: []Step{
			{
				Field:    "full_name",
				Prompt:   "Great. Send your first and last name:",
				Kind:     KindText,
				Validate: MinLen(3, "That name is not valid. Send your first and last name again:"),
			},
			{
				Field:    "email",
				Prompt:   "Send the email address of your account:",
				Kind:     KindText,
				Validate: Email("That does not look like an email address. Send it again:"),
			},
			{
				Field:    "deposit_amount",
				Prompt:   "Send the deposit amount in EUR (for example 25.50):",
				Kind:     KindText,
				Validate: PositiveAmount("That is not a valid amount. Send a positive number:"),
			},
			inviteCodeStep(),
			screenshotStep(),
		},
	}
}

// Registry returns the campaigns the bot serves, keyed by name.
func Registry() map[string]*Campaign {
	return map[string]*Campaign{
		CampaignVIPAccess:       VIPAccess(),
		CampaignDepositCashback: DepositCashback(),
	}
}
