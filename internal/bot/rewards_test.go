package bot

import (
	"testing"
)

func TestRewardsLockedBeforeApproval(t *testing.T) {
	h := newHarness()
	h.seedSubmitted(t, userChatID)

	for _, data := range []string{"ref_status", "claim_reward", "prize:Amazon"} {
		h.bot.HandleUpdate(callback(userChatID, data))
	}

	texts := h.tg.textsTo(userChatID)
	if len(texts) != 3 {
		t.Fatalf("replies = %d, want 3", len(texts))
	}
	for _, text := range texts {
		if text != msgRewardLocked {
			t.Errorf("reply = %q, want %q", text, msgRewardLocked)
		}
	}

	if len(h.claims.prizes) != 0 {
		t.Errorf("claims created while locked: %v", h.claims.prizes)
	}
}

func TestRewardStatusShowsCodeAndUnits(t *testing.T) {
	h := newHarness()
	userID := h.seedApproved(t, userChatID)
	h.invites.counts[userID] = 7

	h.bot.HandleUpdate(callback(userChatID, "ref_status"))

	msg, ok := h.tg.lastTo(userChatID)
	if !ok {
		t.Fatal("no status message")
	}
	wantContains(t, msg.text, h.invites.codes[userID])
	wantContains(t, msg.text, "People brought in: 7")
	wantContains(t, msg.text, "Prizes available now: 1")
	wantContains(t, msg.text, "Claim a prize")
	if !msg.hasMarkup {
		t.Error("status should carry a keyboard")
	}
}

func TestRewardStatusWithoutUnits(t *testing.T) {
	h := newHarness()
	userID := h.seedApproved(t, userChatID)
	h.invites.counts[userID] = 3

	h.bot.HandleUpdate(callback(userChatID, "ref_status"))

	msg, _ := h.tg.lastTo(userChatID)
	wantContains(t, msg.text, "Prizes available now: 0")
	wantContains(t, msg.text, "don't have enough people yet")
}

// Claiming with counter 7 consumes one unit of 4: the counter drops to
// 3, a pending claim is recorded, and the admins are notified.
func TestPrizeRedemptionConsumesOneUnit(t *testing.T) {
	h := newHarness()
	userID := h.seedApproved(t, userChatID)
	h.invites.counts[userID] = 7

	h.bot.HandleUpdate(callback(userChatID, "claim_reward"))

	msg, _ := h.tg.lastTo(userChatID)
	wantContains(t, msg.text, "Choose the gift card")

	h.tg.reset()
	h.bot.HandleUpdate(callback(userChatID, "prize:Amazon"))

	if h.invites.counts[userID] != 3 {
		t.Fatalf("counter = %d, want 3", h.invites.counts[userID])
	}
	if len(h.claims.prizes) != 1 || h.claims.prizes[0] != "Amazon" {
		t.Fatalf("claims = %v, want [Amazon]", h.claims.prizes)
	}

	msg, _ = h.tg.lastTo(userChatID)
	wantContains(t, msg.text, "Claim sent!")
	wantContains(t, msg.text, "People brought in now: 3")
	wantContains(t, msg.text, "Prizes available now: 0")

	adminTexts := h.tg.textsTo(adminChatID)
	if len(adminTexts) != 1 {
		t.Fatalf("admin notifications = %d, want 1", len(adminTexts))
	}
	wantContains(t, adminTexts[0], "PRIZE CLAIM")
	wantContains(t, adminTexts[0], "Amazon")
}

func TestPrizeRedemptionRejectedBelowUnit(t *testing.T) {
	h := newHarness()
	userID := h.seedApproved(t, userChatID)
	h.invites.counts[userID] = 3

	h.bot.HandleUpdate(callback(userChatID, "prize:Amazon"))

	if h.invites.counts[userID] != 3 {
		t.Errorf("counter = %d, should be unchanged", h.invites.counts[userID])
	}
	if len(h.claims.prizes) != 0 {
		t.Errorf("claims = %v, want none", h.claims.prizes)
	}

	msg, _ := h.tg.lastTo(userChatID)
	wantContains(t, msg.text, "don't have enough people")
}

func TestClaimWithoutUnitsExplains(t *testing.T) {
	h := newHarness()
	userID := h.seedApproved(t, userChatID)
	h.invites.counts[userID] = 2

	h.bot.HandleUpdate(callback(userChatID, "claim_reward"))

	msg, _ := h.tg.lastTo(userChatID)
	wantContains(t, msg.text, "don't have 4 people yet")
}

func TestUnknownPrizeRejected(t *testing.T) {
	h := newHarness()
	userID := h.seedApproved(t, userChatID)
	h.invites.counts[userID] = 8

	h.bot.HandleUpdate(callback(userChatID, "prize:Ferrari"))

	if h.invites.counts[userID] != 8 {
		t.Errorf("counter = %d, should be unchanged", h.invites.counts[userID])
	}

	msg, _ := h.tg.lastTo(userChatID)
	wantContains(t, msg.text, "Unknown prize")
}
