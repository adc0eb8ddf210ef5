package flow

import "testing"

func TestRegistryServesBothCampaigns(t *testing.T) {
	registry := Registry()

	for _, name := range []string{CampaignVIPAccess, CampaignDepositCashback} {
		campaign, ok := registry[name]
		if !ok {
			t.Fatalf("campaign %q missing from registry", name)
		}
		if campaign.Name != name {
			t.Errorf("campaign %q has name %q", name, campaign.Name)
		}
	}
}

func TestCampaignShape(t *testing.T) {
	for _, campaign := range Registry() {
		if len(campaign.Steps) < 2 {
			t.Fatalf("%s: too few steps", campaign.Name)
		}

		// Every campaign ends with the mandatory attachment step; the
		// confirmation stage follows outside the step list.
		last := campaign.Steps[len(campaign.Steps)-1]
		if last.Kind != KindAttachment {
			t.Errorf("%s: last step kind = %v, want attachment", campaign.Name, last.Kind)
		}

		for _, step := range campaign.Steps {
			if step.Prompt == "" {
				t.Errorf("%s: step %q has no prompt", campaign.Name, step.Field)
			}
			if step.Kind == KindChoice && len(step.Choices) == 0 {
				t.Errorf("%s: choice step %q has no choices", campaign.Name, step.Field)
			}
		}
	}
}

func TestInviteCodeStepUppercases(t *testing.T) {
	for _, campaign := range Registry() {
		var step *Step
		for i := range campaign.Steps {
			if campaign.Steps[i].Field == "invite_code" {
				step = &campaign.Steps[i]
				break
			}
		}

		if step == nil {
			t.Fatalf("%s: no invite_code step", campaign.Name)
		}
		if step.Transform == nil {
			t.Fatalf("%s: invite_code step has no transform", campaign.Name)
		}
		if got := step.Transform("vip-abcd2345"); got != "VIP-ABCD2345" {
			t.Errorf("%s: transform produced %q, want VIP-ABCD2345", campaign.Name, got)
		}
	}
}

func TestStepOutOfRangeIsConfirmStage(t *testing.T) {
	campaign := VIPAccess()

	if campaign.Step(len(campaign.Steps)) != nil {
		t.Error("step past the end should be nil")
	}
	if campaign.Step(-1) != nil {
		t.Error("negative index should be nil")
	}
	if campaign.Step(0) == nil {
		t.Error("first step should exist")
	}
}

func TestFindChoice(t *testing.T) {
	campaign := VIPAccess()

	var choiceStep *Step
	for i := range campaign.Steps {
		if campaign.Steps[i].Kind == KindChoice {
			choiceStep = &campaign.Steps[i]
			break
		}
	}

	if choiceStep == nil {
		t.Fatal("vip campaign has no choice step")
	}

	choice, ok := choiceStep.FindChoice("EUROBET")
	if !ok {
		t.Fatal("EUROBET choice not found")
	}
	if choice.Label != "Eurobet" {
		t.Errorf("choice label = %q, want Eurobet", choice.Label)
	}

	if _, ok := choiceStep.FindChoice("NOPE"); ok {
		t.Error("unknown key should not resolve")
	}
}
