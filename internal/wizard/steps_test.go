package wizard

import (
	"testing"

	"github.com/sellerdesk/onboard/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestTotalSteps(t *testing.T) {
	assert.Equal(t, 6, TotalSteps(model.TierFree))
	assert.Equal(t, 7, TotalSteps(model.TierProfessional))
}

func TestNextStep(t *testing.T) {
	tests := []struct {
		name    string
		current int
		tier    model.Tier
		want    int
	}{
		{"professional advances one step", StepBillingInfo, model.TierProfessional, StepSubscription},
		{"free skips subscription forward", StepBillingInfo, model.TierFree, StepDocuments},
		{"free advances normally elsewhere", StepStoreSetup, model.TierFree, StepBillingInfo},
		{"clamped at last step", StepFinish, model.TierProfessional, StepFinish},
		{"free clamped at last step", StepFinish, model.TierFree, StepFinish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStep(tt.current, tt.tier))
		})
	}
}

func TestPrevStep(t *testing.T) {
	tests := []struct {
		name    string
		current int
		tier    model.Tier
		want    int
	}{
		{"professional goes back one step", StepSubscription, model.TierProfessional, StepBillingInfo},
		{"free skips subscription backward", StepDocuments, model.TierFree, StepBillingInfo},
		{"professional does not skip", StepDocuments, model.TierProfessional, StepSubscription},
		{"clamped at first step", StepPersonalInfo, model.TierFree, StepPersonalInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrevStep(tt.current, tt.tier))
		})
	}
}

// Going forward then backward from any visible step must return to the same
// step for both tiers.
func TestStepRoundTrip(t *testing.T) {
	for _, tier := range []model.Tier{model.TierFree, model.TierProfessional} {
		for step := firstStep; step < lastStep; step++ {
			if tier == model.TierFree && step == StepSubscription {
				continue // not visible for free tier
			}
			next := NextStep(step, tier)
			assert.Equal(t, step, PrevStep(next, tier), "tier %s step %d", tier, step)
		}
	}
}

func TestViewFor(t *testing.T) {
	tests := []struct {
		name           string
		step           int
		tier           model.Tier
		accountCreated bool
		want           StepView
	}{
		{"step 1", StepPersonalInfo, model.TierFree, false, ViewPersonalInfo},
		{"step 5 professional", StepSubscription, model.TierProfessional, false, ViewSubscription},
		{"final step free is review", StepFinish, model.TierFree, false, ViewReview},
		{"final step free with account is still review", StepFinish, model.TierFree, true, ViewReview},
		{"final step professional without account is review", StepFinish, model.TierProfessional, false, ViewReview},
		{"final step professional with account is payment", StepFinish, model.TierProfessional, true, ViewPayment},
		{"out of range", 42, model.TierFree, false, ViewUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewFor(tt.step, tt.tier, tt.accountCreated))
		})
	}
}
