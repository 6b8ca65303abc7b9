package wizard

import "github.com/sellerdesk/onboard/internal/model"

// Internal step numbers. Numbering is contiguous internally; the visible
// sequence for the free tier skips StepSubscription (4 -> 6 going forward,
// 6 -> 4 going back), so free-tier sellers see six steps and professional
// sellers see all seven.
const (
	StepPersonalInfo    = 1
	StepBusinessDetails = 2
	StepStoreSetup      = 3
	StepBillingInfo     = 4
	StepSubscription    = 5
	StepDocuments       = 6
	StepFinish          = 7

	firstStep = StepPersonalInfo
	lastStep  = StepFinish
)

// TotalSteps returns the number of visible steps for a tier.
func TotalSteps(tier model.Tier) int {
	if tier == model.TierFree {
		return 6
	}
	return 7
}

// NextStep returns the next visible step after current for the given tier.
// The result is clamped to the last step.
func NextStep(current int, tier model.Tier) int {
	next := current + 1
	if tier == model.TierFree && next == StepSubscription {
		next = StepDocuments
	}
	if next > lastStep {
		return lastStep
	}
	return next
}

// PrevStep returns the previous visible step before current for the given
// tier. The result is clamped to the first step.
func PrevStep(current int, tier model.Tier) int {
	prev := current - 1
	if tier == model.TierFree && prev == StepSubscription {
		prev = StepBillingInfo
	}
	if prev < firstStep {
		return firstStep
	}
	return prev
}

// StepView is the view variant a step resolves to. The final step is dynamic:
// it is a payment view only when a professional seller account was created in
// this session, and a review view otherwise.
type StepView string

const (
	ViewPersonalInfo    StepView = "personal-info"
	ViewBusinessDetails StepView = "business-details"
	ViewStoreSetup      StepView = "store-setup"
	ViewBillingInfo     StepView = "billing-info"
	ViewSubscription    StepView = "subscription"
	ViewDocuments       StepView = "documents"
	ViewReview          StepView = "review"
	ViewPayment         StepView = "payment"
	ViewUnknown         StepView = "unknown"
)

// ViewFor resolves (step, tier, accountCreated) to its view variant.
func ViewFor(step int, tier model.Tier, accountCreated bool) StepView {
	switch step {
	case StepPersonalInfo:
		return ViewPersonalInfo
	case StepBusinessDetails:
		return ViewBusinessDetails
	case StepStoreSetup:
		return ViewStoreSetup
	case StepBillingInfo:
		return ViewBillingInfo
	case StepSubscription:
		return ViewSubscription
	case StepDocuments:
		return ViewDocuments
	case StepFinish:
		if tier == model.TierProfessional && accountCreated {
			return ViewPayment
		}
		return ViewReview
	default:
		return ViewUnknown
	}
}
