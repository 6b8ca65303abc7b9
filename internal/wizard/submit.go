package wizard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sellerdesk/onboard/internal/config"
	"github.com/sellerdesk/onboard/internal/events"
	"github.com/sellerdesk/onboard/internal/model"
	"github.com/sellerdesk/onboard/internal/sellerapi"
	"github.com/sellerdesk/onboard/internal/storage"
)

// SubmissionState is the orchestrator's position in the final submission
// flow.
type SubmissionState string

const (
	StateIdle                 SubmissionState = "idle"
	StateCreatingProfile      SubmissionState = "creating_profile"
	StateProfileCreated       SubmissionState = "profile_created"
	StateAwaitingVerification SubmissionState = "awaiting_verification"
	StatePaymentPending       SubmissionState = "payment_pending"
	StatePaymentVerifying     SubmissionState = "payment_verifying"
	StatePaymentConfirmed     SubmissionState = "payment_confirmed"
	StatePaymentFailed        SubmissionState = "payment_failed"
)

// Terminal reports whether no further transitions are expected.
func (s SubmissionState) Terminal() bool {
	return s == StateAwaitingVerification || s == StatePaymentConfirmed || s == StatePaymentFailed
}

// Gateway is the subset of the marketplace backend the orchestrator drives.
type Gateway interface {
	CreateSellerProfile(ctx context.Context, form model.FormState, files map[model.DocumentSlot]*model.UploadedFile) (*sellerapi.ProfileResponse, error)
	InitializeProfessionalPayment(ctx context.Context, sellerID string) (*sellerapi.PaymentInit, error)
	VerifyProfessionalPayment(ctx context.Context, reference, sellerID string) (*sellerapi.PaymentVerification, error)
}

// Orchestrator drives the ordered remote calls of the final submission:
// profile creation, then for professional sellers payment initialization, the
// external checkout redirect, and post-redirect verification. The seller id
// obtained from profile creation is persisted to two key-value scopes so it
// survives the redirect, which discards all in-memory state.
type Orchestrator struct {
	gateway Gateway
	durable storage.KeyValue // shared scope, survives the session
	session storage.KeyValue // session scope
	events  events.Recorder  // optional

	state       SubmissionState
	sellerID    string
	checkoutURL string
	failure     string
}

// NewOrchestrator creates an idle orchestrator. recorder may be nil.
func NewOrchestrator(gateway Gateway, durable, session storage.KeyValue, recorder events.Recorder) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		durable: durable,
		session: session,
		events:  recorder,
		state:   StateIdle,
	}
}

// State returns the current submission state.
func (o *Orchestrator) State() SubmissionState { return o.state }

// SellerID returns the seller account reference once a profile was created.
func (o *Orchestrator) SellerID() string { return o.sellerID }

// CheckoutURL returns the external checkout handle while payment is pending.
func (o *Orchestrator) CheckoutURL() string { return o.checkoutURL }

// Failure returns the terminal failure message, if any.
func (o *Orchestrator) Failure() string { return o.failure }

// Restore rehydrates the orchestrator from persisted session state.
func (o *Orchestrator) Restore(state SubmissionState, sellerID string) {
	if state != "" {
		o.state = state
	}
	o.sellerID = sellerID
}

// Submit runs the submission sequence. It fails with a ValidationError before
// any network call when a document slot is empty. For free-tier sellers the
// flow ends in AwaitingVerification; professional sellers end in
// PaymentPending with a checkout URL the caller must redirect to.
func (o *Orchestrator) Submit(ctx context.Context, form model.FormState, intake *Intake) error {
	if o.state != StateIdle {
		return ErrNotSubmittable
	}

	if missing := intake.MissingSlots(); len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	o.state = StateCreatingProfile
	profile, err := o.gateway.CreateSellerProfile(ctx, form, intake.Files())
	if err != nil {
		o.state = StateIdle
		return remoteErr("create seller profile", err)
	}

	o.sellerID = profile.SellerID
	o.state = StateProfileCreated
	o.persistSellerID(ctx)
	o.record(ctx, events.TypeProfileCreated, events.ProfileCreated{
		SellerID:  o.sellerID,
		Tier:      string(form.SubscriptionType),
		StoreName: form.StoreName,
		CreatedAt: time.Now().UTC(),
	})

	if form.SubscriptionType == model.TierFree {
		o.state = StateAwaitingVerification
		return nil
	}

	init, err := o.gateway.InitializeProfessionalPayment(ctx, o.sellerID)
	if err != nil {
		// Profile exists; the user can re-trigger payment from the final step.
		return remoteErr("initialize professional payment", err)
	}

	o.checkoutURL = init.CheckoutURL
	o.state = StatePaymentPending
	return nil
}

// Callback carries the query parameters of the checkout return URL.
type Callback struct {
	Reference string // "reference" param
	TrxRef    string // "trxref" param (provider alias)
	Status    string
	SellerID  string // optional explicit "sellerId" param
}

// reference returns whichever reference parameter was supplied.
func (cb Callback) reference() string {
	if cb.Reference != "" {
		return cb.Reference
	}
	return cb.TrxRef
}

// HandlePaymentCallback processes the return from the external checkout. The
// seller id is recovered with a three-tier fallback: explicit query
// parameter, then stored client state, then parsed out of the payment
// reference itself. Exhausting all three is terminal.
func (o *Orchestrator) HandlePaymentCallback(ctx context.Context, cb Callback) error {
	if o.state == StatePaymentConfirmed {
		return ErrNoCallbackPending
	}

	reference := cb.reference()
	sellerID := o.recoverSellerID(ctx, cb)
	if sellerID == "" {
		o.state = StatePaymentFailed
		err := &StateRecoveryError{Reference: reference}
		o.failure = err.Error()
		return err
	}
	o.sellerID = sellerID

	o.state = StatePaymentVerifying
	verification, err := o.gateway.VerifyProfessionalPayment(ctx, reference, sellerID)
	if err != nil {
		o.state = StatePaymentFailed
		rce := remoteErr("verify professional payment", err)
		o.failure = rce.Message
		o.record(ctx, events.TypePaymentFailed, events.PaymentFailed{
			SellerID:  sellerID,
			Reference: reference,
			Reason:    o.failure,
			FailedAt:  time.Now().UTC(),
		})
		return rce
	}

	o.state = StatePaymentConfirmed
	o.failure = ""
	o.clearSellerID(ctx)
	o.record(ctx, events.TypePaymentConfirmed, events.PaymentConfirmed{
		SellerID:    sellerID,
		Reference:   reference,
		Amount:      verification.Amount,
		ConfirmedAt: time.Now().UTC(),
	})
	return nil
}

// recoverSellerID applies the recovery precedence: query parameter first,
// then the two storage scopes, then the reference string.
func (o *Orchestrator) recoverSellerID(ctx context.Context, cb Callback) string {
	if cb.SellerID != "" {
		return cb.SellerID
	}
	for _, kv := range []storage.KeyValue{o.durable, o.session} {
		if v, ok, err := kv.Get(ctx, config.PendingSellerIDKey); err == nil && ok && v != "" {
			return v
		}
	}
	return ParseSellerIDFromReference(cb.reference())
}

// ParseSellerIDFromReference extracts the seller id from a payment reference
// of the form "prof_payment_{sellerId}_{timestamp}_{random}". Returns an
// empty string when the reference does not match.
func ParseSellerIDFromReference(reference string) string {
	parts := strings.Split(reference, "_")
	if len(parts) < 5 || parts[0] != "prof" || parts[1] != "payment" {
		return ""
	}
	return parts[2]
}

// persistSellerID writes the pending seller id to both storage scopes.
// Storage failures are logged, not fatal: the id is still held in memory and
// recoverable from the payment reference.
func (o *Orchestrator) persistSellerID(ctx context.Context) {
	for _, kv := range []storage.KeyValue{o.durable, o.session} {
		if err := kv.Set(ctx, config.PendingSellerIDKey, o.sellerID); err != nil {
			slog.Warn("failed to persist pending seller id", "seller_id", o.sellerID, "error", err)
		}
	}
}

// clearSellerID removes the pending seller id from both storage scopes.
func (o *Orchestrator) clearSellerID(ctx context.Context) {
	for _, kv := range []storage.KeyValue{o.durable, o.session} {
		if err := kv.Delete(ctx, config.PendingSellerIDKey); err != nil {
			slog.Warn("failed to clear pending seller id", "seller_id", o.sellerID, "error", err)
		}
	}
}

func (o *Orchestrator) record(ctx context.Context, eventType string, payload any) {
	if o.events == nil {
		return
	}
	if err := o.events.Record(ctx, eventType, o.sellerID, payload); err != nil {
		slog.Warn("failed to record onboarding event", "type", eventType, "seller_id", o.sellerID, "error", err)
	}
}

// remoteErr wraps a gateway failure, keeping the server's message verbatim
// when the backend supplied one.
func remoteErr(op string, err error) *RemoteCallError {
	var apiErr *sellerapi.Error
	if errors.As(err, &apiErr) {
		return &RemoteCallError{Op: op, Message: apiErr.Message, Err: err}
	}
	return &RemoteCallError{Op: op, Message: "something went wrong, please try again", Err: err}
}
