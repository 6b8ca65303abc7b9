package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/sellerdesk/onboard/internal/model"
	"github.com/sellerdesk/onboard/internal/sellerapi"
	"github.com/sellerdesk/onboard/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fakeGateway records calls and returns canned responses.
type fakeGateway struct {
	profileCalls int
	initCalls    int
	verifyCalls  int

	lastVerifyReference string
	lastVerifySellerID  string

	profileErr error
	initErr    error
	verifyErr  error

	sellerID string
}

func (g *fakeGateway) CreateSellerProfile(ctx context.Context, form model.FormState, files map[model.DocumentSlot]*model.UploadedFile) (*sellerapi.ProfileResponse, error) {
	g.profileCalls++
	if g.profileErr != nil {
		return nil, g.profileErr
	}
	return &sellerapi.ProfileResponse{SellerID: g.sellerID}, nil
}

func (g *fakeGateway) InitializeProfessionalPayment(ctx context.Context, sellerID string) (*sellerapi.PaymentInit, error) {
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &sellerapi.PaymentInit{Success: true, CheckoutURL: "https://checkout.example.com/" + sellerID}, nil
}

func (g *fakeGateway) VerifyProfessionalPayment(ctx context.Context, reference, sellerID string) (*sellerapi.PaymentVerification, error) {
	g.verifyCalls++
	g.lastVerifyReference = reference
	g.lastVerifySellerID = sellerID
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &sellerapi.PaymentVerification{Success: true, Amount: decimal.RequireFromString("49.99")}, nil
}

func completeIntake(t *testing.T) *Intake {
	t.Helper()
	in := NewIntake()
	for _, slot := range model.DocumentSlots() {
		_, err := in.Accept(slot, string(slot)+".png", "image/png", []byte("x"))
		assert.NoError(t, err)
	}
	return in
}

func newTestOrchestrator(g Gateway) (*Orchestrator, *storage.Memory) {
	mem := storage.NewMemory()
	durable := storage.NewPrefixed(mem, "local:")
	session := storage.NewPrefixed(mem, "session:test:")
	return NewOrchestrator(g, durable, session, nil), mem
}

func TestOrchestratorSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("missing documents fail before any network call", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-1"}
		o, _ := newTestOrchestrator(g)

		err := o.Submit(ctx, model.NewFormState(), NewIntake())

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 3)
		assert.Equal(t, 0, g.profileCalls)
		assert.Equal(t, StateIdle, o.State())
	})

	t.Run("free tier ends awaiting verification", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-1"}
		o, _ := newTestOrchestrator(g)

		form := model.NewFormState()
		form.SubscriptionType = model.TierFree

		err := o.Submit(ctx, form, completeIntake(t))
		assert.NoError(t, err)
		assert.Equal(t, StateAwaitingVerification, o.State())
		assert.Equal(t, "S-1", o.SellerID())
		assert.Equal(t, 1, g.profileCalls)
		assert.Equal(t, 0, g.initCalls, "free tier must not initialize payment")
	})

	t.Run("professional tier ends payment pending with checkout URL", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-2"}
		o, mem := newTestOrchestrator(g)

		form := model.NewFormState()
		form.SubscriptionType = model.TierProfessional

		err := o.Submit(ctx, form, completeIntake(t))
		assert.NoError(t, err)
		assert.Equal(t, StatePaymentPending, o.State())
		assert.Equal(t, "https://checkout.example.com/S-2", o.CheckoutURL())

		// Seller id persisted to both scopes for post-redirect recovery.
		for _, key := range []string{"local:pendingSellerId", "session:test:pendingSellerId"} {
			v, ok, err := mem.Get(ctx, key)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "S-2", v)
		}
	})

	t.Run("profile creation failure resets to idle", func(t *testing.T) {
		g := &fakeGateway{profileErr: &sellerapi.Error{StatusCode: 409, Message: "phone number already registered"}}
		o, _ := newTestOrchestrator(g)

		err := o.Submit(ctx, model.NewFormState(), completeIntake(t))

		var rce *RemoteCallError
		assert.ErrorAs(t, err, &rce)
		assert.Equal(t, "phone number already registered", rce.Message)
		assert.Equal(t, StateIdle, o.State(), "submission must be retryable")
	})

	t.Run("payment init failure keeps profile created", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-3", initErr: errors.New("connection refused")}
		o, _ := newTestOrchestrator(g)

		form := model.NewFormState()
		form.SubscriptionType = model.TierProfessional

		err := o.Submit(ctx, form, completeIntake(t))

		var rce *RemoteCallError
		assert.ErrorAs(t, err, &rce)
		assert.Equal(t, "something went wrong, please try again", rce.Message)
		assert.Equal(t, StateProfileCreated, o.State())
		assert.Equal(t, "S-3", o.SellerID())
	})

	t.Run("second submit rejected", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-4"}
		o, _ := newTestOrchestrator(g)

		form := model.NewFormState()
		assert.NoError(t, o.Submit(ctx, form, completeIntake(t)))
		assert.ErrorIs(t, o.Submit(ctx, form, completeIntake(t)), ErrNotSubmittable)
	})
}

func TestParseSellerIDFromReference(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		want      string
	}{
		{"well formed", "prof_payment_XYZ123_1699999999_ab12cd", "XYZ123"},
		{"too few parts", "prof_payment_XYZ123", ""},
		{"wrong prefix", "std_payment_XYZ123_1699999999_ab12cd", ""},
		{"wrong second part", "prof_refund_XYZ123_1699999999_ab12cd", ""},
		{"empty", "", ""},
		{"extra parts keep third", "prof_payment_S9_1_2_3_4", "S9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSellerIDFromReference(tt.reference))
		})
	}
}

func TestHandlePaymentCallback(t *testing.T) {
	ctx := context.Background()

	submitProfessional := func(t *testing.T, g *fakeGateway) (*Orchestrator, *storage.Memory) {
		t.Helper()
		o, mem := newTestOrchestrator(g)
		form := model.NewFormState()
		form.SubscriptionType = model.TierProfessional
		assert.NoError(t, o.Submit(ctx, form, completeIntake(t)))
		return o, mem
	}

	t.Run("successful verification confirms and clears stored id", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-10"}
		o, mem := submitProfessional(t, g)

		err := o.HandlePaymentCallback(ctx, Callback{Reference: "prof_payment_S-10_1_x", Status: "success"})
		assert.NoError(t, err)
		assert.Equal(t, StatePaymentConfirmed, o.State())
		assert.Equal(t, "S-10", g.lastVerifySellerID)

		_, ok, err := mem.Get(ctx, "local:pendingSellerId")
		assert.NoError(t, err)
		assert.False(t, ok, "pending id must be cleared after confirmation")
	})

	t.Run("explicit sellerId parameter wins over stored state", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-11"}
		o, _ := submitProfessional(t, g)

		err := o.HandlePaymentCallback(ctx, Callback{Reference: "ref", SellerID: "S-EXPLICIT"})
		assert.NoError(t, err)
		assert.Equal(t, "S-EXPLICIT", g.lastVerifySellerID)
	})

	t.Run("stored state wins over reference parsing", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-12"}
		o, _ := submitProfessional(t, g)

		err := o.HandlePaymentCallback(ctx, Callback{Reference: "prof_payment_OTHER_1_x"})
		assert.NoError(t, err)
		assert.Equal(t, "S-12", g.lastVerifySellerID)
	})

	t.Run("reference parsing is the last resort", func(t *testing.T) {
		g := &fakeGateway{}
		o, _ := newTestOrchestrator(g) // nothing stored, fresh session

		err := o.HandlePaymentCallback(ctx, Callback{TrxRef: "prof_payment_S-13_1699_x"})
		assert.NoError(t, err)
		assert.Equal(t, "S-13", g.lastVerifySellerID)
		assert.Equal(t, "prof_payment_S-13_1699_x", g.lastVerifyReference)
	})

	t.Run("recovery exhaustion is terminal", func(t *testing.T) {
		g := &fakeGateway{}
		o, _ := newTestOrchestrator(g)

		err := o.HandlePaymentCallback(ctx, Callback{Reference: "garbage"})

		var sre *StateRecoveryError
		assert.ErrorAs(t, err, &sre)
		assert.Equal(t, "garbage", sre.Reference)
		assert.Equal(t, StatePaymentFailed, o.State())
		assert.Equal(t, 0, g.verifyCalls)
	})

	t.Run("verification failure records the server message", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-14", verifyErr: &sellerapi.Error{StatusCode: 402, Message: "charge declined"}}
		o, _ := submitProfessional(t, g)

		err := o.HandlePaymentCallback(ctx, Callback{Reference: "ref"})

		var rce *RemoteCallError
		assert.ErrorAs(t, err, &rce)
		assert.Equal(t, StatePaymentFailed, o.State())
		assert.Equal(t, "charge declined", o.Failure())
	})

	t.Run("callback after confirmation is rejected", func(t *testing.T) {
		g := &fakeGateway{sellerID: "S-15"}
		o, _ := submitProfessional(t, g)

		assert.NoError(t, o.HandlePaymentCallback(ctx, Callback{Reference: "ref"}))
		err := o.HandlePaymentCallback(ctx, Callback{Reference: "ref"})
		assert.ErrorIs(t, err, ErrNoCallbackPending)
		assert.Equal(t, 1, g.verifyCalls)
	})
}

func TestSubmissionStateTerminal(t *testing.T) {
	assert.True(t, StateAwaitingVerification.Terminal())
	assert.True(t, StatePaymentConfirmed.Terminal())
	assert.True(t, StatePaymentFailed.Terminal())
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StatePaymentPending.Terminal())
}
