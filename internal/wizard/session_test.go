package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/sellerdesk/onboard/internal/model"
	"github.com/sellerdesk/onboard/internal/storage"
	"github.com/stretchr/testify/assert"
)

func newTestManager(t *testing.T, g Gateway) *Manager {
	t.Helper()
	m, err := NewManager(g, storage.NewMemory(), nil)
	assert.NoError(t, err)
	return m
}

func TestNewManager(t *testing.T) {
	t.Run("nil gateway returns error", func(t *testing.T) {
		m, err := NewManager(nil, storage.NewMemory(), nil)
		assert.Nil(t, m)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "gateway")
	})

	t.Run("nil client state returns error", func(t *testing.T) {
		m, err := NewManager(&fakeGateway{}, nil, nil)
		assert.Nil(t, m)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "client-state")
	})
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(t, &fakeGateway{})

	sess := m.Create()
	assert.NotEmpty(t, sess.ID())
	assert.Equal(t, StepPersonalInfo, sess.Step())
	assert.Equal(t, model.TierFree, sess.Tier())

	got, ok := m.Get(sess.ID())
	assert.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = m.Get("nope")
	assert.False(t, ok)
}

func TestSessionNext(t *testing.T) {
	m := newTestManager(t, &fakeGateway{})

	t.Run("validation failure blocks and stores errors", func(t *testing.T) {
		sess := m.Create()

		step, errs := sess.Next()
		assert.Equal(t, StepPersonalInfo, step)
		assert.NotEmpty(t, errs)
		assert.Equal(t, errs, sess.Errors())
	})

	t.Run("fixing a field clears its error", func(t *testing.T) {
		sess := m.Create()
		_, errs := sess.Next()
		assert.Contains(t, errs, "firstName")

		assert.NoError(t, sess.HandleInputChange("firstName", "Ada"))
		assert.NotContains(t, sess.Errors(), "firstName")
		assert.Contains(t, sess.Errors(), "lastName")
	})

	t.Run("valid step advances with empty error map", func(t *testing.T) {
		sess := m.Create()
		assert.NoError(t, sess.UpdateFormData(map[string]string{
			"firstName":                       "Ada",
			"lastName":                        "Okafor",
			"phoneNumber":                     "+2348012345678",
			"countryOfCitizenship":            "NG",
			"countryOfBirth":                  "NG",
			"dateOfBirth":                     "1990-04-12",
			"residentialAddress.fullName":     "Ada Okafor",
			"residentialAddress.addressLine1": "12 Marina Road",
			"residentialAddress.city":         "Lagos",
			"residentialAddress.state":        "Lagos",
			"residentialAddress.country":      "NG",
		}))

		step, errs := sess.Next()
		assert.Equal(t, StepBusinessDetails, step)
		assert.Empty(t, errs)
		assert.Empty(t, sess.Errors())
	})
}

func TestSessionBackSkipsSubscriptionForFree(t *testing.T) {
	m := newTestManager(t, &fakeGateway{})
	sess := m.Create()

	// Steps 4 and 6 are adjacent for the free tier in both directions.
	for sess.Step() != StepDocuments {
		prev := sess.Step()
		sess.advanceForTest(t)
		assert.NotEqual(t, prev, sess.Step())
	}
	assert.Equal(t, StepBillingInfo, sess.Back())
	assert.Equal(t, StepDocuments, NextStep(sess.Step(), sess.Tier()))
}

// advanceForTest forces the step forward regardless of validation.
func (s *Session) advanceForTest(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = NextStep(s.currentStep, s.form.State().SubscriptionType)
}

func TestSessionView(t *testing.T) {
	ctx := context.Background()
	g := &fakeGateway{sellerID: "S-20"}
	m := newTestManager(t, g)

	sess := m.Create()
	assert.Equal(t, ViewPersonalInfo, sess.View())

	assert.NoError(t, sess.HandleInputChange("subscriptionType", string(model.TierProfessional)))
	for sess.Step() != StepFinish {
		sess.advanceForTest(t)
	}
	assert.Equal(t, ViewReview, sess.View(), "payment view requires a created account")

	for _, slot := range model.DocumentSlots() {
		_, err := sess.AcceptDocument(slot, string(slot)+".png", "image/png", []byte("x"))
		assert.NoError(t, err)
	}
	assert.NoError(t, sess.Submit(ctx))
	assert.Equal(t, ViewPayment, sess.View())
}

func TestSessionSubmitStoresValidationErrors(t *testing.T) {
	m := newTestManager(t, &fakeGateway{})
	sess := m.Create()

	err := sess.Submit(context.Background())

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrorMap(verr.Fields), sess.Errors())
}

func TestManagerRestore(t *testing.T) {
	m := newTestManager(t, &fakeGateway{})

	t.Run("rebuilds a live session", func(t *testing.T) {
		now := time.Now().UTC()
		form := model.NewFormState()
		form.FirstName = "Ada"
		form.SubscriptionType = model.TierProfessional

		sess, err := m.Restore(Snapshot{
			ID:          "restored-1",
			CurrentStep: StepDocuments,
			Form:        form,
			Submission:  StatePaymentPending,
			SellerID:    "S-30",
			CreatedAt:   now,
			UpdatedAt:   now,
		}, []*model.UploadedFile{
			{Slot: model.SlotGovernmentID, Filename: "id.png"},
		})
		assert.NoError(t, err)
		assert.Equal(t, StepDocuments, sess.Step())
		assert.Equal(t, "Ada", sess.Form().FirstName)
		assert.NotNil(t, sess.Documents()[model.SlotGovernmentID])

		state, sellerID, _, _ := sess.Submission()
		assert.Equal(t, StatePaymentPending, state)
		assert.Equal(t, "S-30", sellerID)

		got, ok := m.Get("restored-1")
		assert.True(t, ok)
		assert.Same(t, sess, got)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		_, err := m.Restore(Snapshot{}, nil)
		assert.Error(t, err)
	})

	t.Run("out-of-range step clamped to first", func(t *testing.T) {
		sess, err := m.Restore(Snapshot{ID: "restored-2", CurrentStep: 99}, nil)
		assert.NoError(t, err)
		assert.Equal(t, StepPersonalInfo, sess.Step())
	})
}
