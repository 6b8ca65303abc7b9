package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierIsValid(t *testing.T) {
	assert.True(t, TierFree.IsValid())
	assert.True(t, TierProfessional.IsValid())
	assert.False(t, Tier("enterprise").IsValid())
	assert.False(t, Tier("").IsValid())
}

func TestBusinessTypeRequiresRegistrationNumber(t *testing.T) {
	assert.False(t, BusinessIndividual.RequiresRegistrationNumber())
	assert.True(t, BusinessCompany.RequiresRegistrationNumber())
	assert.True(t, BusinessStateOwned.RequiresRegistrationNumber())
}

func TestNewFormState(t *testing.T) {
	form := NewFormState()
	assert.Equal(t, TierFree, form.SubscriptionType)
	assert.Equal(t, TaxStatusNonTaxable, form.Tax.Status)
	assert.True(t, form.Tax.Rate.IsZero())
}

func TestDocumentSlots(t *testing.T) {
	slots := DocumentSlots()
	assert.Len(t, slots, 3)
	for _, slot := range slots {
		assert.True(t, slot.IsValid())
	}
	assert.False(t, DocumentSlot("passport").IsValid())
}
