// Package model defines the domain types shared across the onboarding service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is the subscription plan selected during onboarding. It determines the
// visible step sequence and whether the payment sub-flow runs.
type Tier string

const (
	TierFree         Tier = "free"
	TierProfessional Tier = "professional"
)

// IsValid reports whether the tier is one of the known plans.
func (t Tier) IsValid() bool {
	return t == TierFree || t == TierProfessional
}

// BusinessType classifies the seller's legal form.
type BusinessType string

const (
	BusinessIndividual BusinessType = "individual business"
	BusinessCompany    BusinessType = "company business"
	BusinessStateOwned BusinessType = "state-owned business"
)

// RequiresRegistrationNumber reports whether a company registration number is
// mandatory for this business type.
func (b BusinessType) RequiresRegistrationNumber() bool {
	return b == BusinessCompany || b == BusinessStateOwned
}

// TaxStatus marks whether the seller collects tax.
type TaxStatus string

const (
	TaxStatusTaxable    TaxStatus = "taxable"
	TaxStatusNonTaxable TaxStatus = "non-taxable"
)

// Address is a postal address used for both residential and business fields.
type Address struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode,omitempty"`
	Country      string `json:"country"`
}

// TaxConfig holds the seller's tax settings. The fields other than Status are
// only meaningful while Status is taxable.
type TaxConfig struct {
	Status          TaxStatus       `json:"status"`
	TaxID           string          `json:"taxId,omitempty"`
	Rate            decimal.Decimal `json:"rate"`
	Name            string          `json:"name,omitempty"`
	IncludedInPrice bool            `json:"includedInPrice"`
}

// DefaultTaxConfig returns the tax settings for a fresh form.
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{Status: TaxStatusNonTaxable, Rate: decimal.Zero}
}

// FormState is the single record collecting every field across wizard steps.
type FormState struct {
	// Step 1: personal info.
	FirstName            string  `json:"firstName"`
	MiddleName           string  `json:"middleName,omitempty"`
	LastName             string  `json:"lastName"`
	PhoneNumber          string  `json:"phoneNumber"`
	CountryOfCitizenship string  `json:"countryOfCitizenship"`
	CountryOfBirth       string  `json:"countryOfBirth"`
	DateOfBirth          string  `json:"dateOfBirth"` // YYYY-MM-DD
	ResidentialAddress   Address `json:"residentialAddress"`

	// Step 2: business details.
	BusinessLocation          string       `json:"businessLocation"`
	BusinessType              BusinessType `json:"businessType"`
	BusinessName              string       `json:"businessName"`
	CompanyRegistrationNumber string       `json:"companyRegistrationNumber,omitempty"`
	BusinessAddress           Address      `json:"businessAddress"`
	Tax                       TaxConfig    `json:"taxConfig"`

	// Step 3: store setup.
	StoreName        string `json:"storeName"`
	StoreDescription string `json:"storeDescription,omitempty"`
	SubscriptionType Tier   `json:"subscriptionType"`

	// Document steps.
	GovernmentIDType            string `json:"governmentIdType"`
	ProofOfResidenceType        string `json:"proofOfResidenceType"`
	IdentityProofCountryOfIssue string `json:"identityProofCountryOfIssue"`
}

// NewFormState returns a form with defaults applied.
func NewFormState() FormState {
	return FormState{
		SubscriptionType: TierFree,
		Tax:              DefaultTaxConfig(),
	}
}

// DocumentSlot names one of the required verification document placeholders.
type DocumentSlot string

const (
	SlotGovernmentID     DocumentSlot = "governmentId"
	SlotProofOfResidence DocumentSlot = "proofOfResidence"
	SlotSelfieWithID     DocumentSlot = "selfieWithId"
)

// DocumentSlots lists the three required slots in display order.
func DocumentSlots() []DocumentSlot {
	return []DocumentSlot{SlotGovernmentID, SlotProofOfResidence, SlotSelfieWithID}
}

// IsValid reports whether the slot is one of the three required placeholders.
func (s DocumentSlot) IsValid() bool {
	return s == SlotGovernmentID || s == SlotProofOfResidence || s == SlotSelfieWithID
}

// UploadedFile is the accepted content of one document slot.
type UploadedFile struct {
	Slot        DocumentSlot `json:"slot"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"contentType"`
	Size        int64        `json:"size"`
	CapturedAt  time.Time    `json:"capturedAt"`
	Content     []byte       `json:"-"`
}

// Country is a location lookup entry from the marketplace backend.
type Country struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
}

// Region is a state/province lookup entry for a country.
type Region struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}
