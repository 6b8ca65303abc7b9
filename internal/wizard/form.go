// Package wizard implements the seller onboarding flow: the form state store,
// step sequencing, per-step validation, document intake and the submission
// state machine.
package wizard

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/sellerdesk/onboard/internal/model"
	"github.com/shopspring/decimal"
)

// Form holds every collected field value across wizard steps together with the
// pending validation errors. All mutation goes through Set and SetAll; no
// validation happens here.
type Form struct {
	state  model.FormState
	errors ErrorMap
}

// NewForm returns a form with default values and no pending errors.
func NewForm() *Form {
	return &Form{
		state:  model.NewFormState(),
		errors: ErrorMap{},
	}
}

// NewFormFrom restores a form from a persisted state snapshot.
func NewFormFrom(state model.FormState) *Form {
	return &Form{state: state, errors: ErrorMap{}}
}

// State returns a copy of the current field values.
func (f *Form) State() model.FormState {
	return f.state
}

// Errors returns a copy of the pending error map.
func (f *Form) Errors() ErrorMap {
	out := make(ErrorMap, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SetErrors replaces the pending error map, typically with the result of a
// validation-gate run for the current step.
func (f *Form) SetErrors(errs ErrorMap) {
	f.errors = make(ErrorMap, len(errs))
	for k, v := range errs {
		f.errors[k] = v
	}
}

// Set updates a single field by its path (e.g. "residentialAddress.city") and
// clears that field's pending error entry, leaving the rest of the map intact.
// Setting businessType applies the derived tax-status side effect: switching to
// an individual business resets the tax config to defaults, while company and
// state-owned businesses are forced taxable without touching existing settings.
func (f *Form) Set(field, value string) error {
	setter, ok := fieldSetters[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if err := setter(&f.state, value); err != nil {
		return err
	}
	delete(f.errors, field)
	return nil
}

// SetAll applies a bulk field update. Fields are applied in sorted path order
// so repeated calls with the same map behave deterministically; the first
// failure aborts the update.
func (f *Form) SetAll(values map[string]string) error {
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if err := f.Set(field, values[field]); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the current value of a field by path.
func (f *Form) Get(field string) (string, bool) {
	getter, ok := fieldGetters[field]
	if !ok {
		return "", false
	}
	return getter(&f.state), true
}

type fieldSetter func(*model.FormState, string) error

func stringField(assign func(*model.FormState, string)) fieldSetter {
	return func(s *model.FormState, v string) error {
		assign(s, v)
		return nil
	}
}

// applyBusinessType mutates businessType and its derived tax-status effect.
func applyBusinessType(s *model.FormState, v string) error {
	bt := model.BusinessType(v)
	switch bt {
	case model.BusinessIndividual:
		s.Tax = model.DefaultTaxConfig()
	case model.BusinessCompany, model.BusinessStateOwned:
		s.Tax.Status = model.TaxStatusTaxable
	default:
		return fmt.Errorf("%w: business type %q", ErrInvalidValue, v)
	}
	s.BusinessType = bt
	return nil
}

var fieldSetters = map[string]fieldSetter{
	"firstName":            stringField(func(s *model.FormState, v string) { s.FirstName = v }),
	"middleName":           stringField(func(s *model.FormState, v string) { s.MiddleName = v }),
	"lastName":             stringField(func(s *model.FormState, v string) { s.LastName = v }),
	"phoneNumber":          stringField(func(s *model.FormState, v string) { s.PhoneNumber = v }),
	"countryOfCitizenship": stringField(func(s *model.FormState, v string) { s.CountryOfCitizenship = v }),
	"countryOfBirth":       stringField(func(s *model.FormState, v string) { s.CountryOfBirth = v }),
	"dateOfBirth":          stringField(func(s *model.FormState, v string) { s.DateOfBirth = v }),

	"residentialAddress.fullName":     stringField(func(s *model.FormState, v string) { s.ResidentialAddress.FullName = v }),
	"residentialAddress.addressLine1": stringField(func(s *model.FormState, v string) { s.ResidentialAddress.AddressLine1 = v }),
	"residentialAddress.addressLine2": stringField(func(s *model.FormState, v string) { s.ResidentialAddress.AddressLine2 = v }),
	"residentialAddress.city":         stringField(func(s *model.FormState, v string) { s.ResidentialAddress.City = v }),
	"residentialAddress.state":        stringField(func(s *model.FormState, v string) { s.ResidentialAddress.State = v }),
	"residentialAddress.postalCode":   stringField(func(s *model.FormState, v string) { s.ResidentialAddress.PostalCode = v }),
	"residentialAddress.country":      stringField(func(s *model.FormState, v string) { s.ResidentialAddress.Country = v }),

	"businessLocation":          stringField(func(s *model.FormState, v string) { s.BusinessLocation = v }),
	"businessType":              applyBusinessType,
	"businessName":              stringField(func(s *model.FormState, v string) { s.BusinessName = v }),
	"companyRegistrationNumber": stringField(func(s *model.FormState, v string) { s.CompanyRegistrationNumber = v }),

	"businessAddress.fullName":     stringField(func(s *model.FormState, v string) { s.BusinessAddress.FullName = v }),
	"businessAddress.addressLine1": stringField(func(s *model.FormState, v string) { s.BusinessAddress.AddressLine1 = v }),
	"businessAddress.addressLine2": stringField(func(s *model.FormState, v string) { s.BusinessAddress.AddressLine2 = v }),
	"businessAddress.city":         stringField(func(s *model.FormState, v string) { s.BusinessAddress.City = v }),
	"businessAddress.state":        stringField(func(s *model.FormState, v string) { s.BusinessAddress.State = v }),
	"businessAddress.postalCode":   stringField(func(s *model.FormState, v string) { s.BusinessAddress.PostalCode = v }),
	"businessAddress.country":      stringField(func(s *model.FormState, v string) { s.BusinessAddress.Country = v }),

	"taxConfig.taxId": stringField(func(s *model.FormState, v string) { s.Tax.TaxID = v }),
	"taxConfig.name":  stringField(func(s *model.FormState, v string) { s.Tax.Name = v }),
	"taxConfig.rate": func(s *model.FormState, v string) error {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("%w: tax rate %q", ErrInvalidValue, v)
		}
		s.Tax.Rate = rate
		return nil
	},
	"taxConfig.includedInPrice": func(s *model.FormState, v string) error {
		included, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: includedInPrice %q", ErrInvalidValue, v)
		}
		s.Tax.IncludedInPrice = included
		return nil
	},

	"storeName":        stringField(func(s *model.FormState, v string) { s.StoreName = v }),
	"storeDescription": stringField(func(s *model.FormState, v string) { s.StoreDescription = v }),
	"subscriptionType": func(s *model.FormState, v string) error {
		tier := model.Tier(v)
		if !tier.IsValid() {
			return fmt.Errorf("%w: subscription type %q", ErrInvalidValue, v)
		}
		s.SubscriptionType = tier
		return nil
	},

	"governmentIdType":            stringField(func(s *model.FormState, v string) { s.GovernmentIDType = v }),
	"proofOfResidenceType":        stringField(func(s *model.FormState, v string) { s.ProofOfResidenceType = v }),
	"identityProofCountryOfIssue": stringField(func(s *model.FormState, v string) { s.IdentityProofCountryOfIssue = v }),
}

var fieldGetters = map[string]func(*model.FormState) string{
	"firstName":            func(s *model.FormState) string { return s.FirstName },
	"middleName":           func(s *model.FormState) string { return s.MiddleName },
	"lastName":             func(s *model.FormState) string { return s.LastName },
	"phoneNumber":          func(s *model.FormState) string { return s.PhoneNumber },
	"countryOfCitizenship": func(s *model.FormState) string { return s.CountryOfCitizenship },
	"countryOfBirth":       func(s *model.FormState) string { return s.CountryOfBirth },
	"dateOfBirth":          func(s *model.FormState) string { return s.DateOfBirth },

	"residentialAddress.fullName":     func(s *model.FormState) string { return s.ResidentialAddress.FullName },
	"residentialAddress.addressLine1": func(s *model.FormState) string { return s.ResidentialAddress.AddressLine1 },
	"residentialAddress.addressLine2": func(s *model.FormState) string { return s.ResidentialAddress.AddressLine2 },
	"residentialAddress.city":         func(s *model.FormState) string { return s.ResidentialAddress.City },
	"residentialAddress.state":        func(s *model.FormState) string { return s.ResidentialAddress.State },
	"residentialAddress.postalCode":   func(s *model.FormState) string { return s.ResidentialAddress.PostalCode },
	"residentialAddress.country":      func(s *model.FormState) string { return s.ResidentialAddress.Country },

	"businessLocation":          func(s *model.FormState) string { return s.BusinessLocation },
	"businessType":              func(s *model.FormState) string { return string(s.BusinessType) },
	"businessName":              func(s *model.FormState) string { return s.BusinessName },
	"companyRegistrationNumber": func(s *model.FormState) string { return s.CompanyRegistrationNumber },

	"businessAddress.fullName":     func(s *model.FormState) string { return s.BusinessAddress.FullName },
	"businessAddress.addressLine1": func(s *model.FormState) string { return s.BusinessAddress.AddressLine1 },
	"businessAddress.addressLine2": func(s *model.FormState) string { return s.BusinessAddress.AddressLine2 },
	"businessAddress.city":         func(s *model.FormState) string { return s.BusinessAddress.City },
	"businessAddress.state":        func(s *model.FormState) string { return s.BusinessAddress.State },
	"businessAddress.postalCode":   func(s *model.FormState) string { return s.BusinessAddress.PostalCode },
	"businessAddress.country":      func(s *model.FormState) string { return s.BusinessAddress.Country },

	"taxConfig.status": func(s *model.FormState) string { return string(s.Tax.Status) },
	"taxConfig.taxId":  func(s *model.FormState) string { return s.Tax.TaxID },
	"taxConfig.name":   func(s *model.FormState) string { return s.Tax.Name },
	"taxConfig.rate":   func(s *model.FormState) string { return s.Tax.Rate.String() },
	"taxConfig.includedInPrice": func(s *model.FormState) string {
		return strconv.FormatBool(s.Tax.IncludedInPrice)
	},

	"storeName":        func(s *model.FormState) string { return s.StoreName },
	"storeDescription": func(s *model.FormState) string { return s.StoreDescription },
	"subscriptionType": func(s *model.FormState) string { return string(s.SubscriptionType) },

	"governmentIdType":            func(s *model.FormState) string { return s.GovernmentIDType },
	"proofOfResidenceType":        func(s *model.FormState) string { return s.ProofOfResidenceType },
	"identityProofCountryOfIssue": func(s *model.FormState) string { return s.IdentityProofCountryOfIssue },
}
