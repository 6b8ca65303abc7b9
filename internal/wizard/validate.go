package wizard

import (
	"strings"
	"time"

	"github.com/sellerdesk/onboard/internal/config"
	"github.com/sellerdesk/onboard/internal/model"
)

// Validate runs the validation gate for one step. It is pure: the returned
// map is complete for the step (all failing fields at once, never fail-fast)
// and the caller decides whether to store it. An empty map means the step
// passes and advancement is allowed. files may be nil; when supplied at the
// documents step, every required slot must be filled.
func Validate(step int, form model.FormState, files map[model.DocumentSlot]*model.UploadedFile) ErrorMap {
	switch step {
	case StepPersonalInfo:
		return personalInfoErrors(form, time.Now())
	case StepBusinessDetails:
		return businessDetailsErrors(form)
	case StepStoreSetup:
		return storeSetupErrors(form)
	case StepDocuments:
		return documentErrors(form, files)
	default:
		return ErrorMap{}
	}
}

func personalInfoErrors(form model.FormState, now time.Time) ErrorMap {
	errs := ErrorMap{}

	requireField(errs, "firstName", form.FirstName, "First name is required")
	requireField(errs, "lastName", form.LastName, "Last name is required")
	requireField(errs, "phoneNumber", form.PhoneNumber, "Phone number is required")
	requireField(errs, "countryOfCitizenship", form.CountryOfCitizenship, "Country of citizenship is required")
	requireField(errs, "countryOfBirth", form.CountryOfBirth, "Country of birth is required")

	requireField(errs, "residentialAddress.fullName", form.ResidentialAddress.FullName, "Full name is required")
	requireField(errs, "residentialAddress.addressLine1", form.ResidentialAddress.AddressLine1, "Address line 1 is required")
	requireField(errs, "residentialAddress.city", form.ResidentialAddress.City, "City is required")
	requireField(errs, "residentialAddress.state", form.ResidentialAddress.State, "State is required")
	requireField(errs, "residentialAddress.country", form.ResidentialAddress.Country, "Country is required")

	switch dob := strings.TrimSpace(form.DateOfBirth); {
	case dob == "":
		errs["dateOfBirth"] = "Date of birth is required"
	default:
		parsed, err := time.Parse("2006-01-02", dob)
		if err != nil {
			errs["dateOfBirth"] = "Enter a valid date of birth (YYYY-MM-DD)"
		} else if AgeAt(parsed, now) < config.MinSellerAge {
			errs["dateOfBirth"] = "You must be at least 18 years old"
		}
	}

	return errs
}

func businessDetailsErrors(form model.FormState) ErrorMap {
	errs := ErrorMap{}

	requireField(errs, "businessLocation", form.BusinessLocation, "Business location is required")
	requireField(errs, "businessType", string(form.BusinessType), "Business type is required")
	requireField(errs, "businessName", form.BusinessName, "Business name is required")
	requireField(errs, "businessAddress.addressLine1", form.BusinessAddress.AddressLine1, "Business address line 1 is required")

	if form.BusinessType.RequiresRegistrationNumber() {
		requireField(errs, "companyRegistrationNumber", form.CompanyRegistrationNumber, "Company registration number is required")
	}

	return errs
}

func storeSetupErrors(form model.FormState) ErrorMap {
	errs := ErrorMap{}

	name := strings.TrimSpace(form.StoreName)
	switch {
	case name == "":
		errs["storeName"] = "Store name is required"
	case len(name) < config.MinStoreNameLength:
		errs["storeName"] = "Store name must be at least 3 characters"
	}

	return errs
}

func documentErrors(form model.FormState, files map[model.DocumentSlot]*model.UploadedFile) ErrorMap {
	errs := ErrorMap{}

	requireField(errs, "governmentIdType", form.GovernmentIDType, "Government ID type is required")
	requireField(errs, "proofOfResidenceType", form.ProofOfResidenceType, "Proof of residence type is required")
	requireField(errs, "identityProofCountryOfIssue", form.IdentityProofCountryOfIssue, "Country of issue is required")

	if files != nil {
		for _, slot := range model.DocumentSlots() {
			if files[slot] == nil {
				errs[string(slot)] = slotMissingMessage(slot)
			}
		}
	}

	return errs
}

func slotMissingMessage(slot model.DocumentSlot) string {
	switch slot {
	case model.SlotGovernmentID:
		return "Government ID document is required"
	case model.SlotProofOfResidence:
		return "Proof of residence document is required"
	case model.SlotSelfieWithID:
		return "Selfie with ID is required"
	default:
		return "Document is required"
	}
}

func requireField(errs ErrorMap, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = message
	}
}

// AgeAt computes full calendar years between dob and now: the year difference
// adjusted down by one when the birthday has not yet occurred this year.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
