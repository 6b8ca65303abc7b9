// Package sellerapi wraps the marketplace backend REST API consumed by the
// onboarding wizard: seller profile creation, professional payment
// initialization and verification, store-name availability and location
// lookups.
package sellerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sellerdesk/onboard/internal/model"
	"github.com/shopspring/decimal"
)

// Client talks to the marketplace backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a failed backend call. Message holds the server's message when the
// response carried one, otherwise a generic fallback.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("seller api: %s (status %d)", e.Message, e.StatusCode)
}

// ProfileResponse is the result of creating a seller profile.
type ProfileResponse struct {
	SellerID  string `json:"sellerId"`
	TaxStatus string `json:"taxStatus,omitempty"`
	TaxInfo   string `json:"taxInfo,omitempty"`
}

// PaymentInit is the result of requesting a professional checkout handle.
type PaymentInit struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkoutUrl"`
	Message     string `json:"message,omitempty"`
}

// PaymentVerification is the result of verifying a charge after the checkout
// redirect.
type PaymentVerification struct {
	Success bool            `json:"success"`
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message,omitempty"`
}

// CreateSellerProfile posts the collected form fields and the three documents
// as multipart/form-data.
func (c *Client) CreateSellerProfile(ctx context.Context, form model.FormState, files map[model.DocumentSlot]*model.UploadedFile) (*ProfileResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields, err := formFields(form)
	if err != nil {
		return nil, fmt.Errorf("encode form fields: %w", err)
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, slot := range model.DocumentSlots() {
		f := files[slot]
		if f == nil {
			continue
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, string(slot), f.Filename))
		header.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", slot, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("write part %s: %w", slot, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-seller-profile", &body)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ProfileResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitializeProfessionalPayment requests a checkout handle for a created
// seller account. The caller redirects the browser to CheckoutURL.
func (c *Client) InitializeProfessionalPayment(ctx context.Context, sellerID string) (*PaymentInit, error) {
	var out PaymentInit
	err := c.postJSON(ctx, "/initialize-professional-payment", map[string]string{"sellerId": sellerID}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{StatusCode: http.StatusOK, Message: messageOr(out.Message, "payment initialization failed")}
	}
	return &out, nil
}

// VerifyProfessionalPayment confirms a charge by its provider reference.
func (c *Client) VerifyProfessionalPayment(ctx context.Context, reference, sellerID string) (*PaymentVerification, error) {
	var out PaymentVerification
	err := c.postJSON(ctx, "/verify-professional-payment", map[string]string{
		"reference": reference,
		"sellerId":  sellerID,
	}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{StatusCode: http.StatusOK, Message: messageOr(out.Message, "payment verification failed")}
	}
	return &out, nil
}

// CheckStoreName asks whether a store name is still available.
func (c *Client) CheckStoreName(ctx context.Context, storeName string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	if err := c.postJSON(ctx, "/check-store-name", map[string]string{"storeName": storeName}, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// Countries returns the country lookup list.
func (c *Client) Countries(ctx context.Context) ([]model.Country, error) {
	var out []model.Country
	if err := c.getJSON(ctx, "/location/countries", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// States returns the regions for a country.
func (c *Client) States(ctx context.Context, countryID string) ([]model.Region, error) {
	var out []model.Region
	if err := c.getJSON(ctx, "/location/states/"+countryID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the server's message from an error body, falling back
// to a generic string when none is present.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return "request failed"
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallback
}

// formFields flattens the form state into multipart field values. Nested
// records (addresses, tax config) are sent as JSON fields the way the backend
// expects them.
func formFields(form model.FormState) (map[string]string, error) {
	residential, err := json.Marshal(form.ResidentialAddress)
	if err != nil {
		return nil, err
	}
	business, err := json.Marshal(form.BusinessAddress)
	if err != nil {
		return nil, err
	}
	tax, err := json.Marshal(form.Tax)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"firstName":                   form.FirstName,
		"middleName":                  form.MiddleName,
		"lastName":                    form.LastName,
		"phoneNumber":                 form.PhoneNumber,
		"countryOfCitizenship":        form.CountryOfCitizenship,
		"countryOfBirth":              form.CountryOfBirth,
		"dateOfBirth":                 form.DateOfBirth,
		"residentialAddress":          string(residential),
		"businessLocation":            form.BusinessLocation,
		"businessType":                string(form.BusinessType),
		"businessName":                form.BusinessName,
		"companyRegistrationNumber":   form.CompanyRegistrationNumber,
		"businessAddress":             string(business),
		"taxConfig":                   string(tax),
		"storeName":                   form.StoreName,
		"storeDescription":            form.StoreDescription,
		"subscriptionType":            string(form.SubscriptionType),
		"governmentIdType":            form.GovernmentIDType,
		"proofOfResidenceType":        form.ProofOfResidenceType,
		"identityProofCountryOfIssue": form.IdentityProofCountryOfIssue,
	}, nil
}
