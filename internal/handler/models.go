package handler

import (
	"time"

	"github.com/sellerdesk/onboard/internal/model"
	"github.com/sellerdesk/onboard/internal/wizard"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// SessionResponse is the full wizard session snapshot returned to the client.
type SessionResponse struct {
	ID         string             `json:"id"`
	Step       int                `json:"step"`
	TotalSteps int                `json:"totalSteps"`
	View       string             `json:"view"`
	Tier       string             `json:"tier"`
	Form       model.FormState    `json:"form"`
	Errors     wizard.ErrorMap    `json:"errors,omitempty"`
	Documents  []DocumentInfo     `json:"documents"`
	Submission SubmissionResponse `json:"submission"`
}

// DocumentInfo describes an uploaded document slot without its content.
type DocumentInfo struct {
	Slot        string    `json:"slot"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CapturedAt  time.Time `json:"capturedAt"`
}

// SubmissionResponse describes the submission orchestrator's state.
type SubmissionResponse struct {
	State       string `json:"state"`
	SellerID    string `json:"sellerId,omitempty"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	Failure     string `json:"failure,omitempty"`
}

// StepResponse is the result of a next/back transition.
type StepResponse struct {
	Step   int             `json:"step"`
	View   string          `json:"view"`
	Errors wizard.ErrorMap `json:"errors,omitempty"`
}

// CallbackResponse is the result of processing a payment-provider return.
// RedirectTo with ReplaceHistory tells the client to rewrite the URL so a
// reload does not re-trigger verification; RedirectDelayMS delays the
// navigation to the terminal view.
type CallbackResponse struct {
	Success         bool   `json:"success"`
	SessionID       string `json:"sessionId"`
	SellerID        string `json:"sellerId,omitempty"`
	Message         string `json:"message,omitempty"`
	RedirectTo      string `json:"redirectTo,omitempty"`
	RedirectDelayMS int    `json:"redirectDelayMs,omitempty"`
	ReplaceHistory  bool   `json:"replaceHistory"`
}

// AvailabilityResponse is the store-name availability result.
type AvailabilityResponse struct {
	StoreName string `json:"storeName"`
	Available bool   `json:"available"`
}

// PreviewResponse is a sanitized HTML rendering of a store description.
type PreviewResponse struct {
	HTML string `json:"html"`
}

func sessionResponse(sess *wizard.Session) SessionResponse {
	form := sess.Form()
	state, sellerID, checkoutURL, failure := sess.Submission()

	files := sess.Documents()
	docs := make([]DocumentInfo, 0, len(files))
	for _, slot := range model.DocumentSlots() {
		f := files[slot]
		if f == nil {
			continue
		}
		docs = append(docs, DocumentInfo{
			Slot:        string(slot),
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
			CapturedAt:  f.CapturedAt,
		})
	}

	return SessionResponse{
		ID:         sess.ID(),
		Step:       sess.Step(),
		TotalSteps: wizard.TotalSteps(form.SubscriptionType),
		View:       string(sess.View()),
		Tier:       string(form.SubscriptionType),
		Form:       form,
		Errors:     sess.Errors(),
		Documents:  docs,
		Submission: SubmissionResponse{
			State:       string(state),
			SellerID:    sellerID,
			CheckoutURL: checkoutURL,
			Failure:     failure,
		},
	}
}
