package handler

import (
	"errors"
	"net/http"

	"github.com/sellerdesk/onboard/internal/wizard"
)

// Submit handles POST /api/v1/onboarding/sessions/{id}/submit. It runs the
// submission orchestrator: for free-tier sellers the session ends awaiting
// verification; professional sellers get a checkout URL to redirect to.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	tier := string(sess.Tier())
	err := sess.Submit(r.Context())
	h.persistSession(r.Context(), sess)

	switch {
	case err == nil:
		h.countSubmission(tier, "accepted")
		h.writeJSON(w, http.StatusOK, sessionResponse(sess))

	case errors.Is(err, wizard.ErrNotSubmittable):
		h.countSubmission(tier, "rejected")
		h.writeError(w, http.StatusConflict, err.Error())

	default:
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			h.countSubmission(tier, "invalid")
			h.writeJSON(w, http.StatusUnprocessableEntity, sessionResponse(sess))
			return
		}
		var rce *wizard.RemoteCallError
		if errors.As(err, &rce) {
			h.countSubmission(tier, "failed")
			h.writeError(w, http.StatusBadGateway, rce.Message)
			return
		}
		h.countSubmission(tier, "failed")
		h.writeError(w, http.StatusInternalServerError, "submission failed")
	}
}

// PaymentCallback handles GET /api/v1/onboarding/payment/callback, the
// return leg of the external checkout. The provider appends its own query
// parameters; an optional "session" parameter carries our session id. When it
// is absent a fresh session is created and the seller id is recovered from
// stored state or the payment reference.
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cb := wizard.Callback{
		Reference: q.Get("reference"),
		TrxRef:    q.Get("trxref"),
		Status:    q.Get("status"),
		SellerID:  q.Get("sellerId"),
	}
	if cb.Reference == "" && cb.TrxRef == "" {
		h.writeError(w, http.StatusBadRequest, "payment reference is required")
		return
	}

	sess := h.callbackSession(w, r)
	if sess == nil {
		return
	}

	err := sess.PaymentCallback(r.Context(), cb)
	h.persistSession(r.Context(), sess)

	_, sellerID, _, failure := sess.Submission()
	resp := CallbackResponse{
		SessionID:      sess.ID(),
		SellerID:       sellerID,
		ReplaceHistory: true,
	}

	switch {
	case err == nil:
		h.countPayment("confirmed")
		resp.Success = true
		resp.Message = "payment confirmed, your seller account is being reviewed"
		resp.RedirectTo = "/seller/pending-verification"
		resp.RedirectDelayMS = 2500
		h.writeJSON(w, http.StatusOK, resp)

	case errors.Is(err, wizard.ErrNoCallbackPending):
		// Reload of an already-confirmed callback URL. Idempotent success.
		resp.Success = true
		resp.Message = "payment already confirmed"
		resp.RedirectTo = "/seller/pending-verification"
		h.writeJSON(w, http.StatusOK, resp)

	default:
		h.countPayment("failed")
		resp.Message = failure
		if resp.Message == "" {
			resp.Message = "payment verification failed"
		}
		var sre *wizard.StateRecoveryError
		if errors.As(err, &sre) {
			h.writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		h.writeJSON(w, http.StatusBadGateway, resp)
	}
}

// callbackSession resolves the session the callback belongs to. The external
// checkout discarded all client-side state, so when no session id is supplied
// the callback runs in a fresh session and relies on seller-id recovery.
func (h *Handler) callbackSession(w http.ResponseWriter, r *http.Request) *wizard.Session {
	id := r.URL.Query().Get("session")
	if id == "" {
		return h.manager.Create()
	}

	if sess, ok := h.manager.Get(id); ok {
		return sess
	}
	sess, err := h.restoreSession(r.Context(), id)
	if err != nil {
		// Unknown session id still gets the recovery chain.
		return h.manager.Create()
	}
	return sess
}

func (h *Handler) countSubmission(tier, outcome string) {
	if h.metrics != nil {
		h.metrics.Submissions.WithLabelValues(tier, outcome).Inc()
	}
}

func (h *Handler) countPayment(outcome string) {
	if h.metrics != nil {
		h.metrics.Payments.WithLabelValues(outcome).Inc()
	}
}
