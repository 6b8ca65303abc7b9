package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sellerdesk/onboard/internal/events"
	"github.com/sellerdesk/onboard/internal/model"
	"github.com/sellerdesk/onboard/internal/storage"
)

// Session is one seller's onboarding wizard: it owns the form state and the
// document intake for its lifetime, and every mutation goes through its
// methods. Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id           string
	currentStep  int
	form         *Form
	intake       *Intake
	orchestrator *Orchestrator
	createdAt    time.Time
	updatedAt    time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot is the persistable state of a session.
type Snapshot struct {
	ID          string
	CurrentStep int
	Form        model.FormState
	Submission  SubmissionState
	SellerID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot returns the session state for persistence. Document contents are
// persisted separately.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.id,
		CurrentStep: s.currentStep,
		Form:        s.form.State(),
		Submission:  s.orchestrator.State(),
		SellerID:    s.orchestrator.SellerID(),
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}

// Step returns the current internal step number.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStep
}

// Tier returns the currently selected subscription tier.
func (s *Session) Tier() model.Tier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.State().SubscriptionType
}

// View resolves the current step to its view variant.
func (s *Session) View() StepView {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.form.State()
	return ViewFor(s.currentStep, state.SubscriptionType, s.orchestrator.SellerID() != "")
}

// Form returns a copy of the collected field values.
func (s *Session) Form() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.State()
}

// Errors returns the pending validation errors.
func (s *Session) Errors() ErrorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Errors()
}

// Submission returns the orchestrator's state, seller id, checkout URL and
// failure message.
func (s *Session) Submission() (SubmissionState, string, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orchestrator.State(), s.orchestrator.SellerID(), s.orchestrator.CheckoutURL(), s.orchestrator.Failure()
}

// HandleInputChange updates a single field, clearing its pending error.
func (s *Session) HandleInputChange(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.form.Set(field, value); err != nil {
		return err
	}
	s.touch()
	return nil
}

// UpdateFormData applies a bulk field update.
func (s *Session) UpdateFormData(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.form.SetAll(values); err != nil {
		return err
	}
	s.touch()
	return nil
}

// Next runs the validation gate for the current step. On failure the errors
// are stored and returned and the step does not change; on success the step
// advances and the error map is empty.
func (s *Session) Next() (int, ErrorMap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.form.State()
	errs := Validate(s.currentStep, state, s.intake.Files())
	s.form.SetErrors(errs)
	if len(errs) > 0 {
		return s.currentStep, errs
	}

	s.currentStep = NextStep(s.currentStep, state.SubscriptionType)
	s.touch()
	return s.currentStep, ErrorMap{}
}

// Back moves to the previous visible step without validating.
func (s *Session) Back() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = PrevStep(s.currentStep, s.form.State().SubscriptionType)
	s.touch()
	return s.currentStep
}

// AcceptDocument stores a validated file into a slot.
func (s *Session) AcceptDocument(slot model.DocumentSlot, filename, contentType string, content []byte) (*model.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.intake.Accept(slot, filename, contentType, content)
	if err != nil {
		return nil, err
	}
	s.touch()
	return entry, nil
}

// RemoveDocument clears a slot.
func (s *Session) RemoveDocument(slot model.DocumentSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intake.Remove(slot)
	s.touch()
}

// Documents returns the current slot contents.
func (s *Session) Documents() map[model.DocumentSlot]*model.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intake.Files()
}

// Submit runs the submission orchestrator with the session's form and
// documents.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.orchestrator.Submit(ctx, s.form.State(), s.intake)

	var verr *ValidationError
	if errors.As(err, &verr) {
		s.form.SetErrors(verr.Fields)
	}
	s.touch()
	return err
}

// PaymentCallback processes the return from the external checkout.
func (s *Session) PaymentCallback(ctx context.Context, cb Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.orchestrator.HandlePaymentCallback(ctx, cb)
	s.touch()
	return err
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}

// Manager owns the live wizard sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	gateway     Gateway
	clientState storage.KeyValue
	recorder    events.Recorder
}

// NewManager creates a session manager. recorder may be nil.
func NewManager(gateway Gateway, clientState storage.KeyValue, recorder events.Recorder) (*Manager, error) {
	if gateway == nil {
		return nil, errors.New("seller gateway is required")
	}
	if clientState == nil {
		return nil, errors.New("client-state store is required")
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		gateway:     gateway,
		clientState: clientState,
		recorder:    recorder,
	}, nil
}

// Create starts a new wizard session at step 1.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	now := time.Now().UTC()

	s := &Session{
		id:          id,
		currentStep: StepPersonalInfo,
		form:        NewForm(),
		intake:      NewIntake(),
		createdAt:   now,
		updatedAt:   now,
	}
	s.orchestrator = m.newOrchestrator(id)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get returns a live session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Restore rebuilds a session from a persisted snapshot and its documents,
// registering it as live. Used after a process restart or when a payment
// callback arrives for a session this process has not seen.
func (m *Manager) Restore(snap Snapshot, docs []*model.UploadedFile) (*Session, error) {
	if snap.ID == "" {
		return nil, fmt.Errorf("session snapshot has no id")
	}

	intake := NewIntake()
	for _, doc := range docs {
		intake.Restore(doc)
	}

	s := &Session{
		id:          snap.ID,
		currentStep: snap.CurrentStep,
		form:        NewFormFrom(snap.Form),
		intake:      intake,
		createdAt:   snap.CreatedAt,
		updatedAt:   snap.UpdatedAt,
	}
	if s.currentStep < firstStep || s.currentStep > lastStep {
		s.currentStep = firstStep
	}
	s.orchestrator = m.newOrchestrator(snap.ID)
	s.orchestrator.Restore(snap.Submission, snap.SellerID)

	m.mu.Lock()
	m.sessions[snap.ID] = s
	m.mu.Unlock()
	return s, nil
}

// newOrchestrator wires the two client-state scopes: a shared one mirroring
// durable local storage and a per-session one mirroring session storage.
func (m *Manager) newOrchestrator(sessionID string) *Orchestrator {
	durable := storage.NewPrefixed(m.clientState, "local:")
	session := storage.NewPrefixed(m.clientState, "session:"+sessionID+":")
	return NewOrchestrator(m.gateway, durable, session, m.recorder)
}
