package wizard

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/ports"
)

// InsurerSource lists insurers the backend knows
type InsurerSource interface {
	Insurers(ctx context.Context) ([]string, error)
}

// ClaimProcessor accepts a finished claim
type ClaimProcessor interface {
	ProcessClaim(ctx context.Context, sub *ports.ClaimSubmission) (*ports.ProcessResult, error)
}

// Outcome is kept after a successful submit
type Outcome struct {
	ClaimID    claim.ID
	Result     *ports.ProcessResult
	Assessment *claim.Assessment
}

// Summary is the read-only review of a draft
type Summary struct {
	AccidentDate string
	PolicyNumber string
	Company      string
	VehicleType  claim.VehicleType
	ImageCount   int
	DaysToExpiry *int
	PolicyActive bool
}

// Wizard drives one claim draft through the five stages.
// Forward moves validate the current stage; backward moves never do.
type Wizard struct {
	mu         sync.Mutex
	stage      Stage
	draft      *Draft
	validator  *Validator
	insurers   []string
	outcome    *Outcome
	submitting bool
	log        *internal.Logger
}

// Option configures a Wizard
type Option func(*Wizard)

func WithLogger(log *internal.Logger) Option {
	return func(w *Wizard) { w.log = log }
}

// New returns a wizard on stage 1 with an empty draft
func New(clock core.Clock, opts ...Option) *Wizard {
	w := &Wizard{
		stage:     StageIncident,
		draft:     newDraft(),
		validator: NewValidator(clock),
		log:       internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start loads the insurer list. A failure is logged and leaves the list empty,
// in which case insurerName is only length-checked.
func (w *Wizard) Start(ctx context.Context, src InsurerSource) {
	list, err := src.Insurers(ctx)
	if err != nil {
		w.log.Warn("failed to load insurers: %v", err)
		list = nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.insurers = list
	w.validator.SetInsurers(list)
}

// Insurers returns the loaded insurer keys
func (w *Wizard) Insurers() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.insurers...)
}

// Stage returns the current stage
func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Draft returns a copy of the draft
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

// ID identifies this draft
func (w *Wizard) ID() core.DraftID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.ID
}

// ApplyForm stores submitted values for stage s without validating rules
func (w *Wizard) ApplyForm(s Stage, values url.Values) FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return applyForm(w.draft, s, values)
}

func (w *Wizard) SetIncident(f IncidentForm) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Incident = f
	w.draft.recomputeExpiry()
}

func (w *Wizard) SetVehicle(f VehicleForm) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Vehicle = f
	w.draft.recomputeExpiry()
}

func (w *Wizard) SetSpecifics(f SpecificsForm) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f.DamageParts = append([]claim.DamagePart{}, f.DamageParts...)
	w.draft.Specifics = f
}

func (w *Wizard) ToggleDamagePart(p claim.DamagePart) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.ToggleDamagePart(p)
}

func (w *Wizard) AddImages(batch []ports.Upload) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.AddImages(batch)
}

func (w *Wizard) RemoveImage(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.RemoveImage(i)
}

// Expiry returns the derived expiry, or nil until both dates are set
func (w *Wizard) Expiry() *Expiry {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.Expiry == nil {
		return nil
	}
	e := *w.draft.Expiry
	return &e
}

// CanAdvance reports whether the forward control is enabled. Stages 1-3 are always enabled
// and validate on Next; evidence needs MinImages; review has no forward move.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canAdvance()
}

func (w *Wizard) canAdvance() bool {
	switch w.stage {
	case StageEvidence:
		return len(w.draft.Images) >= MinImages
	case StageReview:
		return false
	default:
		return w.outcome == nil
	}
}

// Validate runs the current stage's rules without moving
func (w *Wizard) Validate() FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validator.Stage(w.stage, w.draft)
}

// Next advances one stage if the current stage is valid
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.canAdvance() {
		return ErrForwardDisabled
	}
	if errs := w.validator.Stage(w.stage, w.draft); len(errs) > 0 {
		return errs
	}
	w.stage++
	return nil
}

// Back moves one stage back. Always allowed, nothing is validated or lost.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage > StageIncident && w.outcome == nil {
		w.stage--
	}
}

// Summary returns the review view
func (w *Wizard) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.draft
	s := Summary{
		AccidentDate: d.Incident.AccidentDate,
		PolicyNumber: d.Vehicle.PolicyNumber,
		Company:      d.Vehicle.InsurerName,
		VehicleType:  d.Vehicle.VehicleType,
		ImageCount:   len(d.Images),
	}
	if d.Expiry != nil {
		days := d.Expiry.DaysToExpiry
		s.DaysToExpiry = &days
		s.PolicyActive = d.Expiry.Claimable
	}
	return s
}

// Outcome returns the result of a successful submit, or nil
func (w *Wizard) Outcome() *Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outcome
}

// Submit sends the draft in exactly one backend call. On failure the wizard stays on review with
// the draft intact so the user can retry. On success the draft is cleared and the outcome kept.
func (w *Wizard) Submit(ctx context.Context, backend ClaimProcessor) (*Outcome, error) {
	w.mu.Lock()
	switch {
	case w.outcome != nil:
		w.mu.Unlock()
		return nil, ErrAlreadySubmitted
	case w.stage != StageReview:
		w.mu.Unlock()
		return nil, ErrNotOnReview
	case w.submitting:
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if errs := w.validator.All(w.draft); len(errs) > 0 {
		w.mu.Unlock()
		return nil, errs
	}
	sub, err := BuildSubmission(w.draft)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.submitting = true
	draftID := w.draft.ID
	w.mu.Unlock()

	res, err := backend.ProcessClaim(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.log.Warn("claim submission failed for draft %s: %v", draftID, err)
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	if res == nil {
		return nil, ErrSubmitFailed
	}

	w.outcome = &Outcome{
		ClaimID:    res.ClaimID,
		Result:     res,
		Assessment: claim.ParseAssessment(res.MLResult),
	}
	w.draft = newDraft()
	w.log.Info("claim %s submitted", res.ClaimID)
	return w.outcome, nil
}
