package admission

import (
	"context"
	"errors"
	"sync"

	"modulegate_backend/internal/model"

	"go.uber.org/zap"
)

// Result is a snapshot of an admission flow after a step.
type Result struct {
	Grant    Grant
	Module   model.ModuleView
	Decision Decision
	// the student's last consent selection, kept across failed submissions
	Selection []model.WaiverStatus
	Released  bool
}

// Blocks returns the module's consent form ready to render.
func (r *Result) Blocks() []Block {
	return ParseConsentText(r.Module.ConsentFormText)
}

type flow struct {
	generation uint64
	grant      Grant
	module     model.ModuleView
	gate       *Gate
	selection  []model.WaiverStatus
	released   bool
}

// Orchestrator runs one admission flow at a time: resolve the code, issue a
// grant, evaluate the consent gate, record consent if needed, then release.
// Only one request is outstanding per orchestrator; a second call fails with
// ErrBusy. Responses arriving after Abandon are dropped with ErrStaleFlow.
type Orchestrator struct {
	Resolver *Resolver
	Grants   *GrantManager
	Recorder *Recorder
	Consents ConsentStore
	Log      *zap.Logger
	// OnRelease fires exactly once per flow, when content may be shown.
	OnRelease func(Result)

	mu         sync.Mutex
	generation uint64
	inFlight   bool
	current    *flow
}

func NewOrchestrator(dir ModuleDirectory, consents ConsentStore, session SessionStore, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		Resolver: NewResolver(dir, log),
		Grants:   NewGrantManager(session),
		Recorder: NewRecorder(consents, log),
		Consents: consents,
		Log:      log,
	}
}

// Enter redeems rawCode for studentID. On ErrCodeInvalid or ErrModuleInactive
// the flow stays before the grant and may be retried with another code.
func (o *Orchestrator) Enter(ctx context.Context, rawCode, studentID string) (*Result, error) {
	gen, err := o.begin(true)
	if err != nil {
		return nil, err
	}
	defer o.end(gen)

	module, err := o.Resolver.Resolve(ctx, rawCode, studentID)
	if !o.live(gen) {
		return nil, ErrStaleFlow
	}
	if err != nil {
		o.expire(err)
		return nil, err
	}

	grant, err := o.Grants.Issue(module, studentID)
	if err != nil {
		return nil, err
	}
	o.Log.Info("admission grant issued",
		zap.String("module_id", grant.ModuleID),
		zap.String("student_id", grant.StudentID))

	return o.evaluate(ctx, gen, grant, module)
}

// EnterModule re-enters a module the session already holds a grant for. The
// module is re-read by id and consent is always checked against the server.
func (o *Orchestrator) EnterModule(ctx context.Context, moduleID string) (*Result, error) {
	grant, ok := o.Grants.Current(moduleID)
	if !ok {
		return nil, ErrNoGrant
	}

	gen, err := o.begin(true)
	if err != nil {
		return nil, err
	}
	defer o.end(gen)

	module, err := o.Resolver.Fetch(ctx, moduleID)
	if !o.live(gen) {
		return nil, ErrStaleFlow
	}
	if err != nil {
		if errors.Is(err, ErrCodeInvalid) || errors.Is(err, ErrModuleInactive) {
			o.Grants.Clear()
		}
		o.expire(err)
		return nil, err
	}

	return o.evaluate(ctx, gen, grant, module)
}

// SubmitConsent records the student's selection for the current flow. The
// selection is kept when the submission fails so it can be retried.
func (o *Orchestrator) SubmitConsent(ctx context.Context, selection ...model.WaiverStatus) (*Result, error) {
	o.mu.Lock()
	f := o.current
	if f == nil {
		o.mu.Unlock()
		return nil, ErrNoGrant
	}
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	if f.gate.Decision().Releases() {
		res := o.snapshot(f)
		o.mu.Unlock()
		return res, nil
	}
	o.inFlight = true
	gen := o.generation
	f.selection = append([]model.WaiverStatus(nil), selection...)
	o.mu.Unlock()
	defer o.end(gen)

	_, err := o.Recorder.Submit(ctx, f.gate, f.grant.StudentID, f.grant.ModuleID, selection)
	if !o.live(gen) {
		return nil, ErrStaleFlow
	}

	o.mu.Lock()
	res := o.snapshot(f)
	o.mu.Unlock()
	if err != nil {
		o.expire(err)
		return res, err
	}
	return o.release(f), nil
}

// Retry re-reads the consent record after a failed lookup or submission.
func (o *Orchestrator) Retry(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	f := o.current
	if f == nil {
		o.mu.Unlock()
		return nil, ErrNoGrant
	}
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.inFlight = true
	gen := o.generation
	o.mu.Unlock()
	defer o.end(gen)

	decision, err := f.gate.Evaluate(ctx, &f.module, f.grant.StudentID)
	if !o.live(gen) {
		return nil, ErrStaleFlow
	}
	if err != nil {
		o.expire(err)
		o.mu.Lock()
		res := o.snapshot(f)
		o.mu.Unlock()
		return res, err
	}
	if decision.Releases() {
		return o.release(f), nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot(f), nil
}

// Abandon leaves the current flow. Any request still in flight is ignored when
// it returns and a new flow may start immediately.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.inFlight = false
	o.current = nil
}

// Current returns the state of the active flow, if any.
func (o *Orchestrator) Current() (*Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return nil, false
	}
	return o.snapshot(o.current), true
}

func (o *Orchestrator) evaluate(ctx context.Context, gen uint64, grant Grant, module *model.ModuleView) (*Result, error) {
	gate := NewGate(o.Consents)
	decision, err := gate.Evaluate(ctx, module, grant.StudentID)

	o.mu.Lock()
	if o.generation != gen {
		o.mu.Unlock()
		return nil, ErrStaleFlow
	}
	f := &flow{
		generation: gen,
		grant:      grant,
		module:     *module,
		gate:       gate,
	}
	o.current = f
	res := o.snapshot(f)
	o.mu.Unlock()

	if err != nil {
		o.expire(err)
		return res, err
	}
	if decision.Releases() {
		return o.release(f), nil
	}
	return res, nil
}

// release marks f released and notifies OnRelease the first time only.
func (o *Orchestrator) release(f *flow) *Result {
	o.mu.Lock()
	first := !f.released && o.generation == f.generation
	if first {
		f.released = true
	}
	res := o.snapshot(f)
	o.mu.Unlock()

	if first {
		o.Log.Info("module content released",
			zap.String("module_id", f.grant.ModuleID),
			zap.String("student_id", f.grant.StudentID),
			zap.Stringer("gate", res.Decision.State))
		if o.OnRelease != nil {
			o.OnRelease(*res)
		}
	}
	return res
}

// expire drops the session grant once the server has rejected the credential.
func (o *Orchestrator) expire(err error) {
	if !errors.Is(err, ErrCredentialExpired) {
		return
	}
	o.Grants.Clear()
	o.Log.Info("admission grant cleared, credential expired", zap.Error(err))
}

// begin claims the single request slot. newFlow drops the current flow.
func (o *Orchestrator) begin(newFlow bool) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return 0, ErrBusy
	}
	if newFlow {
		o.generation++
		o.current = nil
	}
	o.inFlight = true
	return o.generation, nil
}

func (o *Orchestrator) end(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation == gen {
		o.inFlight = false
	}
}

func (o *Orchestrator) live(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation == gen
}

// snapshot must be called with o.mu held.
func (o *Orchestrator) snapshot(f *flow) *Result {
	return &Result{
		Grant:     f.grant,
		Module:    f.module,
		Decision:  f.gate.Decision(),
		Selection: append([]model.WaiverStatus(nil), f.selection...),
		Released:  f.released,
	}
}
