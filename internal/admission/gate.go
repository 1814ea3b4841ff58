package admission

import (
	"context"
	"fmt"
	"sync"

	"modulegate_backend/internal/model"
)

type GateState int

const (
	GateNotApplicable GateState = iota + 1
	GatePending
	GateRecorded
	GateError
)

func (s GateState) String() string {
	switch s {
	case GateNotApplicable:
		return "NOT_APPLICABLE"
	case GatePending:
		return "PENDING"
	case GateRecorded:
		return "RECORDED"
	case GateError:
		return "ERROR"
	default:
		return fmt.Sprintf("GateState(%d)", int(s))
	}
}

// Decision is the gate's answer for one student and module.
type Decision struct {
	State  GateState
	Record *model.ConsentRecord
	Err    error
}

// Releases reports whether module content may be shown. Any recorded choice
// releases; the choice only governs research use of the student's data.
func (d Decision) Releases() bool {
	switch d.State {
	case GateNotApplicable, GateRecorded:
		return true
	default:
		return false
	}
}

// ConsentStore reads and writes consent records on the server, implemented
// by apiclient.Client. GetConsent returns nil, nil when nothing is recorded.
type ConsentStore interface {
	GetConsent(ctx context.Context, moduleID, studentID string) (*model.ConsentRecord, error)
	PutConsent(ctx context.Context, moduleID, studentID string, status model.WaiverStatus) (*model.ConsentRecord, error)
}

// Gate tracks the consent state of a single admission flow.
type Gate struct {
	Consents ConsentStore

	mu       sync.Mutex
	decision Decision
}

func NewGate(consents ConsentStore) *Gate {
	return &Gate{Consents: consents}
}

// Evaluate asks the server for the current record. Modules without a
// consent requirement never trigger a lookup.
func (g *Gate) Evaluate(ctx context.Context, module *model.ModuleView, studentID string) (Decision, error) {
	if !module.ConsentRequired {
		return g.set(Decision{State: GateNotApplicable}), nil
	}

	record, err := g.Consents.GetConsent(ctx, module.ID, studentID)
	if err != nil {
		err = requestError(err)
		return g.set(Decision{State: GateError, Err: err}), err
	}
	if record == nil {
		return g.set(Decision{State: GatePending}), nil
	}
	return g.set(Decision{State: GateRecorded, Record: record}), nil
}

func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

func (g *Gate) recorded(record *model.ConsentRecord) Decision {
	return g.set(Decision{State: GateRecorded, Record: record})
}

func (g *Gate) failed(err error) Decision {
	return g.set(Decision{State: GateError, Err: err})
}

func (g *Gate) set(d Decision) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decision = d
	return d
}

// ConsentOption is one of the three choices offered on the consent form.
type ConsentOption struct {
	Status      model.WaiverStatus
	Title       string
	Description string
	Recommended bool
}

// Options returns the closed set of consent choices in display order.
func Options() []ConsentOption {
	options := make([]ConsentOption, 0, len(model.WaiverStatuses))
	for _, status := range model.WaiverStatuses {
		options = append(options, optionFor(status))
	}
	return options
}

func optionFor(status model.WaiverStatus) ConsentOption {
	switch status {
	case model.WaiverAgree:
		return ConsentOption{
			Status:      status,
			Title:       "I agree to participate in research",
			Description: "I consent to have my anonymized data used for educational research purposes.",
			Recommended: true,
		}
	case model.WaiverDecline:
		return ConsentOption{
			Status:      status,
			Title:       "I do not agree to participate in research",
			Description: "I do not consent to have my data used for research. I can still use the platform normally.",
		}
	case model.WaiverIneligible:
		return ConsentOption{
			Status:      status,
			Title:       "I am not eligible for this research",
			Description: "I do not meet the eligibility criteria for this research study.",
		}
	default:
		return ConsentOption{Status: status, Title: status.String()}
	}
}
