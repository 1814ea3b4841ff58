package admission

import (
	"context"
	"fmt"
	"net/http"

	"modulegate_backend/internal/model"

	"go.uber.org/zap"
)

type Recorder struct {
	Consents ConsentStore
	Log      *zap.Logger
}

func NewRecorder(consents ConsentStore, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{Consents: consents, Log: log}
}

// Submit sends the single selected choice and moves gate to RECORDED. An empty
// or multiple selection fails with ErrValidation before any request is made and
// leaves the gate untouched. A failed write puts the gate in ERROR.
func (r *Recorder) Submit(ctx context.Context, gate *Gate, studentID, moduleID string, selection []model.WaiverStatus) (*model.ConsentRecord, error) {
	if len(selection) != 1 {
		return nil, fmt.Errorf("%w: got %d selections", ErrValidation, len(selection))
	}
	status := selection[0]
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrValidation, status)
	}
	if studentID == "" || moduleID == "" {
		return nil, ErrInvalidGrantInput
	}

	record, err := r.Consents.PutConsent(ctx, moduleID, studentID, status)
	if err != nil {
		if code, ok := statusOf(err); ok && code == http.StatusBadRequest {
			err = fmt.Errorf("%w: %w", ErrValidation, err)
		} else {
			err = requestError(err)
		}
		gate.failed(err)
		r.Log.Warn("consent submission failed",
			zap.String("module_id", moduleID),
			zap.String("student_id", studentID),
			zap.Error(err))
		return nil, err
	}

	gate.recorded(record)
	r.Log.Debug("consent recorded",
		zap.String("module_id", moduleID),
		zap.String("student_id", studentID),
		zap.Stringer("waiver_status", record.WaiverStatus))
	return record, nil
}
