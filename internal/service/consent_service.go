package service

import (
	"context"
	"strings"
	"time"

	"modulegate_backend/internal/model"
	"modulegate_backend/internal/util"
	"modulegate_backend/pkg/logger"
	"modulegate_backend/pkg/monitoring"
	"modulegate_backend/pkg/tracing"

	"go.uber.org/zap"
)

type ConsentService struct {
	Consents ConsentStore
	Modules  *ModuleService
	Now      func() time.Time
}

func NewConsentService(consents ConsentStore, modules *ModuleService) *ConsentService {
	return &ConsentService{
		Consents: consents,
		Modules:  modules,
		Now:      time.Now,
	}
}

// Get returns the current record, or nil when the student has not chosen yet.
func (s *ConsentService) Get(ctx context.Context, user *util.Claims, moduleID, studentID string) (*model.ConsentRecord, error) {
	ctx, span := tracing.Start(ctx, "ConsentService.Get")
	defer span.End()

	studentID, err := s.checkStudent(user, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.Modules.Exists(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.Consents.Find(ctx, studentID, moduleID)
}

// Submit records the student's choice, replacing any earlier one for the module.
func (s *ConsentService) Submit(ctx context.Context, user *util.Claims, moduleID, studentID string, waiverStatus int) (*model.ConsentRecord, error) {
	ctx, span := tracing.Start(ctx, "ConsentService.Submit")
	defer span.End()

	status, err := model.ParseWaiverStatus(waiverStatus)
	if err != nil {
		return nil, util.ErrInvalidWaiverStatus
	}
	studentID, err = s.checkStudent(user, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.Modules.Exists(ctx, moduleID); err != nil {
		return nil, err
	}

	record, err := s.Consents.Upsert(ctx, &model.ConsentRecord{
		StudentID:    studentID,
		ModuleID:     moduleID,
		WaiverStatus: status,
		RecordedAt:   s.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	monitoring.ConsentSubmissions.WithLabelValues(status.String()).Inc()
	logger.Log.Info("Consent recorded",
		zap.String("module_id", moduleID),
		zap.String("student_id", studentID),
		zap.Stringer("waiver_status", status))
	return record, nil
}

// A signed-in student may only read or write their own record.
func (s *ConsentService) checkStudent(user *util.Claims, studentID string) (string, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return "", util.ErrMissingStudentID
	}
	if user != nil && user.Role == model.Student && user.UserID != studentID {
		return "", util.ErrPermissionDenied
	}
	return studentID, nil
}
