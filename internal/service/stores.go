package service

import (
	"context"
	"time"

	"modulegate_backend/internal/model"
)

// ModuleStore is implemented by repository.ModuleRepository.
type ModuleStore interface {
	Create(ctx context.Context, module *model.Module) error
	FindByID(ctx context.Context, id string) (*model.Module, error)
	FindByAccessCode(ctx context.Context, code string) (*model.Module, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Module, error)
	UpdateAccessCode(ctx context.Context, id, code string) error
	UpdateConsentForm(ctx context.Context, id string, required bool, text string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// ModuleCache is implemented by repository.ModuleCache.
type ModuleCache interface {
	Get(ctx context.Context, id string) (*model.Module, error)
	Set(ctx context.Context, module *model.Module) error
	Invalidate(ctx context.Context, id string) error
	SetTTL(ttl time.Duration)
}

// ConsentStore is implemented by repository.ConsentRepository.
type ConsentStore interface {
	Find(ctx context.Context, studentID, moduleID string) (*model.ConsentRecord, error)
	Upsert(ctx context.Context, record *model.ConsentRecord) (*model.ConsentRecord, error)
}
