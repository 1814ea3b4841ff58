package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"modulegate_backend/internal/model"
	"modulegate_backend/internal/util"
	"modulegate_backend/pkg/logger"
	"modulegate_backend/pkg/monitoring"
	"modulegate_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ModuleService struct {
	Modules      ModuleStore
	Cache        ModuleCache
	CodeAttempts int
	// GenerateCode is swapped in tests to force collisions.
	GenerateCode func() (string, error)
}

func NewModuleService(modules ModuleStore, cache ModuleCache, codeAttempts int) *ModuleService {
	if codeAttempts < 1 {
		codeAttempts = 1
	}
	return &ModuleService{
		Modules:      modules,
		Cache:        cache,
		CodeAttempts: codeAttempts,
		GenerateCode: model.GenerateAccessCode,
	}
}

type CreateModuleInput struct {
	Name            string     `json:"name" binding:"required,max=255"`
	Description     string     `json:"description"`
	DueDate         *time.Time `json:"due_date"`
	ConsentRequired bool       `json:"consent_required"`
	ConsentFormText string     `json:"consent_form_text"`
	// defaults to active when omitted
	IsActive *bool `json:"is_active"`
}

// ResolveAccessCode looks a typed code up in the store. It never reads the
// cache, so a regenerated code stops resolving immediately.
func (s *ModuleService) ResolveAccessCode(ctx context.Context, raw string) (*model.Module, error) {
	ctx, span := tracing.Start(ctx, "ModuleService.ResolveAccessCode")
	defer span.End()

	code, err := model.NormalizeAccessCode(raw)
	if err != nil {
		monitoring.JoinAttempts.WithLabelValues("malformed").Inc()
		return nil, err
	}

	module, err := s.Modules.FindByAccessCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		monitoring.JoinAttempts.WithLabelValues("invalid").Inc()
		return nil, util.ErrInvalidAccessCode
	}
	if err != nil {
		monitoring.JoinAttempts.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("module.id", module.ID))

	if !module.IsActive {
		monitoring.JoinAttempts.WithLabelValues("inactive").Inc()
		return nil, util.ErrModuleInactive
	}

	monitoring.JoinAttempts.WithLabelValues("ok").Inc()
	return module, nil
}

// GetActive serves re-entry reads by id, through the cache.
func (s *ModuleService) GetActive(ctx context.Context, id string) (*model.Module, error) {
	ctx, span := tracing.Start(ctx, "ModuleService.GetActive")
	defer span.End()
	span.SetAttributes(attribute.String("module.id", id))

	module, err := s.Cache.Get(ctx, id)
	if err != nil {
		logger.Log.Warn("Module cache read failed", zap.String("module_id", id), zap.Error(err))
	}
	if module == nil {
		module, err = s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.Cache.Set(ctx, module); err != nil {
			logger.Log.Warn("Module cache write failed", zap.String("module_id", id), zap.Error(err))
		}
	}

	if !module.IsActive {
		return nil, util.ErrModuleInactive
	}
	return module, nil
}

// Exists reports util.ErrModuleNotFound for unknown ids.
func (s *ModuleService) Exists(ctx context.Context, id string) error {
	_, err := s.find(ctx, id)
	return err
}

func (s *ModuleService) GetOwned(ctx context.Context, user *util.Claims, id string) (*model.Module, error) {
	module, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(user, module) {
		return nil, util.ErrPermissionDenied
	}
	return module, nil
}

func (s *ModuleService) ListByTeacher(ctx context.Context, user *util.Claims) ([]model.Module, error) {
	if user == nil || !user.Role.CanManageModules() {
		return nil, util.ErrPermissionDenied
	}
	return s.Modules.ListByTeacher(ctx, user.UserID)
}

func (s *ModuleService) Create(ctx context.Context, user *util.Claims, input CreateModuleInput) (*model.Module, error) {
	ctx, span := tracing.Start(ctx, "ModuleService.Create")
	defer span.End()

	if user == nil || !user.Role.CanManageModules() {
		return nil, util.ErrPermissionDenied
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	for attempt := 0; attempt < s.CodeAttempts; attempt++ {
		code, err := s.GenerateCode()
		if err != nil {
			return nil, err
		}
		module := &model.Module{
			TeacherID:       user.UserID,
			TeacherName:     user.Name,
			Name:            strings.TrimSpace(input.Name),
			Description:     input.Description,
			AccessCode:      code,
			IsActive:        active,
			DueDate:         input.DueDate,
			ConsentRequired: input.ConsentRequired,
			ConsentFormText: input.ConsentFormText,
		}
		err = s.Modules.Create(ctx, module)
		if err == nil {
			logger.Log.Info("Module created",
				zap.String("module_id", module.ID),
				zap.String("teacher_id", module.TeacherID))
			return module, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// either the code or the (teacher, name) pair collided
		if _, lookupErr := s.Modules.FindByAccessCode(ctx, code); errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNameTaken
		}
	}
	return nil, util.ErrAccessCodeExhausted
}

// RegenerateCode replaces the module's access code. The previous code is
// rejected from the moment the update commits.
func (s *ModuleService) RegenerateCode(ctx context.Context, user *util.Claims, id string) (*model.Module, error) {
	ctx, span := tracing.Start(ctx, "ModuleService.RegenerateCode")
	defer span.End()

	if _, err := s.GetOwned(ctx, user, id); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.CodeAttempts; attempt++ {
		code, err := s.GenerateCode()
		if err != nil {
			return nil, err
		}
		err = s.Modules.UpdateAccessCode(ctx, id, code)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, s.notFound(err)
		}
		monitoring.AccessCodeRegenerations.Inc()
		logger.Log.Info("Access code regenerated", zap.String("module_id", id))
		return s.afterWrite(ctx, id)
	}
	return nil, util.ErrAccessCodeExhausted
}

func (s *ModuleService) UpdateConsentForm(ctx context.Context, user *util.Claims, id string, required bool, text string) (*model.Module, error) {
	if _, err := s.GetOwned(ctx, user, id); err != nil {
		return nil, err
	}
	if err := s.Modules.UpdateConsentForm(ctx, id, required, text); err != nil {
		return nil, s.notFound(err)
	}
	return s.afterWrite(ctx, id)
}

func (s *ModuleService) SetActive(ctx context.Context, user *util.Claims, id string, active bool) (*model.Module, error) {
	if _, err := s.GetOwned(ctx, user, id); err != nil {
		return nil, err
	}
	if err := s.Modules.SetActive(ctx, id, active); err != nil {
		return nil, s.notFound(err)
	}
	return s.afterWrite(ctx, id)
}

func (s *ModuleService) SetCacheTTL(ttl time.Duration) {
	s.Cache.SetTTL(ttl)
}

func (s *ModuleService) afterWrite(ctx context.Context, id string) (*model.Module, error) {
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		logger.Log.Warn("Module cache invalidation failed", zap.String("module_id", id), zap.Error(err))
	}
	return s.find(ctx, id)
}

func (s *ModuleService) find(ctx context.Context, id string) (*model.Module, error) {
	module, err := s.Modules.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err)
	}
	return module, nil
}

func (s *ModuleService) notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrModuleNotFound
	}
	return err
}

func canManage(user *util.Claims, module *model.Module) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case model.Admin:
		return true
	case model.Teacher:
		return module.TeacherID == user.UserID
	default:
		return false
	}
}
