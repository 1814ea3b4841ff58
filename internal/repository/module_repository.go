package repository

import (
	"context"

	"modulegate_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(ctx context.Context, module *model.Module) error {
	return r.DB.WithContext(ctx).Create(module).Error
}

func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*model.Module, error) {
	var module model.Module
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// FindByAccessCode expects an already normalized (upper-case) code.
func (r *ModuleRepository) FindByAccessCode(ctx context.Context, code string) (*model.Module, error) {
	var module model.Module
	err := r.DB.WithContext(ctx).Where("access_code = ?", code).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ModuleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&modules).Error
	return modules, err
}

// UpdateAccessCode swaps the code in a single statement, so the old code stops
// resolving the moment this returns. A collision surfaces as gorm.ErrDuplicatedKey.
func (r *ModuleRepository) UpdateAccessCode(ctx context.Context, id, code string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"access_code": code})
}

func (r *ModuleRepository) UpdateConsentForm(ctx context.Context, id string, required bool, text string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"consent_required":  required,
		"consent_form_text": text,
	})
}

func (r *ModuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"is_active": active})
}

func (r *ModuleRepository) updateColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	result := r.DB.WithContext(ctx).
		Model(&model.Module{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows for unchanged values too
		var count int64
		if err := r.DB.WithContext(ctx).Model(&model.Module{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
