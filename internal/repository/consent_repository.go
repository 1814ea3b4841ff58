package repository

import (
	"context"
	"errors"

	"modulegate_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConsentRepository struct {
	DB *gorm.DB
}

func NewConsentRepository(db *gorm.DB) *ConsentRepository {
	return &ConsentRepository{DB: db}
}

// Find returns nil, nil when the student has not recorded a choice yet.
func (r *ConsentRepository) Find(ctx context.Context, studentID, moduleID string) (*model.ConsentRecord, error) {
	var record model.ConsentRecord
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert inserts the record or overwrites the existing one for the same
// (student, module) pair, and returns the row as stored.
func (r *ConsentRepository) Upsert(ctx context.Context, record *model.ConsentRecord) (*model.ConsentRecord, error) {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"waiver_status", "recorded_at", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return nil, err
	}
	// the insert id is not reliable after an update, read the row back
	stored, err := r.Find(ctx, record.StudentID, record.ModuleID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return stored, nil
}
