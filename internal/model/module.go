package model

import (
	"time"
)

// Module is a unit of course work students join with its access code.
type Module struct {
	UUIDBase
	TeacherID   string `gorm:"size:64;not null;uniqueIndex:uix_teacher_module_name" json:"teacher_id"`
	TeacherName string `gorm:"size:100" json:"teacher_name,omitempty"`
	Name        string `gorm:"size:255;not null;uniqueIndex:uix_teacher_module_name" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// stored upper-case; unique over every module so it is also unique among active ones
	AccessCode      string     `gorm:"size:6;not null;uniqueIndex" json:"access_code"`
	IsActive        bool       `gorm:"not null" json:"is_active"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	ConsentRequired bool       `gorm:"not null" json:"consent_required"`
	ConsentFormText string     `gorm:"type:text" json:"consent_form_text"`
}

func (Module) TableName() string {
	return "modules"
}

// ModuleView is what students see of a module. The access code is left out.
type ModuleView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	TeacherID       string     `json:"teacher_id"`
	TeacherName     string     `json:"teacher_name,omitempty"`
	ConsentRequired bool       `json:"consent_required"`
	ConsentFormText string     `json:"consent_form_text"`
	DueDate         *time.Time `json:"due_date,omitempty"`
}

func (m *Module) View() ModuleView {
	return ModuleView{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		TeacherID:       m.TeacherID,
		TeacherName:     m.TeacherName,
		ConsentRequired: m.ConsentRequired,
		ConsentFormText: m.ConsentFormText,
		DueDate:         m.DueDate,
	}
}
