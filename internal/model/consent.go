package model

import "time"

// ConsentRecord is the current research-consent choice of a student for a module.
// (student_id, module_id) is unique; a new submission overwrites the row.
type ConsentRecord struct {
	Record
	StudentID    string       `gorm:"size:64;not null;uniqueIndex:uix_student_module_consent" json:"student_id"`
	ModuleID     string       `gorm:"size:36;not null;uniqueIndex:uix_student_module_consent;index" json:"module_id"`
	WaiverStatus WaiverStatus `gorm:"not null" json:"waiver_status"`
	// server clock at the time the write was received
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}

func (ConsentRecord) TableName() string {
	return "consent_records"
}
