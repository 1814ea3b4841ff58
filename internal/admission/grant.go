package admission

import (
	"strings"
	"sync"
	"time"

	"modulegate_backend/internal/model"
)

type Permission string

const (
	PermViewContent     Permission = "view_content"
	PermSubmitResponses Permission = "submit_responses"
)

// Grant is the session-held capability issued after a code is redeemed. It is
// replaced wholesale, never edited.
type Grant struct {
	ModuleID    string       `json:"moduleId"`
	ModuleName  string       `json:"moduleName"`
	TeacherName string       `json:"teacherName,omitempty"`
	StudentID   string       `json:"studentId"`
	IssuedAt    time.Time    `json:"accessTime"`
	Permissions []Permission `json:"permissions"`
}

func (g Grant) Has(p Permission) bool {
	for _, granted := range g.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// SessionStore holds at most one grant for the lifetime of a browsing session.
// It is never shared between sessions.
type SessionStore interface {
	Get() (Grant, bool)
	Put(g Grant)
	Delete()
}

type MemorySession struct {
	mu    sync.Mutex
	grant *Grant
}

func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (s *MemorySession) Get() (Grant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grant == nil {
		return Grant{}, false
	}
	return *s.grant, true
}

func (s *MemorySession) Put(g Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grant = &g
}

func (s *MemorySession) Delete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grant = nil
}

type GrantManager struct {
	Session SessionStore
	Now     func() time.Time
}

func NewGrantManager(session SessionStore) *GrantManager {
	return &GrantManager{Session: session, Now: time.Now}
}

// Issue builds a grant for module and studentID and stores it, replacing any
// earlier one. Nothing is stored when an input is missing.
func (m *GrantManager) Issue(module *model.ModuleView, studentID string) (Grant, error) {
	studentID = strings.TrimSpace(studentID)
	if module == nil || module.ID == "" || studentID == "" {
		return Grant{}, ErrInvalidGrantInput
	}

	g := Grant{
		ModuleID:    module.ID,
		ModuleName:  module.Name,
		TeacherName: module.TeacherName,
		StudentID:   studentID,
		IssuedAt:    m.Now(),
		Permissions: []Permission{PermViewContent, PermSubmitResponses},
	}
	m.Session.Put(g)
	return g, nil
}

// Current returns the stored grant if it is for moduleID.
func (m *GrantManager) Current(moduleID string) (Grant, bool) {
	g, ok := m.Session.Get()
	if !ok || g.ModuleID != moduleID {
		return Grant{}, false
	}
	return g, true
}

func (m *GrantManager) Clear() {
	m.Session.Delete()
}
