// Package testutil holds in-memory stand-ins for the gorm and redis backed
// stores, so services and handlers can be tested without MySQL or redis.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"modulegate_backend/internal/model"

	"gorm.io/gorm"
)

// ModuleStore mirrors repository.ModuleRepository, including the unique
// indexes on access_code and (teacher_id, name).
type ModuleStore struct {
	mu      sync.Mutex
	modules map[string]model.Module
	// Err, when set, is returned by every call.
	Err error
}

func NewModuleStore() *ModuleStore {
	return &ModuleStore{modules: make(map[string]model.Module)}
}

func (s *ModuleStore) Create(_ context.Context, module *model.Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, m := range s.modules {
		if m.AccessCode == module.AccessCode {
			return gorm.ErrDuplicatedKey
		}
		if m.TeacherID == module.TeacherID && m.Name == module.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if module.ID == "" {
		module.ID = model.GenerateUUID()
	}
	now := time.Now()
	module.CreatedAt = now
	module.UpdatedAt = now
	s.modules[module.ID] = *module
	return nil
}

func (s *ModuleStore) FindByID(_ context.Context, id string) (*model.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (s *ModuleStore) FindByAccessCode(_ context.Context, code string) (*model.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, m := range s.modules {
		if m.AccessCode == code {
			found := m
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *ModuleStore) ListByTeacher(_ context.Context, teacherID string) ([]model.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Module
	for _, m := range s.modules {
		if m.TeacherID == teacherID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ModuleStore) UpdateAccessCode(_ context.Context, id, code string) error {
	return s.update(id, func(m *model.Module) error {
		for otherID, other := range s.modules {
			if otherID != id && other.AccessCode == code {
				return gorm.ErrDuplicatedKey
			}
		}
		m.AccessCode = code
		return nil
	})
}

func (s *ModuleStore) UpdateConsentForm(_ context.Context, id string, required bool, text string) error {
	return s.update(id, func(m *model.Module) error {
		m.ConsentRequired = required
		m.ConsentFormText = text
		return nil
	})
}

func (s *ModuleStore) SetActive(_ context.Context, id string, active bool) error {
	return s.update(id, func(m *model.Module) error {
		m.IsActive = active
		return nil
	})
}

func (s *ModuleStore) update(id string, apply func(m *model.Module) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	m, ok := s.modules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if err := apply(&m); err != nil {
		return err
	}
	m.UpdatedAt = time.Now()
	s.modules[id] = m
	return nil
}

// Put stores a module as-is, bypassing the unique checks.
func (s *ModuleStore) Put(module model.Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[module.ID] = module
}

// ModuleCache mirrors repository.ModuleCache.
type ModuleCache struct {
	mu      sync.Mutex
	entries map[string]model.Module
	ttl     time.Duration
	Hits    int
}

func NewModuleCache() *ModuleCache {
	return &ModuleCache{entries: make(map[string]model.Module), ttl: time.Minute}
}

func (c *ModuleCache) Get(_ context.Context, id string) (*model.Module, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	c.Hits++
	return &m, nil
}

func (c *ModuleCache) Set(_ context.Context, module *model.Module) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl > 0 {
		c.entries[module.ID] = *module
	}
	return nil
}

func (c *ModuleCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *ModuleCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

func (c *ModuleCache) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl
}

// Cached reports whether id currently has an entry.
func (c *ModuleCache) Cached(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

type consentKey struct {
	studentID string
	moduleID  string
}

// ConsentStore mirrors repository.ConsentRepository: one row per (student, module).
type ConsentStore struct {
	mu      sync.Mutex
	records map[consentKey]model.ConsentRecord
	nextID  uint
	Writes  int
	Err     error
}

func NewConsentStore() *ConsentStore {
	return &ConsentStore{records: make(map[consentKey]model.ConsentRecord)}
}

func (s *ConsentStore) Find(_ context.Context, studentID, moduleID string) (*model.ConsentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.records[consentKey{studentID, moduleID}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *ConsentStore) Upsert(_ context.Context, record *model.ConsentRecord) (*model.ConsentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.Writes++
	key := consentKey{record.StudentID, record.ModuleID}
	now := time.Now()
	stored, ok := s.records[key]
	if !ok {
		s.nextID++
		stored = model.ConsentRecord{
			Record:    model.Record{ID: s.nextID, CreatedAt: now},
			StudentID: record.StudentID,
			ModuleID:  record.ModuleID,
		}
	}
	stored.WaiverStatus = record.WaiverStatus
	stored.RecordedAt = record.RecordedAt
	stored.UpdatedAt = now
	s.records[key] = stored
	return &stored, nil
}

// Count returns the number of stored records.
func (s *ConsentStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
