package admission

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"modulegate_backend/internal/model"
)

type statusErr int

func (e statusErr) Error() string   { return http.StatusText(int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

// fakeServer answers like the module gate API, counting every call.
type fakeServer struct {
	mu       sync.Mutex
	modules  map[string]model.Module
	consents map[string]model.ConsentRecord

	joinCalls    int
	getCalls     int
	consentReads int
	consentPuts  int

	// when set, the next matching call fails with it
	readErr error
	putErr  error
	getErr  error
	// when set, JoinModule blocks until it is closed
	joinGate chan struct{}
}

func newFakeServer(modules ...model.Module) *fakeServer {
	s := &fakeServer{
		modules:  make(map[string]model.Module),
		consents: make(map[string]model.ConsentRecord),
	}
	for _, m := range modules {
		s.modules[m.ID] = m
	}
	return s
}

func module(id, code string, consent bool) model.Module {
	return model.Module{
		UUIDBase:        model.UUIDBase{ID: id},
		Name:            "Module " + id,
		AccessCode:      code,
		IsActive:        true,
		ConsentRequired: consent,
		ConsentFormText: "# Research study\n- anonymized",
	}
}

func (s *fakeServer) JoinModule(ctx context.Context, code string) (*model.ModuleView, error) {
	s.mu.Lock()
	s.joinCalls++
	gate := s.joinGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.modules {
		if strings.EqualFold(m.AccessCode, code) {
			if !m.IsActive {
				return nil, statusErr(http.StatusForbidden)
			}
			v := m.View()
			return &v, nil
		}
	}
	return nil, statusErr(http.StatusNotFound)
}

func (s *fakeServer) GetModule(ctx context.Context, id string) (*model.ModuleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if err := s.getErr; err != nil {
		s.getErr = nil
		return nil, err
	}
	m, ok := s.modules[id]
	if !ok {
		return nil, statusErr(http.StatusNotFound)
	}
	if !m.IsActive {
		return nil, statusErr(http.StatusForbidden)
	}
	v := m.View()
	return &v, nil
}

func (s *fakeServer) GetConsent(ctx context.Context, moduleID, studentID string) (*model.ConsentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consentReads++
	if err := s.readErr; err != nil {
		s.readErr = nil
		return nil, err
	}
	r, ok := s.consents[moduleID+"/"+studentID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *fakeServer) PutConsent(ctx context.Context, moduleID, studentID string, status model.WaiverStatus) (*model.ConsentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consentPuts++
	if err := s.putErr; err != nil {
		s.putErr = nil
		return nil, err
	}
	r := model.ConsentRecord{
		StudentID:    studentID,
		ModuleID:     moduleID,
		WaiverStatus: status,
		RecordedAt:   time.Now().UTC(),
	}
	s.consents[moduleID+"/"+studentID] = r
	return &r, nil
}

func (s *fakeServer) regenerate(id, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.modules[id]
	m.AccessCode = code
	s.modules[id] = m
}

func (s *fakeServer) consentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.consents)
}
