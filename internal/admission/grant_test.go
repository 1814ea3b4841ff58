package admission

import (
	"testing"
	"time"

	"modulegate_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestIssueGrant(t *testing.T) {
	session := NewMemorySession()
	m := NewGrantManager(session)
	m.Now = fixedClock()

	view := &model.ModuleView{ID: "m1", Name: "Intro", TeacherName: "Ms. Rivera"}
	g, err := m.Issue(view, " s1 ")
	require.NoError(t, err)

	assert.Equal(t, "m1", g.ModuleID)
	assert.Equal(t, "Intro", g.ModuleName)
	assert.Equal(t, "s1", g.StudentID)
	assert.Equal(t, m.Now(), g.IssuedAt)
	assert.True(t, g.Has(PermViewContent))
	assert.True(t, g.Has(PermSubmitResponses))
	assert.False(t, g.Has("grade_submissions"))

	stored, ok := session.Get()
	require.True(t, ok)
	assert.Equal(t, g, stored)
}

func TestIssueTwiceIsStructurallyEqual(t *testing.T) {
	m := NewGrantManager(NewMemorySession())
	m.Now = fixedClock()
	view := &model.ModuleView{ID: "m1", Name: "Intro"}

	first, err := m.Issue(view, "s1")
	require.NoError(t, err)
	second, err := m.Issue(view, "s1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIssueRejectsMissingInput(t *testing.T) {
	session := NewMemorySession()
	m := NewGrantManager(session)

	_, err := m.Issue(nil, "s1")
	assert.ErrorIs(t, err, ErrInvalidGrantInput)
	_, err = m.Issue(&model.ModuleView{}, "s1")
	assert.ErrorIs(t, err, ErrInvalidGrantInput)
	_, err = m.Issue(&model.ModuleView{ID: "m1"}, "  ")
	assert.ErrorIs(t, err, ErrInvalidGrantInput)

	_, ok := session.Get()
	assert.False(t, ok)
}

func TestReissueOverwritesWholesale(t *testing.T) {
	m := NewGrantManager(NewMemorySession())
	_, err := m.Issue(&model.ModuleView{ID: "m1", Name: "Intro", TeacherName: "T"}, "s1")
	require.NoError(t, err)
	_, err = m.Issue(&model.ModuleView{ID: "m2", Name: "Next"}, "s2")
	require.NoError(t, err)

	_, ok := m.Current("m1")
	assert.False(t, ok)
	g, ok := m.Current("m2")
	require.True(t, ok)
	assert.Equal(t, "s2", g.StudentID)
	assert.Empty(t, g.TeacherName)

	m.Clear()
	_, ok = m.Current("m2")
	assert.False(t, ok)
}
