package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"modulegate_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement gorm builds, with its values inlined.
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, sql)
}

func (r *sqlRecorder) statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

// dryRunDB builds MySQL statements without a server. sql.Open never dials
// and the automatic ping is off.
func dryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "gate:gate@tcp(127.0.0.1:3306)/modulegate?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return db, rec
}

func TestConsentUpsertOverwritesChoiceOnly(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewConsentRepository(db)

	_, err := repo.Upsert(context.Background(), &model.ConsentRecord{
		StudentID:    "s1",
		ModuleID:     "m1",
		WaiverStatus: model.WaiverAgree,
		RecordedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	stmts := rec.statements()
	require.Len(t, stmts, 2)

	insert := stmts[0]
	assert.Contains(t, insert, "INSERT INTO `consent_records`")
	idx := strings.Index(insert, "ON DUPLICATE KEY UPDATE")
	require.NotEqual(t, -1, idx, insert)

	updates := insert[idx:]
	assert.Contains(t, updates, "`waiver_status`=")
	assert.Contains(t, updates, "`recorded_at`=")
	assert.Contains(t, updates, "`updated_at`=")
	assert.NotContains(t, updates, "`student_id`")
	assert.NotContains(t, updates, "`module_id`")
	assert.NotContains(t, updates, "`created_at`")

	// the stored row is read back by its natural key
	assert.Contains(t, stmts[1], "SELECT * FROM `consent_records` WHERE student_id = 's1' AND module_id = 'm1'")
}

func TestModuleUpdateChecksExistenceWhenNothingChanged(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewModuleRepository(db)

	// a dry run affects no rows, which is also what MySQL reports for a missing id
	err := repo.SetActive(context.Background(), "m1", false)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	stmts := rec.statements()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "UPDATE `modules` SET")
	assert.Contains(t, stmts[0], "`is_active`=false")
	assert.Contains(t, stmts[0], "WHERE id = 'm1'")
	assert.Contains(t, stmts[0], "`deleted_at` IS NULL")
	assert.Contains(t, stmts[1], "SELECT count(*) FROM `modules` WHERE id = 'm1'")
}

func TestModuleAccessCodeSwapIsSingleStatement(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewModuleRepository(db)

	_ = repo.UpdateAccessCode(context.Background(), "m1", "XYZ789")

	stmts := rec.statements()
	require.NotEmpty(t, stmts)
	assert.Contains(t, stmts[0], "`access_code`='XYZ789'")
	assert.Contains(t, stmts[0], "WHERE id = 'm1'")
}
