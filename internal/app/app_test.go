package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"modulegate_backend/internal/admission"
	"modulegate_backend/internal/apiclient"
	"modulegate_backend/internal/config"
	"modulegate_backend/internal/model"
	"modulegate_backend/internal/testutil"
	"modulegate_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

type testEnv struct {
	app      *App
	server   *httptest.Server
	consents *testutil.ConsentStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: gin.TestMode},
		JWT:       config.JWTConfig{Secret: testSecret},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1, JoinMaxRequests: 100},
		Admission: config.AdmissionConfig{ModuleCacheTTLSeconds: 60, CodeGenerationAttempts: 5},
	}
	consents := testutil.NewConsentStore()
	app := assemble(cfg, nil, nil, &stores{
		modules:  testutil.NewModuleStore(),
		cache:    testutil.NewModuleCache(),
		consents: consents,
	})

	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return &testEnv{app: app, server: srv, consents: consents}
}

func (e *testEnv) bearer(t *testing.T, userID string, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, "Ms. Rivera", testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

// call sends a JSON request and decodes the envelope's data into out.
func (e *testEnv) call(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func (e *testEnv) createModule(t *testing.T, token string, consent bool) model.Module {
	t.Helper()
	var m model.Module
	status := e.call(t, http.MethodPost, "/api/teacher/modules", token, map[string]interface{}{
		"name":              "Intro to Feedback",
		"consent_required":  consent,
		"consent_form_text": "# Research study\n- Participation is optional",
	}, &m)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, m.AccessCode, model.AccessCodeLength)
	return m
}

func TestAdmissionFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.bearer(t, "t1", model.Teacher)
	m := env.createModule(t, teacher, true)

	client := apiclient.New(env.server.URL, 5*time.Second, nil)
	o := admission.NewOrchestrator(client, client, admission.NewMemorySession(), nil)
	var released int
	o.OnRelease = func(admission.Result) { released++ }
	ctx := context.Background()

	res, err := o.Enter(ctx, "  "+strings.ToLower(m.AccessCode)+" ", "s1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, res.Module.ID)
	assert.Equal(t, admission.GatePending, res.Decision.State)

	res, err = o.SubmitConsent(ctx, model.WaiverIneligible)
	require.NoError(t, err)
	assert.Equal(t, admission.GateRecorded, res.Decision.State)
	assert.Equal(t, model.WaiverIneligible, res.Decision.Record.WaiverStatus)
	assert.Equal(t, 1, released)
	assert.Equal(t, 1, env.consents.Count())

	// re-entry skips the code and still sees the recorded choice
	res, err = o.EnterModule(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, admission.GateRecorded, res.Decision.State)
	assert.Equal(t, 2, released)

	// instructor regenerates; the old code is rejected at once
	var regenerated model.Module
	status := env.call(t, http.MethodPost, "/api/teacher/modules/"+m.ID+"/regenerate-code", teacher, nil, &regenerated)
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, m.AccessCode, regenerated.AccessCode)

	_, err = o.Enter(ctx, m.AccessCode, "s2")
	assert.ErrorIs(t, err, admission.ErrCodeInvalid)

	res, err = o.Enter(ctx, regenerated.AccessCode, "s2")
	require.NoError(t, err)
	assert.Equal(t, admission.GatePending, res.Decision.State)
}

func TestDeactivatedModuleIsInactive(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.bearer(t, "t1", model.Teacher)
	m := env.createModule(t, teacher, false)

	status := env.call(t, http.MethodPut, "/api/teacher/modules/"+m.ID+"/active", teacher,
		map[string]bool{"is_active": false}, nil)
	require.Equal(t, http.StatusOK, status)

	client := apiclient.New(env.server.URL, 5*time.Second, nil)
	o := admission.NewOrchestrator(client, client, admission.NewMemorySession(), nil)
	_, err := o.Enter(context.Background(), m.AccessCode, "s1")
	assert.ErrorIs(t, err, admission.ErrModuleInactive)
}

func TestStudentEndpointStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.bearer(t, "t1", model.Teacher)
	m := env.createModule(t, teacher, true)

	var view map[string]interface{}
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPost, "/api/student/join-module?access_code="+strings.ToLower(m.AccessCode), "", nil, &view))
	assert.NotContains(t, view, "access_code")

	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPost, "/api/student/join-module?access_code=ab", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodPost, "/api/student/join-module?access_code=000000", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/student/modules/missing", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodPost, "/api/student/join-module?access_code="+m.AccessCode, "garbage", nil, nil))

	consentPath := "/api/modules/" + m.ID + "/consent/s1"
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPut, consentPath, "", map[string]int{"waiver_status": 4}, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPut, consentPath, "", map[string]string{}, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodPut, "/api/modules/missing/consent/s1", "", map[string]int{"waiver_status": 1}, nil))

	other := env.bearer(t, "s2", model.Student)
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodPut, consentPath, other, map[string]int{"waiver_status": 1}, nil))

	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPut, consentPath, "", map[string]int{"waiver_status": 2}, nil))
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPut, consentPath, "", map[string]int{"waiver_status": 1}, nil))

	var consent struct {
		Recorded bool                `json:"recorded"`
		Record   model.ConsentRecord `json:"record"`
	}
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/student/modules/"+m.ID+"/consent?student_id=s1", "", nil, &consent))
	assert.True(t, consent.Recorded)
	assert.Equal(t, model.WaiverAgree, consent.Record.WaiverStatus)
	assert.Equal(t, 1, env.consents.Count())
}

func TestTeacherEndpointsRequireOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.bearer(t, "t1", model.Teacher)
	m := env.createModule(t, owner, false)

	other := env.bearer(t, "t2", model.Teacher)
	student := env.bearer(t, "s1", model.Student)
	admin := env.bearer(t, "a1", model.Admin)

	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodGet, "/api/teacher/modules", "", nil, nil))
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodGet, "/api/teacher/modules", student, nil, nil))
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodPost, "/api/teacher/modules/"+m.ID+"/regenerate-code", other, nil, nil))
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPost, "/api/teacher/modules/"+m.ID+"/regenerate-code", admin, nil, nil))

	var list []model.Module
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/teacher/modules", owner, nil, &list))
	assert.Len(t, list, 1)
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/teacher/modules", other, nil, &list))
	assert.Empty(t, list)

	assert.Equal(t, http.StatusConflict, env.call(t, http.MethodPost, "/api/teacher/modules", owner,
		map[string]interface{}{"name": "Intro to Feedback"}, nil))

	var updated model.Module
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPut, "/api/teacher/modules/"+m.ID+"/consent-form", owner,
		map[string]interface{}{"consent_required": true, "consent_form_text": "## Updated"}, &updated))
	assert.True(t, updated.ConsentRequired)
	assert.Equal(t, "## Updated", updated.ConsentFormText)
}

func TestConfigCallbackUpdatesCacheTTL(t *testing.T) {
	env := newTestEnv(t)
	cache := env.app.services.module.Cache.(*testutil.ModuleCache)

	for _, cb := range env.app.configCallbacks {
		cb(&config.Config{Admission: config.AdmissionConfig{ModuleCacheTTLSeconds: 5}})
	}
	assert.Equal(t, 5*time.Second, cache.TTL())
}

func TestHealthWithoutDatabase(t *testing.T) {
	env := newTestEnv(t)

	status := env.call(t, http.MethodGet, "/api/health", "", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
