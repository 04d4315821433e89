package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MeloticZ/CourseX/internal/catalog"
	"github.com/MeloticZ/CourseX/internal/dto"
	"github.com/MeloticZ/CourseX/internal/filter"
	"github.com/MeloticZ/CourseX/internal/model"
	"github.com/MeloticZ/CourseX/internal/service"
	"github.com/MeloticZ/CourseX/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.UserProfile
	registerErr    error
	loginResult    *dto.TokenPairResponse
	loginErr       error
	refreshResult  *dto.TokenPairResponse
	refreshErr     error
	logoutErr      error
	currentResult  *dto.UserProfile
	currentErr     error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.UserProfile, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenPairResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenPairResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserProfile, error) {
	return m.currentResult, m.currentErr
}

// ── Mock CatalogService ──

type mockCatalogService struct {
	termsResult    *dto.TermListResponse
	termsErr       error
	programsResult json.RawMessage
	programsErr    error
	coursesResult  []catalog.Course
	coursesErr     error
	detailsResult  *catalog.CourseDetails
	detailsErr     error
	filterResult   []catalog.Course
	filterErr      error
	filterUserID   string
	programQuery   string
}

func (m *mockCatalogService) ListTerms(_ context.Context) (*dto.TermListResponse, error) {
	return m.termsResult, m.termsErr
}
func (m *mockCatalogService) ListPrograms(_ context.Context, _ string) (json.RawMessage, error) {
	return m.programsResult, m.programsErr
}
func (m *mockCatalogService) ListCourses(_ context.Context, _ string) ([]catalog.Course, error) {
	return m.coursesResult, m.coursesErr
}
func (m *mockCatalogService) ListProgramCourses(_ context.Context, _, school, program string) ([]catalog.Course, error) {
	m.programQuery = school + "/" + program
	return m.coursesResult, m.coursesErr
}
func (m *mockCatalogService) GetCourseDetails(_ context.Context, _, _ string) (*catalog.CourseDetails, error) {
	return m.detailsResult, m.detailsErr
}
func (m *mockCatalogService) GetSectionDetails(_ context.Context, _, _, _ string) (*catalog.CourseDetails, error) {
	return m.detailsResult, m.detailsErr
}
func (m *mockCatalogService) FilterCourses(_ context.Context, _ string, _ filter.State, userID string) ([]catalog.Course, error) {
	m.filterUserID = userID
	return m.filterResult, m.filterErr
}
func (m *mockCatalogService) ResetCache(_ string) {}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	addResult    *model.ScheduleEntry
	addErr       error
	removeErr    error
	myResult     *dto.MyScheduleResponse
	myErr        error
	collisions   []string
	collisionErr error
	blockResult  *model.ManualBlock
	blockErr     error
	listResult   []model.ManualBlock
	listErr      error
	deleteErr    error
	clearErr     error
}

func (m *mockScheduleService) AddSection(_ context.Context, _, _ string, _ *dto.AddSectionRequest) (*model.ScheduleEntry, error) {
	return m.addResult, m.addErr
}
func (m *mockScheduleService) RemoveSection(_ context.Context, _, _, _, _ string) error {
	return m.removeErr
}
func (m *mockScheduleService) GetMySchedule(_ context.Context, _, _ string) (*dto.MyScheduleResponse, error) {
	return m.myResult, m.myErr
}
func (m *mockScheduleService) CheckCollisions(_ context.Context, _, _, _ string) ([]string, error) {
	return m.collisions, m.collisionErr
}
func (m *mockScheduleService) CollisionFuncFor(_ context.Context, _, _ string) filter.CollisionFunc {
	return nil
}
func (m *mockScheduleService) CreateManualBlock(_ context.Context, _, _ string, _ *dto.CreateManualBlockRequest) (*model.ManualBlock, error) {
	return m.blockResult, m.blockErr
}
func (m *mockScheduleService) ListManualBlocks(_ context.Context, _, _ string) ([]model.ManualBlock, error) {
	return m.listResult, m.listErr
}
func (m *mockScheduleService) UpdateManualBlock(_ context.Context, _, _ string, _ *dto.UpdateManualBlockRequest) (*model.ManualBlock, error) {
	return m.blockResult, m.blockErr
}
func (m *mockScheduleService) DeleteManualBlock(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockScheduleService) ClearManualBlocks(_ context.Context, _, _ string) error {
	return m.clearErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportScheduleXLSX(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportScheduleICS(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Register_Success(t *testing.T) {
	mock := &mockAuthService{
		registerResult: &dto.UserProfile{UserID: "user-001", Name: "张三", Email: "zhangsan@example.com"},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name: "张三", Email: "zhangsan@example.com", Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	mock := &mockAuthService{registerErr: service.ErrEmailTaken}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name: "张三", Email: "zhangsan@example.com", Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email: "zhangsan@example.com", Password: "wrong-password",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CatalogHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCatalogHandler_ListTerms(t *testing.T) {
	mock := &mockCatalogService{
		termsResult: &dto.TermListResponse{Terms: []string{"20251", "20253"}, DefaultTerm: "20253"},
	}
	h := NewCatalogHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/terms", nil)

	r := gin.New()
	r.GET("/terms", h.ListTerms)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCatalogHandler_ListCourses_ProgramQuery(t *testing.T) {
	mock := &mockCatalogService{coursesResult: []catalog.Course{}}
	h := NewCatalogHandler(mock)

	r := gin.New()
	r.GET("/terms/:termId/courses", h.ListCourses)

	// 带齐 school+program 才走专业范围查询
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/terms/20253/courses?school=Viterbi&program=CS", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.programQuery != "Viterbi/CS" {
		t.Errorf("期望透传 school/program，实际: %q", mock.programQuery)
	}

	// 只有 school 时回落到全量列表
	mock.programQuery = ""
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/terms/20253/courses?school=Viterbi", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.programQuery != "" {
		t.Error("缺少 program 时不应走专业范围查询")
	}
}

func TestCatalogHandler_GetCourseDetails_NotFound(t *testing.T) {
	mock := &mockCatalogService{detailsErr: service.ErrCourseNotFound}
	h := NewCatalogHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/terms/20253/courses/NOPE-999", nil)

	r := gin.New()
	r.GET("/terms/:termId/courses/:code", h.GetCourseDetails)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12002 {
		t.Errorf("expected error code 12002, got %d", resp.Code)
	}
}

func TestCatalogHandler_FilterCourses_AnonymousAndAuthed(t *testing.T) {
	mock := &mockCatalogService{filterResult: []catalog.Course{}}
	h := NewCatalogHandler(mock)

	// 匿名：user_id 为空串
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/terms/20253/courses/filter", jsonBody(dto.FilterRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/terms/:termId/courses/filter", h.FilterCourses)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.filterUserID != "" {
		t.Errorf("匿名请求不应携带 user_id: %q", mock.filterUserID)
	}

	// 已认证：user_id 透传到 Service
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/terms/20253/courses/filter", jsonBody(dto.FilterRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r = gin.New()
	r.POST("/terms/:termId/courses/filter", func(c *gin.Context) {
		setAuth(c)
		h.FilterCourses(c)
	})
	r.ServeHTTP(w, req)

	if mock.filterUserID != "test-user-id" {
		t.Errorf("已认证请求应透传 user_id，实际: %q", mock.filterUserID)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_AddSection_Success(t *testing.T) {
	mock := &mockScheduleService{
		addResult: &model.ScheduleEntry{EntryID: "entry-001", CourseCode: "CSCI-104", SectionID: "29979"},
	}
	h := NewScheduleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/terms/20253/schedule/sections", jsonBody(dto.AddSectionRequest{
		CourseCode: "CSCI-104", SectionID: "29979",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/terms/:termId/schedule/sections", func(c *gin.Context) {
		setAuth(c)
		h.AddSection(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestScheduleHandler_AddSection_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"SectionNotFound", service.ErrSectionNotFound, 404, 13001},
		{"AlreadyScheduled", service.ErrAlreadyScheduled, 409, 13002},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockScheduleService{addErr: tt.err}
			h := NewScheduleHandler(mock)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/terms/20253/schedule/sections", jsonBody(dto.AddSectionRequest{
				CourseCode: "CSCI-104", SectionID: "29979",
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/terms/:termId/schedule/sections", func(c *gin.Context) {
				setAuth(c)
				h.AddSection(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestScheduleHandler_CheckCollisions_EmptyAsArray(t *testing.T) {
	mock := &mockScheduleService{collisions: nil}
	h := NewScheduleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/terms/20253/schedule/collisions", jsonBody(dto.CollisionCheckRequest{
		Spec: "Mon 10:00-11:00",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/terms/:termId/schedule/collisions", func(c *gin.Context) {
		setAuth(c)
		h.CheckCollisions(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	// 无冲突也应是 [] 而不是 null
	if !bytes.Contains(w.Body.Bytes(), []byte(`"colliding":[]`)) {
		t.Errorf("colliding 应序列化为空数组: %s", w.Body.String())
	}
}

func TestScheduleHandler_ManualBlock_InvalidRange(t *testing.T) {
	mock := &mockScheduleService{blockErr: service.ErrInvalidTimeRange}
	h := NewScheduleHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/terms/20253/schedule/blocks", jsonBody(dto.CreateManualBlockRequest{
		DayIndex: 1, StartTime: "11:00", EndTime: "10:00",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/terms/:termId/schedule/blocks", func(c *gin.Context) {
		setAuth(c)
		h.CreateManualBlock(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13005 {
		t.Errorf("expected code 13005, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_XLSX_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "schedule_20253.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/terms/20253/export/schedule.xlsx", nil)

	r := gin.New()
	r.GET("/terms/:termId/export/schedule.xlsx", func(c *gin.Context) {
		setAuth(c)
		h.ExportScheduleXLSX(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_EmptySchedule(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportEmptySchedule}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/terms/20253/export/schedule.ics", nil)

	r := gin.New()
	r.GET("/terms/:termId/export/schedule.ics", func(c *gin.Context) {
		setAuth(c)
		h.ExportScheduleICS(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14001 {
		t.Errorf("expected code 14001, got %d", resp.Code)
	}
}
