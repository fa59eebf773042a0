package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/credential"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow/workflowtest"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "staffpass1"

type published struct {
	key string
	msg amqp.Publishing
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{key: key, msg: msg})
	return nil
}

type testServer struct {
	handler *Handler
	svc     *workflow.Service
	store   *workflowtest.Store
	mail    *fakePublisher

	admin *domain.User
	staff *domain.User
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.RabbitMQ.Queue = "email_queue"
	cfg.RabbitMQ.PublishTimeout = 1
	cfg.NewUser.PasswordLength = 12
	cfg.InitialAdmin.Email = "admin1@example.com"

	s := &testServer{
		store: workflowtest.NewStore(),
		mail:  &fakePublisher{},
	}
	s.svc = workflow.New(s.store, credential.NewBcrypt(bcrypt.MinCost))

	h, err := NewHandler(cfg, s.svc, s.mail, nil)
	require.NoError(t, err)
	h.RegisterRoutes()
	s.handler = h

	s.admin = s.register(t, "Admin One", "admin1@example.com", domain.RoleAdmin)
	s.staff = s.register(t, "Staff One", "staff1@example.com", domain.RoleStaff)

	return s
}

func (s *testServer) register(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()

	user, err := s.svc.RegisterUser(context.Background(), workflow.NewUser{
		Name:     name,
		Email:    email,
		Password: testPassword,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.handler.Mux.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func (s *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec, resp := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.True(t, resp.Success, resp.Message)

	for _, c := range rec.Result().Cookies() {
		if c.Name == TokenCookieName {
			return c
		}
	}
	t.Fatal("登录响应中没有令牌")
	return nil
}

func decodeData[T any](t *testing.T, resp testResponse) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	_, resp := s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "staff1@example.com",
		"password": "wrong",
	}, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, domain.ErrInvalidCredentials.Message, resp.Message)

	_, resp = s.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "staff1@example.com",
	}, nil)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	cookie := s.login(t, "STAFF1@example.com", testPassword)

	_, resp = s.do(t, http.MethodGet, "/my-info", nil, cookie)
	require.True(t, resp.Success)
	me := decodeData[domain.User](t, resp)
	assert.Equal(t, s.staff.ID, me.ID)
	assert.NotContains(t, string(resp.Data), "passwordHash")
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	_, resp := s.do(t, http.MethodGet, "/my-info", nil, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户未登录", resp.Message)

	_, resp = s.do(t, http.MethodGet, "/my-info", nil, &http.Cookie{Name: TokenCookieName, Value: "garbage"})
	assert.False(t, resp.Success)
	assert.Equal(t, "无效的令牌", resp.Message)
}

func TestStaffCannotCallAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "staff1@example.com", testPassword)

	_, resp := s.do(t, http.MethodPost, "/shifts/manual", map[string]any{
		"userID": s.staff.ID,
		"date":   "2024-01-03",
	}, cookie)
	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)

	_, resp = s.do(t, http.MethodGet, "/reports/shifts?weekStart=2024-01-01&weekEnd=2024-01-07", nil, cookie)
	assert.Equal(t, "权限不足", resp.Message)

	assert.Empty(t, s.store.Shifts())
}

func TestChangeRequestFlow(t *testing.T) {
	s := newTestServer(t)
	adminCookie := s.login(t, "admin1@example.com", testPassword)
	staffCookie := s.login(t, "staff1@example.com", testPassword)

	_, resp := s.do(t, http.MethodPost, "/shifts/manual", map[string]any{
		"userID": s.staff.ID,
		"date":   "2024-01-03",
	}, adminCookie)
	require.True(t, resp.Success, resp.Message)
	shift := decodeData[domain.Shift](t, resp)

	changePath := fmt.Sprintf("/shifts/%d/change-request", shift.ID)

	// 管理员不是员工，不能提交变更申请
	_, resp = s.do(t, http.MethodPut, changePath, map[string]string{"text": "swap"}, adminCookie)
	assert.Equal(t, "权限不足", resp.Message)

	_, resp = s.do(t, http.MethodPut, changePath, map[string]string{"text": "swap with Bob"}, staffCookie)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, domain.RequestPending, decodeData[domain.Shift](t, resp).RequestStatus)

	body := map[string]any{"userID": s.staff.ID}
	_, resp = s.do(t, http.MethodPost, changePath+"/approve", body, adminCookie)
	require.True(t, resp.Success, resp.Message)
	assert.Contains(t, resp.Message, "已批准")

	_, resp = s.do(t, http.MethodPost, changePath+"/approve", body, adminCookie)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "没有待处理的变更申请")

	_, resp = s.do(t, http.MethodPut, changePath, map[string]string{"text": "again"}, staffCookie)
	assert.Equal(t, domain.ErrRequestDecided.Message, resp.Message)

	_, resp = s.do(t, http.MethodPut, "/shifts/abc/change-request", map[string]string{"text": "x"}, staffCookie)
	assert.Equal(t, "班次ID无效", resp.Message)
}

func TestAttendanceAndShiftReport(t *testing.T) {
	s := newTestServer(t)
	adminCookie := s.login(t, "admin1@example.com", testPassword)
	staffCookie := s.login(t, "staff1@example.com", testPassword)

	_, resp := s.do(t, http.MethodPost, "/shifts/weekly", map[string]any{
		"userID":    s.staff.ID,
		"weekStart": "2024-01-01",
	}, adminCookie)
	require.True(t, resp.Success, resp.Message)
	shifts := decodeData[[]domain.Shift](t, resp)
	require.Len(t, shifts, 5)

	clockOutPath := fmt.Sprintf("/shifts/%d/clock-out", shifts[0].ID)
	_, resp = s.do(t, http.MethodPost, clockOutPath, map[string]string{"timeOut": "2024-01-01T16:00"}, staffCookie)
	assert.Equal(t, domain.ErrNoActiveRecord.Message, resp.Message)

	_, resp = s.do(t, http.MethodPost, fmt.Sprintf("/shifts/%d/clock-in", shifts[0].ID), map[string]string{"timeIn": "2024-01-01 08:00"}, staffCookie)
	assert.Equal(t, domain.ErrInvalidTimestamp.Message, resp.Message)

	_, resp = s.do(t, http.MethodPost, fmt.Sprintf("/shifts/%d/clock-in", shifts[0].ID), map[string]string{"timeIn": "2024-01-01T08:00"}, staffCookie)
	require.True(t, resp.Success, resp.Message)

	_, resp = s.do(t, http.MethodPost, clockOutPath, map[string]string{"timeOut": "2024-01-01T16:00"}, staffCookie)
	require.True(t, resp.Success, resp.Message)

	_, resp = s.do(t, http.MethodGet, "/reports/shifts?weekStart=2024-01-01&weekEnd=2024-01-07", nil, adminCookie)
	require.True(t, resp.Success, resp.Message)
	reports := decodeData[[]domain.StaffShiftReport](t, resp)
	require.Len(t, reports, 1)
	assert.Equal(t, 5, reports[0].ScheduledShifts)
	assert.Equal(t, 1, reports[0].AttendanceRecords)
	assert.InDelta(t, 8.0, reports[0].TotalHours, 1e-9)

	_, resp = s.do(t, http.MethodGet, "/reports/weekly?weekStart=2024-01-07&weekEnd=2024-01-01", nil, adminCookie)
	assert.Equal(t, domain.ErrInvalidInterval.Message, resp.Message)

	_, resp = s.do(t, http.MethodGet, "/reports/roster?weekStart=2024/01/01&weekEnd=2024-01-07", nil, adminCookie)
	assert.Equal(t, domain.ErrInvalidDate.Message, resp.Message)

	_, resp = s.do(t, http.MethodGet, "/reports/roster?weekStart=2024-01-01&weekEnd=2024-01-07", nil, adminCookie)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, decodeData[[]domain.WeeklyRosterEntry](t, resp), 5)

	_, resp = s.do(t, http.MethodGet, "/my-info/roster", nil, staffCookie)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, decodeData[[]domain.Roster](t, resp), 5)
}

func TestScheduleShiftRoute(t *testing.T) {
	s := newTestServer(t)
	adminCookie := s.login(t, "admin1@example.com", testPassword)

	_, resp := s.do(t, http.MethodPost, "/shifts", map[string]any{
		"userID":    s.staff.ID,
		"weekStart": "2024-01-01",
		"weekEnd":   "2024-01-05",
	}, adminCookie)
	require.True(t, resp.Success, resp.Message)
	shift := decodeData[domain.Shift](t, resp)

	body := map[string]any{"userID": s.staff.ID, "shiftIDs": []int64{shift.ID}}
	_, resp = s.do(t, http.MethodPost, "/rosters", body, adminCookie)
	require.True(t, resp.Success, resp.Message)

	_, resp = s.do(t, http.MethodPost, "/rosters", body, adminCookie)
	assert.Equal(t, domain.ErrAlreadyRostered.Message, resp.Message)
	assert.Len(t, s.store.Rosters(), 1)
}

func TestCreateUserPublishesMail(t *testing.T) {
	s := newTestServer(t)
	adminCookie := s.login(t, "admin1@example.com", testPassword)

	_, resp := s.do(t, http.MethodPost, "/users", map[string]string{
		"name":  "New Staff",
		"email": "new@example.com",
		"role":  string(domain.RoleStaff),
	}, adminCookie)
	require.True(t, resp.Success, resp.Message)

	require.Len(t, s.mail.messages, 1)
	assert.Equal(t, "email_queue", s.mail.messages[0].key)

	var mail struct {
		Type string                    `json:"type"`
		To   string                    `json:"to"`
		Data domain.CreateUserMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(s.mail.messages[0].msg.Body, &mail))
	assert.Equal(t, domain.MailTypeCreateUser, mail.Type)
	assert.Equal(t, "new@example.com", mail.To)

	// 邮件中的初始密码可以直接登录
	s.login(t, "new@example.com", mail.Data.Password)

	_, resp = s.do(t, http.MethodPost, "/users", map[string]string{
		"name":  "Dup",
		"email": "new@example.com",
		"role":  string(domain.RoleUser),
	}, adminCookie)
	assert.Equal(t, domain.ErrEmailTaken.Message, resp.Message)
	assert.Len(t, s.mail.messages, 1)
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)
	adminCookie := s.login(t, "admin1@example.com", testPassword)

	_, resp := s.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", s.admin.ID), map[string]string{"name": "x"}, adminCookie)
	assert.Equal(t, "禁止操作初始管理员", resp.Message)

	_, resp = s.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", s.staff.ID), map[string]string{"name": "Renamed"}, adminCookie)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Renamed", decodeData[domain.User](t, resp).Name)

	_, resp = s.do(t, http.MethodGet, "/users/999", nil, adminCookie)
	assert.Equal(t, domain.ErrUserNotFound.Message, resp.Message)
}

func TestRoleCheckedAgainstStoredUser(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Admin Two", "admin2@example.com", domain.RoleAdmin)
	cookie := s.login(t, "admin2@example.com", testPassword)

	// 令牌签发后被降级，令牌中的角色不再生效
	user, err := s.svc.UserByEmail(context.Background(), "admin2@example.com")
	require.NoError(t, err)
	user.Role = domain.RoleStaff
	require.NoError(t, s.svc.UpdateUser(context.Background(), user))

	_, resp := s.do(t, http.MethodPost, "/shifts", map[string]any{
		"userID":    s.staff.ID,
		"weekStart": "2024-01-01",
		"weekEnd":   "2024-01-01",
	}, cookie)
	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)
	assert.Empty(t, s.store.Shifts())
}

func TestUpdateMyPassword(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "staff1@example.com", testPassword)

	_, resp := s.do(t, http.MethodPatch, "/my-info/password", map[string]string{
		"oldPassword": "wrong",
		"newPassword": "newpass",
	}, cookie)
	assert.Equal(t, "旧密码错误", resp.Message)

	_, resp = s.do(t, http.MethodPatch, "/my-info/password", map[string]string{
		"oldPassword": testPassword,
		"newPassword": "newpass",
	}, cookie)
	require.True(t, resp.Success, resp.Message)

	s.login(t, "staff1@example.com", "newpass")
}
