package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/credential"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/utils"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow/workflowtest"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	ctx   context.Context
	store *workflowtest.Store
	svc   *workflow.Service

	admin     workflow.Admin
	staff     workflow.Staff
	staffUser *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:   context.Background(),
		store: workflowtest.NewStore(),
	}
	f.svc = workflow.New(f.store, credential.NewBcrypt(bcrypt.MinCost))

	adminUser := f.register(t, "Admin One", "admin1@example.com", domain.RoleAdmin)
	admin, err := f.svc.AsAdmin(adminUser)
	require.NoError(t, err)
	f.admin = admin

	f.staffUser = f.register(t, "Staff One", "staff1@example.com", domain.RoleStaff)
	staff, err := f.svc.AsStaff(f.staffUser)
	require.NoError(t, err)
	f.staff = staff

	return f
}

func (f *fixture) register(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()

	user, err := f.svc.RegisterUser(f.ctx, workflow.NewUser{
		Name:     name,
		Email:    email,
		Password: "staffpass1",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) asStaff(t *testing.T, user *domain.User) workflow.Staff {
	t.Helper()

	staff, err := f.svc.AsStaff(user)
	require.NoError(t, err)
	return staff
}

func date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

func timestamp(t *testing.T, s string) time.Time {
	t.Helper()

	ts, err := utils.ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestRegisterUserRejectsDuplicateEmailAcrossRoles(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterUser(f.ctx, workflow.NewUser{
		Name:     "Another",
		Email:    "  STAFF1@example.com ",
		Password: "x",
		Role:     domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.store.Users(), 2)
}

func TestRegisterUserValidatesInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   workflow.NewUser
	}{
		{"empty name", workflow.NewUser{Name: " ", Email: "a@example.com", Password: "x", Role: domain.RoleStaff}},
		{"bad email", workflow.NewUser{Name: "a", Email: "not-an-email", Password: "x", Role: domain.RoleStaff}},
		{"empty password", workflow.NewUser{Name: "a", Email: "a@example.com", Role: domain.RoleStaff}},
		{"unknown role", workflow.NewUser{Name: "a", Email: "a@example.com", Password: "x", Role: "boss"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RegisterUser(f.ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Len(t, f.store.Users(), 2)
}

func TestRegisterUserNormalizesEmailAndHashesPassword(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "  Mixed Case ", " Mixed@Example.COM", domain.RoleUser)
	assert.Equal(t, "Mixed Case", user.Name)
	assert.Equal(t, "mixed@example.com", user.Email)
	assert.NotEqual(t, "staffpass1", user.PasswordHash)
	assert.NotZero(t, user.ID)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.Authenticate(f.ctx, "Staff1@example.com", "staffpass1")
	require.NoError(t, err)
	assert.Equal(t, f.staffUser.ID, user.ID)

	_, err = f.svc.Authenticate(f.ctx, "staff1@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Authenticate(f.ctx, "nobody@example.com", "staffpass1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCapabilitiesCheckRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AsAdmin(f.staffUser)
	assert.ErrorIs(t, err, domain.ErrRoleMismatch)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.AsStaff(f.admin.User())
	assert.ErrorIs(t, err, domain.ErrRoleMismatch)

	_, err = f.svc.AdminByEmail(f.ctx, "staff1@example.com")
	assert.ErrorIs(t, err, domain.ErrRoleMismatch)

	_, err = f.svc.StaffByEmail(f.ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	member, err := f.svc.MemberByEmail(f.ctx, "ADMIN1@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, member.User().Role)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.UserByID(f.ctx, f.staffUser.ID)
	require.NoError(t, err)

	user.Name = "Renamed"
	user.Email = "Renamed@example.com"
	require.NoError(t, f.svc.UpdateUser(f.ctx, user))

	got, err := f.svc.UserByEmail(f.ctx, "renamed@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	// 旧版本号的更新会被拒绝
	stale := *got
	stale.Version--
	stale.Name = "Stale"
	assert.ErrorIs(t, f.svc.UpdateUser(f.ctx, &stale), domain.ErrVersionConflict)

	got.Email = "admin1@example.com"
	assert.ErrorIs(t, f.svc.UpdateUser(f.ctx, got), domain.ErrEmailTaken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.UserByID(f.ctx, f.staffUser.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.ChangePassword(f.ctx, user, "newpass"))

	_, err = f.svc.Authenticate(f.ctx, "staff1@example.com", "staffpass1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.svc.Authenticate(f.ctx, "staff1@example.com", "newpass")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePassword(f.ctx, user, ""), domain.ErrInvalidInput)
}

func TestListUsersOrderedByID(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Staff Two", "staff2@example.com", domain.RoleStaff)

	users, err := f.svc.ListUsers(f.ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i := 1; i < len(users); i++ {
		assert.Less(t, users[i-1].ID, users[i].ID)
	}
}
