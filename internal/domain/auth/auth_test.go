package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrunity/internal/apperr"
	"hrunity/internal/auth"
	"hrunity/internal/domain/employee"
	"hrunity/internal/platform/storage"
)

func newTestService(t *testing.T, adminHash string) *Service {
	t.Helper()
	employees := employee.NewService(storage.NewNamespace(storage.NewMemory(), "test"), 0, true)
	return NewService(employees, "test-secret", time.Hour, adminHash)
}

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestStaticPermissions(t *testing.T) {
	ctx := context.Background()
	perms := StaticPermissions{}

	ok, err := perms.HasPermission(ctx, RoleEmployee, PermReviewsWrite)
	require.NoError(t, err)
	require.True(t, ok)

	ok, _ = perms.HasPermission(ctx, RoleEmployee, PermEmployeesWrite)
	require.False(t, ok)

	ok, _ = perms.HasPermission(ctx, RoleAdmin, PermAdminStorage)
	require.True(t, ok)

	ok, _ = perms.HasPermission(ctx, "guest", PermEmployeesRead)
	require.False(t, ok)
}

func TestSelectRoleEmployee(t *testing.T) {
	svc := newTestService(t, "")
	session, err := svc.SelectRole(context.Background(), "Employee", "EMP001", "")
	require.NoError(t, err)
	require.Equal(t, RoleEmployee, session.Role)
	require.Equal(t, "John Smith", session.EmployeeName)

	principal, err := svc.Verify(session.Token)
	require.NoError(t, err)
	require.Equal(t, "EMP001", principal.EmployeeID)
	require.NotEmpty(t, principal.SessionID)
	require.True(t, principal.CanActFor("EMP001"))
	require.False(t, principal.CanActFor("EMP002"))
	require.ErrorIs(t, Authorize(principal, "EMP002"), apperr.ErrUnauthorized)
}

func TestSelectRoleManagerRequiresFlag(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	_, err := svc.SelectRole(ctx, RoleManager, "EMP001", "")
	require.ErrorIs(t, err, ErrNotManager)

	session, err := svc.SelectRole(ctx, RoleManager, "EMP004", "")
	require.NoError(t, err)
	principal, err := svc.Verify(session.Token)
	require.NoError(t, err)
	require.True(t, principal.CanActFor("EMP001"))
}

func TestSelectRoleErrors(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	_, err := svc.SelectRole(ctx, "owner", "EMP001", "")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.SelectRole(ctx, RoleEmployee, "", "")
	require.ErrorIs(t, err, ErrEmployeeRequired)

	_, err = svc.SelectRole(ctx, RoleEmployee, "EMP404", "")
	require.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestSelectRoleAdminPasscode(t *testing.T) {
	hash, err := auth.HashPasscode("letmein")
	require.NoError(t, err)
	svc := newTestService(t, hash)
	ctx := context.Background()

	_, err = svc.SelectRole(ctx, RoleAdmin, "", "nope")
	require.ErrorIs(t, err, ErrInvalidPasscode)

	session, err := svc.SelectRole(ctx, RoleAdmin, "", "letmein")
	require.NoError(t, err)
	require.Empty(t, session.EmployeeID)

	principal, err := svc.Verify(session.Token)
	require.NoError(t, err)
	require.True(t, principal.CanActFor("EMP003"))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(t, "")
	_, err := svc.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidSession)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}
