package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hrunity/internal/auth"
	"hrunity/internal/domain/employee"
)

type EmployeeLookup interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Session struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Role         string    `json:"role"`
	EmployeeID   string    `json:"employeeId,omitempty"`
	EmployeeName string    `json:"employeeName,omitempty"`
}

type Service struct {
	employees EmployeeLookup
	secret    string
	ttl       time.Duration
	adminHash string
	now       func() time.Time
}

func NewService(employees EmployeeLookup, secret string, ttl time.Duration, adminHash string) *Service {
	return &Service{
		employees: employees,
		secret:    secret,
		ttl:       ttl,
		adminHash: adminHash,
		now:       time.Now,
	}
}

// SelectRole starts a session for the chosen role. Employee and manager
// sessions are bound to an existing employee; admin sessions require the
// passcode when one is configured.
func (s *Service) SelectRole(ctx context.Context, role, employeeID, passcode string) (Session, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !ValidRole(role) {
		return Session{}, ErrInvalidRole
	}

	session := Session{Role: role}
	switch role {
	case RoleAdmin:
		if s.adminHash != "" {
			if err := auth.CheckPasscode(s.adminHash, passcode); err != nil {
				slog.Warn("admin passcode rejected")
				return Session{}, ErrInvalidPasscode
			}
		}
	default:
		employeeID = strings.TrimSpace(employeeID)
		if employeeID == "" {
			return Session{}, ErrEmployeeRequired
		}
		emp, err := s.employees.Get(ctx, employeeID)
		if err != nil {
			return Session{}, err
		}
		if role == RoleManager && !emp.IsManager {
			return Session{}, ErrNotManager
		}
		session.EmployeeID = emp.EmployeeID
		session.EmployeeName = emp.Name
	}

	now := s.now()
	token, err := auth.GenerateToken(s.secret, auth.Claims{EmployeeID: session.EmployeeID, Role: role}, now, s.ttl)
	if err != nil {
		return Session{}, err
	}
	session.Token = token
	session.ExpiresAt = now.Add(s.ttl).UTC()
	slog.Info("session started", "role", role, "employeeId", session.EmployeeID)
	return session, nil
}

// Verify resolves a bearer token into the principal it was issued for.
func (s *Service) Verify(token string) (Principal, error) {
	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !ValidRole(claims.Role) {
		return Principal{}, ErrInvalidSession
	}
	return Principal{Role: claims.Role, EmployeeID: claims.EmployeeID, SessionID: claims.ID}, nil
}

// Authorize returns ErrForbidden unless p may act for employeeID.
func Authorize(p Principal, employeeID string) error {
	if p.CanActFor(employeeID) {
		return nil
	}
	return ErrForbidden
}
