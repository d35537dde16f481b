// Package directory talks to the external user directory service that owns
// user identities, roles and sessions.
package directory

import (
	"context"
	"slices"
	"time"
)

const (
	DefaultBaseURL        = "http://localhost:8001/api"
	DefaultConnectTimeout = 2 * time.Second
	DefaultReadTimeout    = 8 * time.Second
	DefaultWriteTimeout   = 8 * time.Second
	DefaultPoolLimit      = 100

	// SessionCookie is the cookie the directory authenticates callers with.
	SessionCookie = "SESSION"
)

// Config holds the directory endpoint and its connection limits.
type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PoolLimit      int
}

// DefaultConfig returns the settings used when no flags override them.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		WriteTimeout:   DefaultWriteTimeout,
		PoolLimit:      DefaultPoolLimit,
	}
}

// User is a directory identity.
type User struct {
	ID         string   `json:"id"`
	Avatar     *string  `json:"avatar,omitempty"`
	StatusText string   `json:"status_text"`
	Department string   `json:"department"`
	Email      string   `json:"email"`
	Username   string   `json:"username"`
	FullName   string   `json:"full_name"`
	JobTitle   string   `json:"job_title"`
	Roles      []string `json:"roles"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *User) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, u.HasRole)
}

// Organization is a counterparty known to the directory.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	INNNumber string `json:"inn_number"`
	KPPNumber string `json:"kpp_number"`
}

// OrganizationRef is the short form of an organization an external user belongs to.
type OrganizationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExternalUser is a person outside the company, such as a counterparty's employee.
type ExternalUser struct {
	ID            string            `json:"id"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	MiddleName    *string           `json:"middle_name,omitempty"`
	IsActive      bool              `json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	Role          string            `json:"role"`
	Organizations []OrganizationRef `json:"organizations"`
}

// Directory is the read-only surface of the user directory. The batch
// lookups key their results by id and leave unknown ids out.
type Directory interface {
	CurrentUser(ctx context.Context) (*User, error)
	Users(ctx context.Context, ids []string) (map[string]*User, error)
	Organizations(ctx context.Context, ids []string) (map[string]*Organization, error)
	ExternalUsers(ctx context.Context, ids []string) (map[string]*ExternalUser, error)
	UserIDsByRole(ctx context.Context, role string) ([]string, error)
}

type sessionKey struct{}

// WithSession returns a context carrying the caller's session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFrom extracts the session id stored by WithSession.
func SessionFrom(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionKey{}).(string)

	return sessionID, ok && sessionID != ""
}
