package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of user roles. Every boundary (JSON, database, token claims)
// goes through ParseRole so free-form strings never reach authorization checks.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDirector Role = "director"
	RoleManager  Role = "manager"
	RoleDriver   Role = "driver"
	RolePartner  Role = "partner"
)

// ErrInvalidRole is returned for strings outside the role set.
var ErrInvalidRole = errors.New("invalid role")

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleDirector, RoleManager, RoleDriver, RolePartner}

// ParseRole validates s against the role set. Matching is exact; "Admin" is rejected.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleManager, RoleDriver, RolePartner:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan implements sql.Scanner; rows holding unknown roles fail to load.
func (r *Role) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return fmt.Errorf("%w: NULL", ErrInvalidRole)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidRole, value)
	}
	return r.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
	}
	return string(r), nil
}
