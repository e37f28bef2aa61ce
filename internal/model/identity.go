package model

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRole   = errors.New("role is not valid")
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrInvalidEmail  = errors.New("email is not valid")
	ErrEmptyFullName = errors.New("name cannot be empty")
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
	RoleStaff   Role = "staff"
	RolePatient Role = "patient"
)

var validRoles = map[Role]struct{}{
	RoleAdmin:   {},
	RoleDoctor:  {},
	RoleNurse:   {},
	RoleStaff:   {},
	RolePatient: {},
}

func (r Role) Validate() error {
	if _, ok := validRoles[r]; !ok {
		return ErrInvalidRole
	}

	return nil
}

// Identity holds the account fields shared by hospital staff accounts and
// system operators.
type Identity struct {
	Email        string `gorm:"type:varchar(255);not null;unique"`
	Name         string `gorm:"type:varchar(255);not null"`
	PasswordHash string `gorm:"type:varchar(255)" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'staff'"`
}

func (i Identity) Validate() error {
	if strings.TrimSpace(i.Email) == "" {
		return ErrEmptyEmail
	}

	if !strings.Contains(i.Email, "@") {
		return ErrInvalidEmail
	}

	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyFullName
	}

	return i.Role.Validate()
}
