package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"
)

// Entities below live in the public schema of the central database.

var (
	ErrAuditLogImmutable = errors.New("audit log entries are append-only")
	ErrEmptyHospitalName = errors.New("hospital name cannot be empty")
	ErrEmptySlug         = errors.New("hospital name does not produce a slug")
	ErrEmptyAuditAction  = errors.New("audit action cannot be empty")
)

// Hospital is the directory entry of a tenant. Its ID is the tenant id and
// SchemaName is the schema holding its data.
type Hospital struct {
	multitenancy.TenantModel

	ID       int    `gorm:"primaryKey;autoIncrement:false"`
	Name     string `gorm:"type:varchar(255);not null"`
	Slug     string `gorm:"type:varchar(255);not null;unique"`
	Address  string `gorm:"type:text"`
	Phone    string `gorm:"type:varchar(50)"`
	Email    string `gorm:"type:varchar(255)"`
	IsActive bool   `gorm:"not null;default:true"`
	AutoTimeModel
}

func (Hospital) TableName() string   { return "public.hospitals" }
func (Hospital) IsSharedModel() bool { return true }

// BeforeSave derives the slug from the current name.
func (h *Hospital) BeforeSave(_ *gorm.DB) error {
	if strings.TrimSpace(h.Name) == "" {
		return nil
	}

	h.Slug = Slugify(h.Name)
	if h.Slug == "" {
		return ErrEmptySlug
	}

	return nil
}

func (h Hospital) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyHospitalName
	}

	if Slugify(h.Name) == "" {
		return ErrEmptySlug
	}

	return nil
}

// SystemUser is an operator account of the central platform.
type SystemUser struct {
	BaseModel
	Identity

	HospitalID *int
	IsActive   bool       `gorm:"not null;default:true"`
	AuditLogs  []AuditLog `gorm:"foreignKey:UserID"`
}

func (SystemUser) TableName() string   { return "public.users" }
func (SystemUser) IsSharedModel() bool { return true }
func (u SystemUser) Validate() error   { return u.Identity.Validate() }

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditLog records a mutation performed through the API. Rows are never
// updated or deleted.
type AuditLog struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	UserID     *uuid.UUID  `gorm:"type:uuid;index"`
	Subject    string      `gorm:"type:varchar(255)"`
	HospitalID int         `gorm:"not null;index"`
	Action     AuditAction `gorm:"type:varchar(20);not null"`
	Resource   string      `gorm:"type:varchar(100);not null"`
	ResourceID string      `gorm:"type:varchar(100)"`
	RequestID  string      `gorm:"type:varchar(64)"`
	Details    string      `gorm:"type:text"`
	CreatedAt  time.Time   `gorm:"not null;index"`
}

func (AuditLog) TableName() string   { return "public.audit_logs" }
func (AuditLog) IsSharedModel() bool { return true }

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	if a.Action == "" {
		return ErrEmptyAuditAction
	}

	return nil
}

func (a *AuditLog) BeforeUpdate(_ *gorm.DB) error { return ErrAuditLogImmutable }
func (a *AuditLog) BeforeDelete(_ *gorm.DB) error { return ErrAuditLogImmutable }
