package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AutoTimeModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate ensures timestamps are set before creating a record
func (b *AutoTimeModel) BeforeCreate(_ *gorm.DB) error {
	b.touch(true)
	return nil
}

// BeforeUpdate ensures UpdatedAt is set before updating a record
func (b *AutoTimeModel) BeforeUpdate(_ *gorm.DB) error {
	b.touch(false)
	return nil
}

func (b *AutoTimeModel) touch(creating bool) {
	now := time.Now().UTC()

	if creating && b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}

	b.UpdatedAt = now
}

// BaseModel is embedded by every uuid keyed entity.
type BaseModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AutoTimeModel
}

func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	b.touch(true)

	return nil
}
