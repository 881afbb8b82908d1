package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Zone struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CompanyID   string    `gorm:"index;type:varchar(36);not null" json:"company_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (z *Zone) BeforeCreate(tx *gorm.DB) (err error) {
	if z.ID == "" {
		z.ID = uuid.New().String()
	}
	return nil
}
