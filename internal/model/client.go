package model

import (
	"time"

	"github.com/google/uuid"
)

// ClientType selects the price tier applied to a client's purchases.
type ClientType string

const (
	ClientGros   ClientType = "Gros"   // wholesale
	ClientDetail ClientType = "Detail" // retail
)

// Valid reports whether t is one of the known tiers.
func (t ClientType) Valid() bool {
	return t == ClientGros || t == ClientDetail
}

type Client struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"index;not null" json:"name"`
	Phone     string     `gorm:"not null;default:''" json:"phone"`
	Address   string     `gorm:"not null;default:''" json:"address"`
	Type      ClientType `gorm:"type:varchar(10);not null;default:'Detail'" json:"type"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}
