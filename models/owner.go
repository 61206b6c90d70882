package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Owner is a shop account. Every customer, karigar, order and the settings
// row belong to exactly one owner.
type Owner struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username        string     `gorm:"uniqueIndex;not null" json:"username"`
	Password        string     `gorm:"not null" json:"-"` // bcrypt hash
	AuthSubject     *string    `gorm:"uniqueIndex" json:"-"` // identity provider 'sub' claim, when signed in with a bearer token
	SaveCredentials bool       `gorm:"not null;default:false" json:"saveCredentials"`
	SavedUsername   *string    `json:"savedUsername"`
	Settings        *Settings  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"settings,omitempty"`
	Customers       []Customer `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Karigars        []Karigar  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Orders          []Order    `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the Owner model
func (Owner) TableName() string {
	return "owners"
}

func (o *Owner) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
