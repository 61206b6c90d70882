package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SelectedImage is a reference image picked for a customer or an order
type SelectedImage struct {
	ImgSrc     string `json:"imgSrc"`
	ButtonName string `json:"buttonName"`
}

// Customer is a shop's client. CNIC (national ID) and the generated code are
// unique within the owning shop.
type Customer struct {
	ID             string                             `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID        string                             `gorm:"type:varchar(36);not null;uniqueIndex:idx_customers_owner_cnic;uniqueIndex:idx_customers_owner_code" json:"-"`
	Name           string                             `gorm:"not null" json:"name"`
	Phone          string                             `gorm:"not null" json:"phone"`
	CNIC           string                             `gorm:"column:cnic;not null;uniqueIndex:idx_customers_owner_cnic" json:"cnic"`
	BookNo         string                             `gorm:"not null;default:''" json:"bookNo"`
	CustomerCode   string                             `gorm:"not null;uniqueIndex:idx_customers_owner_code" json:"customerId"`
	SelectedImages datatypes.JSONSlice[SelectedImage] `json:"selectedImages"`
	CreatedAt      time.Time                          `json:"createdAt"`
	UpdatedAt      time.Time                          `json:"updatedAt"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.SelectedImages == nil {
		c.SelectedImages = datatypes.JSONSlice[SelectedImage]{}
	}
	return nil
}
