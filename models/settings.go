package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Settings holds one shop's price list and contact details
type Settings struct {
	OwnerID            string          `gorm:"type:varchar(36);primaryKey" json:"-"`
	PantPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pantPrice"`
	PantCoatPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pantCoatPrice"`
	WaistCoatPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"waistCoatPrice"`
	CoatPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"coatPrice"`
	ShalwarKameezPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shalwarKameezPrice"`
	ShirtPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shirtPrice"`
	ShopAddress        string          `gorm:"not null;default:''" json:"shopAddress"`
	ShopPhoneNumber    string          `gorm:"not null;default:''" json:"shopPhoneNumber"`
	ShopName           string          `gorm:"not null;default:''" json:"shopName"`
	TermsAndCondition  string          `gorm:"type:text;not null;default:''" json:"termsAndCondition"`
	ShopImage          string          `gorm:"not null;default:''" json:"shopImage"` // storage reference, see services.ImageService
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}
