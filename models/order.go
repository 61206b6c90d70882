package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultOrderStatus is the status an order gets when none is supplied
const DefaultOrderStatus = "Pending"

// StyleBlocks names the free-form garment component blocks every order carries
var StyleBlocks = []string{"collar", "patti", "cuff", "pocket", "shalwar", "silai", "button", "cutter"}

// Order is one garment booking. Top-level orders may own sub-orders through
// ParentOrderID; a sub-order never has sub-orders of its own.
// SubID is unique across all orders of an owner, top-level and nested.
type Order struct {
	ID             string                             `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID        string                             `gorm:"type:varchar(36);not null;uniqueIndex:idx_orders_owner_sub_id" json:"-"`
	CustomerID     string                             `gorm:"type:varchar(36);not null;index" json:"customerId"`
	Customer       *Customer                          `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"-"`
	KarigarID      *string                            `gorm:"type:varchar(36);index" json:"karigarId"`
	Karigar        *Karigar                           `gorm:"foreignKey:KarigarID;constraint:OnDelete:SET NULL" json:"-"`
	BookingNo      string                             `gorm:"not null" json:"bookingNo"`
	SubID          string                             `gorm:"not null;uniqueIndex:idx_orders_owner_sub_id" json:"subId"`
	Type           string                             `gorm:"not null;index" json:"type"`
	Measurements   datatypes.JSONMap                  `json:"measurements"`
	SelectedImages datatypes.JSONSlice[SelectedImage] `json:"selectedImages"`
	Details        datatypes.JSONMap                  `json:"details"`
	Collar         datatypes.JSONMap                  `json:"collar"`
	Patti          datatypes.JSONMap                  `json:"patti"`
	Cuff           datatypes.JSONMap                  `json:"cuff"`
	Pocket         datatypes.JSONMap                  `json:"pocket"`
	Shalwar        datatypes.JSONMap                  `json:"shalwar"`
	Silai          datatypes.JSONMap                  `json:"silai"`
	Button         datatypes.JSONMap                  `json:"button"`
	Cutter         datatypes.JSONMap                  `json:"cutter"`
	PdfData        string                             `gorm:"type:text" json:"pdfData"`
	IsSubOrder     bool                               `gorm:"not null;default:false" json:"isSubOrder"`
	ParentOrderID  *string                            `gorm:"type:varchar(36);index" json:"parentOrderId"`
	SubOrders      []Order                            `gorm:"foreignKey:ParentOrderID;constraint:OnDelete:CASCADE" json:"subOrders,omitempty"`
	CreatedAt      time.Time                          `json:"createdAt"`
	UpdatedAt      time.Time                          `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.FillEmptyBlocks()
	return nil
}

// Status returns the details status, or DefaultOrderStatus when unset
func (o *Order) Status() string {
	if s, ok := o.Details["status"].(string); ok && s != "" {
		return s
	}
	return DefaultOrderStatus
}

// Block returns the style block with the given name, or nil for an unknown name
func (o *Order) Block(name string) datatypes.JSONMap {
	if p := o.blockPtr(name); p != nil {
		return *p
	}
	return nil
}

// SetBlock replaces the style block with the given name
func (o *Order) SetBlock(name string, m datatypes.JSONMap) {
	if p := o.blockPtr(name); p != nil {
		*p = m
	}
}

func (o *Order) blockPtr(name string) *datatypes.JSONMap {
	switch name {
	case "collar":
		return &o.Collar
	case "patti":
		return &o.Patti
	case "cuff":
		return &o.Cuff
	case "pocket":
		return &o.Pocket
	case "shalwar":
		return &o.Shalwar
	case "silai":
		return &o.Silai
	case "button":
		return &o.Button
	case "cutter":
		return &o.Cutter
	}
	return nil
}

// FillEmptyBlocks stores {} and [] instead of null for unset JSON columns
func (o *Order) FillEmptyBlocks() {
	if o.Measurements == nil {
		o.Measurements = datatypes.JSONMap{}
	}
	if o.Details == nil {
		o.Details = datatypes.JSONMap{}
	}
	if o.SelectedImages == nil {
		o.SelectedImages = datatypes.JSONSlice[SelectedImage]{}
	}
	for _, name := range StyleBlocks {
		if o.Block(name) == nil {
			o.SetBlock(name, datatypes.JSONMap{})
		}
	}
}
