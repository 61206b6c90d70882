package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KarigarTypes is the fixed set of garment specialities a karigar can have
var KarigarTypes = []string{"Shalwaar Kameez", "Coat", "Waist Coat", "Pant", "Shirt", "Kurta"}

// IsKarigarType reports whether t is one of KarigarTypes
func IsKarigarType(t string) bool {
	for _, valid := range KarigarTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// Karigar is an artisan who stitches orders. The generated code is the
// external key the API uses for updates and deletes.
type Karigar struct {
	ID             string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID        string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_karigars_owner_code" json:"-"`
	Name           string                      `gorm:"not null" json:"name"`
	Phone          string                      `gorm:"not null" json:"phone"`
	KarigarType    datatypes.JSONSlice[string] `gorm:"not null" json:"karigarType"`
	KarigarCode    string                      `gorm:"not null;uniqueIndex:idx_karigars_owner_code" json:"karigarId"`
	Assignments    []KarigarAssignment         `gorm:"foreignKey:KarigarID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedOrders []string                    `gorm:"-" json:"assignedOrders"` // filled from Assignments
	DateCreated    time.Time                   `json:"dateCreated"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

// TableName specifies the table name for the Karigar model
func (Karigar) TableName() string {
	return "karigars"
}

func (k *Karigar) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	if k.DateCreated.IsZero() {
		k.DateCreated = time.Now()
	}
	return nil
}

// AfterFind exposes preloaded assignments as the assignedOrders list
func (k *Karigar) AfterFind(tx *gorm.DB) error {
	k.FillAssignedOrders()
	return nil
}

// FillAssignedOrders copies the order IDs of Assignments into AssignedOrders
func (k *Karigar) FillAssignedOrders() {
	k.AssignedOrders = make([]string, 0, len(k.Assignments))
	for _, a := range k.Assignments {
		k.AssignedOrders = append(k.AssignedOrders, a.OrderID)
	}
}

// KarigarAssignment links an order to the karigar stitching it. An order has
// at most one assignment.
type KarigarAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	KarigarID  string    `gorm:"type:varchar(36);not null;index" json:"karigarId"`
	OrderID    string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"orderId"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assignedAt"`
}

// TableName specifies the table name for the KarigarAssignment model
func (KarigarAssignment) TableName() string {
	return "karigar_assignments"
}
