package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const duplicateCNICMessage = "Customer with this CNIC already exists"

// CustomerInput carries the writable customer fields. On update, empty
// fields keep the stored value.
type CustomerInput struct {
	Name           string                 `json:"name"`
	Phone          string                 `json:"phone"`
	CNIC           string                 `json:"cnic"`
	BookNo         string                 `json:"bookNo"`
	SelectedImages []models.SelectedImage `json:"selectedImages"`
}

func (in *CustomerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CNIC = strings.TrimSpace(in.CNIC)
	in.BookNo = strings.TrimSpace(in.BookNo)
}

// CustomerService manages a shop's customers
type CustomerService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewCustomerService creates a customer service over db
func NewCustomerService(db *gorm.DB, log *logger.Logger) *CustomerService {
	return &CustomerService{db: db, log: log.With("service", "CustomerService")}
}

// Add validates and stores a new customer with a freshly generated code
func (s *CustomerService) Add(ctx context.Context, ownerID string, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if in.Name == "" || in.Phone == "" || in.CNIC == "" {
		return nil, missingField("Name, phone, and CNIC are required")
	}

	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := s.cnicTaken(tx, ownerID, in.CNIC, ""); err != nil {
			return err
		} else if taken {
			return duplicate("DUPLICATE_CNIC", duplicateCNICMessage)
		}

		code, err := nextCode(tx, ownerID, codeScopeCustomer, in.Name, "customers", "customer_code")
		if err != nil {
			return err
		}

		customer = models.Customer{
			OwnerID:        ownerID,
			Name:           in.Name,
			Phone:          in.Phone,
			CNIC:           in.CNIC,
			BookNo:         in.BookNo,
			CustomerCode:   code,
			SelectedImages: datatypes.NewJSONSlice(nonNilImages(in.SelectedImages)),
		}
		return tx.Create(&customer).Error
	})
	if err != nil {
		return nil, persistErr(err, "Server error adding customer", "DUPLICATE_CNIC", duplicateCNICMessage)
	}

	s.log.Info("customer added", "owner_id", ownerID, "customer_code", customer.CustomerCode)
	return &customer, nil
}

// Search returns customers whose name starts with query (case-insensitive), ordered by name
func (s *CustomerService) Search(ctx context.Context, ownerID, query string) ([]models.Customer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, missingField("Query parameter is required")
	}
	return s.filtered(ctx, ownerID, func(c models.Customer) bool {
		return hasNamePrefix(c.Name, query)
	})
}

// List returns every customer with a name, ordered by name
func (s *CustomerService) List(ctx context.Context, ownerID string) ([]models.Customer, error) {
	return s.filtered(ctx, ownerID, func(c models.Customer) bool {
		return strings.TrimSpace(c.Name) != ""
	})
}

func (s *CustomerService) filtered(ctx context.Context, ownerID string, keep func(models.Customer) bool) ([]models.Customer, error) {
	var all []models.Customer
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&all).Error; err != nil {
		return nil, unexpected("Server error fetching customers", err)
	}

	out := make([]models.Customer, 0, len(all))
	for _, c := range all {
		if keep(c) {
			out = append(out, c)
		}
	}
	sortByName(out, func(c models.Customer) string { return c.Name })
	return out, nil
}

// Update applies the non-empty fields of in to the customer. The code is
// regenerated only when the name's initial changes.
func (s *CustomerService) Update(ctx context.Context, ownerID, id string, in CustomerInput) (*models.Customer, error) {
	in.normalize()

	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("CUSTOMER_NOT_FOUND", "Customer not found")
			}
			return err
		}

		if in.CNIC != "" && in.CNIC != customer.CNIC {
			if taken, err := s.cnicTaken(tx, ownerID, in.CNIC, customer.ID); err != nil {
				return err
			} else if taken {
				return duplicate("DUPLICATE_CNIC", duplicateCNICMessage)
			}
		}

		if in.Name != "" && in.Name != customer.Name {
			if newInitial := nameInitial(in.Name); newInitial != codeInitial(customer.CustomerCode) {
				code, err := nextCode(tx, ownerID, codeScopeCustomer, in.Name, "customers", "customer_code")
				if err != nil {
					return err
				}
				customer.CustomerCode = code
			}
			customer.Name = in.Name
		}
		if in.Phone != "" {
			customer.Phone = in.Phone
		}
		if in.CNIC != "" {
			customer.CNIC = in.CNIC
		}
		if in.BookNo != "" {
			customer.BookNo = in.BookNo
		}
		if len(in.SelectedImages) > 0 {
			customer.SelectedImages = datatypes.NewJSONSlice(in.SelectedImages)
		}

		return tx.Save(&customer).Error
	})
	if err != nil {
		return nil, persistErr(err, "Server error updating customer", "DUPLICATE_CNIC", duplicateCNICMessage)
	}
	return &customer, nil
}

// Delete removes a customer. Customers still referenced by orders are kept.
func (s *CustomerService) Delete(ctx context.Context, ownerID, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("CUSTOMER_NOT_FOUND", "Customer not found")
			}
			return err
		}

		var orders int64
		if err := tx.Model(&models.Order{}).Where("owner_id = ? AND customer_id = ?", ownerID, id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return &ShopError{
				Kind:    KindReferenceInUse,
				Code:    "CUSTOMER_HAS_ORDERS",
				Message: fmt.Sprintf("Customer has %d order(s); delete them before deleting the customer", orders),
			}
		}

		return tx.Delete(&customer).Error
	})
	if err != nil {
		return persistErr(err, "Server error deleting customer", "", "")
	}
	return nil
}

func (s *CustomerService) cnicTaken(tx *gorm.DB, ownerID, cnic, exceptID string) (bool, error) {
	q := tx.Model(&models.Customer{}).Where("owner_id = ? AND cnic = ?", ownerID, cnic)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func nonNilImages(images []models.SelectedImage) []models.SelectedImage {
	if images == nil {
		return []models.SelectedImage{}
	}
	return images
}
