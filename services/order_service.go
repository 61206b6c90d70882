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
	"gorm.io/gorm/clause"
)

// OrderInput is the body of an order create or update request. Content
// blocks left nil keep their stored value on update.
type OrderInput struct {
	CustomerID     string                 `json:"customerId"`
	BookingNo      string                 `json:"bookingNo"`
	SubID          string                 `json:"subId"`
	Type           string                 `json:"type"`
	Measurements   map[string]interface{} `json:"measurements"`
	SelectedImages []models.SelectedImage `json:"selectedImages"`
	Details        map[string]interface{} `json:"details"`
	Collar         map[string]interface{} `json:"collar"`
	Patti          map[string]interface{} `json:"patti"`
	Cuff           map[string]interface{} `json:"cuff"`
	Pocket         map[string]interface{} `json:"pocket"`
	Shalwar        map[string]interface{} `json:"shalwar"`
	Silai          map[string]interface{} `json:"silai"`
	Button         map[string]interface{} `json:"button"`
	Cutter         map[string]interface{} `json:"cutter"`
	KarigarID      string                 `json:"karigarId"`
	IsSubOrder     bool                   `json:"isSubOrder"`
	ParentOrderID  string                 `json:"parentOrderId"`
	PdfData        string                 `json:"pdfData"`
}

func (in *OrderInput) block(name string) map[string]interface{} {
	switch name {
	case "collar":
		return in.Collar
	case "patti":
		return in.Patti
	case "cuff":
		return in.Cuff
	case "pocket":
		return in.Pocket
	case "shalwar":
		return in.Shalwar
	case "silai":
		return in.Silai
	case "button":
		return in.Button
	case "cutter":
		return in.Cutter
	}
	return nil
}

func (in *OrderInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.CustomerID) == "" {
		missing = append(missing, "customerId")
	}
	if strings.TrimSpace(in.BookingNo) == "" {
		missing = append(missing, "bookingNo")
	}
	if strings.TrimSpace(in.SubID) == "" {
		missing = append(missing, "subId")
	}
	if strings.TrimSpace(in.Type) == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return missingField("Missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// detailsWithStatus copies details and fills status from fallback when the
// supplied one is empty
func detailsWithStatus(details map[string]interface{}, fallback string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range details {
		out[k] = v
	}
	if s, ok := out["status"].(string); !ok || s == "" {
		out["status"] = fallback
	}
	return out
}

// OrderService manages orders and sub-orders and keeps karigar assignments
// in step with them
type OrderService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderService(db *gorm.DB, log *logger.Logger) *OrderService {
	return &OrderService{db: db, log: log.With("service", "OrderService")}
}

// Create stores a new order, or a sub-order when IsSubOrder and
// ParentOrderID are both set
func (s *OrderService) Create(ctx context.Context, ownerID string, in OrderInput) (*OrderView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.IsSubOrder && strings.TrimSpace(in.ParentOrderID) == "" {
		return nil, missingField("Missing required fields: parentOrderId")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.findCustomer(tx, ownerID, in.CustomerID)
		if err != nil {
			return err
		}
		if err := s.checkSubID(tx, ownerID, in.SubID, ""); err != nil {
			return err
		}
		karigar, err := s.findKarigar(tx, ownerID, in.KarigarID)
		if err != nil {
			return err
		}

		order = models.Order{
			OwnerID:        ownerID,
			CustomerID:     customer.ID,
			BookingNo:      in.BookingNo,
			SubID:          in.SubID,
			Type:           in.Type,
			Measurements:   datatypes.JSONMap(in.Measurements),
			SelectedImages: datatypes.NewJSONSlice(nonNilImages(in.SelectedImages)),
			Details:        detailsWithStatus(in.Details, models.DefaultOrderStatus),
			PdfData:        in.PdfData,
		}
		for _, name := range models.StyleBlocks {
			order.SetBlock(name, datatypes.JSONMap(in.block(name)))
		}
		if karigar != nil {
			order.KarigarID = &karigar.ID
		}

		if in.IsSubOrder && in.ParentOrderID != "" {
			var parent models.Order
			err := tx.Where("owner_id = ? AND id = ? AND parent_order_id IS NULL", ownerID, in.ParentOrderID).
				First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("PARENT_ORDER_NOT_FOUND", fmt.Sprintf("Parent order with ID %s not found", in.ParentOrderID))
			} else if err != nil {
				return err
			}
			order.IsSubOrder = true
			order.ParentOrderID = &parent.ID
		}

		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		if karigar != nil {
			if err := tx.Create(&models.KarigarAssignment{KarigarID: karigar.ID, OrderID: order.ID}).Error; err != nil {
				return fmt.Errorf("failed to assign karigar: %w", err)
			}
		}

		order.Customer = customer
		order.Karigar = karigar
		return nil
	})
	if err != nil {
		return nil, persistErr(err, "Server error creating order", "DUPLICATE_SUB_ID", fmt.Sprintf("Order with subId %s already exists", in.SubID))
	}

	s.log.Info("order created", "owner_id", ownerID, "order_id", order.ID, "sub_id", order.SubID, "is_sub_order", order.IsSubOrder)
	view := buildOrderView(&order)
	return &view, nil
}

// List returns every top-level order with its sub-orders, newest first
func (s *OrderService) List(ctx context.Context, ownerID string) ([]OrderView, error) {
	orders, err := s.loadForest(ctx, ownerID)
	if err != nil {
		return nil, unexpected("Server error fetching orders", err)
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, buildOrderView(&orders[i]))
	}
	return views, nil
}

// Search returns the top-level orders whose customer name starts with
// customerName, ignoring case, each with all of its sub-orders
func (s *OrderService) Search(ctx context.Context, ownerID, customerName string) ([]OrderView, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, missingField("Customer name query parameter is required")
	}

	orders, err := s.loadForest(ctx, ownerID)
	if err != nil {
		return nil, unexpected("Server error searching orders", err)
	}

	views := make([]OrderView, 0)
	for i := range orders {
		if orders[i].Customer == nil || !hasNamePrefix(orders[i].Customer.Name, customerName) {
			continue
		}
		views = append(views, buildOrderView(&orders[i]))
	}
	return views, nil
}

// loadForest loads top-level orders newest first with their sub-orders
// oldest first, and the customer and karigar of each
func (s *OrderService) loadForest(ctx context.Context, ownerID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Karigar").
		Preload("SubOrders", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id")
		}).
		Preload("SubOrders.Customer").
		Preload("SubOrders.Karigar").
		Where("owner_id = ? AND parent_order_id IS NULL", ownerID).
		Order("created_at DESC, id").
		Find(&orders).Error
	return orders, err
}

// Update rewrites an order in place. A sub-order is addressed through its
// parent by setting IsSubOrder and ParentOrderID. The order never moves
// between levels.
func (s *OrderService) Update(ctx context.Context, ownerID, id string, in OrderInput) (*OrderView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.locateForUpdate(tx, ownerID, id, in, &order); err != nil {
			return err
		}
		customer, err := s.findCustomer(tx, ownerID, in.CustomerID)
		if err != nil {
			return err
		}
		if err := s.checkSubID(tx, ownerID, in.SubID, order.ID); err != nil {
			return err
		}
		karigar, err := s.findKarigar(tx, ownerID, in.KarigarID)
		if err != nil {
			return err
		}

		if err := s.reassign(tx, &order, karigar); err != nil {
			return err
		}

		order.CustomerID = customer.ID
		order.BookingNo = in.BookingNo
		order.SubID = in.SubID
		order.Type = in.Type
		if in.Measurements != nil {
			order.Measurements = datatypes.JSONMap(in.Measurements)
		}
		if in.SelectedImages != nil {
			order.SelectedImages = datatypes.NewJSONSlice(in.SelectedImages)
		}
		order.Details = detailsWithStatus(in.Details, order.Status())
		for _, name := range models.StyleBlocks {
			if supplied := in.block(name); supplied != nil {
				order.SetBlock(name, datatypes.JSONMap(supplied))
			}
		}
		if in.PdfData != "" {
			order.PdfData = in.PdfData
		}
		order.KarigarID = nil
		if karigar != nil {
			order.KarigarID = &karigar.ID
		}
		order.FillEmptyBlocks()

		if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
			return err
		}

		order.Customer = customer
		order.Karigar = karigar
		return tx.Where("parent_order_id = ?", order.ID).
			Preload("Customer").Preload("Karigar").
			Order("created_at ASC, id").
			Find(&order.SubOrders).Error
	})
	if err != nil {
		return nil, persistErr(err, "Server error updating order", "DUPLICATE_SUB_ID", "Duplicate subId detected")
	}

	s.log.Info("order updated", "owner_id", ownerID, "order_id", order.ID)
	view := buildOrderView(&order)
	return &view, nil
}

func (s *OrderService) locateForUpdate(tx *gorm.DB, ownerID, id string, in OrderInput, order *models.Order) error {
	if in.IsSubOrder && in.ParentOrderID != "" {
		var parent models.Order
		err := tx.Where("owner_id = ? AND id = ? AND parent_order_id IS NULL", ownerID, in.ParentOrderID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("PARENT_ORDER_NOT_FOUND", "Parent order not found")
		} else if err != nil {
			return err
		}

		err = tx.Where("owner_id = ? AND id = ? AND parent_order_id = ?", ownerID, id, parent.ID).First(order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("SUB_ORDER_NOT_FOUND", "Sub-order not found")
		}
		return err
	}

	err := tx.Where("owner_id = ? AND id = ? AND parent_order_id IS NULL", ownerID, id).First(order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("ORDER_NOT_FOUND", "Order not found")
	}
	return err
}

// reassign moves the order's assignment to karigar, or drops it when
// karigar is nil. Keeping the same karigar is a no-op.
func (s *OrderService) reassign(tx *gorm.DB, order *models.Order, karigar *models.Karigar) error {
	if order.KarigarID != nil && (karigar == nil || karigar.ID != *order.KarigarID) {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.KarigarAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to release karigar assignment: %w", err)
		}
	}
	if karigar == nil {
		return nil
	}

	var assignment models.KarigarAssignment
	err := tx.Where(models.KarigarAssignment{KarigarID: karigar.ID, OrderID: order.ID}).
		FirstOrCreate(&assignment).Error
	if err != nil {
		return fmt.Errorf("failed to assign karigar: %w", err)
	}
	return nil
}

// Delete removes an order or sub-order. A top-level order takes its
// sub-orders with it. Karigar assignments of every removed order are released.
func (s *OrderService) Delete(ctx context.Context, ownerID, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("ORDER_NOT_FOUND", "Order not found")
			}
			return err
		}

		ids := []string{order.ID}
		if order.ParentOrderID == nil {
			var children []string
			if err := tx.Model(&models.Order{}).Where("parent_order_id = ?", order.ID).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
		}

		if err := tx.Where("order_id IN ?", ids).Delete(&models.KarigarAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to release karigar assignments: %w", err)
		}
		if err := tx.Where("parent_order_id = ?", order.ID).Delete(&models.Order{}).Error; err != nil {
			return fmt.Errorf("failed to delete sub-orders: %w", err)
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return persistErr(err, "Server error deleting order", "", "")
	}

	s.log.Info("order deleted", "owner_id", ownerID, "order_id", id)
	return nil
}

// SubOrders lists every order and sub-order of a customer, optionally
// limited to one garment type, oldest first
func (s *OrderService) SubOrders(ctx context.Context, ownerID, customerID, variety string) ([]models.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, missingField("customerId query parameter is required")
	}

	q := s.db.WithContext(ctx).Where("owner_id = ? AND customer_id = ?", ownerID, customerID)
	if variety != "" {
		q = q.Where("type = ?", variety)
	}

	orders := make([]models.Order, 0)
	if err := q.Order("created_at ASC, id").Find(&orders).Error; err != nil {
		return nil, unexpected("Server error fetching sub-orders", err)
	}
	return orders, nil
}

func (s *OrderService) findCustomer(tx *gorm.DB, ownerID, id string) (*models.Customer, error) {
	var customer models.Customer
	err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("CUSTOMER_NOT_FOUND", "Customer not found")
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// findKarigar resolves an optional karigar reference; an empty id yields nil
func (s *OrderService) findKarigar(tx *gorm.DB, ownerID, id string) (*models.Karigar, error) {
	if id == "" {
		return nil, nil
	}
	var karigar models.Karigar
	err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&karigar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("KARIGAR_NOT_FOUND", "Karigar not found")
	}
	if err != nil {
		return nil, err
	}
	return &karigar, nil
}

func (s *OrderService) checkSubID(tx *gorm.DB, ownerID, subID, exceptID string) error {
	q := tx.Model(&models.Order{}).Where("owner_id = ? AND sub_id = ?", ownerID, subID)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return duplicate("DUPLICATE_SUB_ID", fmt.Sprintf("Order with subId %s already exists", subID))
	}
	return nil
}
