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

// KarigarInput carries the writable karigar fields. Updates replace all three.
type KarigarInput struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	KarigarType []string `json:"karigarType"`
}

func (in *KarigarInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Name == "" {
		return missingField("Name is required")
	}
	if in.Phone == "" {
		return missingField("Phone number is required")
	}
	if len(in.KarigarType) == 0 {
		return missingField("At least one karigar type is required")
	}

	var invalid []string
	for _, t := range in.KarigarType {
		if !models.IsKarigarType(t) {
			invalid = append(invalid, t)
		}
	}
	if len(invalid) > 0 {
		return invalidField("INVALID_KARIGAR_TYPE", fmt.Sprintf("Invalid karigar types: %s", strings.Join(invalid, ", ")))
	}
	return nil
}

// KarigarService manages a shop's karigars. Karigars are addressed by their
// generated code, not the internal id.
type KarigarService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKarigarService(db *gorm.DB, log *logger.Logger) *KarigarService {
	return &KarigarService{db: db, log: log.With("service", "KarigarService")}
}

// Add stores a new karigar with a generated code
func (s *KarigarService) Add(ctx context.Context, ownerID string, in KarigarInput) (*models.Karigar, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var karigar models.Karigar
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := nextCode(tx, ownerID, codeScopeKarigar, in.Name, "karigars", "karigar_code")
		if err != nil {
			return err
		}
		karigar = models.Karigar{
			OwnerID:     ownerID,
			Name:        in.Name,
			Phone:       in.Phone,
			KarigarType: datatypes.NewJSONSlice(in.KarigarType),
			KarigarCode: code,
		}
		return tx.Create(&karigar).Error
	})
	if err != nil {
		return nil, persistErr(err, "Server error adding karigar", "DUPLICATE_KARIGAR_ID", "Karigar ID already exists")
	}

	karigar.FillAssignedOrders()
	s.log.Info("karigar added", "owner_id", ownerID, "karigar_code", karigar.KarigarCode)
	return &karigar, nil
}

// List returns all karigars ordered by name
func (s *KarigarService) List(ctx context.Context, ownerID string) ([]models.Karigar, error) {
	return s.Search(ctx, ownerID, "")
}

// Search returns karigars whose name starts with term, ignoring case.
// An empty term matches every karigar.
func (s *KarigarService) Search(ctx context.Context, ownerID, term string) ([]models.Karigar, error) {
	var all []models.Karigar
	err := s.db.WithContext(ctx).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("assigned_at, id")
		}).
		Where("owner_id = ?", ownerID).
		Find(&all).Error
	if err != nil {
		return nil, unexpected("Error fetching karigars", err)
	}

	out := make([]models.Karigar, 0, len(all))
	for _, k := range all {
		if hasNamePrefix(k.Name, term) {
			out = append(out, k)
		}
	}
	sortByName(out, func(k models.Karigar) string { return k.Name })
	return out, nil
}

// Update replaces name, phone and types of the karigar with the given code.
// The code, assignments and creation date are kept.
func (s *KarigarService) Update(ctx context.Context, ownerID, code string, in KarigarInput) (*models.Karigar, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var karigar models.Karigar
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.findByCode(tx, ownerID, code, &karigar); err != nil {
			return err
		}
		return tx.Model(&karigar).Updates(map[string]interface{}{
			"name":         in.Name,
			"phone":        in.Phone,
			"karigar_type": datatypes.NewJSONSlice(in.KarigarType),
		}).Error
	})
	if err != nil {
		return nil, persistErr(err, "Error updating karigar", "", "")
	}

	karigar.Name = in.Name
	karigar.Phone = in.Phone
	karigar.KarigarType = datatypes.NewJSONSlice(in.KarigarType)
	return &karigar, nil
}

// Delete removes the karigar with the given code. Orders it was stitching
// become unassigned.
func (s *KarigarService) Delete(ctx context.Context, ownerID, code string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var karigar models.Karigar
		if err := s.findByCode(tx, ownerID, code, &karigar); err != nil {
			return err
		}

		if err := tx.Model(&models.Order{}).
			Where("owner_id = ? AND karigar_id = ?", ownerID, karigar.ID).
			Update("karigar_id", nil).Error; err != nil {
			return fmt.Errorf("failed to release orders: %w", err)
		}
		if err := tx.Where("karigar_id = ?", karigar.ID).Delete(&models.KarigarAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		return tx.Delete(&karigar).Error
	})
	if err != nil {
		return persistErr(err, "Error deleting karigar", "", "")
	}

	s.log.Info("karigar deleted", "owner_id", ownerID, "karigar_code", code)
	return nil
}

func (s *KarigarService) findByCode(tx *gorm.DB, ownerID, code string, karigar *models.Karigar) error {
	err := tx.Preload("Assignments", func(db *gorm.DB) *gorm.DB {
		return db.Order("assigned_at, id")
	}).Where("owner_id = ? AND karigar_code = ?", ownerID, code).First(karigar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("KARIGAR_NOT_FOUND", "Karigar not found")
	}
	return err
}
