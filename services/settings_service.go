package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettingsInput is the multipart settings form. Prices arrive as strings;
// empty fields keep the stored value.
type SettingsInput struct {
	PantPrice          string `form:"pantPrice"`
	PantCoatPrice      string `form:"pantCoatPrice"`
	WaistCoatPrice     string `form:"waistCoatPrice"`
	CoatPrice          string `form:"coatPrice"`
	ShalwarKameezPrice string `form:"shalwarKameezPrice"`
	ShirtPrice         string `form:"shirtPrice"`
	ShopAddress        string `form:"shopAddress"`
	ShopPhoneNumber    string `form:"shopPhoneNumber"`
	ShopName           string `form:"shopName"`
	TermsAndCondition  string `form:"termsAndCondition"`
}

// SettingsService stores the per-shop price list and contact details
type SettingsService struct {
	db     *gorm.DB
	images ImageService
	log    *logger.Logger
}

func NewSettingsService(db *gorm.DB, images ImageService, log *logger.Logger) *SettingsService {
	return &SettingsService{db: db, images: images, log: log.With("service", "SettingsService")}
}

func mergePrice(field, supplied string, current *decimal.Decimal) error {
	supplied = strings.TrimSpace(supplied)
	if supplied == "" {
		return nil
	}
	d, err := decimal.NewFromString(supplied)
	if err != nil || d.IsNegative() {
		return invalidField("INVALID_PRICE", fmt.Sprintf("Invalid value for %s", field))
	}
	*current = d.Round(2)
	return nil
}

func mergeText(supplied string, current *string) {
	if supplied != "" {
		*current = supplied
	}
}

// Save merges in over the stored settings. A new shop image replaces and
// deletes the previous one.
func (s *SettingsService) Save(ctx context.Context, ownerID string, in SettingsInput, image *multipart.FileHeader) (*models.Settings, error) {
	var settings models.Settings
	prices := []struct {
		field    string
		supplied string
		current  *decimal.Decimal
	}{
		{"pantPrice", in.PantPrice, &settings.PantPrice},
		{"pantCoatPrice", in.PantCoatPrice, &settings.PantCoatPrice},
		{"waistCoatPrice", in.WaistCoatPrice, &settings.WaistCoatPrice},
		{"coatPrice", in.CoatPrice, &settings.CoatPrice},
		{"shalwarKameezPrice", in.ShalwarKameezPrice, &settings.ShalwarKameezPrice},
		{"shirtPrice", in.ShirtPrice, &settings.ShirtPrice},
	}
	// Validate prices up front so a bad form never uploads an image
	for _, p := range prices {
		var scratch decimal.Decimal
		if err := mergePrice(p.field, p.supplied, &scratch); err != nil {
			return nil, err
		}
	}

	newImage := ""
	if image != nil {
		ref, err := s.images.UploadImage(ctx, image)
		if err != nil {
			var se *ShopError
			if errors.As(err, &se) {
				return nil, err
			}
			return nil, unexpected("Server error saving settings", err)
		}
		newImage = ref
	}

	oldImage := ""
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists := true
		if err := tx.Where("owner_id = ?", ownerID).First(&settings).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			exists = false
			settings = models.Settings{OwnerID: ownerID}
		}

		for _, p := range prices {
			if err := mergePrice(p.field, p.supplied, p.current); err != nil {
				return err
			}
		}
		mergeText(in.ShopAddress, &settings.ShopAddress)
		mergeText(in.ShopPhoneNumber, &settings.ShopPhoneNumber)
		mergeText(in.ShopName, &settings.ShopName)
		mergeText(in.TermsAndCondition, &settings.TermsAndCondition)
		if newImage != "" {
			oldImage = settings.ShopImage
			settings.ShopImage = newImage
		}

		if exists {
			return tx.Save(&settings).Error
		}
		return tx.Create(&settings).Error
	})
	if err != nil {
		if newImage != "" {
			if delErr := s.images.DeleteImage(ctx, newImage); delErr != nil {
				s.log.Warn("failed to remove orphaned shop image", "ref", newImage, "error", delErr)
			}
		}
		return nil, persistErr(err, "Server error saving settings", "", "")
	}

	if oldImage != "" && oldImage != newImage {
		if err := s.images.DeleteImage(ctx, oldImage); err != nil {
			s.log.Warn("failed to delete previous shop image", "ref", oldImage, "error", err)
		}
	}

	s.log.Info("settings saved", "owner_id", ownerID, "image_replaced", newImage != "")
	return &settings, nil
}

// Get returns the owner's settings with the shop image as an absolute URL.
// An owner who never saved settings gets zero prices and empty details.
func (s *SettingsService) Get(ctx context.Context, ownerID, baseURL string) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Settings{OwnerID: ownerID}, nil
	}
	if err != nil {
		return nil, unexpected("Server error retrieving settings", err)
	}

	if settings.ShopImage != "" {
		url, err := s.images.GetImageURL(ctx, settings.ShopImage, baseURL)
		if err != nil {
			s.log.Warn("failed to resolve shop image URL", "ref", settings.ShopImage, "error", err)
			url = ""
		}
		settings.ShopImage = url
	}
	return &settings, nil
}
