package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// passwordHashCost is the bcrypt cost for new owner passwords
var passwordHashCost = bcrypt.DefaultCost

// LoginInput is the body of a login request
type LoginInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	SaveCredentials bool   `json:"saveCredentials"`
}

// LoginResult reports who logged in and whether the account was just created
type LoginResult struct {
	Owner   *models.Owner
	Created bool
}

// SavedCredentials is what the login form may prefill. Passwords are never remembered.
type SavedCredentials struct {
	HasSavedCredentials bool   `json:"hasSavedCredentials"`
	SavedUsername       string `json:"savedUsername,omitempty"`
}

// AuthService authenticates shop owners
type AuthService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthService(db *gorm.DB, log *logger.Logger) *AuthService {
	return &AuthService{db: db, log: log.With("service", "AuthService")}
}

// Login verifies the owner's password, or registers the owner when the
// username is new, and records the remember-me choice
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, missingField("Username and password are required")
	}

	var savedUsername *string
	if in.SaveCredentials {
		savedUsername = &in.Username
	}

	db := s.db.WithContext(ctx)
	var owner models.Owner
	err := db.Where("username = ?", in.Username).First(&owner).Error
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(owner.Password), []byte(in.Password)) != nil {
			s.log.Info("login rejected", "username", in.Username)
			return nil, &ShopError{Kind: KindUnauthenticated, Code: "INCORRECT_PASSWORD", Message: "Incorrect password"}
		}
		err = db.Model(&owner).Updates(map[string]interface{}{
			"save_credentials": in.SaveCredentials,
			"saved_username":   savedUsername,
		}).Error
		if err != nil {
			return nil, unexpected("Server error during login", err)
		}
		owner.SaveCredentials = in.SaveCredentials
		owner.SavedUsername = savedUsername
		return &LoginResult{Owner: &owner}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordHashCost)
		if err != nil {
			return nil, unexpected("Server error during login", err)
		}
		owner = models.Owner{
			Username:        in.Username,
			Password:        string(hash),
			SaveCredentials: in.SaveCredentials,
			SavedUsername:   savedUsername,
		}
		if err := db.Create(&owner).Error; err != nil {
			return nil, persistErr(err, "Server error during login", "USERNAME_TAKEN", "Username already in use")
		}
		s.log.Info("owner registered", "owner_id", owner.ID, "username", owner.Username)
		return &LoginResult{Owner: &owner, Created: true}, nil

	default:
		return nil, unexpected("Server error during login", err)
	}
}

// Logout forgets the saved username unless the owner asked to keep it
func (s *AuthService) Logout(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.Owner{}).
		Where("id = ? AND save_credentials = ?", ownerID, false).
		Update("saved_username", nil).Error
	if err != nil {
		return unexpected("Error logging out", err)
	}
	return nil
}

// SavedCredentials returns the remembered username for the login form
func (s *AuthService) SavedCredentials(ctx context.Context, username string) (*SavedCredentials, error) {
	var owner models.Owner
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &SavedCredentials{}, nil
	}
	if err != nil {
		return nil, unexpected("Server error fetching saved credentials", err)
	}

	if !owner.SaveCredentials || owner.SavedUsername == nil || *owner.SavedUsername == "" {
		return &SavedCredentials{}, nil
	}
	return &SavedCredentials{HasSavedCredentials: true, SavedUsername: *owner.SavedUsername}, nil
}

// OwnerExists reports whether ownerID names a stored owner
func (s *AuthService) OwnerExists(ctx context.Context, ownerID string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Owner{}).Where("id = ?", ownerID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// OwnerForSubject finds the owner linked to an identity provider subject,
// registering one on first sight. Such owners have no password and cannot
// use the password login.
func (s *AuthService) OwnerForSubject(ctx context.Context, subject string) (*models.Owner, error) {
	if subject == "" {
		return nil, &ShopError{Kind: KindUnauthenticated, Code: "INVALID_TOKEN", Message: "Token has no subject"}
	}

	db := s.db.WithContext(ctx)
	var owner models.Owner
	err := db.Where("auth_subject = ?", subject).First(&owner).Error
	if err == nil {
		return &owner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unexpected("Server error in authentication", err)
	}

	owner = models.Owner{Username: subject, AuthSubject: &subject}
	if err := db.Create(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Provisioned concurrently by another request
			if err := db.Where("auth_subject = ?", subject).First(&owner).Error; err == nil {
				return &owner, nil
			}
		}
		return nil, unexpected("Server error in authentication", err)
	}
	s.log.Info("owner provisioned from token", "owner_id", owner.ID)
	return &owner, nil
}
