package repositories

import (
	"SocialPulse/models"
	"errors"

	"gorm.io/gorm"
)

// ErrAccountNotFound is returned when no matching social account exists.
var ErrAccountNotFound = errors.New("social account not found")

// SocialAccountRepository is the credential store: one normalized account
// record per (user, platform). Find and ListByUser only surface active
// accounts; Upsert reuses a deactivated row for the same pair so the
// one-row-per-pair invariant survives disconnect/reconnect cycles.
type SocialAccountRepository interface {
	Find(userID uint, platform models.Platform) (*models.SocialAccount, error)
	FindByID(accountID string) (*models.SocialAccount, error)
	Upsert(account *models.SocialAccount) (*models.SocialAccount, error)
	UpdateTokens(account *models.SocialAccount) error
	Delete(accountID string) error
	ListByUser(userID uint) ([]models.SocialAccount, error)
	Deactivate(userID uint, platform models.Platform) error
	DeactivateByID(userID uint, accountID string) error
	ClearDefaults(userID uint, platform models.Platform) error
	SetDefault(userID uint, accountID string) error
	UnsetDefault(userID uint, accountID string) error
}

type socialAccountRepositoryImpl struct {
	db *gorm.DB
}

// NewSocialAccountRepository creates a new SocialAccountRepository instance
func NewSocialAccountRepository(db *gorm.DB) SocialAccountRepository {
	return &socialAccountRepositoryImpl{
		db: db,
	}
}

func (r *socialAccountRepositoryImpl) Find(userID uint, platform models.Platform) (*models.SocialAccount, error) {
	var account models.SocialAccount
	err := r.db.
		Where("user_id = ? AND platform = ? AND is_active = ?", userID, platform, true).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *socialAccountRepositoryImpl) FindByID(accountID string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	err := r.db.Where("id = ?", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Upsert overwrites by (user_id, platform) lookup rather than inserting
// blindly, which keeps a double connect from duplicating the account.
func (r *socialAccountRepositoryImpl) Upsert(account *models.SocialAccount) (*models.SocialAccount, error) {
	var existing models.SocialAccount
	err := r.db.
		Where("user_id = ? AND platform = ?", account.UserID, account.Platform).
		First(&existing).Error

	switch {
	case err == nil:
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
		account.IsDefault = existing.IsDefault
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first connect for this pair
	default:
		return nil, err
	}

	account.IsActive = true
	if err := r.db.Save(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateTokens persists a refresh outcome: tokens and expiry only.
func (r *socialAccountRepositoryImpl) UpdateTokens(account *models.SocialAccount) error {
	result := r.db.Model(&models.SocialAccount{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"access_token":  account.AccessToken,
			"refresh_token": account.RefreshToken,
			"expires_at":    account.ExpiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *socialAccountRepositoryImpl) Delete(accountID string) error {
	return r.db.Where("id = ?", accountID).Delete(&models.SocialAccount{}).Error
}

func (r *socialAccountRepositoryImpl) ListByUser(userID uint) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *socialAccountRepositoryImpl) Deactivate(userID uint, platform models.Platform) error {
	result := r.db.Model(&models.SocialAccount{}).
		Where("user_id = ? AND platform = ? AND is_active = ?", userID, platform, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *socialAccountRepositoryImpl) DeactivateByID(userID uint, accountID string) error {
	result := r.db.Model(&models.SocialAccount{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *socialAccountRepositoryImpl) ClearDefaults(userID uint, platform models.Platform) error {
	return r.db.Model(&models.SocialAccount{}).
		Where("user_id = ? AND platform = ?", userID, platform).
		Update("is_default", false).Error
}

func (r *socialAccountRepositoryImpl) SetDefault(userID uint, accountID string) error {
	result := r.db.Model(&models.SocialAccount{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Update("is_default", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *socialAccountRepositoryImpl) UnsetDefault(userID uint, accountID string) error {
	result := r.db.Model(&models.SocialAccount{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Update("is_default", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
