package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NestyJo/video-chat-backend/internal/models"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) ListUsers(search string, limit, offset int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetActive flips the account flag. Deactivating also revokes every refresh
// token so open sessions die with the account.
func (s *UserService) SetActive(userID uuid.UUID, active bool) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("active", active).Error; err != nil {
			return err
		}
		if !active {
			return tx.Model(&models.RefreshToken{}).
				Where("user_id = ?", userID).
				Update("revoked", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Active = active
	return &user, nil
}
