package services

import (
	"errors"

	"todo-manager/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, name, email, password string) (*models.User, string, error)
	Login(db *gorm.DB, email, password string) (*models.User, string, error)
	Logout(db *gorm.DB, token string) error
	Resolve(db *gorm.DB, token string) (*models.User, error)
}

type AuthServiceImpl struct {
	bcryptCost int
}

func NewAuthService(bcryptCost int) *AuthServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{bcryptCost: bcryptCost}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) Register(db *gorm.DB, name, email, password string) (*models.User, string, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", models.NewValidationError("email", "the email has already been taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(db, user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthServiceImpl) Login(db *gorm.DB, email, password string) (*models.User, string, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, "", models.ErrInvalidCredentials
	}

	// A fresh token per login; earlier tokens stay live.
	token, err := s.issueToken(db, user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthServiceImpl) Logout(db *gorm.DB, token string) error {
	// Revoking an already-absent token is a no-op; other tokens are untouched.
	return db.Where("token = ?", token).Delete(&models.Token{}).Error
}

func (s *AuthServiceImpl) Resolve(db *gorm.DB, token string) (*models.User, error) {
	var row models.Token
	if err := db.Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, err
	}

	var user models.User
	if err := db.First(&user, "id = ?", row.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthServiceImpl) issueToken(db *gorm.DB, userID uuid.UUID) (string, error) {
	plain, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	row := models.Token{
		UserID: userID,
		Token:  plain.String(),
	}
	if err := db.Create(&row).Error; err != nil {
		return "", err
	}
	return row.Token, nil
}
