package services

import (
	"errors"
	"log"
	"strings"

	"github.com/EliseTrad/gradapptracker/internal/auth"
	"github.com/EliseTrad/gradapptracker/internal/models"
	"github.com/EliseTrad/gradapptracker/internal/storage"
	"github.com/EliseTrad/gradapptracker/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput holds the fields for account creation
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser creates a new account. Emails are normalized to lower case;
// a duplicate email is a Conflict.
func RegisterUser(db *gorm.DB, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" || email == "" || in.Password == "" {
		return nil, types.Validation("Name, email and password are required", "auth.validation.input")
	}
	if !strings.Contains(email, "@") {
		return nil, types.Validation("Invalid email address", "auth.validation.email")
	}
	if len(in.Password) < 8 {
		return nil, types.Validation("Password must be at least 8 characters", "auth.validation.password")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, types.Internal("Failed to create account", "auth.register")
	}
	if count > 0 {
		return nil, types.Conflict("Email is already registered", "auth.conflict.email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, types.Internal("Failed to create account", "auth.register")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		// The unique index backs the pre-check under concurrent registration
		if isUniqueViolation(err) {
			return nil, types.Conflict("Email is already registered", "auth.conflict.email")
		}
		log.Printf("Failed to create user: %v", err)
		return nil, types.Internal("Failed to create account", "auth.register")
	}

	return user, nil
}

// LoginUser verifies credentials and issues a bearer token. Unknown email
// and wrong password are deliberately indistinguishable.
func LoginUser(db *gorm.DB, issuer *auth.Issuer, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, types.Validation("Email and password are required", "auth.validation.input")
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, types.Unauthenticated("Invalid email or password", "auth.login.credentials")
		}
		return "", nil, types.Internal("Failed to log in", "auth.login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, types.Unauthenticated("Invalid email or password", "auth.login.credentials")
	}

	token, err := issuer.Issue(user.ID, user.Name)
	if err != nil {
		log.Printf("Failed to issue token for user %s: %v", user.ID, err)
		return "", nil, types.Internal("Failed to log in", "auth.login")
	}

	return token, &user, nil
}

// DeleteAccount removes a user and cascades to their programs, documents
// and links inside one transaction. The cascade is explicit so engines
// without enforced FK cascades behave identically. The user's upload
// directory is removed after the transaction commits.
func DeleteAccount(db *gorm.DB, files *storage.Store, userID string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("Account not found", "auth.account.notfound")
			}
			return err
		}

		// Links first: they reference both programs and documents
		if err := tx.Where(
			"program_id IN (?)",
			tx.Model(&models.Program{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.ProgramDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where(
			"document_id IN (?)",
			tx.Model(&models.Document{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.ProgramDocument{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Program{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})

	if err != nil {
		var ce *types.CustomError
		if errors.As(err, &ce) {
			return ce
		}
		log.Printf("Failed to delete account %s: %v", userID, err)
		return types.Internal("Failed to delete account", "auth.account.delete")
	}

	files.RemoveUserDir(userID)
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
// GORM surfaces these as ErrDuplicatedKey for the dialects it translates;
// the message check covers drivers without error translation.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
