package database

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/utils"
)

// EnsureAdmin creates the bootstrap admin account and its platform-wide
// binding when ADMIN_EMAIL/ADMIN_PASSWORD are set and the account does
// not exist yet. Idempotent across restarts.
func EnsureAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		utils.InfoLogger.Println("no bootstrap admin configured")
		return nil
	}

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		// account exists; fall through to the binding check
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		user = models.User{Name: "Administrator", Email: email, Password: string(hashed)}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("bootstrap admin account created: %s", email)
	default:
		return err
	}

	var binding models.UserRole
	err = db.Where("user_id = ? AND hostel_id IS NULL AND role = ?", user.ID, models.RoleAdmin).First(&binding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		binding = models.UserRole{UserID: user.ID, HostelID: nil, Role: models.RoleAdmin}
		if err := db.Create(&binding).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("bootstrap admin binding created for %s", email)
		return nil
	}
	return err
}
