package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hostelhq/hostel-app/models"
	"github.com/hostelhq/hostel-app/utils"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// Register creates a user account. An account carries no access by itself:
// an admin or warden must bind a role before any tenant data opens up.
func (ac *AuthController) Register(c *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, utils.CodeConflict, errors.New("email already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	utils.InfoLogger.Printf("new user registered: %s", user.Email)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login checks credentials and returns a JWT plus the caller's role
// bindings so clients know which hostels they may open.
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, err)
		return
	}

	var bindings []models.UserRole
	ac.DB.Where("user_id = ?", user.ID).Find(&bindings)

	utils.InfoLogger.Printf("login: %s", user.Email)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
		"roles": bindings,
	})
}

// Logout voids the presented token until it would expire on its own.
func (ac *AuthController) Logout(c *gin.Context) {
	tokenString := c.GetString("token")
	if tokenString == "" {
		utils.RespondError(c, http.StatusUnauthorized, utils.CodeAuth401, errors.New("no token presented"))
		return
	}

	until := time.Now().Add(24 * time.Hour)
	if v, ok := c.Get("token_expires_at"); ok {
		if exp, ok := v.(time.Time); ok {
			until = exp
		}
	}

	utils.BlacklistToken(tokenString, until)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
