package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pawphysio/middleware"
	"pawphysio/models"
	"pawphysio/service"
	"pawphysio/validation"
)

// Register creates a client account
func Register(c *gin.Context) {
	var req models.ProfileRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	profile, err := service.GlobalServices.Profile.Register(req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": ve.Message, "field": ve.Field})
			return
		}
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": profile.ID})
}

// Login verifies credentials and returns an API token
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	token, profile, err := service.GlobalServices.Profile.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"profile": gin.H{
			"id":       profile.ID,
			"email":    profile.Email,
			"name":     profile.Name,
			"role":     profile.Role,
			"language": profile.Language,
		},
	})
}

// GetProfile returns the caller's profile
func GetProfile(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	profile, err := service.GlobalServices.Profile.Get(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile edits the caller's profile (phone, name, language)
func UpdateProfile(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	profile, err := service.GlobalServices.Profile.Update(userID, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": ve.Message, "field": ve.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CheckPassword gives live per-requirement feedback for registration forms
func CheckPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	checks := validation.CheckPassword(req.Password)
	c.JSON(http.StatusOK, gin.H{"checks": checks, "valid": checks.Valid()})
}

// ListProfiles lists accounts for the admin dashboard
func ListProfiles(c *gin.Context) {
	page, pageSize := pagination(c)

	profiles, total, err := service.GlobalServices.Profile.ListPage(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      profiles,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// SetProfileRole promotes or demotes an account (superadmin only)
func SetProfileRole(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid profile ID"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	profile, err := service.GlobalServices.Profile.SetRole(id, req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": profile.ID, "role": profile.Role})
}
