package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pawphysio/database"
)

// Install platform classes.
const (
	PlatformSafariIOS     = "safari-ios"
	PlatformChromeIOS     = "chrome-ios"
	PlatformChromeDesktop = "chrome-desktop"
	PlatformChromeAndroid = "chrome-android"
	PlatformOther         = "other"
)

// installCopy maps platform class to the home-screen instruction shown in
// the install banner.
var installCopy = map[string]string{
	PlatformSafariIOS:     "Tap Share, then 'Add to Home Screen'.",
	PlatformChromeIOS:     "Open this page in Safari to add it to your home screen.",
	PlatformChromeDesktop: "Click the install icon in the address bar.",
	PlatformChromeAndroid: "Open the browser menu and choose 'Install app'.",
	PlatformOther:         "",
}

// ClassifyUserAgent buckets a User-Agent string into an install platform
// class. iOS is checked first: every iOS browser ships WebKit and claims
// Safari, so CriOS must win over the Safari token.
func ClassifyUserAgent(ua string) string {
	isIOS := strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad") || strings.Contains(ua, "iPod")
	if isIOS {
		if strings.Contains(ua, "CriOS") {
			return PlatformChromeIOS
		}
		if strings.Contains(ua, "Safari") {
			return PlatformSafariIOS
		}
		return PlatformOther
	}

	if strings.Contains(ua, "Chrome") && !strings.Contains(ua, "Edg") && !strings.Contains(ua, "OPR") {
		if strings.Contains(ua, "Android") {
			return PlatformChromeAndroid
		}
		return PlatformChromeDesktop
	}

	return PlatformOther
}

// InstallHint classifies the request User-Agent and returns per-platform
// install copy plus the global banner toggle.
func InstallHint(c *gin.Context) {
	platform := ClassifyUserAgent(c.GetHeader("User-Agent"))

	bannerEnabled := true
	if val, ok, err := database.GetSetting(database.SettingInstallBannerEnable); err == nil && ok && val == "false" {
		bannerEnabled = false
	}

	c.JSON(http.StatusOK, gin.H{
		"platform":       platform,
		"copy":           installCopy[platform],
		"banner_enabled": bannerEnabled,
		"installable":    platform != PlatformOther && bannerEnabled,
	})
}

// SetInstallBanner toggles the install banner (superadmin). Absence of the
// setting key means enabled, so enabling deletes the key.
func SetInstallBanner(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: enabled is required"})
		return
	}

	var err error
	if *req.Enabled {
		err = database.DeleteSetting(database.SettingInstallBannerEnable)
	} else {
		err = database.SetSetting(database.SettingInstallBannerEnable, "false")
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "enabled": *req.Enabled})
}
