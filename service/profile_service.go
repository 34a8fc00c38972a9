package service

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"pawphysio/auth"
	"pawphysio/mailer"
	"pawphysio/models"
	"pawphysio/validation"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries a field-level message for inline display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProfileService handles registration, login and profile edits.
type ProfileService struct {
	db     *gorm.DB
	auth   *auth.Auth
	mailer *mailer.Mailer
}

// NewProfileService constructs a profile service
func NewProfileService(db *gorm.DB, a *auth.Auth, m *mailer.Mailer) *ProfileService {
	return &ProfileService{db: db, auth: a, mailer: m}
}

// Register validates and creates a new client account, then sends the
// welcome email best-effort (a failed send never fails the registration).
func (s *ProfileService) Register(req models.ProfileRegister) (*models.Profile, error) {
	req.Normalize()

	if msg := validation.ValidateEmail(req.Email); msg != "" {
		return nil, &ValidationError{Field: "email", Message: msg}
	}
	if req.Country == "" {
		req.Country = "ES"
	}
	if req.Phone != "" {
		if msg := validation.ValidatePhone(req.Country, req.Phone); msg != "" {
			return nil, &ValidationError{Field: "phone", Message: msg}
		}
	}
	if checks := validation.CheckPassword(req.Password); !checks.Valid() {
		return nil, &ValidationError{Field: "password", Message: "password does not meet all requirements"}
	}
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	var count int64
	if err := s.db.Model(&models.Profile{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	language := req.Language
	if language == "" {
		language = "es"
	}

	profile := models.Profile{
		Email:        req.Email,
		Phone:        req.Phone,
		Country:      req.Country,
		Name:         req.Name,
		Role:         models.RoleClient,
		PasswordHash: hash,
		Language:     language,
	}

	if err := s.db.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if s.mailer != nil {
		if _, err := s.mailer.Send(mailer.Message{
			Type:     models.EmailTypeWelcome,
			To:       profile.Email,
			ToName:   profile.Name,
			UserID:   profile.ID,
			Language: profile.Language,
			Data:     map[string]interface{}{"Name": profile.Name},
		}); err != nil {
			log.Printf("profile: welcome email to %s failed: %v", profile.Email, err)
		}
	}

	return &profile, nil
}

// Login verifies credentials and issues an API token.
func (s *ProfileService) Login(email, password string) (token string, profile *models.Profile, err error) {
	var p models.Profile
	if err := s.db.First(&p, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	if err := s.auth.VerifyPassword(password, p.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err = s.auth.GenerateToken(p.ID, p.Email, p.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, &p, nil
}

// Get fetches a profile by ID
func (s *ProfileService) Get(id uint) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// Update edits the mutable profile fields. Email and role stay fixed;
// the stored language is the authoritative copy for notifications.
func (s *ProfileService) Update(id uint, req models.ProfileUpdate) (*models.Profile, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	if req.Country != "" {
		p.Country = req.Country
	}
	if req.Phone != "" {
		if msg := validation.ValidatePhone(p.Country, req.Phone); msg != "" {
			return nil, &ValidationError{Field: "phone", Message: msg}
		}
		p.Phone = req.Phone
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Language != "" {
		p.Language = req.Language
	}

	if err := s.db.Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return p, nil
}

// SetRole promotes or demotes an account (superadmin only at the API layer).
func (s *ProfileService) SetRole(id uint, role string) (*models.Profile, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	p.Role = role
	if err := s.db.Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return p, nil
}

// ListPage returns profiles with pagination, newest first.
func (s *ProfileService) ListPage(page, pageSize int) ([]models.Profile, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := s.db.Model(&models.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	var profiles []models.Profile
	offset := (page - 1) * pageSize
	if err := s.db.Order("id desc").Offset(offset).Limit(pageSize).Find(&profiles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, total, nil
}

// EnsureSeedAdmin creates the superadmin account from config when the email
// does not exist yet. Used on first start.
func (s *ProfileService) EnsureSeedAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check seed admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	admin := models.Profile{
		Email:        email,
		Name:         "Administrator",
		Role:         models.RoleSuperAdmin,
		PasswordHash: hash,
		Language:     "es",
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	log.Printf("Seeded superadmin account: %s", email)
	return nil
}
