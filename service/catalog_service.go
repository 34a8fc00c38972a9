package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pawphysio/models"
)

// CatalogService manages the bookable treatment catalog.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService constructs a catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListActive lists the services clients may book.
func (s *CatalogService) ListActive() ([]models.Service, error) {
	var services []models.Service
	if err := s.db.Where("active = ?", true).Order("name").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// List lists the whole catalog including inactive entries (admin view).
func (s *CatalogService) List() ([]models.Service, error) {
	var services []models.Service
	if err := s.db.Order("name").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// Get fetches a service by ID
func (s *CatalogService) Get(id uint) (*models.Service, error) {
	var svc models.Service
	if err := s.db.First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

// Create adds a catalog entry.
func (s *CatalogService) Create(req models.ServiceCreate) (*models.Service, error) {
	req.Normalize()

	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if req.DurationMin <= 0 {
		req.DurationMin = 45
	}
	if req.PriceCents < 0 {
		return nil, &ValidationError{Field: "price_cents", Message: "price must not be negative"}
	}

	svc := models.Service{
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Active:      true,
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := s.db.Create(&svc).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return &svc, nil
}

// Update edits a catalog entry.
func (s *CatalogService) Update(id uint, req models.ServiceCreate) (*models.Service, error) {
	svc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	if req.Name != "" {
		svc.Name = req.Name
	}
	svc.Description = req.Description
	if req.DurationMin > 0 {
		svc.DurationMin = req.DurationMin
	}
	if req.PriceCents >= 0 {
		svc.PriceCents = req.PriceCents
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := s.db.Save(svc).Error; err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return svc, nil
}

// Delete removes a catalog entry unless bookings reference it; deactivate
// instead when history exists.
func (s *CatalogService) Delete(id uint) error {
	svc, err := s.Get(id)
	if err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.Booking{}).Where("service_id = ?", svc.ID).Count(&count)
	if count > 0 {
		return fmt.Errorf("cannot delete service '%s': referenced by %d booking(s); deactivate it instead", svc.Name, count)
	}

	if err := s.db.Delete(svc).Error; err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}
