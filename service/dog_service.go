package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pawphysio/models"
)

// DogService handles a client's dogs.
type DogService struct {
	db *gorm.DB
}

// NewDogService constructs a dog service
func NewDogService(db *gorm.DB) *DogService {
	return &DogService{db: db}
}

// ListForOwner lists all dogs belonging to one client.
func (s *DogService) ListForOwner(ownerID uint) ([]models.Dog, error) {
	var dogs []models.Dog
	if err := s.db.Where("owner_id = ?", ownerID).Order("id").Find(&dogs).Error; err != nil {
		return nil, fmt.Errorf("failed to list dogs: %w", err)
	}
	return dogs, nil
}

// Get fetches a dog, scoped to its owner.
func (s *DogService) Get(ownerID, id uint) (*models.Dog, error) {
	var dog models.Dog
	if err := s.db.First(&dog, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dog not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get dog: %w", err)
	}
	return &dog, nil
}

// Create registers a dog for a client.
func (s *DogService) Create(ownerID uint, req models.DogCreate) (*models.Dog, error) {
	req.Normalize()

	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if req.WeightKg < 0 {
		return nil, &ValidationError{Field: "weight_kg", Message: "weight must not be negative"}
	}

	dog := models.Dog{
		OwnerID:   ownerID,
		Name:      req.Name,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		WeightKg:  req.WeightKg,
		Notes:     req.Notes,
	}

	if err := s.db.Create(&dog).Error; err != nil {
		return nil, fmt.Errorf("failed to create dog: %w", err)
	}
	return &dog, nil
}

// Update edits a dog, scoped to its owner.
func (s *DogService) Update(ownerID, id uint, req models.DogCreate) (*models.Dog, error) {
	dog, err := s.Get(ownerID, id)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	if req.Name != "" {
		dog.Name = req.Name
	}
	dog.Breed = req.Breed
	dog.BirthDate = req.BirthDate
	if req.WeightKg > 0 {
		dog.WeightKg = req.WeightKg
	}
	dog.Notes = req.Notes

	if err := s.db.Save(dog).Error; err != nil {
		return nil, fmt.Errorf("failed to update dog: %w", err)
	}
	return dog, nil
}

// Delete removes a dog unless it still has scheduled bookings.
func (s *DogService) Delete(ownerID, id uint) error {
	dog, err := s.Get(ownerID, id)
	if err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.Booking{}).
		Where("dog_id = ? AND status = ?", dog.ID, models.BookingScheduled).
		Count(&count)
	if count > 0 {
		return fmt.Errorf("cannot delete dog '%s': %d scheduled booking(s)", dog.Name, count)
	}

	if err := s.db.Delete(dog).Error; err != nil {
		return fmt.Errorf("failed to delete dog: %w", err)
	}
	return nil
}
