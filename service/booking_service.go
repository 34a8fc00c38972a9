package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pawphysio/mailer"
	"pawphysio/models"
)

var ErrBookingNotCancellable = errors.New("booking is not in a cancellable state")

// BookingFilter narrows the admin booking list. Zero values mean "any".
type BookingFilter struct {
	Status      string
	ClientEmail string // substring match
	Since       *time.Time
	Until       *time.Time
}

// BookingService handles physiotherapy session bookings.
type BookingService struct {
	db     *gorm.DB
	mailer *mailer.Mailer
}

// NewBookingService constructs a booking service
func NewBookingService(db *gorm.DB, m *mailer.Mailer) *BookingService {
	return &BookingService{db: db, mailer: m}
}

// Create books a session for one of the client's dogs. Confirmation email
// is best-effort and logged either way.
func (s *BookingService) Create(clientID uint, req models.BookingCreate) (*models.Booking, error) {
	req.Normalize()

	var dog models.Dog
	if err := s.db.First(&dog, "id = ? AND owner_id = ?", req.DogID, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dog not found: %d", req.DogID)
		}
		return nil, fmt.Errorf("failed to check dog: %w", err)
	}

	var svc models.Service
	if err := s.db.First(&svc, "id = ? AND active = ?", req.ServiceID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service not found or inactive: %d", req.ServiceID)
		}
		return nil, fmt.Errorf("failed to check service: %w", err)
	}

	if req.StartsAt.Before(time.Now()) {
		return nil, &ValidationError{Field: "starts_at", Message: "booking must be in the future"}
	}

	booking := models.Booking{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		DogID:     dog.ID,
		ServiceID: svc.ID,
		StartsAt:  req.StartsAt,
		Status:    models.BookingScheduled,
		Notes:     req.Notes,
	}

	if err := s.db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.sendBookingEmail(models.EmailTypeBookingConfirmation, &booking, &dog, &svc)

	return &booking, nil
}

// Get fetches a booking. A zero clientID skips the ownership check (admin).
func (s *BookingService) Get(clientID uint, id string) (*models.Booking, error) {
	var booking models.Booking
	q := s.db.Where("id = ?", id)
	if clientID != 0 {
		q = q.Where("client_id = ?", clientID)
	}
	if err := q.First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ListForClient lists one client's bookings, newest first.
func (s *BookingService) ListForClient(clientID uint) ([]models.BookingRead, error) {
	rows, _, err := s.list(BookingFilter{}, clientID, 1, 100)
	return rows, err
}

// ListPage returns filtered bookings for the admin dashboard with
// pagination, newest first.
func (s *BookingService) ListPage(filter BookingFilter, page, pageSize int) ([]models.BookingRead, int64, error) {
	return s.list(filter, 0, page, pageSize)
}

func (s *BookingService) list(filter BookingFilter, clientID uint, page, pageSize int) ([]models.BookingRead, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	base := s.db.Model(&models.Booking{}).
		Joins("JOIN profiles ON profiles.id = bookings.client_id").
		Joins("JOIN dogs ON dogs.id = bookings.dog_id").
		Joins("JOIN services ON services.id = bookings.service_id")

	if clientID != 0 {
		base = base.Where("bookings.client_id = ?", clientID)
	}
	if filter.Status != "" {
		base = base.Where("bookings.status = ?", filter.Status)
	}
	if filter.ClientEmail != "" {
		base = base.Where("profiles.email LIKE ?", "%"+filter.ClientEmail+"%")
	}
	if filter.Since != nil {
		base = base.Where("bookings.starts_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		base = base.Where("bookings.starts_at <= ?", *filter.Until)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var rows []models.BookingRead
	offset := (page - 1) * pageSize
	err := base.
		Select("bookings.id, bookings.client_id, profiles.name AS client_name, profiles.email AS client_email, " +
			"bookings.dog_id, dogs.name AS dog_name, bookings.service_id, services.name AS service_name, " +
			"bookings.starts_at, bookings.status, bookings.notes, bookings.created_at").
		Order("bookings.starts_at DESC").
		Offset(offset).Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return rows, total, nil
}

// Cancel marks a scheduled booking cancelled (the row is kept) and sends
// the cancellation email best-effort.
func (s *BookingService) Cancel(clientID uint, id string) (*models.Booking, error) {
	booking, err := s.Get(clientID, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingScheduled {
		return nil, ErrBookingNotCancellable
	}

	booking.Status = models.BookingCancelled
	if err := s.db.Save(booking).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	var dog models.Dog
	var svc models.Service
	_ = s.db.First(&dog, booking.DogID).Error
	_ = s.db.First(&svc, booking.ServiceID).Error
	s.sendBookingEmail(models.EmailTypeBookingCancellation, booking, &dog, &svc)

	return booking, nil
}

// SetStatus lets an admin move a booking to any known status without
// triggering notification email.
func (s *BookingService) SetStatus(id, status string) (*models.Booking, error) {
	if !models.ValidBookingStatus(status) {
		return nil, fmt.Errorf("unknown booking status: %s", status)
	}

	booking, err := s.Get(0, id)
	if err != nil {
		return nil, err
	}

	booking.Status = status
	if err := s.db.Save(booking).Error; err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return booking, nil
}

func (s *BookingService) sendBookingEmail(emailType string, booking *models.Booking, dog *models.Dog, svc *models.Service) {
	if s.mailer == nil {
		return
	}

	var client models.Profile
	if err := s.db.First(&client, booking.ClientID).Error; err != nil {
		log.Printf("booking: failed to load client %d for email: %v", booking.ClientID, err)
		return
	}

	if _, err := s.mailer.Send(mailer.Message{
		Type:      emailType,
		To:        client.Email,
		ToName:    client.Name,
		BookingID: booking.ID,
		UserID:    client.ID,
		Language:  client.Language,
		Data: map[string]interface{}{
			"Name":    client.Name,
			"Dog":     dog.Name,
			"Service": svc.Name,
			"Date":    booking.StartsAt.Format("02/01/2006 15:04"),
		},
	}); err != nil {
		log.Printf("booking: %s email for %s failed: %v", emailType, booking.ID, err)
	}
}
