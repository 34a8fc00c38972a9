package models

import (
	"strings"
	"time"
)

// Profile roles
const (
	RoleClient     = "client"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Profile is a registered account (client, admin or superadmin).
type Profile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string    `json:"phone"`
	Country      string    `gorm:"size:2;default:'ES'" json:"country"`
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `gorm:"default:'client';index" json:"role"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Language     string    `gorm:"size:5;default:'es'" json:"language"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileRegister request payload for registration
type ProfileRegister struct {
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Language string `json:"language"`
}

// Normalize trims whitespace from input fields
func (p *ProfileRegister) Normalize() {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Country = strings.ToUpper(strings.TrimSpace(p.Country))
	p.Name = strings.TrimSpace(p.Name)
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
}

// ProfileUpdate request payload for profile edits.
// Email and role are immutable through this path.
type ProfileUpdate struct {
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

func (p *ProfileUpdate) Normalize() {
	p.Phone = strings.TrimSpace(p.Phone)
	p.Country = strings.ToUpper(strings.TrimSpace(p.Country))
	p.Name = strings.TrimSpace(p.Name)
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
}

// Dog is a client's dog receiving physiotherapy.
type Dog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	Name      string    `gorm:"not null" json:"name"`
	Breed     string    `json:"breed"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	WeightKg  float64   `json:"weight_kg"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// DogCreate request payload for creating or updating a dog
type DogCreate struct {
	Name      string     `json:"name" binding:"required"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	WeightKg  float64    `json:"weight_kg"`
	Notes     string     `json:"notes"`
}

func (d *DogCreate) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Breed = strings.TrimSpace(d.Breed)
	d.Notes = strings.TrimSpace(d.Notes)
}

// Service is a bookable physiotherapy treatment.
type Service struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	DurationMin int    `gorm:"default:45" json:"duration_min"`
	PriceCents  int    `json:"price_cents"`
	Active      bool   `gorm:"default:true;index" json:"active"`
}

// ServiceCreate request payload for catalog management
type ServiceCreate struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	DurationMin int    `json:"duration_min"`
	PriceCents  int    `json:"price_cents"`
	Active      *bool  `json:"active"`
}

func (s *ServiceCreate) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
}

// Booking statuses
const (
	BookingScheduled = "scheduled"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking is a scheduled physiotherapy session.
type Booking struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ClientID  uint      `gorm:"index;not null" json:"client_id"`
	DogID     uint      `gorm:"index;not null" json:"dog_id"`
	ServiceID uint      `gorm:"index;not null" json:"service_id"`
	StartsAt  time.Time `gorm:"index;not null" json:"starts_at"`
	Status    string    `gorm:"default:'scheduled';index" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingCreate request payload for creating a booking
type BookingCreate struct {
	DogID     uint      `json:"dog_id" binding:"required"`
	ServiceID uint      `json:"service_id" binding:"required"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
	Notes     string    `json:"notes"`
}

func (b *BookingCreate) Normalize() {
	b.Notes = strings.TrimSpace(b.Notes)
}

// BookingRead response model joining client/dog/service display fields
type BookingRead struct {
	ID          string    `json:"id"`
	ClientID    uint      `json:"client_id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	DogID       uint      `json:"dog_id"`
	DogName     string    `json:"dog_name"`
	ServiceID   uint      `json:"service_id"`
	ServiceName string    `json:"service_name"`
	StartsAt    time.Time `json:"starts_at"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingScheduled, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// ValidRole reports whether r is a known profile role.
func ValidRole(r string) bool {
	switch r {
	case RoleClient, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
