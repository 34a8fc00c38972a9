package service

import (
	"gorm.io/gorm"

	"pawphysio/auth"
	"pawphysio/mailer"
)

// Services is the global service container
type Services struct {
	Profile   *ProfileService
	Dog       *DogService
	Catalog   *CatalogService
	Booking   *BookingService
	UserError *UserErrorService
	SystemLog *SystemLogService
	MailLog   *MailLogService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db *gorm.DB, a *auth.Auth, m *mailer.Mailer) {
	profileSvc := NewProfileService(db, a, m)
	dogSvc := NewDogService(db)
	catalogSvc := NewCatalogService(db)
	bookingSvc := NewBookingService(db, m)
	userErrorSvc := NewUserErrorService(db)
	systemLogSvc := NewSystemLogService(db)
	mailLogSvc := NewMailLogService(db, m)

	GlobalServices = &Services{
		Profile:   profileSvc,
		Dog:       dogSvc,
		Catalog:   catalogSvc,
		Booking:   bookingSvc,
		UserError: userErrorSvc,
		SystemLog: systemLogSvc,
		MailLog:   mailLogSvc,
	}
}
