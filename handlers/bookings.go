package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pawphysio/middleware"
	"pawphysio/models"
	"pawphysio/service"
)

// ListDogs returns the caller's dogs
func ListDogs(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	dogs, err := service.GlobalServices.Dog.ListForOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dogs})
}

// CreateDog registers a dog for the caller
func CreateDog(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	var req models.DogCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	dog, err := service.GlobalServices.Dog.Create(userID, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": ve.Message, "field": ve.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dog)
}

// UpdateDog edits one of the caller's dogs
func UpdateDog(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid dog ID"})
		return
	}

	var req models.DogCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	dog, err := service.GlobalServices.Dog.Update(userID, id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dog)
}

// DeleteDog removes one of the caller's dogs
func DeleteDog(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid dog ID"})
		return
	}

	if err := service.GlobalServices.Dog.Delete(userID, id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListServices returns the active treatment catalog (public)
func ListServices(c *gin.Context) {
	services, err := service.GlobalServices.Catalog.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": services})
}

// ListServicesAdmin returns the full catalog including inactive entries
func ListServicesAdmin(c *gin.Context) {
	services, err := service.GlobalServices.Catalog.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": services})
}

// CreateService adds a catalog entry (admin)
func CreateService(c *gin.Context) {
	var req models.ServiceCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	svc, err := service.GlobalServices.Catalog.Create(req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": ve.Message, "field": ve.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, svc)
}

// UpdateService edits a catalog entry (admin)
func UpdateService(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid service ID"})
		return
	}

	var req models.ServiceCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	svc, err := service.GlobalServices.Catalog.Update(id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteService removes a catalog entry with no booking history (admin)
func DeleteService(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid service ID"})
		return
	}

	if err := service.GlobalServices.Catalog.Delete(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListBookings returns the caller's bookings
func ListBookings(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	rows, err := service.GlobalServices.Booking.ListForClient(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// CreateBooking books a session for one of the caller's dogs
func CreateBooking(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	var req models.BookingCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	booking, err := service.GlobalServices.Booking.Create(userID, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": ve.Message, "field": ve.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels one of the caller's scheduled bookings
func CancelBooking(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	booking, err := service.GlobalServices.Booking.Cancel(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotCancellable) {
			c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ListBookingsAdmin returns filtered bookings across all clients
func ListBookingsAdmin(c *gin.Context) {
	since, err := parseTimeParam(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid since: use unix seconds or RFC3339"})
		return
	}
	until, err := parseTimeParam(c.Query("until"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid until: use unix seconds or RFC3339"})
		return
	}

	filter := service.BookingFilter{
		Status:      c.Query("status"),
		ClientEmail: c.Query("client_email"),
		Since:       since,
		Until:       until,
	}

	page, pageSize := pagination(c)
	rows, total, err := service.GlobalServices.Booking.ListPage(filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      rows,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// SetBookingStatus moves a booking to any known status (admin)
func SetBookingStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	booking, err := service.GlobalServices.Booking.SetStatus(c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}
