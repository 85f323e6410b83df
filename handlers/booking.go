package handlers

import (
	"net/http"

	userRepo "brandconnect/database/repository/user"
	"brandconnect/middleware"
	"brandconnect/models"
	"brandconnect/services/booking"
	"brandconnect/services/calendar"
	"brandconnect/services/errs"
	"brandconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Bookings booking.BookingService
	Users    userRepo.UserRepository
}

// CreateBookingHandler handles POST /api/bookings. The caller is the client
// unless an admin books on someone's behalf.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	if !isAdmin(c) || req.ClientID == "" {
		req.ClientID = middleware.UserID(c)
	}

	b, err := h.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		getLogger(c).Warn("create booking failed", zap.String("clientId", req.ClientID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookingsHandler handles GET /api/bookings. Non-admins only see their
// own bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	var filter models.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	switch models.Role(middleware.Role(c)) {
	case models.RoleAdmin:
	case models.RoleCreative:
		filter.CreativeID = middleware.UserID(c)
	default:
		filter.ClientID = middleware.UserID(c)
	}

	list, err := h.Bookings.ListBookings(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// loadBooking fetches :id and checks the caller may see it.
func (h *BookingHandler) loadBooking(c *gin.Context) (*models.Booking, bool) {
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	if !requireParty(c, b.ClientID, b.CreativeID) {
		return nil, false
	}
	return b, true
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, ok := h.loadBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpdateBookingStatusHandler handles PATCH /api/bookings/:id/status. The
// creative and admins drive the lifecycle; the client may only cancel.
func (h *BookingHandler) UpdateBookingStatusHandler(c *gin.Context) {
	var input struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	b, ok := h.loadBooking(c)
	if !ok {
		return
	}
	if !isAdmin(c) && middleware.UserID(c) != b.CreativeID && input.Status != models.BookingCancelled {
		utils.RespondError(c, errs.Forbidden("clients can only cancel a booking"))
		return
	}

	updated, err := h.Bookings.UpdateBookingStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		getLogger(c).Info("booking status change rejected",
			zap.String("bookingId", c.Param("id")),
			zap.String("to", string(input.Status)),
			zap.Error(err),
		)
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// PayBookingHandler handles POST /api/bookings/:id/payment, settling an
// existing booking with a completed payment made by its client.
func (h *BookingHandler) PayBookingHandler(c *gin.Context) {
	var input struct {
		PaymentID string `json:"paymentId" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	b, ok := h.loadBooking(c)
	if !ok {
		return
	}
	if !requireParty(c, b.ClientID) {
		return
	}

	updated, err := h.Bookings.MarkPaid(c.Request.Context(), b.ID, input.PaymentID)
	if err != nil {
		getLogger(c).Warn("booking payment rejected",
			zap.String("bookingId", b.ID),
			zap.String("paymentId", input.PaymentID),
			zap.Error(err),
		)
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CalendarHandler handles GET /api/bookings/:id/calendar.ics.
func (h *BookingHandler) CalendarHandler(c *gin.Context) {
	b, ok := h.loadBooking(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	creative, err := h.Users.GetByIDWithProjection(ctx, b.CreativeID, userRepo.ContactProjection)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	service, err := h.Users.GetService(ctx, b.ServiceID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	event, err := calendar.BookingEvent(*b, *creative, *service)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="booking-`+b.ID+`.ics"`)
	c.Header("X-Google-Calendar-URL", calendar.GoogleCalendarURL(event))
	c.Header("X-Outlook-Calendar-URL", calendar.OutlookCalendarURL(event))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.ICS(event)))
}

// AvailableSlotsHandler handles GET /api/creatives/:id/slots?date=YYYY-MM-DD.
func (h *BookingHandler) AvailableSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	slots, err := h.Bookings.AvailableSlots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"creativeId": c.Param("id"), "date": date, "slots": slots})
}
