package booking_controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickstay/booking/logger"
	"github.com/quickstay/booking/models/booking_models"
	"github.com/quickstay/booking/models/hotel_models"
	"github.com/quickstay/booking/models/room_models"
	"github.com/quickstay/booking/models/user_models"
	"github.com/quickstay/booking/utils"
	"github.com/quickstay/booking/utils/mail"
)

const dateLayout = "2006-01-02"

// BookingStore is the persistence surface the controller needs. The
// production implementation is booking_models.BookingModel.
type BookingStore interface {
	CountOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (int, error)
	Insert(ctx context.Context, b *booking_models.Booking) error
	ListByUser(ctx context.Context, userID string) ([]booking_models.BookingDetail, error)
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]booking_models.BookingDetail, error)
}

type RoomStore interface {
	GetWithHotel(ctx context.Context, id uuid.UUID) (*room_models.RoomWithHotel, error)
}

type HotelStore interface {
	GetByOwner(ctx context.Context, ownerID string) (*hotel_models.Hotel, error)
}

// ConfirmationMailer sends the booking confirmation email.
type ConfirmationMailer interface {
	SendBookingConfirmation(toEmail string, data mail.BookingConfirmation) error
	Currency() string
}

// BookingController holds dependencies for the booking flow.
type BookingController struct {
	Bookings BookingStore
	Rooms    RoomStore
	Hotels   HotelStore
	Mailer   ConfirmationMailer
}

// NewBookingController wires the controller to the production models.
func NewBookingController(db *pgxpool.Pool, mailer *mail.Mailer) *BookingController {
	return &BookingController{
		Bookings: booking_models.NewBookingModel(db),
		Rooms:    room_models.NewRoomModel(db),
		Hotels:   hotel_models.NewHotelModel(db),
		Mailer:   mailer,
	}
}

type availabilityRequest struct {
	Room         string `json:"room" binding:"required,uuid4"`
	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`
}

type createBookingRequest struct {
	Room         string `json:"room" binding:"required,uuid4"`
	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`
	Guests       int    `json:"guests" binding:"required,gte=1,lte=4"`
}

// isRoomAvailable reports whether no existing booking on the room
// overlaps the requested interval, boundaries inclusive. Persistence
// errors are logged and mapped to "not available": the checker fails
// closed rather than risking a double booking on unknown state.
func (bc *BookingController) isRoomAvailable(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) bool {
	n, err := bc.Bookings.CountOverlapping(ctx, roomID, checkIn, checkOut)
	if err != nil {
		logger.ErrorLogger.Errorf("Availability check failed: %v", err)
		return false
	}
	return n == 0
}

// CheckAvailability handles POST /api/bookings/check-availability.
func (bc *BookingController) CheckAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing parameters"})
		return
	}

	roomID, checkIn, checkOut, ok := bc.parseStay(c, req.Room, req.CheckInDate, req.CheckOutDate)
	if !ok {
		return
	}

	isAvailable := bc.isRoomAvailable(c.Request.Context(), roomID, checkIn, checkOut)
	c.JSON(http.StatusOK, gin.H{"success": true, "isAvailable": isAvailable})
}

// Book handles POST /api/bookings/book. Flow: availability check, room
// and hotel lookup, price computation, insert, confirmation email.
func (bc *BookingController) Book(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing parameters"})
		return
	}

	user, ok := authenticatedUser(c)
	if !ok {
		return
	}

	roomID, checkIn, checkOut, ok := bc.parseStay(c, req.Room, req.CheckInDate, req.CheckOutDate)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if !bc.isRoomAvailable(ctx, roomID, checkIn, checkOut) {
		// A taken room is a business decline, not an error.
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Room is not available"})
		return
	}

	roomData, err := bc.Rooms.GetWithHotel(ctx, roomID)
	if err != nil {
		if errors.Is(err, room_models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Room not found"})
			return
		}
		logger.ErrorLogger.Errorf("Error in Book: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create booking"})
		return
	}

	nights := booking_models.Nights(checkIn, checkOut)
	totalPrice := float64(nights) * roomData.PricePerNight

	booking := &booking_models.Booking{
		ID:           uuid.New(),
		UserID:       user.ID,
		RoomID:       roomID,
		HotelID:      roomData.HotelID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Guests:       req.Guests,
		TotalPrice:   totalPrice,
		Status:       "confirmed",
	}

	if err := bc.Bookings.Insert(ctx, booking); err != nil {
		if errors.Is(err, booking_models.ErrRoomUnavailable) {
			// Lost the race against a concurrent overlapping booking.
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Room is not available"})
			return
		}
		logger.ErrorLogger.Errorf("Error in Book: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create booking"})
		return
	}

	// The booking is persisted; a failed email must not fail the request.
	if err := bc.Mailer.SendBookingConfirmation(user.Email, mail.BookingConfirmation{
		UserName:     user.Username,
		BookingID:    booking.ID.String(),
		HotelName:    roomData.HotelName,
		RoomType:     roomData.RoomType,
		Guests:       req.Guests,
		CheckInDate:  checkIn.Format(dateLayout),
		CheckOutDate: checkOut.Format(dateLayout),
		Currency:     bc.Mailer.Currency(),
		TotalPrice:   totalPrice,
	}); err != nil {
		logger.WarnLogger.Warnf("Booking %s created but confirmation email failed: %v", booking.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking created successfully"})
}

// GetUserBookings handles GET /api/bookings/user.
func (bc *BookingController) GetUserBookings(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	bookings, err := bc.Bookings.ListByUser(c.Request.Context(), userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Error in GetUserBookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": toResponses(bookings)})
}

// GetHotelBookings handles GET /api/bookings/hotel: the owner dashboard
// with booking count, revenue and the bookings themselves, newest first.
func (bc *BookingController) GetHotelBookings(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()

	hotel, err := bc.Hotels.GetByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, hotel_models.ErrHotelNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "No Hotel found"})
			return
		}
		logger.ErrorLogger.Errorf("Error in GetHotelBookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch bookings"})
		return
	}

	bookings, err := bc.Bookings.ListByHotel(ctx, hotel.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Error in GetHotelBookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch bookings"})
		return
	}

	totalRevenue := 0.0
	for _, b := range bookings {
		totalRevenue += b.TotalPrice
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dashboardData": gin.H{
			"totalBookings": len(bookings),
			"totalRevenue":  totalRevenue,
			"bookings":      toResponses(bookings),
		},
	})
}

// parseStay parses and validates the room ID and date pair, writing the
// 400 response itself when something is off.
func (bc *BookingController) parseStay(c *gin.Context, room, checkInStr, checkOutStr string) (uuid.UUID, time.Time, time.Time, bool) {
	roomID, err := uuid.Parse(room)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid room id"})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	checkIn, err := time.Parse(dateLayout, checkInStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid checkInDate"})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	checkOut, err := time.Parse(dateLayout, checkOutStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid checkOutDate"})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	if !checkIn.Before(checkOut) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "checkInDate must be before checkOutDate"})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	return roomID, checkIn, checkOut, true
}

func authenticatedUser(c *gin.Context) (*user_models.User, bool) {
	v, exists := c.Get("authenticated_user")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return nil, false
	}
	user, ok := v.(*user_models.User)
	if !ok {
		logger.ErrorLogger.Errorf("authenticated_user in context has unexpected type %T", v)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return nil, false
	}
	return user, true
}

type bookingResponse struct {
	ID           string  `json:"id"`
	User         string  `json:"user"`
	Room         string  `json:"room"`
	Hotel        string  `json:"hotel"`
	RoomType     string  `json:"roomType"`
	HotelName    string  `json:"hotelName"`
	UserName     string  `json:"userName,omitempty"`
	UserEmail    string  `json:"userEmail,omitempty"`
	CheckInDate  string  `json:"checkInDate"`
	CheckOutDate string  `json:"checkOutDate"`
	Guests       int     `json:"guests"`
	TotalPrice   float64 `json:"totalPrice"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
}

func toResponses(details []booking_models.BookingDetail) []bookingResponse {
	out := make([]bookingResponse, 0, len(details))
	for _, d := range details {
		out = append(out, bookingResponse{
			ID:           d.ID.String(),
			User:         d.UserID,
			Room:         d.RoomID.String(),
			Hotel:        d.HotelID.String(),
			RoomType:     d.RoomType,
			HotelName:    d.HotelName,
			UserName:     d.UserName,
			UserEmail:    d.UserEmail,
			CheckInDate:  d.CheckInDate.Format(dateLayout),
			CheckOutDate: d.CheckOutDate.Format(dateLayout),
			Guests:       d.Guests,
			TotalPrice:   d.TotalPrice,
			Status:       d.Status,
			CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
