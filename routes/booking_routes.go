package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/quickstay/booking/config/db"
	"github.com/quickstay/booking/controllers/booking_controller"
	middleware "github.com/quickstay/booking/middlewares"
	"github.com/quickstay/booking/middlewares/auth"
	"github.com/quickstay/booking/utils/mail"
)

func RegisterBookingRoutes(router *gin.Engine, mailer *mail.Mailer) {
	bookingController := booking_controller.NewBookingController(db.DB, mailer)

	api := router.Group("/api/bookings")

	// Public: the search page checks availability before login.
	api.POST("/check-availability", middleware.NewRateLimiter("30-1m", "check-availability"), bookingController.CheckAvailability)

	protected := api.Group("/")
	protected.Use(auth.AuthMiddleware(db.DB))
	{
		protected.POST("/book", middleware.NewRateLimiter("10-1m", "book"), bookingController.Book)
		protected.GET("/user", middleware.NewRateLimiter("30-1m", "user-bookings"), bookingController.GetUserBookings)
		protected.GET("/hotel", middleware.NewRateLimiter("30-1m", "hotel-bookings"), bookingController.GetHotelBookings)
	}
}
