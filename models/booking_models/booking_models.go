package booking_models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRoomUnavailable is the business decline: the requested stay overlaps
// an existing booking. The exclusion constraint reports it for inserts
// that lose a race with a concurrent request.
var ErrRoomUnavailable = errors.New("room is not available")

type Booking struct {
	ID           uuid.UUID
	UserID       string
	RoomID       uuid.UUID
	HotelID      uuid.UUID
	CheckInDate  time.Time
	CheckOutDate time.Time
	Guests       int
	TotalPrice   float64
	Status       string
	CreatedAt    time.Time
}

// BookingDetail is a booking joined with its room, hotel and guest, as
// returned by the listing endpoints.
type BookingDetail struct {
	Booking
	RoomType  string
	HotelName string
	UserName  string
	UserEmail string
}

// Nights returns the number of billable nights between check-in and
// check-out, rounding partial days up.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Overlaps reports whether two stays on the same room conflict.
// Boundaries are inclusive: checking out the morning another guest checks
// in still counts as a conflict (same-day turnover policy).
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return !aIn.After(bOut) && !aOut.Before(bIn)
}

type BookingModel struct {
	DB *pgxpool.Pool
}

func NewBookingModel(db *pgxpool.Pool) *BookingModel {
	return &BookingModel{DB: db}
}

// CountOverlapping returns how many existing bookings for the room
// intersect the requested interval, boundaries inclusive.
func (m *BookingModel) CountOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (int, error) {
	const query = `
SELECT COUNT(*) FROM bookings
WHERE room_id = $1 AND check_in_date <= $3 AND check_out_date >= $2`

	var n int
	if err := m.DB.QueryRow(ctx, query, roomID, checkIn, checkOut).Scan(&n); err != nil {
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return n, nil
}

// Insert persists a booking. Losing the race against a concurrent insert
// for overlapping dates trips the exclusion constraint, which surfaces
// as ErrRoomUnavailable so callers decline instead of erroring.
func (m *BookingModel) Insert(ctx context.Context, b *Booking) error {
	const stmt = `
INSERT INTO bookings (id, user_id, room_id, hotel_id, check_in_date, check_out_date, guests, total_price, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at`

	err := m.DB.QueryRow(ctx, stmt,
		b.ID, b.UserID, b.RoomID, b.HotelID,
		b.CheckInDate, b.CheckOutDate, b.Guests, b.TotalPrice, b.Status,
	).Scan(&b.CreatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return ErrRoomUnavailable
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (m *BookingModel) ListByUser(ctx context.Context, userID string) ([]BookingDetail, error) {
	const query = `
SELECT b.id, b.user_id, b.room_id, b.hotel_id, b.check_in_date, b.check_out_date,
       b.guests, b.total_price, b.status, b.created_at,
       r.room_type, h.name
FROM bookings b
JOIN rooms r ON r.id = b.room_id
JOIN hotels h ON h.id = b.hotel_id
WHERE b.user_id = $1
ORDER BY b.created_at DESC`

	rows, err := m.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()

	return scanDetails(rows, false)
}

func (m *BookingModel) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]BookingDetail, error) {
	const query = `
SELECT b.id, b.user_id, b.room_id, b.hotel_id, b.check_in_date, b.check_out_date,
       b.guests, b.total_price, b.status, b.created_at,
       r.room_type, h.name, u.username, u.email
FROM bookings b
JOIN rooms r ON r.id = b.room_id
JOIN hotels h ON h.id = b.hotel_id
JOIN users u ON u.id = b.user_id
WHERE b.hotel_id = $1
ORDER BY b.created_at DESC`

	rows, err := m.DB.Query(ctx, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by hotel: %w", err)
	}
	defer rows.Close()

	return scanDetails(rows, true)
}

func scanDetails(rows pgx.Rows, withUser bool) ([]BookingDetail, error) {
	var out []BookingDetail
	for rows.Next() {
		var d BookingDetail
		dest := []any{
			&d.ID, &d.UserID, &d.RoomID, &d.HotelID, &d.CheckInDate, &d.CheckOutDate,
			&d.Guests, &d.TotalPrice, &d.Status, &d.CreatedAt,
			&d.RoomType, &d.HotelName,
		}
		if withUser {
			dest = append(dest, &d.UserName, &d.UserEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
