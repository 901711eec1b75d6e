package room_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRoomNotFound = errors.New("room not found")

type Room struct {
	ID            uuid.UUID
	HotelID       uuid.UUID
	RoomType      string
	PricePerNight float64
	MaxGuests     int
	IsAvailable   bool
	CreatedAt     time.Time
}

// RoomWithHotel is a room joined with its owning hotel, as needed by the
// booking flow and the confirmation email.
type RoomWithHotel struct {
	Room
	HotelName string
	HotelCity string
}

type RoomModel struct {
	DB *pgxpool.Pool
}

func NewRoomModel(db *pgxpool.Pool) *RoomModel {
	return &RoomModel{DB: db}
}

func (m *RoomModel) GetWithHotel(ctx context.Context, id uuid.UUID) (*RoomWithHotel, error) {
	const query = `
SELECT r.id, r.hotel_id, r.room_type, r.price_per_night, r.max_guests,
       r.is_available, r.created_at, h.name, h.city
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
WHERE r.id = $1`

	var rw RoomWithHotel
	err := m.DB.QueryRow(ctx, query, id).Scan(
		&rw.ID, &rw.HotelID, &rw.RoomType, &rw.PricePerNight, &rw.MaxGuests,
		&rw.IsAvailable, &rw.CreatedAt, &rw.HotelName, &rw.HotelCity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room with hotel: %w", err)
	}
	return &rw, nil
}
