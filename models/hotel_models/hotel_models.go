package hotel_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrHotelNotFound = errors.New("hotel not found")

type Hotel struct {
	ID        uuid.UUID
	Name      string
	Address   string
	Contact   string
	City      string
	Owner     string
	CreatedAt time.Time
}

type HotelModel struct {
	DB *pgxpool.Pool
}

func NewHotelModel(db *pgxpool.Pool) *HotelModel {
	return &HotelModel{DB: db}
}

// GetByOwner returns the hotel owned by the given user. The data model
// assumes at most one hotel per owner; the oldest row wins if that
// assumption is ever violated.
func (m *HotelModel) GetByOwner(ctx context.Context, ownerID string) (*Hotel, error) {
	const query = `
SELECT id, name, address, contact, city, owner, created_at
FROM hotels WHERE owner = $1
ORDER BY created_at ASC
LIMIT 1`

	var h Hotel
	err := m.DB.QueryRow(ctx, query, ownerID).
		Scan(&h.ID, &h.Name, &h.Address, &h.Contact, &h.City, &h.Owner, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("get hotel by owner: %w", err)
	}
	return &h, nil
}
