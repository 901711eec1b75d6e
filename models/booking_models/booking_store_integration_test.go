package booking_models

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickstay/booking/migrations"
)

// newTestPool connects to TEST_DATABASE_URL, applies migrations and
// truncates the tables. Tests are skipped when the variable is unset.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Apply(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE bookings, rooms, hotels, users CASCADE`)
	require.NoError(t, err)

	return pool
}

func seedRoom(t *testing.T, pool *pgxpool.Pool) (roomID, hotelID uuid.UUID, userID string) {
	t.Helper()
	ctx := context.Background()

	userID = "user_" + uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO users (id, email, username) VALUES ($1, $2, $3)`,
		userID, "guest@example.com", "Guest One")
	require.NoError(t, err)

	hotelID = uuid.New()
	_, err = pool.Exec(ctx, `INSERT INTO hotels (id, name, owner) VALUES ($1, $2, $3)`,
		hotelID, "Seaside Inn", userID)
	require.NoError(t, err)

	roomID = uuid.New()
	_, err = pool.Exec(ctx, `INSERT INTO rooms (id, hotel_id, room_type, price_per_night, max_guests) VALUES ($1, $2, $3, $4, $5)`,
		roomID, hotelID, "Double Bed", 100.00, 4)
	require.NoError(t, err)

	return roomID, hotelID, userID
}

func testBooking(roomID, hotelID uuid.UUID, userID, in, out string) *Booking {
	return &Booking{
		ID:           uuid.New(),
		UserID:       userID,
		RoomID:       roomID,
		HotelID:      hotelID,
		CheckInDate:  day(in),
		CheckOutDate: day(out),
		Guests:       2,
		TotalPrice:   200,
		Status:       "confirmed",
	}
}

func TestInsertRejectsOverlap(t *testing.T) {
	pool := newTestPool(t)
	roomID, hotelID, userID := seedRoom(t, pool)
	model := NewBookingModel(pool)
	ctx := context.Background()

	require.NoError(t, model.Insert(ctx, testBooking(roomID, hotelID, userID, "2024-01-01", "2024-01-03")))

	// Touching boundary conflicts under the inclusive-range policy.
	err := model.Insert(ctx, testBooking(roomID, hotelID, userID, "2024-01-03", "2024-01-05"))
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	// A disjoint stay is fine.
	require.NoError(t, model.Insert(ctx, testBooking(roomID, hotelID, userID, "2024-01-04", "2024-01-06")))

	n, err := model.CountOverlapping(ctx, roomID, day("2024-01-02"), day("2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestConcurrentOverlappingInserts drives the double-booking race: two
// requests that both passed the availability check insert concurrently,
// and the exclusion constraint must let exactly one commit.
func TestConcurrentOverlappingInserts(t *testing.T) {
	pool := newTestPool(t)
	roomID, hotelID, userID := seedRoom(t, pool)
	model := NewBookingModel(pool)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			errs[i] = model.Insert(ctx, testBooking(roomID, hotelID, userID, "2024-06-10", "2024-06-12"))
		}(i)
	}
	start.Done()
	done.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errors.Is(err, ErrRoomUnavailable), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one overlapping insert may commit")

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE room_id = $1`, roomID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestListByHotelOrdering(t *testing.T) {
	pool := newTestPool(t)
	roomID, hotelID, userID := seedRoom(t, pool)
	model := NewBookingModel(pool)
	ctx := context.Background()

	stays := []struct{ in, out string }{
		{"2024-02-01", "2024-02-03"},
		{"2024-03-01", "2024-03-03"},
		{"2024-04-01", "2024-04-03"},
	}
	for _, s := range stays {
		require.NoError(t, model.Insert(ctx, testBooking(roomID, hotelID, userID, s.in, s.out)))
		// created_at has to differ for the ordering assertion.
		time.Sleep(10 * time.Millisecond)
	}

	got, err := model.ListByHotel(ctx, hotelID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := 1; i < len(got); i++ {
		assert.True(t, !got[i-1].CreatedAt.Before(got[i].CreatedAt), "bookings must be newest first")
	}
	assert.Equal(t, "Guest One", got[0].UserName)
	assert.Equal(t, "Seaside Inn", got[0].HotelName)
}
