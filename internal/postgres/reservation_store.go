package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockroom/internal/stock"
)

type ReservationStore struct{ Pool *pgxpool.Pool }

const reservationColumns = `reservation_id, product_id, store_id, customer_id, quantity, status, created_at, expires_at, confirmation_code`

func (s *ReservationStore) Get(ctx context.Context, id string) (*stock.Reservation, error) {
	row := runner(ctx, s.Pool).QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations WHERE reservation_id=$1`, id)

	r, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", stock.ErrReservationNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation: %w", err)
	}
	return r, nil
}

func (s *ReservationStore) Save(ctx context.Context, r *stock.Reservation) error {
	_, err := runner(ctx, s.Pool).Exec(ctx, `
		INSERT INTO reservations (reservation_id, product_id, store_id, customer_id, quantity, status, created_at, expires_at, confirmation_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (reservation_id) DO UPDATE SET status = EXCLUDED.status`,
		r.ID, r.ProductID, r.StoreID, nullable(r.CustomerID), r.Quantity, string(r.Status),
		r.CreatedAt, r.ExpiresAt, r.ConfirmationCode)
	if err != nil {
		return fmt.Errorf("save reservation: %w", err)
	}
	return nil
}

func (s *ReservationStore) FindExpiredActive(ctx context.Context, now time.Time) ([]stock.Reservation, error) {
	rows, err := runner(ctx, s.Pool).Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations WHERE status=$1 AND expires_at < $2
		ORDER BY expires_at`, string(stock.StatusActive), now)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (s *ReservationStore) FindByCustomer(ctx context.Context, customerID string) ([]stock.Reservation, error) {
	rows, err := runner(ctx, s.Pool).Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations WHERE customer_id=$1
		ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func scanReservation(row pgx.Row) (*stock.Reservation, error) {
	var (
		r        stock.Reservation
		customer *string
		status   string
	)
	if err := row.Scan(&r.ID, &r.ProductID, &r.StoreID, &customer, &r.Quantity,
		&status, &r.CreatedAt, &r.ExpiresAt, &r.ConfirmationCode); err != nil {
		return nil, err
	}
	if customer != nil {
		r.CustomerID = *customer
	}
	r.Status = stock.ReservationStatus(status)
	return &r, nil
}

func collectReservations(rows pgx.Rows) ([]stock.Reservation, error) {
	defer rows.Close()
	var out []stock.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
