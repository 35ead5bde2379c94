package repositories

import (
	"context"
	"database/sql"
	"delivery-intake-service/internal/domain"
	"delivery-intake-service/internal/platform/obs"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLDeliveryRepository is a SQL-backed implementation of the DeliveryRepository port.
//
// Every call acquires its own connection from DB and releases it before
// returning, so requests never share a connection.
type SQLDeliveryRepository struct {
	DB *sql.DB
}

func NewSQLDeliveryRepository(db *sql.DB) *SQLDeliveryRepository {
	return &SQLDeliveryRepository{DB: db}
}

// Insert a single delivery row using bound parameters.
func (s *SQLDeliveryRepository) CreateDelivery(ctx context.Context, d domain.Delivery) (err error) {
	defer obs.Time(ctx, "deliveries.CreateDelivery")(&err)

	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stmt, err := conn.PrepareContext(ctx, `
	INSERT INTO deliveries (tracking_number, status, location)
	VALUES ($1, $2, $3);
	`)
	if err != nil {
		return &domain.InsertError{Err: err}
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, d.TrackingNumber, d.Status, d.Location); err != nil {
		logSQLState(ctx, err)
		return &domain.InsertError{Err: err}
	}

	return nil
}

// Fetch one delivery by tracking number.
func (s *SQLDeliveryRepository) GetDelivery(ctx context.Context, trackingNumber string) (_ *domain.Delivery, err error) {
	defer obs.Time(ctx, "deliveries.GetDelivery")(&err)

	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	q := `
	SELECT tracking_number, status, location
	FROM deliveries
	WHERE tracking_number = $1;
	`

	var d domain.Delivery
	err = conn.QueryRowContext(ctx, q, trackingNumber).Scan(&d.TrackingNumber, &d.Status, &d.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get delivery %q: %w", trackingNumber, err)
	}

	return &d, nil
}

func (s *SQLDeliveryRepository) conn(ctx context.Context) (*sql.Conn, error) {
	if s.DB == nil {
		return nil, &domain.ConnectionError{Err: errors.New("db is nil")}
	}

	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, &domain.ConnectionError{Err: err}
	}

	return conn, nil
}

// logSQLState records the SQLSTATE of Postgres failures reported through pgx.
func logSQLState(ctx context.Context, err error) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return
	}

	zerolog.Ctx(ctx).Warn().
		Str("sqlstate", pgErr.Code).
		Str("constraint", pgErr.ConstraintName).
		Str("table", pgErr.TableName).
		Msg("delivery insert rejected")
}
