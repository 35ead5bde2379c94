package repositories

import (
	"context"
	"database/sql"
	"delivery-intake-service/internal/domain"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "deliveries.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := InitSchema(context.Background(), db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return db
}

func TestSQLDeliveryRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLDeliveryRepository(newTestDB(t))

	in := domain.Delivery{TrackingNumber: "A1B2C3D4", Status: "in_transit", Location: "Warehouse A"}
	if err := repo.CreateDelivery(ctx, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetDelivery(ctx, "A1B2C3D4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != in {
		t.Fatalf("got %+v, want %+v", *got, in)
	}
}

func TestSQLDeliveryRepositoryStoresVerbatim(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLDeliveryRepository(newTestDB(t))

	tests := []domain.Delivery{
		{TrackingNumber: "00000001", Status: "", Location: ""},
		{TrackingNumber: "00000002", Status: "  delayed  ", Location: "Dock 7\n"},
		{TrackingNumber: "00000003", Status: "x'); DROP TABLE deliveries;--", Location: "Robert'"},
	}

	for _, d := range tests {
		if err := repo.CreateDelivery(ctx, d); err != nil {
			t.Fatalf("create %s: %v", d.TrackingNumber, err)
		}
	}

	for _, want := range tests {
		got, err := repo.GetDelivery(ctx, want.TrackingNumber)
		if err != nil {
			t.Fatalf("get %s: %v", want.TrackingNumber, err)
		}
		if *got != want {
			t.Errorf("got %+v, want %+v", *got, want)
		}
	}
}

func TestSQLDeliveryRepositoryGetMissing(t *testing.T) {
	repo := NewSQLDeliveryRepository(newTestDB(t))

	_, err := repo.GetDelivery(context.Background(), "FFFFFFFF")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLDeliveryRepositoryDuplicateIsInsertError(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLDeliveryRepository(newTestDB(t))

	d := domain.Delivery{TrackingNumber: "DEADBEEF", Status: "created", Location: "Hub"}
	if err := repo.CreateDelivery(ctx, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := repo.CreateDelivery(ctx, d)
	var insErr *domain.InsertError
	if !errors.As(err, &insErr) {
		t.Fatalf("expected *domain.InsertError, got %T: %v", err, err)
	}
}

func TestSQLDeliveryRepositoryMissingTableIsInsertError(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	repo := NewSQLDeliveryRepository(db)
	err = repo.CreateDelivery(context.Background(), domain.Delivery{TrackingNumber: "12345678"})

	var insErr *domain.InsertError
	if !errors.As(err, &insErr) {
		t.Fatalf("expected *domain.InsertError, got %T: %v", err, err)
	}
}

func TestSQLDeliveryRepositoryClosedDBIsConnectionError(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLDeliveryRepository(db)
	_ = db.Close()

	err := repo.CreateDelivery(context.Background(), domain.Delivery{TrackingNumber: "12345678"})

	var connErr *domain.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *domain.ConnectionError, got %T: %v", err, err)
	}

	_, err = repo.GetDelivery(context.Background(), "12345678")
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *domain.ConnectionError on read, got %T: %v", err, err)
	}
}

func TestSQLDeliveryRepositoryNilDB(t *testing.T) {
	repo := NewSQLDeliveryRepository(nil)

	err := repo.CreateDelivery(context.Background(), domain.Delivery{TrackingNumber: "12345678"})
	var connErr *domain.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *domain.ConnectionError, got %v", err)
	}
}

func TestInitSchemaIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := InitSchema(context.Background(), db); err != nil {
		t.Fatalf("second InitSchema: %v", err)
	}
	if err := InitSchema(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil DB")
	}
}
