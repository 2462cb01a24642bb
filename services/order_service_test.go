package services

import (
	"context"
	"database/sql"
	"rentkart_server/database"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newMockOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	svc := &OrderService{
		logger: gecho.NewLogger(gecho.NewConfig()),
		cfg:    &structs.Config{Billing: &structs.BillingConfig{}},
		db:     &database.DB{DB: bun.NewDB(sqldb, pgdialect.New())},
	}
	return svc, mock
}

func draftRows(id, customerID uuid.UUID, pickup, ret time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "customer_id", "order_number", "status", "pickup_status", "pickup_date", "return_date",
	}).AddRow(id.String(), customerID.String(), "RK-20260910-0AF3C1", "draft", "pending", pickup, ret)
}

func TestGetOrCreateDraftReusesExisting(t *testing.T) {
	svc, mock := newMockOrderService(t)

	customerID := uuid.New()
	draftID := uuid.New()
	pickup := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ret := pickup.Add(72 * time.Hour)

	mock.ExpectQuery(`SELECT (.+) FROM "rental_orders"`).
		WillReturnRows(draftRows(draftID, customerID, pickup, ret))
	mock.ExpectQuery(`SELECT (.+) FROM "rental_order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	draft, err := svc.GetOrCreateDraft(context.Background(), customerID, pickup, ret)
	require.NoError(t, err)

	// No INSERT: the open draft is returned as-is
	assert.Equal(t, draftID, draft.Id)
	assert.Equal(t, tables.OrderStatusDraft, draft.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateDraftLostInsertRace(t *testing.T) {
	svc, mock := newMockOrderService(t)

	customerID := uuid.New()
	winnerID := uuid.New()
	pickup := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ret := pickup.Add(48 * time.Hour)

	// No draft on the first look
	mock.ExpectQuery(`SELECT (.+) FROM "rental_orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// ON CONFLICT DO NOTHING inserted nothing: a concurrent request won
	// the partial-index race and RETURNING came back empty
	mock.ExpectQuery(`INSERT INTO "rental_orders"`).
		WillReturnError(sql.ErrNoRows)

	// The re-select converges on the winner's row
	mock.ExpectQuery(`SELECT (.+) FROM "rental_orders"`).
		WillReturnRows(draftRows(winnerID, customerID, pickup, ret))
	mock.ExpectQuery(`SELECT (.+) FROM "rental_order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	draft, err := svc.GetOrCreateDraft(context.Background(), customerID, pickup, ret)
	require.NoError(t, err)

	assert.Equal(t, winnerID, draft.Id)
	assert.Equal(t, customerID, draft.CustomerId)
	assert.NoError(t, mock.ExpectationsWereMet())
}
