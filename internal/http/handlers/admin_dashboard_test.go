package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func sumRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"sum"}).AddRow(n)
}

func TestGetDashboardOverview(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Booking metrics
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WillReturnRows(countRows(42))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE event_date >=`).WillReturnRows(countRows(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE created_at >=`).WillReturnRows(countRows(5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'cancelled'`).WillReturnRows(countRows(3))

	// Lead metrics
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).WillReturnRows(countRows(80))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE created_at >=`).WillReturnRows(countRows(9))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE status = 'converted'`).WillReturnRows(countRows(20))

	// Deposit metrics
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_cents\), 0\) FROM deposits WHERE status = 'succeeded'$`).WillReturnRows(sumRows(250000))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_cents\), 0\) FROM deposits WHERE status = 'succeeded' AND updated_at >=`).WillReturnRows(sumRows(45000))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM deposits WHERE status = 'pending'`).WillReturnRows(countRows(4))

	// Invoice metrics
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invoices WHERE issued_at >=`).WillReturnRows(countRows(31))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_cents\), 0\) FROM invoices WHERE status = 'sent'`).WillReturnRows(sumRows(120000))

	// Pending actions
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = 'pending'`).WillReturnRows(countRows(2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE status = 'new'`).WillReturnRows(countRows(7))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invoices WHERE status = 'sent' AND issued_at <`).WillReturnRows(countRows(0))

	handler := NewAdminDashboardHandler(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()

	handler.GetDashboardOverview(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp DashboardOverviewResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, "week", resp.Period)
	assert.Equal(t, 42, resp.Bookings.Total)
	assert.Equal(t, 12, resp.Bookings.Upcoming)
	assert.Equal(t, 5, resp.Bookings.ThisWeek)
	assert.Equal(t, 3, resp.Bookings.CancelledCount)
	assert.Equal(t, 80, resp.Leads.Total)
	assert.Equal(t, 9, resp.Leads.NewThisWeek)
	assert.Equal(t, 25.0, resp.Leads.ConversionRate)
	assert.Equal(t, int64(250000), resp.Deposits.CollectedCents)
	assert.Equal(t, int64(45000), resp.Deposits.ThisWeekCents)
	assert.Equal(t, 4, resp.Deposits.PendingCount)
	assert.Equal(t, 31, resp.Invoices.IssuedThisYear)
	assert.Equal(t, int64(120000), resp.Invoices.OutstandingCents)

	require.Len(t, resp.PendingActions, 2)
	assert.Equal(t, "booking", resp.PendingActions[0].Type)
	assert.Equal(t, 2, resp.PendingActions[0].Count)
	assert.Equal(t, "lead", resp.PendingActions[1].Type)
	assert.Equal(t, 7, resp.PendingActions[1].Count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDashboardOverview_CustomPeriod(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 7; i++ {
		mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(countRows(0))
	}
	mock.ExpectQuery(`SELECT COALESCE`).WillReturnRows(sumRows(0))
	mock.ExpectQuery(`SELECT COALESCE`).WillReturnRows(sumRows(0))
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`SELECT COALESCE`).WillReturnRows(sumRows(0))
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(countRows(0))

	handler := NewAdminDashboardHandler(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard?period=month", nil)
	w := httptest.NewRecorder()

	handler.GetDashboardOverview(w, req)

	var resp DashboardOverviewResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, "month", resp.Period)
	assert.Zero(t, resp.Bookings.Total)
	assert.Empty(t, resp.PendingActions)
}
