package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStockReportQueryFiltersOnItemCreation(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	query, args := stockReportQuery(Filter{FromDate: from, ToDate: to})

	require.Contains(t, query, "i.created_at >= $1")
	require.Contains(t, query, "i.created_at <= $2")
	require.Equal(t, []interface{}{from, to}, args)

	// A date filter on the joined distributions columns would drop items
	// that have never been stocked.
	require.NotContains(t, query, "d.updated_at >=")
	require.NotContains(t, query, "d.updated_at <=")
	require.True(t, strings.Contains(query, "LEFT JOIN distributions"))
}

func TestStockReportQuerySupplierFilterOrdering(t *testing.T) {
	query, args := stockReportQuery(Filter{SupplierID: 7, FromDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)})

	require.Contains(t, query, "i.supplier_id = $1")
	require.Contains(t, query, "i.created_at >= $2")
	require.Len(t, args, 2)
	require.Equal(t, int64(7), args[0])
}
