package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/fitclub-bot/internal/domain/visits"
)

func TestVisitsReport(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := []visits.ReportRow{
		{
			Visit:      visits.Visit{ID: 1, VisitDate: day.Add(9*time.Hour + 30*time.Minute), QRCode: "abc"},
			ClientName: "Айгерим", ClientPhone: "+77010001122", ExternalID: "1001",
		},
		{
			Visit:      visits.Visit{ID: 2, VisitDate: day.Add(11 * time.Hour), IsFreezeDay: true},
			ClientName: "Ержан", ExternalID: "1002",
		},
	}

	data, err := Visits(day, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 4)

	assert.Equal(t, "Посещения за 10.03.2026", got[0][0])
	assert.Equal(t, header, got[1])
	assert.Equal(t, []string{"09:30", "Айгерим", "+77010001122", "1001", "Посещение", "abc"}, got[2])
	assert.Equal(t, "11:00", got[3][0])
	assert.Equal(t, "Заморозка", got[3][4])

	totals := map[string]string{}
	for _, r := range got[4:] {
		if len(r) == 2 {
			totals[r[0]] = r[1]
		}
	}
	assert.Equal(t, map[string]string{"Посещений": "1", "Заморозок": "1"}, totals)
}

func TestVisitsReportEmpty(t *testing.T) {
	data, err := Visits(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "visits_20260310.xlsx", VisitsFilename(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
}
