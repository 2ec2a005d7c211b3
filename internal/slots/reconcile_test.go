package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 11, 5, hour, minute, 0, 0, time.UTC)
}

func TestFilterAvailable_ExcludesOverlap(t *testing.T) {
	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	candidates := []types.TimeString{"09:00", "10:00", "11:00"}
	busy := []domain.BusyInterval{{Start: at(10, 0), End: at(10, 30)}}

	got := FilterAvailable(candidates, busy, date, 60, time.UTC)

	assert.Equal(t, []types.TimeString{"09:00", "11:00"}, got)
}

func TestFilterAvailable_TouchingBoundariesAreFree(t *testing.T) {
	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	candidates := []types.TimeString{"09:00", "10:00", "11:00"}
	busy := []domain.BusyInterval{
		{Start: at(10, 0), End: at(11, 0)}, // 09:00 заканчивается ровно в 10:00, 11:00 начинается ровно в 11:00
	}

	got := FilterAvailable(candidates, busy, date, 60, time.UTC)

	assert.Equal(t, []types.TimeString{"09:00", "11:00"}, got)
}

func TestFilterAvailable_OverlapTable(t *testing.T) {
	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	slot := []types.TimeString{"10:00"} // 10:00-11:00

	tests := []struct {
		name      string
		busy      domain.BusyInterval
		available bool
	}{
		{name: "ends at slot start", busy: domain.BusyInterval{Start: at(9, 0), End: at(10, 0)}, available: true},
		{name: "starts at slot end", busy: domain.BusyInterval{Start: at(11, 0), End: at(12, 0)}, available: true},
		{name: "covers slot", busy: domain.BusyInterval{Start: at(9, 0), End: at(12, 0)}, available: false},
		{name: "inside slot", busy: domain.BusyInterval{Start: at(10, 15), End: at(10, 45)}, available: false},
		{name: "overlaps start", busy: domain.BusyInterval{Start: at(9, 30), End: at(10, 1)}, available: false},
		{name: "overlaps end", busy: domain.BusyInterval{Start: at(10, 59), End: at(11, 30)}, available: false},
		{name: "other day", busy: domain.BusyInterval{Start: at(10, 0).AddDate(0, 0, 1), End: at(11, 0).AddDate(0, 0, 1)}, available: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAvailable(slot, []domain.BusyInterval{tt.busy}, date, 60, time.UTC)
			if tt.available {
				assert.Equal(t, slot, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilterAvailable_UsesLocation(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	assert.NoError(t, err)

	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	candidates := []types.TimeString{"09:00", "10:00"}
	// 09:00 по Мадриду = 08:00 UTC
	busy := []domain.BusyInterval{{Start: at(8, 0), End: at(8, 30)}}

	got := FilterAvailable(candidates, busy, date, 60, madrid)

	assert.Equal(t, []types.TimeString{"10:00"}, got)
}

func TestFilterFrom(t *testing.T) {
	date := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	candidates := []types.TimeString{"09:00", "10:00", "11:00"}

	got := FilterFrom(candidates, date, time.UTC, at(10, 0))

	assert.Equal(t, []types.TimeString{"10:00", "11:00"}, got)
}

func TestBookingsAsBusy_SkipsCancelled(t *testing.T) {
	bookings := []*domain.Booking{
		{StartTime: at(9, 0), EndTime: at(10, 0), Status: domain.StatusConfirmed},
		{StartTime: at(10, 0), EndTime: at(11, 0), Status: domain.StatusCancelled},
	}

	busy := BookingsAsBusy(bookings)

	assert.Equal(t, []domain.BusyInterval{{Start: at(9, 0), End: at(10, 0)}}, busy)
}
