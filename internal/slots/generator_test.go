package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func weekdayConfig(slotMinutes int, periods ...domain.Period) *domain.ScheduleConfig {
	return &domain.ScheduleConfig{
		WorkingDays: domain.DefaultWorkingDays,
		SlotMinutes: slotMinutes,
		Periods:     periods,
		Location:    time.UTC,
	}
}

func TestComputeSlotsForDate_WorkingDay(t *testing.T) {
	config := weekdayConfig(60, domain.Period{StartMinutes: 9 * 60, EndMinutes: 12 * 60})
	wednesday := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)

	got := ComputeSlotsForDate(wednesday, config)

	assert.Equal(t, []types.TimeString{"09:00", "10:00", "11:00"}, got)
}

func TestComputeSlotsForDate_NonWorkingDayIsEmpty(t *testing.T) {
	config := weekdayConfig(60, domain.Period{StartMinutes: 9 * 60, EndMinutes: 12 * 60})

	saturday := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, ComputeSlotsForDate(saturday, config))
	assert.Empty(t, ComputeSlotsForDate(sunday, config))
	assert.NotNil(t, ComputeSlotsForDate(sunday, config))
}

func TestComputeSlotsForDate_PartialTailIsDropped(t *testing.T) {
	config := weekdayConfig(45, domain.Period{StartMinutes: 9 * 60, EndMinutes: 11 * 60})
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	// 09:00-09:45, 09:45-10:30; 10:30-11:15 не помещается
	assert.Equal(t, []types.TimeString{"09:00", "09:45"}, ComputeSlotsForDate(monday, config))
}

func TestComputeSlotsForDate_ExactBoundaryIncluded(t *testing.T) {
	config := weekdayConfig(30, domain.Period{StartMinutes: 16 * 60, EndMinutes: 17 * 60})
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []types.TimeString{"16:00", "16:30"}, ComputeSlotsForDate(monday, config))
}

func TestComputeSlotsForDate_PeriodsKeepConfiguredOrder(t *testing.T) {
	config := weekdayConfig(60,
		domain.Period{StartMinutes: 15 * 60, EndMinutes: 17 * 60},
		domain.Period{StartMinutes: 9 * 60, EndMinutes: 10 * 60},
	)
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []types.TimeString{"15:00", "16:00", "09:00"}, ComputeSlotsForDate(monday, config))
}

func TestComputeSlotsForDate_OverlappingPeriodsProduceDuplicates(t *testing.T) {
	config := weekdayConfig(60,
		domain.Period{StartMinutes: 9 * 60, EndMinutes: 11 * 60},
		domain.Period{StartMinutes: 10 * 60, EndMinutes: 12 * 60},
	)
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []types.TimeString{"09:00", "10:00", "10:00", "11:00"}, ComputeSlotsForDate(monday, config))
}

func TestComputeSlotsForDate_PeriodUntilMidnight(t *testing.T) {
	config := weekdayConfig(60, domain.Period{StartMinutes: 22 * 60, EndMinutes: 24 * 60})
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []types.TimeString{"22:00", "23:00"}, ComputeSlotsForDate(monday, config))
}

func TestComputeSlotsForDate_SlotsAlignedToPeriodStart(t *testing.T) {
	periods := []domain.Period{
		{StartMinutes: 9*60 + 10, EndMinutes: 12 * 60},
		{StartMinutes: 13*60 + 35, EndMinutes: 18*60 + 5},
	}
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	for _, slotMinutes := range []int{5, 15, 20, 25, 45, 60, 90} {
		config := weekdayConfig(slotMinutes, periods...)
		for _, slot := range ComputeSlotsForDate(monday, config) {
			m := slot.Minutes()
			owned := false
			for _, p := range periods {
				if m >= p.StartMinutes && m+slotMinutes <= p.EndMinutes && (m-p.StartMinutes)%slotMinutes == 0 {
					owned = true
					break
				}
			}
			assert.True(t, owned, "slot %s misaligned for slotMinutes=%d", slot, slotMinutes)
		}
	}
}

func TestComputeSlotsForDate_InvalidSlotMinutes(t *testing.T) {
	config := weekdayConfig(0, domain.Period{StartMinutes: 9 * 60, EndMinutes: 12 * 60})
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, ComputeSlotsForDate(monday, config))
	assert.Empty(t, ComputeSlotsForDate(monday, nil))
}

func TestIsCandidate(t *testing.T) {
	config := weekdayConfig(60, domain.Period{StartMinutes: 9 * 60, EndMinutes: 12 * 60})
	monday := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsCandidate(monday, "10:00", config))
	assert.False(t, IsCandidate(monday, "10:30", config))
	assert.False(t, IsCandidate(monday, "12:00", config))
}
