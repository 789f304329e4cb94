package models

import (
	"testing"
	"time"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusCompleted, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusAccepted, StatusPending, false},
		{StatusAccepted, StatusRejected, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
	}

	for _, tc := range cases {
		a := Appointment{Status: tc.from}
		if got := a.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range AllStatuses {
		if !ValidStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if ValidStatus("confirmed") {
		t.Error("unknown status accepted")
	}
}

func TestSlotContains(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	slot := Slot{
		StartTime:   base,
		EndTime:     base.Add(2 * time.Hour),
		IsAvailable: true,
	}

	if !slot.Contains(base, base.Add(time.Hour)) {
		t.Error("window inside slot should be contained")
	}
	if !slot.Contains(base, base.Add(2*time.Hour)) {
		t.Error("window equal to slot should be contained")
	}
	if slot.Contains(base.Add(-time.Minute), base.Add(time.Hour)) {
		t.Error("window starting before slot should not be contained")
	}
	if slot.Contains(base, base.Add(3*time.Hour)) {
		t.Error("window ending after slot should not be contained")
	}
}

func TestScheduleDayFor(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	schedule := Schedule{
		{Date: day1},
		{Date: day2},
	}

	// Matching is by calendar date, not instant
	if got := schedule.DayFor(day2.Add(14 * time.Hour)); got != 1 {
		t.Errorf("got index %d, want 1", got)
	}
	if got := schedule.DayFor(day1.AddDate(0, 0, 5)); got != -1 {
		t.Errorf("got index %d for absent date, want -1", got)
	}
}

func TestAppointmentDurationCrossesMidnight(t *testing.T) {
	start := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	d := Duration{Hours: 1, Minutes: 30}
	end := start.Add(d.ToDuration())

	if end.Day() != 11 || end.Hour() != 1 || end.Minute() != 0 {
		t.Errorf("got end %v, want next day 01:00", end)
	}
}
