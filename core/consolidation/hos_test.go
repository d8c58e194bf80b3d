package consolidation

import (
	"testing"
	"time"

	"github.com/loadaxis/fleetopt/core/model"
)

func stopsWithDriving(minutes ...float64) []model.RouteStop {
	stops := make([]model.RouteStop, len(minutes))
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	for i, m := range minutes {
		stops[i] = model.RouteStop{
			Location:       "stop",
			ScheduledTime:  now.Add(time.Duration(i) * time.Hour),
			ServiceMinutes: 30,
			DrivingMinutes: m,
		}
	}
	return stops
}

func TestCheckHOSCompliant(t *testing.T) {
	rep := CheckHOS(stopsWithDriving(0, 120, 120))
	if !rep.Compliant {
		t.Fatalf("expected compliant: %+v", rep)
	}
	if rep.DrivingHours != 4 {
		t.Errorf("driving hours = %v, want 4", rep.DrivingHours)
	}
	// 240 driving + 90 service.
	if rep.OnDutyHours != 5.5 {
		t.Errorf("on-duty hours = %v, want 5.5", rep.OnDutyHours)
	}
	if len(rep.RestBreaks) != 0 || len(rep.Warnings) != 0 {
		t.Errorf("unexpected breaks or warnings: %+v", rep)
	}
}

func TestCheckHOSInsertsSingleBreak(t *testing.T) {
	rep := CheckHOS(stopsWithDriving(0, 250, 250, 100))
	if len(rep.RestBreaks) != 1 {
		t.Fatalf("expected one recorded break, got %d", len(rep.RestBreaks))
	}
	br := rep.RestBreaks[0]
	if br.Type != model.BreakHalfHour || br.DurationMinutes != 30 || !br.Required {
		t.Fatalf("unexpected break %+v", br)
	}
	// 600 driving + 120 service; the recorded break adds nothing.
	if rep.OnDutyHours != 12 {
		t.Errorf("on-duty hours = %v, want 12", rep.OnDutyHours)
	}
}

func TestCheckHOSBreakDoesNotCountTowardOnDuty(t *testing.T) {
	// 500 driving + 330 service = 830 on-duty minutes, inside both limits.
	// Counting the recorded break would push this over 840 and wrongly
	// discard a legal route.
	rep := CheckHOS([]model.RouteStop{{
		Location:       "stop",
		ScheduledTime:  time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC),
		DrivingMinutes: 500,
		ServiceMinutes: 330,
	}})
	if !rep.Compliant {
		t.Fatalf("830 on-duty minutes must be compliant: %+v", rep)
	}
	if len(rep.RestBreaks) != 1 {
		t.Fatalf("expected the break recorded, got %d", len(rep.RestBreaks))
	}
	if got := rep.OnDutyHours * 60; got < 829.999 || got > 830.001 {
		t.Errorf("on-duty minutes = %v, want 830 (driving + service only)", got)
	}
}

func TestCheckHOSWarningBeforeLimit(t *testing.T) {
	rep := CheckHOS(stopsWithDriving(0, 310, 310))
	if !rep.Compliant {
		t.Fatalf("620 driving minutes is still legal")
	}
	if len(rep.Warnings) == 0 {
		t.Fatalf("expected approaching-limit warning")
	}
}

func TestCheckHOSBreach(t *testing.T) {
	rep := CheckHOS(stopsWithDriving(0, 450, 450))
	if rep.Compliant {
		t.Fatalf("900 driving minutes must be non-compliant")
	}
	if len(rep.Warnings) == 0 {
		t.Fatalf("breach must carry warnings")
	}
}
