package consolidation

import (
	"fmt"

	"github.com/loadaxis/fleetopt/core/model"
)

// hosState tracks the checker's position in the duty cycle while walking a
// sequenced route.
type hosState int

const (
	stateDriving hosState = iota
	stateOnDutyNotDriving
	stateRestRequired
	stateCompliant
	stateNonCompliant
)

// CheckHOS validates a sequenced route against federal hours-of-service
// limits: at most 660 driving minutes and 840 on-duty minutes. On-duty time
// is driving plus service; rest breaks are recorded but never counted. A
// single 30-minute break is inserted and recorded once cumulative driving
// reaches 480 minutes; only the first break per route is modeled. A warning,
// not a failure, is emitted once driving passes 600 minutes so callers can
// react before the hard limit.
func CheckHOS(stops []model.RouteStop) model.HOSReport {
	var (
		drivingMin float64
		onDutyMin  float64
		breaks     []model.RestBreak
		warnings   []string
		state      = stateOnDutyNotDriving
	)

	for _, stop := range stops {
		state = stateDriving
		drivingMin += stop.DrivingMinutes
		onDutyMin += stop.DrivingMinutes

		if drivingMin >= model.BreakTriggerMinutes && len(breaks) == 0 {
			state = stateRestRequired
			breaks = append(breaks, model.RestBreak{
				Location:        stop.Location,
				Start:           stop.ScheduledTime,
				DurationMinutes: model.RestBreakMinutes,
				Type:            model.BreakHalfHour,
				Required:        true,
			})
		}

		state = stateOnDutyNotDriving
		onDutyMin += stop.ServiceMinutes
	}

	if drivingMin > model.DrivingWarnMinutes {
		warnings = append(warnings, fmt.Sprintf("approaching driving limit: %.0f of %d minutes used", drivingMin, model.MaxDrivingMinutes))
	}

	if drivingMin <= model.MaxDrivingMinutes && onDutyMin <= model.MaxOnDutyMinutes {
		state = stateCompliant
	} else {
		state = stateNonCompliant
		if drivingMin > model.MaxDrivingMinutes {
			warnings = append(warnings, fmt.Sprintf("driving time %.0f min exceeds %d min limit", drivingMin, model.MaxDrivingMinutes))
		}
		if onDutyMin > model.MaxOnDutyMinutes {
			warnings = append(warnings, fmt.Sprintf("on-duty time %.0f min exceeds %d min limit", onDutyMin, model.MaxOnDutyMinutes))
		}
	}

	return model.HOSReport{
		Compliant:    state == stateCompliant,
		DrivingHours: drivingMin / 60,
		OnDutyHours:  onDutyMin / 60,
		RestBreaks:   breaks,
		Warnings:     warnings,
	}
}
