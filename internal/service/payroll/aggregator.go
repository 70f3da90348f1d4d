package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const dateKeyLayout = "2006-01-02"

// MonthlyAttendance is the attendance aggregation of one business for one month.
type MonthlyAttendance struct {
	Period             payroll.Period
	TotalWorkingDays   int
	DailyBusinessHours decimal.Decimal
	TotalBusinessHours decimal.Decimal
	Employees          map[string]payroll.AttendanceFacts
}

// FactsFor returns the facts of one employee. Employees that were not part of the
// aggregation get the business-wide totals only.
func (m MonthlyAttendance) FactsFor(employeeID string) payroll.AttendanceFacts {
	if facts, ok := m.Employees[employeeID]; ok {
		return facts
	}
	return payroll.AttendanceFacts{
		TotalWorkingDays:   m.TotalWorkingDays,
		TotalBusinessHours: m.TotalBusinessHours,
	}
}

type AttendanceAggregator struct {
}

func NewAttendanceAggregator() *AttendanceAggregator {
	return &AttendanceAggregator{}
}

type employeeTally struct {
	present, absent, leave, half, holidayDays int
	workHours, overtime, holidayHours         decimal.Decimal
}

// Aggregate classifies every day of the period for every employee in employeeIDs.
// Holiday and working-day checks use calendar dates, never shifted instants.
func (a *AttendanceAggregator) Aggregate(
	period payroll.Period,
	settings business.Settings,
	holidays []business.Holiday,
	records []attendance.DailyRecord,
	employeeIDs []string,
) (MonthlyAttendance, error) {
	if err := period.Validate(); err != nil {
		return MonthlyAttendance{}, err
	}

	dailyHours, err := settings.DailyWorkHours()
	if err != nil {
		return MonthlyAttendance{}, fmt.Errorf("business %s: %w", settings.BusinessID, err)
	}

	holidaySet := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Date.Format(dateKeyLayout)] = true
	}

	// date -> employee -> entry; the first entry for an employee on a date wins
	entriesByDay := make(map[string]map[string]attendance.Entry, len(records))
	for _, rec := range records {
		key := rec.Date.Format(dateKeyLayout)
		day, ok := entriesByDay[key]
		if !ok {
			day = make(map[string]attendance.Entry, len(rec.Entries))
			entriesByDay[key] = day
		}
		for _, e := range rec.Entries {
			if _, seen := day[e.EmployeeID]; !seen {
				day[e.EmployeeID] = e
			}
		}
	}

	tallies := make(map[string]*employeeTally, len(employeeIDs))
	for _, id := range employeeIDs {
		tallies[id] = &employeeTally{}
	}

	totalWorkingDays := 0
	for d := 1; d <= period.Days(); d++ {
		date := period.Date(d)
		key := date.Format(dateKeyLayout)
		isHoliday := holidaySet[key]
		isWorkingDay := settings.IsWorkingWeekday(date.Weekday()) && !isHoliday
		if isWorkingDay {
			totalWorkingDays++
		}

		day := entriesByDay[key]
		for _, id := range employeeIDs {
			t := tallies[id]
			entry, ok := day[id]
			if ok && !entry.InStatus.IsValid() {
				return MonthlyAttendance{}, fmt.Errorf("employee %s on %s: %w", id, key, attendance.ErrInvalidStatus)
			}

			if !ok || entry.InStatus == attendance.StatusAbsent {
				if isWorkingDay {
					t.absent++
				}
				continue
			}

			t.workHours = t.workHours.Add(entry.WorkHours)

			switch {
			case isHoliday:
				t.holidayDays++
				t.holidayHours = t.holidayHours.Add(entry.WorkHours)
			case isWorkingDay:
				if overtime := entry.WorkHours.Sub(dailyHours); overtime.IsPositive() {
					t.overtime = t.overtime.Add(overtime)
				}
				switch entry.InStatus {
				case attendance.StatusOnTime, attendance.StatusLate:
					t.present++
				case attendance.StatusHalfDay:
					t.half++
				case attendance.StatusLeave:
					t.leave++
				}
			}
		}
	}

	totalBusinessHours := dailyHours.Mul(decimal.NewFromInt(int64(totalWorkingDays))).Round(2)

	result := MonthlyAttendance{
		Period:             period,
		TotalWorkingDays:   totalWorkingDays,
		DailyBusinessHours: dailyHours.Round(2),
		TotalBusinessHours: totalBusinessHours,
		Employees:          make(map[string]payroll.AttendanceFacts, len(employeeIDs)),
	}
	for id, t := range tallies {
		result.Employees[id] = payroll.AttendanceFacts{
			TotalWorkingDays:   totalWorkingDays,
			TotalBusinessHours: totalBusinessHours,
			PresentDays:        t.present,
			AbsentDays:         t.absent,
			LeaveDays:          t.leave,
			HalfDays:           t.half,
			TotalWorkHours:     t.workHours.Round(2),
			OvertimeHours:      t.overtime.Round(2),
			HolidayWorkDays:    t.holidayDays,
			HolidayWorkHours:   t.holidayHours.Round(2),
		}
	}

	return result, nil
}
