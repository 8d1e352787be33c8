// Package compliance evaluates HR deadline rules over employee and document
// snapshots and emits normalized notification items.
package compliance

import (
	"fmt"
	"sort"
	"time"

	"hrdocs/internal/types"
)

// alertWindowDays is how far ahead (in days) each rule looks for an upcoming
// deadline. Items further out produce no alert yet.
const alertWindowDays = 30

// probationMonths is the statutory probation period applied to full-time
// hires.
const probationMonths = 3

// promotionNoticeLeadMonths is how long before a hire-date anniversary the
// annual-leave promotion notice must be issued.
const promotionNoticeLeadMonths = 2

// Engine runs the four compliance rules against in-memory snapshots. It holds
// no state beyond a clock and is safe for concurrent use.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine anchored to the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock returns an Engine with an injected clock. Used by tests
// to pin "today".
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// CheckAll evaluates every rule against the given snapshots and returns the
// merged alert list, sorted ascending by DaysLeft. Ties keep emission order
// (contract expiry, probation, leave promotion, document renewal), and no
// deduplication is performed: one employee can legitimately appear once per
// rule in the same batch.
//
// The evaluation day is resolved once per call so every item in a batch
// shares the same anchor.
func (e *Engine) CheckAll(employees []types.Employee, documents []types.Document) []types.NotificationItem {
	today := midnight(e.now())

	items := e.checkContractExpiry(today, employees, documents)
	items = append(items, e.checkProbationEnd(today, employees)...)
	items = append(items, e.checkLeavePromotion(today, employees)...)
	items = append(items, e.checkDocumentRenewal(today, employees, documents)...)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysLeft < items[j].DaysLeft
	})
	return items
}

// checkContractExpiry alerts on fixed-term contracts approaching their end
// date. The end date comes from a contract document when one carries it; when
// an employee has several dated contracts, the earliest end date wins, so a
// renewal on file never hides the deadline of the contract still running.
// Part-time and freelance contracts without one are assumed to run one year
// from hire. Full-time employees with no explicit end date are open-ended and
// never alert here.
func (e *Engine) checkContractExpiry(today time.Time, employees []types.Employee, documents []types.Document) []types.NotificationItem {
	endDates := make(map[string]time.Time, len(employees))
	for _, doc := range documents {
		if doc.ContractEndDate == nil {
			continue
		}
		if cur, seen := endDates[doc.EmployeeID]; !seen || doc.ContractEndDate.Before(cur) {
			endDates[doc.EmployeeID] = *doc.ContractEndDate
		}
	}

	var items []types.NotificationItem
	for _, emp := range employees {
		if emp.Status != types.EmployeeActive {
			continue
		}

		endDate, ok := endDates[emp.ID]
		if !ok {
			switch emp.EmploymentType {
			case types.EmploymentPartTime, types.EmploymentFreelancer:
				endDate = midnight(emp.HireDate).AddDate(1, 0, 0)
			default:
				continue
			}
		}

		days := daysBetween(today, endDate)
		if days < 0 || days > alertWindowDays {
			continue
		}

		items = append(items, types.NotificationItem{
			Type:       types.AlertContractExpiry,
			EmployeeID: emp.ID,
			Title:      "Employment contract expiring",
			Message:    fmt.Sprintf("The employment contract of %s ends in %d day(s). Prepare a renewal or termination notice.", emp.Name, days),
			TargetDate: midnight(endDate),
			DaysLeft:   days,
			Urgency:    urgencyOf(days),
			ActionURL:  fmt.Sprintf("/employees/%s/documents", emp.ID),
		})
	}
	return items
}

// checkProbationEnd alerts when a full-time hire's probation period is about
// to end.
func (e *Engine) checkProbationEnd(today time.Time, employees []types.Employee) []types.NotificationItem {
	var items []types.NotificationItem
	for _, emp := range employees {
		if emp.Status != types.EmployeeActive || emp.EmploymentType != types.EmploymentFullTime {
			continue
		}

		target := midnight(emp.HireDate).AddDate(0, probationMonths, 0)
		days := daysBetween(today, target)
		if days < 0 || days > alertWindowDays {
			continue
		}

		items = append(items, types.NotificationItem{
			Type:       types.AlertProbationEnd,
			EmployeeID: emp.ID,
			Title:      "Probation period ending",
			Message:    fmt.Sprintf("The probation period of %s ends in %d day(s). Record the confirmation decision.", emp.Name, days),
			TargetDate: target,
			DaysLeft:   days,
			Urgency:    urgencyOf(days),
			ActionURL:  fmt.Sprintf("/employees/%s", emp.ID),
		})
	}
	return items
}

// checkLeavePromotion alerts on the statutory annual-leave promotion notice.
// For every employee with at least one full year of tenure, the notice is due
// two months before the next hire-date anniversary. The window opens 30 days
// before the trigger date and stays open 30 days after it as a grace period.
//
// DaysLeft is clamped to zero once the trigger has passed, and urgency is
// pinned to critical for the whole grace period: after the legal trigger
// point every day of delay is urgent, regardless of how far the next
// anniversary still is.
func (e *Engine) checkLeavePromotion(today time.Time, employees []types.Employee) []types.NotificationItem {
	var items []types.NotificationItem
	for _, emp := range employees {
		hire := midnight(emp.HireDate)
		if hire.AddDate(1, 0, 0).After(today) {
			continue // under one year of tenure
		}

		anniv := nextAnniversary(emp.HireDate, today)
		trigger := anniv.AddDate(0, -promotionNoticeLeadMonths, 0)
		days := daysBetween(today, trigger)
		if days < -alertWindowDays || days > alertWindowDays {
			continue
		}

		displayDays := days
		urgency := urgencyOf(days)
		if days <= 0 {
			displayDays = 0
			urgency = types.UrgencyCritical
		}

		items = append(items, types.NotificationItem{
			Type:       types.AlertLeavePromotion,
			EmployeeID: emp.ID,
			Title:      "Annual leave promotion notice due",
			Message:    fmt.Sprintf("Issue the annual leave promotion notice for %s before %s.", emp.Name, trigger.Format("2006-01-02")),
			TargetDate: trigger,
			DaysLeft:   displayDays,
			Urgency:    urgency,
			ActionURL:  fmt.Sprintf("/employees/%s/leave", emp.ID),
		})
	}
	return items
}

// checkDocumentRenewal alerts when an employee's most recent NDA is a year
// old and due for re-signature. Employees who never signed one are skipped;
// surfacing missing documents is a different concern from renewing existing
// ones.
func (e *Engine) checkDocumentRenewal(today time.Time, employees []types.Employee, documents []types.Document) []types.NotificationItem {
	latest := make(map[string]time.Time, len(employees))
	for _, doc := range documents {
		if doc.Kind != types.DocNDA {
			continue
		}
		if prev, ok := latest[doc.EmployeeID]; !ok || doc.CreatedAt.After(prev) {
			latest[doc.EmployeeID] = doc.CreatedAt
		}
	}

	var items []types.NotificationItem
	for _, emp := range employees {
		if emp.Status != types.EmployeeActive {
			continue
		}
		signedAt, ok := latest[emp.ID]
		if !ok {
			continue
		}

		target := midnight(signedAt).AddDate(1, 0, 0)
		days := daysBetween(today, target)
		if days < 0 || days > alertWindowDays {
			continue
		}

		items = append(items, types.NotificationItem{
			Type:       types.AlertDocumentRenewal,
			EmployeeID: emp.ID,
			Title:      "NDA renewal due",
			Message:    fmt.Sprintf("The NDA signed by %s expires in %d day(s). Request a re-signature.", emp.Name, days),
			TargetDate: target,
			DaysLeft:   days,
			Urgency:    urgencyOf(days),
			ActionURL:  fmt.Sprintf("/employees/%s/documents", emp.ID),
		})
	}
	return items
}
