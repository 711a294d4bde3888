// Package schedule holds the weekly schedule reconciliation engine:
// pure logic that turns sparse per-day shift assignments into a
// complete editable seven-day week.
package schedule

import (
	"strings"

	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

// ResolveDefaultShift picks the shift used to fill unassigned days.
// The preferred name is matched case-insensitively against the
// catalog; when absent, the first catalog entry is used and the second
// return is true so callers can surface the fallback. An empty catalog
// is a configuration error.
func ResolveDefaultShift(catalog []models.Shift, preferred string) (models.Shift, bool, error) {
	if len(catalog) == 0 {
		return models.Shift{}, false, appErrors.ErrShiftCatalogEmpty
	}
	for _, s := range catalog {
		if strings.EqualFold(s.Name, preferred) {
			return s, false, nil
		}
	}
	return catalog[0], true, nil
}

// Reconcile expands sparse schedule rows into a full week. Every day
// 1..7 gets exactly one entry: persisted rows keep their identity and
// shift, unassigned days are filled with a placeholder entry carrying
// the default shift. When the same day appears more than once the
// later row wins. The second return reports whether the default shift
// fell back to the first catalog entry.
func Reconcile(raw []models.EntryWithShift, catalog []models.Shift, preferred string) (Week, bool, error) {
	def, fellBack, err := ResolveDefaultShift(catalog, preferred)
	if err != nil {
		return Week{}, false, err
	}
	w, err := fill(raw, def)
	if err != nil {
		return Week{}, false, err
	}
	return w, fellBack, nil
}

// fill builds the week grid from sparse rows and a resolved default.
func fill(raw []models.EntryWithShift, def models.Shift) (Week, error) {
	var w Week
	for i := range w {
		day := models.Weekday(i + 1)
		w[i] = Entry{ID: PlaceholderID(), Day: day, Shift: def}
	}
	for _, r := range raw {
		if !r.DayOfWeek.Valid() {
			return Week{}, appErrors.Clone(appErrors.ErrWeekInvariant, "schedule row has day outside 1..7")
		}
		w[r.DayOfWeek-1] = Entry{ID: RealID(r.ID), Day: r.DayOfWeek, Shift: r.Shift}
	}
	return w, nil
}

// ApplyShiftChange returns a copy of the week with one day's shift
// replaced. The entry's identity is preserved so a persisted row stays
// an update rather than an insert. The new shift must exist in the
// catalog; the day must be 1..7.
func ApplyShiftChange(w Week, day models.Weekday, shiftID int64, catalog []models.Shift) (Week, error) {
	if !day.Valid() {
		return Week{}, appErrors.Clone(appErrors.ErrWeekInvariant, "edit targets a day outside 1..7")
	}
	var shift *models.Shift
	for i := range catalog {
		if catalog[i].ID == shiftID {
			shift = &catalog[i]
			break
		}
	}
	if shift == nil {
		return Week{}, appErrors.Clone(appErrors.ErrValidation, "unknown shift id")
	}
	out := w
	out[day-1].Shift = *shift
	return out, nil
}

// EmployeeWeek pairs an employee with their reconciled week for the
// per-office grid view.
type EmployeeWeek struct {
	EmployeeID     int64  `json:"employee_id"`
	EmployeeNumber string `json:"employee_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Week           Week   `json:"week"`
}

// ReconcileOffice reconciles every employee of an office against the
// same catalog. The default shift is resolved once per pass, so a
// single pass is internally consistent even if the catalog changes
// between requests. Any invalid row fails the whole pass.
func ReconcileOffice(raw []models.EmployeeWithSchedule, catalog []models.Shift, preferred string) ([]EmployeeWeek, bool, error) {
	def, fellBack, err := ResolveDefaultShift(catalog, preferred)
	if err != nil {
		return nil, false, err
	}
	out := make([]EmployeeWeek, 0, len(raw))
	for _, emp := range raw {
		w, err := fill(emp.Entries, def)
		if err != nil {
			return nil, false, err
		}
		out = append(out, EmployeeWeek{
			EmployeeID:     emp.EmployeeID,
			EmployeeNumber: emp.EmployeeNumber,
			FirstName:      emp.FirstName,
			LastName:       emp.LastName,
			Week:           w,
		})
	}
	return out, fellBack, nil
}
