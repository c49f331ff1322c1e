package marks

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// CapMode controls whether the engine flags a subject whose assignment
// weights plus exam weight exceed 100. The legacy behaviour is CapOff:
// the user is trusted and nothing is checked.
type CapMode int

const (
	CapOff CapMode = iota
	CapWarn
)

var validate = validator.New()

type entryInput struct {
	SubjectCode  string  `validate:"required"`
	Assessment   string  `validate:"required"`
	WeightedMark float64 `validate:"gte=0,lte=100"`
	MarkWeight   float64 `validate:"gte=0,lte=100"`
}

// Engine maintains consistency of a year's subject records and derives exam
// marks. The YearStore is injected at construction; every mutating
// operation saves it before returning. A save failure is reported but the
// in-memory mutation stands, so callers should warn that the change may not
// survive a restart.
type Engine struct {
	store   *YearStore
	capMode CapMode
}

func NewEngine(ys *YearStore) *Engine {
	return &Engine{store: ys}
}

// SetCapMode switches weight-cap checking; see CapMode.
func (e *Engine) SetCapMode(m CapMode) { e.capMode = m }

// Store exposes the underlying year store for read-only use.
func (e *Engine) Store() *YearStore { return e.store }

// resolve returns the record owning (semester, code). A code present only
// as an Annual projection in Autumn or Spring resolves to the Annual
// record, so mutations keep a single source of truth.
func (e *Engine) resolve(semester, code string) (*Subject, error) {
	subjects, ok := e.store.data[semester]
	if !ok {
		return nil, fmt.Errorf("semester %q: %w", semester, ErrNotFound)
	}
	if subj, ok := subjects[code]; ok {
		return subj, nil
	}
	if semester == Autumn || semester == Spring {
		if annual, ok := e.store.data[Annual]; ok {
			if subj, ok := annual[code]; ok && subj.SyncSource {
				return subj, nil
			}
		}
	}
	return nil, fmt.Errorf("subject %q: %w", code, ErrNotFound)
}

// AddSubject creates a record under (semester, code). Creation is
// idempotent: an existing code returns the stored record unchanged. When
// syncSubject is set and the semester is Annual, the record is flagged as a
// sync source and projected into the Autumn and Spring views.
func (e *Engine) AddSubject(semester, code, name string, syncSubject bool) (*Subject, error) {
	if code == "" {
		return nil, fmt.Errorf("subject code must not be empty: %w", ErrValidation)
	}
	if subj, err := e.store.Subject(semester, code); err == nil {
		return subj, nil
	}
	sync := syncSubject && semester == Annual
	subj := e.store.getOrCreate(semester, code, name, sync)
	if err := e.store.Save(); err != nil {
		return subj, fmt.Errorf("save year: %w", err)
	}
	return subj, nil
}

// DeleteSubject removes the record and all its assignments from the
// semester's own storage. Projections never cascade: deleting a sync
// source in Annual simply drops its Autumn/Spring rows from the next view,
// and deleting a projection from Autumn/Spring fails because those
// semesters never owned a copy.
func (e *Engine) DeleteSubject(semester, code string) error {
	subjects, ok := e.store.data[semester]
	if !ok {
		return fmt.Errorf("semester %q: %w", semester, ErrNotFound)
	}
	if _, ok := subjects[code]; !ok {
		return fmt.Errorf("subject %q: %w", code, ErrNotFound)
	}
	delete(subjects, code)
	if err := e.store.Save(); err != nil {
		return fmt.Errorf("save year: %w", err)
	}
	return nil
}

// AddEntry adds or updates an assessment entry on a subject. An entry with
// the same name is replaced in place, preserving its position; otherwise
// the entry is appended. Adding never adjusts the exam weight — only
// DeleteEntry does. Under CapWarn the returned overrun is the amount by
// which the subject's combined weights now exceed 100; the entry is stored
// regardless.
func (e *Engine) AddEntry(semester, code, assessment string, weightedMark, markWeight float64) (float64, error) {
	in := entryInput{
		SubjectCode:  code,
		Assessment:   assessment,
		WeightedMark: weightedMark,
		MarkWeight:   markWeight,
	}
	if err := validate.Struct(in); err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	subj, err := e.resolve(semester, code)
	if err != nil {
		return 0, err
	}

	replaced := false
	for i := range subj.Assignments {
		if subj.Assignments[i].Name == assessment {
			subj.Assignments[i].WeightedMark = weightedMark
			subj.Assignments[i].MarkWeight = markWeight
			replaced = true
			break
		}
	}
	if !replaced {
		subj.Assignments = append(subj.Assignments, Assessment{
			Name:         assessment,
			WeightedMark: weightedMark,
			MarkWeight:   markWeight,
		})
	}

	var overrun float64
	if e.capMode == CapWarn {
		total := subj.Examination.ExamWeight
		for _, a := range subj.Assignments {
			total += a.MarkWeight
		}
		if total > 100 {
			overrun = total - 100
		}
	}

	if err := e.store.Save(); err != nil {
		return overrun, fmt.Errorf("save year: %w", err)
	}
	return overrun, nil
}

// DeleteEntry removes an assessment entry and adds its mark weight back
// onto the exam weight: weight freed from assessments is attributed to the
// exam. Adding an entry back later does not reverse this.
func (e *Engine) DeleteEntry(semester, code, assessment string) error {
	subj, err := e.resolve(semester, code)
	if err != nil {
		return err
	}
	for i := range subj.Assignments {
		if subj.Assignments[i].Name == assessment {
			subj.Examination.ExamWeight += subj.Assignments[i].MarkWeight
			subj.Assignments = append(subj.Assignments[:i], subj.Assignments[i+1:]...)
			if err := e.store.Save(); err != nil {
				return fmt.Errorf("save year: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("assessment %q: %w", assessment, ErrNotFound)
}

// CalculateExamMark derives the mark the exam must reach: the assessments'
// weighted contributions are summed and the remainder of the 100-point
// total is rescaled from share-of-grade to share-of-exam. The stored exam
// weight is trusted as-is; it is maintained incrementally by DeleteEntry.
// An exam weight of zero or less yields ok=false and leaves the stored exam
// mark untouched. The result keeps full float precision; display rounding
// is the caller's concern.
func (e *Engine) CalculateExamMark(semester, code string) (mark float64, ok bool, err error) {
	subj, err := e.resolve(semester, code)
	if err != nil {
		return 0, false, err
	}

	var assignmentsTotal float64
	for _, a := range subj.Assignments {
		assignmentsTotal += a.WeightedMark
	}

	weight := subj.Examination.ExamWeight
	if weight <= 0 {
		return 0, false, nil
	}

	mark = (100 - assignmentsTotal) * 100 / weight
	subj.Examination.ExamMark = mark
	if err := e.store.Save(); err != nil {
		return mark, true, fmt.Errorf("save year: %w", err)
	}
	return mark, true, nil
}

// SetTotalMark sets the subject's user-settable total mark.
func (e *Engine) SetTotalMark(semester, code string, mark float64) error {
	subj, err := e.resolve(semester, code)
	if err != nil {
		return err
	}
	subj.TotalMark = mark
	if err := e.store.Save(); err != nil {
		return fmt.Errorf("save year: %w", err)
	}
	return nil
}

// ClearTotalMark resets the total mark to 0.
func (e *Engine) ClearTotalMark(semester, code string) error {
	return e.SetTotalMark(semester, code, 0)
}

// ViewData renders a semester as ordered display rows: subjects sorted by
// code, one row per assignment beneath each, and a placeholder row when the
// assignment list is empty. For Autumn and Spring, Annual sync sources not
// owned locally are appended as read-only Synced Subject rows.
func (e *Engine) ViewData(semester string) ([]Row, error) {
	subjects, ok := e.store.data[semester]
	if !ok {
		return nil, fmt.Errorf("semester %q: %w", semester, ErrNotFound)
	}

	codes := make([]string, 0, len(subjects))
	for code := range subjects {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var rows []Row
	for _, code := range codes {
		subj := subjects[code]
		if len(subj.Assignments) == 0 {
			rows = append(rows, Row{
				SubjectCode: code,
				SubjectName: subj.Name,
				Assessment:  NoAssignments,
				TotalMark:   formatMark(subj.TotalMark),
			})
			continue
		}
		for _, a := range subj.Assignments {
			rows = append(rows, Row{
				SubjectCode:  code,
				SubjectName:  subj.Name,
				Assessment:   a.Name,
				WeightedMark: formatMark(a.WeightedMark),
				MarkWeight:   formatMark(a.MarkWeight) + "%",
				TotalMark:    formatMark(subj.TotalMark),
			})
		}
	}

	if semester == Autumn || semester == Spring {
		rows = append(rows, e.syncedRows(subjects)...)
	}
	return rows, nil
}

// syncedRows projects Annual sync sources the local semester does not own.
func (e *Engine) syncedRows(local map[string]*Subject) []Row {
	annual, ok := e.store.data[Annual]
	if !ok {
		return nil
	}
	var codes []string
	for code, subj := range annual {
		if !subj.SyncSource {
			continue
		}
		if _, owned := local[code]; owned {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]Row, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, Row{
			SubjectCode: code,
			SubjectName: annual[code].Name,
			Assessment:  SyncedSubject,
			Synced:      true,
		})
	}
	return rows
}

// Summaries aggregates each subject in the semester, sorted by code.
// Projections are excluded: their numbers belong to Annual.
func (e *Engine) Summaries(semester string) ([]SubjectSummary, error) {
	subjects, ok := e.store.data[semester]
	if !ok {
		return nil, fmt.Errorf("semester %q: %w", semester, ErrNotFound)
	}

	codes := make([]string, 0, len(subjects))
	for code := range subjects {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	summaries := make([]SubjectSummary, 0, len(codes))
	for _, code := range codes {
		subj := subjects[code]
		var total float64
		for _, a := range subj.Assignments {
			total += a.WeightedMark
		}
		summaries = append(summaries, SubjectSummary{
			Code:             code,
			Name:             subj.Name,
			Assignments:      len(subj.Assignments),
			AssessmentsTotal: total,
			ExamWeight:       subj.Examination.ExamWeight,
			ExamMark:         subj.Examination.ExamMark,
			TotalMark:        subj.TotalMark,
		})
	}
	return summaries, nil
}

// formatMark keeps full precision without exponent notation.
func formatMark(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
