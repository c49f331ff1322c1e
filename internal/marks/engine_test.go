package marks

import (
	"errors"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ys, err := InitYear(t.TempDir(), "2025", SemesterNames)
	if err != nil {
		t.Fatalf("init year: %v", err)
	}
	return NewEngine(ys)
}

// addCOMP101 seeds the worked scenario: two entries and an exam weight of 50.
func addCOMP101(t *testing.T, e *Engine, semester string) {
	t.Helper()
	if _, err := e.AddSubject(semester, "COMP101", "Programming Fundamentals", false); err != nil {
		t.Fatalf("add subject: %v", err)
	}
	if _, err := e.AddEntry(semester, "COMP101", "Assignment 1", 20, 20); err != nil {
		t.Fatalf("add entry 1: %v", err)
	}
	if _, err := e.AddEntry(semester, "COMP101", "Assignment 2", 25, 30); err != nil {
		t.Fatalf("add entry 2: %v", err)
	}
	subj, err := e.Store().Subject(semester, "COMP101")
	if err != nil {
		t.Fatalf("get subject: %v", err)
	}
	subj.Examination.ExamWeight = 50
}

// ============================================================
// Subjects
// ============================================================

func TestAddSubjectEmptyCode(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.AddSubject(Autumn, "", "Nameless", false)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAddSubjectIdempotent(t *testing.T) {
	e := newTestEngine(t)
	first, err := e.AddSubject(Autumn, "COMP101", "Programming", false)
	if err != nil {
		t.Fatal(err)
	}
	again, err := e.AddSubject(Autumn, "COMP101", "A Different Name", false)
	if err != nil {
		t.Fatal(err)
	}
	if again != first {
		t.Fatal("re-adding an existing code should return the stored record")
	}
	if again.Name != "Programming" {
		t.Fatalf("existing record should be unchanged, got name %q", again.Name)
	}
}

func TestAddSubjectSyncFlagOnlyInAnnual(t *testing.T) {
	e := newTestEngine(t)
	subj, err := e.AddSubject(Autumn, "COMP101", "Programming", true)
	if err != nil {
		t.Fatal(err)
	}
	if subj.SyncSource {
		t.Fatal("sync flag should only apply to Annual subjects")
	}

	subj, err = e.AddSubject(Annual, "MATH200", "Calculus", true)
	if err != nil {
		t.Fatal(err)
	}
	if !subj.SyncSource {
		t.Fatal("Annual subject added with sync should be a sync source")
	}
}

func TestAddSubjectDefaults(t *testing.T) {
	e := newTestEngine(t)
	subj, err := e.AddSubject(Spring, "PHYS110", "Mechanics", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(subj.Assignments) != 0 {
		t.Fatal("new subject should have no assignments")
	}
	if subj.TotalMark != 0 || subj.Examination.ExamMark != 0 || subj.Examination.ExamWeight != 0 {
		t.Fatalf("new subject should have zeroed marks: %+v", subj)
	}
}

func TestDeleteSubject(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	if err := e.DeleteSubject(Autumn, "COMP101"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Store().Subject(Autumn, "COMP101"); !errors.Is(err, ErrNotFound) {
		t.Fatal("subject should be gone with all its assignments")
	}
}

func TestDeleteSubjectNotFound(t *testing.T) {
	e := newTestEngine(t)
	if err := e.DeleteSubject(Autumn, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSubjectDoesNotCascade(t *testing.T) {
	e := newTestEngine(t)
	e.AddSubject(Annual, "LAW300", "Contracts", true)

	// The projection exists in the Autumn view but Autumn owns no copy,
	// so deleting it there must fail.
	if err := e.DeleteSubject(Autumn, "LAW300"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for projected subject, got %v", err)
	}

	if err := e.DeleteSubject(Annual, "LAW300"); err != nil {
		t.Fatal(err)
	}
	rows, err := e.ViewData(Autumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("deleted sync source should drop its projected rows, got %d", len(rows))
	}
}

// ============================================================
// Assessment entries
// ============================================================

func TestAddEntrySubjectNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.AddEntry(Autumn, "COMP101", "Quiz 1", 5, 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddEntryValidation(t *testing.T) {
	e := newTestEngine(t)
	e.AddSubject(Autumn, "COMP101", "Programming", false)

	cases := []struct {
		name         string
		assessment   string
		weightedMark float64
		markWeight   float64
	}{
		{"empty assessment", "", 10, 10},
		{"negative weighted mark", "Quiz 1", -1, 10},
		{"weight over 100", "Quiz 1", 10, 101},
	}
	for _, tc := range cases {
		if _, err := e.AddEntry(Autumn, "COMP101", tc.assessment, tc.weightedMark, tc.markWeight); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}

	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if len(subj.Assignments) != 0 {
		t.Fatal("rejected entries must not be stored")
	}
}

func TestAddEntryReplacesInPlace(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	if _, err := e.AddEntry(Autumn, "COMP101", "Assignment 1", 22, 25); err != nil {
		t.Fatal(err)
	}

	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if len(subj.Assignments) != 2 {
		t.Fatalf("re-adding a name should not grow the list: got %d entries", len(subj.Assignments))
	}
	if subj.Assignments[0].Name != "Assignment 1" {
		t.Fatal("replaced entry should keep its position")
	}
	if subj.Assignments[0].WeightedMark != 22 || subj.Assignments[0].MarkWeight != 25 {
		t.Fatalf("entry not updated: %+v", subj.Assignments[0])
	}
}

func TestAddEntryDoesNotAdjustExamWeight(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	if _, err := e.AddEntry(Autumn, "COMP101", "Quiz 1", 5, 10); err != nil {
		t.Fatal(err)
	}
	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if subj.Examination.ExamWeight != 50 {
		t.Fatalf("adding an entry must not change exam weight: got %v", subj.Examination.ExamWeight)
	}
}

func TestDeleteEntryRestoresExamWeight(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	if err := e.DeleteEntry(Autumn, "COMP101", "Assignment 1"); err != nil {
		t.Fatal(err)
	}
	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if subj.Examination.ExamWeight != 70 {
		t.Fatalf("exam weight should go from 50 to 70, got %v", subj.Examination.ExamWeight)
	}
	if len(subj.Assignments) != 1 || subj.Assignments[0].Name != "Assignment 2" {
		t.Fatalf("remaining assignments wrong: %+v", subj.Assignments)
	}
}

func TestDeleteEntryAsymmetry(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	e.DeleteEntry(Autumn, "COMP101", "Assignment 1")
	if _, err := e.AddEntry(Autumn, "COMP101", "Assignment 1", 20, 20); err != nil {
		t.Fatal(err)
	}
	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if subj.Examination.ExamWeight != 70 {
		t.Fatalf("re-adding must not decrease exam weight: got %v", subj.Examination.ExamWeight)
	}
}

func TestDeleteEntryNotFound(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	if err := e.DeleteEntry(Autumn, "COMP101", "Quiz 9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing entry, got %v", err)
	}
	if err := e.DeleteEntry(Autumn, "NOPE", "Assignment 1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing subject, got %v", err)
	}
}

// ============================================================
// Exam mark calculation
// ============================================================

func TestCalculateExamMark(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	mark, ok, err := e.CalculateExamMark(Autumn, "COMP101")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a defined exam mark")
	}
	// assignments_total = 45; (100 - 45) * 100 / 50 = 110
	if mark != 110 {
		t.Fatalf("expected 110, got %v", mark)
	}
	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if subj.Examination.ExamMark != 110 {
		t.Fatalf("computed mark should be stored, got %v", subj.Examination.ExamMark)
	}
}

func TestCalculateExamMarkZeroWeight(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)
	subj, _ := e.Store().Subject(Autumn, "COMP101")
	subj.Examination.ExamWeight = 0
	subj.Examination.ExamMark = 42

	_, ok, err := e.CalculateExamMark(Autumn, "COMP101")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("zero exam weight should yield not-applicable")
	}
	if subj.Examination.ExamMark != 42 {
		t.Fatalf("stored exam mark must be untouched, got %v", subj.Examination.ExamMark)
	}
}

func TestCalculateExamMarkIdempotent(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	first, ok, err := e.CalculateExamMark(Autumn, "COMP101")
	if err != nil || !ok {
		t.Fatalf("first calculation: mark=%v ok=%v err=%v", first, ok, err)
	}
	second, ok, err := e.CalculateExamMark(Autumn, "COMP101")
	if err != nil || !ok {
		t.Fatalf("second calculation: mark=%v ok=%v err=%v", second, ok, err)
	}
	if first != second {
		t.Fatalf("repeat calculation changed the result: %v then %v", first, second)
	}
}

func TestCalculateExamMarkNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.CalculateExamMark(Autumn, "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Total mark
// ============================================================

func TestSetAndClearTotalMark(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	if err := e.SetTotalMark(Autumn, "COMP101", 87.5); err != nil {
		t.Fatal(err)
	}
	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if subj.TotalMark != 87.5 {
		t.Fatalf("total mark not set: %v", subj.TotalMark)
	}

	if err := e.ClearTotalMark(Autumn, "COMP101"); err != nil {
		t.Fatal(err)
	}
	if subj.TotalMark != 0 {
		t.Fatalf("total mark not cleared: %v", subj.TotalMark)
	}
}

func TestSetTotalMarkNotFound(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetTotalMark(Autumn, "NOPE", 50); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Views and semester sync
// ============================================================

func TestViewDataPlaceholderRow(t *testing.T) {
	e := newTestEngine(t)
	e.AddSubject(Autumn, "COMP101", "Programming", false)

	rows, err := e.ViewData(Autumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single placeholder row, got %d", len(rows))
	}
	if rows[0].Assessment != NoAssignments {
		t.Fatalf("expected %q, got %q", NoAssignments, rows[0].Assessment)
	}
}

func TestViewDataRowShape(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	rows, err := e.ViewData(Autumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected one row per assignment, got %d", len(rows))
	}
	first := rows[0]
	if first.SubjectCode != "COMP101" || first.Assessment != "Assignment 1" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.WeightedMark != "20" {
		t.Fatalf("weighted mark: got %q", first.WeightedMark)
	}
	if first.MarkWeight != "20%" {
		t.Fatalf("mark weight should carry a %% suffix: got %q", first.MarkWeight)
	}
	if first.UnweightedMark != "" {
		t.Fatal("unweighted mark column is reserved and must stay blank")
	}
}

func TestViewDataSyncedRows(t *testing.T) {
	e := newTestEngine(t)
	e.AddSubject(Annual, "LAW300", "Contracts", true)
	e.AddSubject(Annual, "HIST210", "Modern History", false)

	for _, semester := range []string{Autumn, Spring} {
		rows, err := e.ViewData(semester)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 1 {
			t.Fatalf("%s: expected only the sync-source projection, got %d rows", semester, len(rows))
		}
		row := rows[0]
		if row.SubjectCode != "LAW300" || row.Assessment != SyncedSubject || !row.Synced {
			t.Fatalf("%s: unexpected projected row: %+v", semester, row)
		}
		// Projection only: the semester's own storage stays empty.
		if _, err := e.Store().Subject(semester, "LAW300"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: projected subject must not be copied into storage", semester)
		}
	}
}

func TestViewDataLocalSubjectShadowsProjection(t *testing.T) {
	e := newTestEngine(t)
	e.AddSubject(Annual, "LAW300", "Contracts", true)
	e.AddSubject(Autumn, "LAW300", "Contracts (local)", false)

	rows, err := e.ViewData(Autumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Synced {
		t.Fatalf("locally owned subject should suppress its projection: %+v", rows)
	}
}

func TestSyncRoutingMutatesAnnualRecord(t *testing.T) {
	e := newTestEngine(t)
	e.AddSubject(Annual, "LAW300", "Contracts", true)

	// Entry added through the Autumn view lands on the Annual record.
	if _, err := e.AddEntry(Autumn, "LAW300", "Essay", 30, 40); err != nil {
		t.Fatal(err)
	}
	annual, err := e.Store().Subject(Annual, "LAW300")
	if err != nil {
		t.Fatal(err)
	}
	if len(annual.Assignments) != 1 || annual.Assignments[0].Name != "Essay" {
		t.Fatalf("entry should be routed to Annual: %+v", annual.Assignments)
	}
	if _, err := e.Store().Subject(Autumn, "LAW300"); !errors.Is(err, ErrNotFound) {
		t.Fatal("routing must not create an Autumn copy")
	}

	annual.Examination.ExamWeight = 60
	mark, ok, err := e.CalculateExamMark(Spring, "LAW300")
	if err != nil || !ok {
		t.Fatalf("calc through Spring view: mark=%v ok=%v err=%v", mark, ok, err)
	}
	if annual.Examination.ExamMark != mark {
		t.Fatal("computed mark should land on the Annual record")
	}
}

func TestViewDataUnknownSemester(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.ViewData("Winter"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Weight cap
// ============================================================

func TestCapWarnReportsOverrun(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)
	e.SetCapMode(CapWarn)

	// 20 + 30 existing + 50 exam weight = 100; ten more overruns by 10.
	overrun, err := e.AddEntry(Autumn, "COMP101", "Quiz 1", 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if overrun != 10 {
		t.Fatalf("expected overrun 10, got %v", overrun)
	}

	subj, _ := e.Store().Subject(Autumn, "COMP101")
	if len(subj.Assignments) != 3 {
		t.Fatal("warn mode must not reject the entry")
	}
}

func TestCapOffNeverReports(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)

	overrun, err := e.AddEntry(Autumn, "COMP101", "Quiz 1", 50, 100)
	if err != nil {
		t.Fatal(err)
	}
	if overrun != 0 {
		t.Fatalf("cap off should never report an overrun, got %v", overrun)
	}
}

// ============================================================
// Summaries
// ============================================================

func TestSummaries(t *testing.T) {
	e := newTestEngine(t)
	addCOMP101(t, e, Autumn)
	e.AddSubject(Autumn, "ARTS100", "Drawing", false)

	summaries, err := e.Summaries(Autumn)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	// Sorted by code.
	if summaries[0].Code != "ARTS100" || summaries[1].Code != "COMP101" {
		t.Fatalf("summaries not sorted: %+v", summaries)
	}
	comp := summaries[1]
	if comp.Assignments != 2 || comp.AssessmentsTotal != 45 || comp.ExamWeight != 50 {
		t.Fatalf("unexpected aggregate: %+v", comp)
	}
}
