package marks

// Semester names form a closed set; year documents are keyed by them.
const (
	Autumn = "Autumn"
	Spring = "Spring"
	Annual = "Annual"
)

// SemesterNames lists every semester a year document may contain, in
// academic order.
var SemesterNames = []string{Autumn, Spring, Annual}

// Placeholder literals used in rendered views.
const (
	NoAssignments = "No Assignments"
	SyncedSubject = "Synced Subject"
)

// Assessment is one graded component of a subject. WeightedMark is already
// expressed as a percentage of the subject total; MarkWeight is the
// assessment's share of the final grade out of 100.
type Assessment struct {
	Name         string  `json:"Subject Assessment"`
	WeightedMark float64 `json:"Weighted Mark"`
	MarkWeight   float64 `json:"Mark Weight"`
}

// Examination holds the exam's share of the final grade and the mark the
// exam must reach, either entered or derived by CalculateExamMark.
type Examination struct {
	ExamMark   float64 `json:"Exam Mark"`
	ExamWeight float64 `json:"Exam Weight"`
}

// Subject is one course, keyed by subject code within its semester.
// Assignments keep insertion order, which is also display order.
// SyncSource marks an Annual subject projected into the Autumn and Spring
// views without being copied into their storage.
type Subject struct {
	Name        string       `json:"Subject Name"`
	Assignments []Assessment `json:"Assignments"`
	TotalMark   float64      `json:"Total Mark"`
	Examination Examination  `json:"Examinations"`
	SyncSource  bool         `json:"Sync Source"`
}

// Row is one rendered line of a semester view. UnweightedMark is reserved:
// the legacy column was never wired up and stays blank.
type Row struct {
	SubjectCode    string
	SubjectName    string
	Assessment     string
	UnweightedMark string
	WeightedMark   string
	MarkWeight     string
	TotalMark      string
	Synced         bool
}

// SubjectSummary aggregates one subject for the overview and reports views.
type SubjectSummary struct {
	Code             string
	Name             string
	Assignments      int
	AssessmentsTotal float64
	ExamWeight       float64
	ExamMark         float64
	TotalMark        float64
}
