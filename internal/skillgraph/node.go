package skillgraph

import "strconv"

// Subject groups nodes into a content area of the curriculum.
type Subject string

const (
	SubjectCounting    Subject = "counting-and-place-value"
	SubjectOperations  Subject = "operations"
	SubjectFractions   Subject = "fractions-and-decimals"
	SubjectMeasurement Subject = "measurement-and-geometry"
)

// AllSubjects returns all subjects in display order.
func AllSubjects() []Subject {
	return []Subject{
		SubjectCounting,
		SubjectOperations,
		SubjectFractions,
		SubjectMeasurement,
	}
}

// DisplayName returns a human-readable name for a subject.
func (s Subject) DisplayName() string {
	switch s {
	case SubjectCounting:
		return "Counting & Place Value"
	case SubjectOperations:
		return "Operations"
	case SubjectFractions:
		return "Fractions & Decimals"
	case SubjectMeasurement:
		return "Measurement & Geometry"
	default:
		return string(s)
	}
}

// Kind distinguishes lesson nodes from skill checkpoints.
type Kind string

const (
	KindLesson Kind = "lesson"
	KindSkill  Kind = "skill"
)

// Node is a learning unit in the progression tree.
type Node struct {
	ID            string
	Name          string
	Description   string
	Subject       Subject
	GradeLevel    int // 0 = kindergarten
	Kind          Kind
	Prerequisites []string
	XPReward      int
}

// IsEntry reports whether the node has no prerequisites.
func (n Node) IsEntry() bool {
	return len(n.Prerequisites) == 0
}

// GradeLabel returns "K" for kindergarten and the grade number otherwise.
func GradeLabel(grade int) string {
	if grade == 0 {
		return "K"
	}
	return strconv.Itoa(grade)
}
