package skillgraph

// Seed node IDs referenced by the content bank and tests.
const (
	NodeCountTo20      = "count-to-20"
	NodeShapes         = "basic-shapes"
	NodeAddWithin10    = "add-within-10"
	NodeSubWithin10    = "sub-within-10"
	NodePlaceValueTens = "place-value-tens"
	NodeAddWithin100   = "add-within-100"
	NodeSubWithin100   = "sub-within-100"
	NodeMeasureLength  = "measure-length"
	NodeMultFacts      = "mult-facts"
	NodeDivFacts       = "div-facts"
	NodeFractionsIntro = "fractions-intro"
	NodeAreaPerimeter  = "area-perimeter"
	NodeMultiDigitMult = "multi-digit-mult"
	NodeEquivFractions = "equivalent-fractions"
	NodeFractionAdd    = "fraction-add"
	NodeDecimals       = "decimals"
)

// DefaultNodes returns the seed K-5 math curriculum in declaration order.
func DefaultNodes() []Node {
	return []Node{
		// Kindergarten
		{
			ID: NodeCountTo20, Name: "Counting to 20", Subject: SubjectCounting, GradeLevel: 0, Kind: KindLesson,
			Description: "Count objects and say the number that comes next up to 20.",
			XPReward:    10,
		},
		{
			ID: NodeShapes, Name: "Basic Shapes", Subject: SubjectMeasurement, GradeLevel: 0, Kind: KindLesson,
			Description: "Name circles, triangles, squares and rectangles and count their sides.",
			XPReward:    10,
		},

		// Grade 1
		{
			ID: NodeAddWithin10, Name: "Addition within 10", Subject: SubjectOperations, GradeLevel: 1, Kind: KindLesson,
			Description:   "Add two numbers whose sum is 10 or less.",
			Prerequisites: []string{NodeCountTo20},
			XPReward:      15,
		},
		{
			ID: NodeSubWithin10, Name: "Subtraction within 10", Subject: SubjectOperations, GradeLevel: 1, Kind: KindLesson,
			Description:   "Take away from numbers up to 10.",
			Prerequisites: []string{NodeAddWithin10},
			XPReward:      15,
		},
		{
			ID: NodePlaceValueTens, Name: "Tens and Ones", Subject: SubjectCounting, GradeLevel: 1, Kind: KindLesson,
			Description:   "Read two-digit numbers as tens and ones.",
			Prerequisites: []string{NodeCountTo20},
			XPReward:      15,
		},

		// Grade 2
		{
			ID: NodeAddWithin100, Name: "Addition within 100", Subject: SubjectOperations, GradeLevel: 2, Kind: KindLesson,
			Description:   "Add two-digit numbers, regrouping ones into tens.",
			Prerequisites: []string{NodeAddWithin10, NodePlaceValueTens},
			XPReward:      20,
		},
		{
			ID: NodeSubWithin100, Name: "Subtraction within 100", Subject: SubjectOperations, GradeLevel: 2, Kind: KindLesson,
			Description:   "Subtract two-digit numbers, borrowing from the tens.",
			Prerequisites: []string{NodeSubWithin10, NodeAddWithin100},
			XPReward:      20,
		},
		{
			ID: NodeMeasureLength, Name: "Measuring Length", Subject: SubjectMeasurement, GradeLevel: 2, Kind: KindLesson,
			Description:   "Measure and compare lengths in centimeters and inches.",
			Prerequisites: []string{NodeShapes, NodeAddWithin10},
			XPReward:      20,
		},

		// Grade 3
		{
			ID: NodeMultFacts, Name: "Multiplication Facts", Subject: SubjectOperations, GradeLevel: 3, Kind: KindSkill,
			Description:   "Recall products of one-digit numbers.",
			Prerequisites: []string{NodeAddWithin100},
			XPReward:      25,
		},
		{
			ID: NodeDivFacts, Name: "Division Facts", Subject: SubjectOperations, GradeLevel: 3, Kind: KindSkill,
			Description:   "Divide using the related multiplication fact.",
			Prerequisites: []string{NodeMultFacts},
			XPReward:      25,
		},
		{
			ID: NodeFractionsIntro, Name: "Unit Fractions", Subject: SubjectFractions, GradeLevel: 3, Kind: KindLesson,
			Description:   "Understand 1/2, 1/3 and 1/4 as equal parts of a whole.",
			Prerequisites: []string{NodeDivFacts},
			XPReward:      25,
		},
		{
			ID: NodeAreaPerimeter, Name: "Area and Perimeter", Subject: SubjectMeasurement, GradeLevel: 3, Kind: KindLesson,
			Description:   "Find the area and perimeter of rectangles.",
			Prerequisites: []string{NodeMultFacts, NodeMeasureLength},
			XPReward:      25,
		},

		// Grade 4
		{
			ID: NodeMultiDigitMult, Name: "Multi-digit Multiplication", Subject: SubjectOperations, GradeLevel: 4, Kind: KindSkill,
			Description:   "Multiply a two-digit number by a one-digit number.",
			Prerequisites: []string{NodeMultFacts, NodePlaceValueTens},
			XPReward:      30,
		},
		{
			ID: NodeEquivFractions, Name: "Equivalent Fractions", Subject: SubjectFractions, GradeLevel: 4, Kind: KindLesson,
			Description:   "Recognise fractions that name the same amount.",
			Prerequisites: []string{NodeFractionsIntro},
			XPReward:      30,
		},

		// Grade 5
		{
			ID: NodeFractionAdd, Name: "Adding Fractions", Subject: SubjectFractions, GradeLevel: 5, Kind: KindLesson,
			Description:   "Add fractions with like and unlike denominators.",
			Prerequisites: []string{NodeEquivFractions, NodeSubWithin100},
			XPReward:      35,
		},
		{
			ID: NodeDecimals, Name: "Decimals to Hundredths", Subject: SubjectFractions, GradeLevel: 5, Kind: KindLesson,
			Description:   "Write tenths and hundredths as decimals.",
			Prerequisites: []string{NodeEquivFractions, NodePlaceValueTens},
			XPReward:      35,
		},
	}
}

// Default returns a graph built from DefaultNodes.
func Default() *Graph {
	return MustNew(DefaultNodes())
}
