package bank

import (
	"fmt"

	"github.com/abhisek/pathwise/internal/skillgraph"
)

const (
	seedExercisesPerLesson = 6
	seedQuestionsPerTopic  = 10
)

// itemFunc builds the i-th generated item of a sequence.
type itemFunc func(i int) Item

// DefaultStatic returns a bank seeded with content for every node of
// skillgraph.DefaultNodes.
func DefaultStatic(opts ...StaticOption) *Static {
	exercises, questions := seedContent()
	return NewStatic(exercises, questions, opts...)
}

func seedContent() ([]Exercise, []Question) {
	gens := []struct {
		nodeID string
		gen    itemFunc
	}{
		{skillgraph.NodeCountTo20, countNext},
		{skillgraph.NodeShapes, fromList(shapeItems)},
		{skillgraph.NodeAddWithin10, addWithin10},
		{skillgraph.NodeSubWithin10, subWithin10},
		{skillgraph.NodePlaceValueTens, tensInNumber},
		{skillgraph.NodeAddWithin100, addWithin100},
		{skillgraph.NodeSubWithin100, subWithin100},
		{skillgraph.NodeMeasureLength, compareLengths},
		{skillgraph.NodeMultFacts, multFacts},
		{skillgraph.NodeDivFacts, divFacts},
		{skillgraph.NodeFractionsIntro, fromList(unitFractionItems)},
		{skillgraph.NodeAreaPerimeter, areaPerimeter},
		{skillgraph.NodeMultiDigitMult, multiDigit},
		{skillgraph.NodeEquivFractions, equivalentFractions},
		{skillgraph.NodeFractionAdd, addLikeFractions},
		{skillgraph.NodeDecimals, decimalPlaces},
	}

	var exercises []Exercise
	var questions []Question
	for _, g := range gens {
		for i := range seedExercisesPerLesson {
			it := g.gen(i)
			it.ID = fmt.Sprintf("%s/ex-%d", g.nodeID, i+1)
			exercises = append(exercises, Exercise{Item: it, LessonID: g.nodeID})
		}
		for i := range seedQuestionsPerTopic {
			it := g.gen(seedExercisesPerLesson + i)
			it.ID = fmt.Sprintf("%s/q-%d", g.nodeID, i+1)
			questions = append(questions, Question{Item: it, TopicID: g.nodeID})
		}
	}
	return exercises, questions
}

func text(prompt string, answer int, explanation string) Item {
	return Item{
		Prompt:      prompt,
		Format:      FormatText,
		Answer:      []string{fmt.Sprint(answer)},
		Explanation: explanation,
	}
}

func fromList(items []Item) itemFunc {
	return func(i int) Item {
		it := items[i%len(items)]
		it.Choices = append([]string(nil), it.Choices...)
		it.Answer = append([]string(nil), it.Answer...)
		return it
	}
}

func countNext(i int) Item {
	n := 3 + (i*7)%16
	return text(fmt.Sprintf("What number comes right after %d?", n), n+1,
		fmt.Sprintf("Counting up by one from %d gives %d.", n, n+1))
}

func addWithin10(i int) Item {
	a := 1 + i%5
	b := 1 + (i*3)%(10-a)
	return text(fmt.Sprintf("What is %d + %d?", a, b), a+b,
		fmt.Sprintf("Start at %d and count on %d.", a, b))
}

func subWithin10(i int) Item {
	a := 4 + i%7
	b := 1 + (i*2)%a
	return text(fmt.Sprintf("What is %d - %d?", a, b), a-b,
		fmt.Sprintf("Take %d away from %d.", b, a))
}

func tensInNumber(i int) Item {
	n := 12 + (i*17)%87
	return text(fmt.Sprintf("How many tens are in %d?", n), n/10,
		fmt.Sprintf("%d is %d tens and %d ones.", n, n/10, n%10))
}

func addWithin100(i int) Item {
	a := 15 + (i*13)%40
	b := 8 + (i*11)%37
	return text(fmt.Sprintf("What is %d + %d?", a, b), a+b,
		fmt.Sprintf("Add the ones, regroup, then add the tens: %d.", a+b))
}

func subWithin100(i int) Item {
	a := 40 + (i*13)%59
	b := 9 + (i*7)%31
	return text(fmt.Sprintf("What is %d - %d?", a, b), a-b,
		fmt.Sprintf("Borrow from the tens if needed: %d.", a-b))
}

func compareLengths(i int) Item {
	long := 10 + (i*5)%21
	short := 2 + (i*3)%8
	return text(fmt.Sprintf("A ribbon is %d cm long and a string is %d cm long. How many cm longer is the ribbon?", long, short),
		long-short, fmt.Sprintf("%d - %d = %d cm.", long, short, long-short))
}

func multFacts(i int) Item {
	a := 2 + i%8
	b := 2 + (i*5)%8
	return text(fmt.Sprintf("What is %d x %d?", a, b), a*b,
		fmt.Sprintf("%d groups of %d make %d.", a, b, a*b))
}

func divFacts(i int) Item {
	a := 2 + (i*3)%8
	b := 2 + i%8
	return text(fmt.Sprintf("What is %d / %d?", a*b, a), b,
		fmt.Sprintf("%d x %d = %d, so %d / %d = %d.", a, b, a*b, a*b, a, b))
}

func areaPerimeter(i int) Item {
	l := 3 + i%7
	w := 2 + (i*3)%6
	if i%2 == 0 {
		return text(fmt.Sprintf("A rectangle is %d units long and %d units wide. What is its area in square units?", l, w),
			l*w, fmt.Sprintf("Area = length x width = %d.", l*w))
	}
	return text(fmt.Sprintf("A rectangle is %d units long and %d units wide. What is its perimeter in units?", l, w),
		2*(l+w), fmt.Sprintf("Perimeter = 2 x (%d + %d) = %d.", l, w, 2*(l+w)))
}

func multiDigit(i int) Item {
	a := 12 + (i*7)%38
	b := 3 + i%7
	return text(fmt.Sprintf("What is %d x %d?", a, b), a*b,
		fmt.Sprintf("Multiply the tens and the ones separately, then add: %d.", a*b))
}

func equivalentFractions(i int) Item {
	num := 1 + i%3
	den := num + 1 + i%2
	k := 2 + i%4
	return text(fmt.Sprintf("%d/%d = ?/%d. What is the missing numerator?", num, den, den*k), num*k,
		fmt.Sprintf("Multiply top and bottom by %d.", k))
}

func addLikeFractions(i int) Item {
	den := 5 + i%6
	a := 1 + i%3
	b := 1 + (i*2)%(den-a-1)
	return text(fmt.Sprintf("%d/%d + %d/%d = ?/%d. What is the numerator?", a, den, b, den, den), a+b,
		fmt.Sprintf("With the same denominator, add the numerators: %d + %d = %d.", a, b, a+b))
}

func decimalPlaces(i int) Item {
	if i%2 == 0 {
		n := 1 + i%9
		return Item{
			Prompt:      fmt.Sprintf("Write %d tenths as a decimal.", n),
			Format:      FormatText,
			Answer:      []string{fmt.Sprintf("0.%d", n)},
			Explanation: fmt.Sprintf("%d tenths = %d/10 = 0.%d.", n, n, n),
		}
	}
	n := 11 + (i*7)%88
	if n%10 == 0 {
		n++
	}
	return Item{
		Prompt:      fmt.Sprintf("Write %d hundredths as a decimal.", n),
		Format:      FormatText,
		Answer:      []string{fmt.Sprintf("0.%02d", n)},
		Explanation: fmt.Sprintf("%d hundredths = %d/100 = 0.%02d.", n, n, n),
	}
}

var shapeItems = []Item{
	{Prompt: "How many sides does a triangle have?", Format: FormatMultipleChoice,
		Choices: []string{"2", "3", "4", "5"}, Answer: []string{"3"}, Explanation: "Tri means three."},
	{Prompt: "Which shape has no corners?", Format: FormatMultipleChoice,
		Choices: []string{"square", "triangle", "circle", "rectangle"}, Answer: []string{"circle"}, Explanation: "A circle is one curved line."},
	{Prompt: "Select every shape with four sides.", Format: FormatMultiSelect,
		Choices: []string{"square", "triangle", "rectangle", "circle"}, Answer: []string{"square", "rectangle"}, Explanation: "Squares and rectangles both have four sides."},
	{Prompt: "How many corners does a square have?", Format: FormatMultipleChoice,
		Choices: []string{"3", "4", "5", "6"}, Answer: []string{"4"}, Explanation: "Each of the four sides meets another at a corner."},
	{Prompt: "Which shape has all sides the same length?", Format: FormatMultipleChoice,
		Choices: []string{"rectangle", "square", "oval", "line"}, Answer: []string{"square"}, Explanation: "A square has four equal sides."},
	{Prompt: "Select every shape with straight sides.", Format: FormatMultiSelect,
		Choices: []string{"circle", "triangle", "square", "oval"}, Answer: []string{"triangle", "square"}, Explanation: "Circles and ovals are curved."},
	{Prompt: "How many sides does a hexagon have?", Format: FormatMultipleChoice,
		Choices: []string{"5", "6", "7", "8"}, Answer: []string{"6"}, Explanation: "Hex means six."},
}

var unitFractionItems = []Item{
	{Prompt: "A pizza is cut into 4 equal slices. What fraction is one slice?", Format: FormatMultipleChoice,
		Choices: []string{"1/2", "1/3", "1/4", "4/1"}, Answer: []string{"1/4"}, Explanation: "One of four equal parts is 1/4."},
	{Prompt: "Select every unit fraction.", Format: FormatMultiSelect,
		Choices: []string{"1/2", "2/3", "1/3", "3/4"}, Answer: []string{"1/2", "1/3"}, Explanation: "A unit fraction has 1 as its numerator."},
	{Prompt: "Which is larger: 1/2 or 1/3?", Format: FormatMultipleChoice,
		Choices: []string{"1/2", "1/3"}, Answer: []string{"1/2"}, Explanation: "Fewer equal parts means bigger parts."},
	{Prompt: "A bar is split into 3 equal parts. What fraction is one part?", Format: FormatMultipleChoice,
		Choices: []string{"1/2", "1/3", "1/4", "3/1"}, Answer: []string{"1/3"}, Explanation: "One of three equal parts is 1/3."},
	{Prompt: "Which is smaller: 1/4 or 1/2?", Format: FormatMultipleChoice,
		Choices: []string{"1/4", "1/2"}, Answer: []string{"1/4"}, Explanation: "Quarters are smaller than halves."},
	{Prompt: "Select every fraction equal to one half of a whole cut in equal parts.", Format: FormatMultiSelect,
		Choices: []string{"1/2", "2/4", "1/3", "3/4"}, Answer: []string{"1/2", "2/4"}, Explanation: "2/4 names the same amount as 1/2."},
	{Prompt: "How many thirds make one whole?", Format: FormatMultipleChoice,
		Choices: []string{"2", "3", "4", "6"}, Answer: []string{"3"}, Explanation: "3/3 = 1."},
	{Prompt: "What is the numerator of 1/4?", Format: FormatMultipleChoice,
		Choices: []string{"1", "4"}, Answer: []string{"1"}, Explanation: "The numerator is the top number."},
}
