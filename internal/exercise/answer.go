package exercise

import "strings"

// Unanswered marks a sub-question with no option chosen yet.
const Unanswered = -1

// Answer is a learner's answer. nil means unanswered. The variants are
// Option, Options, Text and Number.
type Answer interface {
	isAnswer()
}

// Option is the selected option index of a single-question qcm.
type Option int

// Options holds one selected index per sub-question of a multi-question
// qcm, with Unanswered for gaps.
type Options []int

// Text is a free-form answer.
type Text string

// Number is a numeric answer.
type Number float64

func (Option) isAnswer()  {}
func (Options) isAnswer() {}
func (Text) isAnswer()    {}
func (Number) isAnswer()  {}

// Complete reports whether every sub-question has an option.
func (o Options) Complete(questions int) bool {
	if len(o) != questions {
		return false
	}
	for _, v := range o {
		if v == Unanswered {
			return false
		}
	}
	return true
}

// Answered counts sub-questions with an option.
func (o Options) Answered() int {
	n := 0
	for _, v := range o {
		if v != Unanswered {
			n++
		}
	}
	return n
}

// NewOptions returns an Options of length n with every entry Unanswered.
func NewOptions(n int) Options {
	o := make(Options, n)
	for i := range o {
		o[i] = Unanswered
	}
	return o
}

// Letter returns the option label for index i ("A" for 0).
func Letter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// Submission is the body of an exercise submit request.
type Submission struct {
	Answer    any `json:"answer"`
	TimeSpent int `json:"time_spent"`
	HintsUsed int `json:"hints_used"`
}

// Encode converts a for the submit endpoint. A single option is sent as
// its letter, which is what the grader compares against; multi-question
// answers go as the index array.
func Encode(a Answer) any {
	switch v := a.(type) {
	case Option:
		return Letter(int(v))
	case Options:
		return []int(v)
	case Text:
		return strings.TrimSpace(string(v))
	case Number:
		return float64(v)
	}
	return nil
}

// IsComplete reports whether a is a submittable answer to ex: present, with
// every sub-question answered and no blank text.
func IsComplete(ex *Exercise, a Answer) bool {
	if !ex.Supported() {
		return false
	}
	switch v := a.(type) {
	case nil:
		return false
	case Options:
		return v.Complete(ex.QuestionCount())
	case Text:
		return strings.TrimSpace(string(v)) != ""
	}
	return true
}
