package scenario

// Step is one recorded action invocation with its expectations.
type Step struct {
	Action string
	Args   []string
	Expect []Expectation
}

// Sequence is an ordered recording of steps, built now and replayed later.
type Sequence struct {
	steps []Step
}

// NewSequence returns an empty sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Do records an action invocation. The action is addressed as
// "module.action".
func (s *Sequence) Do(action string, args ...string) *Sequence {
	s.steps = append(s.steps, Step{Action: action, Args: args})
	return s
}

// Expect attaches an expectation to the most recently recorded step. Calling
// Expect before any Do is a programming error and panics.
func (s *Sequence) Expect(e Expectation) *Sequence {
	if len(s.steps) == 0 {
		panic("scenario: Expect called before Do")
	}
	last := &s.steps[len(s.steps)-1]
	last.Expect = append(last.Expect, e)
	return s
}

// Steps returns the recorded steps in order.
func (s *Sequence) Steps() []Step {
	if s == nil {
		return nil
	}
	return s.steps
}

// Len returns the number of recorded steps.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}
