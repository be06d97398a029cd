package rules

// Step is a unit of work executed by a Pipeline.
type Step interface {
	// Run executes the step. It returns false while the step is waiting for
	// player input; the pipeline will call Run again once input arrives.
	Run() bool
}

// Input is a player's answer to an outstanding prompt. Values are
// identifiers only (card IDs, ring elements, menu choices).
type Input struct {
	PromptID string
	PlayerID string
	Choice   string
	CardIDs  []string
	Ring     string
	Button   string
}

// StepQueuer is implemented by steps that own a nested pipeline. Steps queued
// while such a step is at the head of a pipeline are queued into it.
type StepQueuer interface {
	QueueStep(step Step)
}

// InputHandler is implemented by steps that consume player input.
type InputHandler interface {
	HandleInput(in Input) bool
}

// Awaiter is implemented by steps that can block on player input. The
// returned prompt ID identifies the outstanding request.
type Awaiter interface {
	AwaitingInput() (promptID string, waiting bool)
}

// Pipeline is a FIFO queue of steps. Steps queued while a step is running are
// inserted directly after it so that follow-up work happens before the rest
// of the queue. Steps queued between runs go to the back.
type Pipeline struct {
	steps               []Step
	queuedDuringCurrent []Step
	running             bool
}

// NewPipeline creates a pipeline with the given initial steps.
func NewPipeline(steps ...Step) *Pipeline {
	p := &Pipeline{}
	p.steps = append(p.steps, steps...)
	return p
}

// QueueStep schedules a step.
func (p *Pipeline) QueueStep(step Step) {
	if step == nil {
		return
	}
	if !p.running || len(p.steps) == 0 {
		p.steps = append(p.steps, step)
		return
	}
	if queuer, ok := p.steps[0].(StepQueuer); ok {
		queuer.QueueStep(step)
		return
	}
	p.queuedDuringCurrent = append(p.queuedDuringCurrent, step)
}

// Continue runs steps until the queue drains (returns true) or the head step
// is blocked waiting for input (returns false).
func (p *Pipeline) Continue() bool {
	for len(p.steps) > 0 {
		current := p.steps[0]
		wasRunning := p.running
		p.running = true
		done := current.Run()
		p.running = wasRunning
		if done {
			p.steps = p.steps[1:]
		} else if len(p.queuedDuringCurrent) == 0 {
			return false
		}
		if len(p.queuedDuringCurrent) > 0 {
			p.steps = append(p.queuedDuringCurrent, p.steps...)
			p.queuedDuringCurrent = nil
		}
	}
	return true
}

// HandleInput routes input to the head step.
func (p *Pipeline) HandleInput(in Input) bool {
	if len(p.steps) == 0 {
		return false
	}
	if handler, ok := p.steps[0].(InputHandler); ok {
		return handler.HandleInput(in)
	}
	return false
}

// AwaitingInput reports the prompt the head step is blocked on, if any.
func (p *Pipeline) AwaitingInput() (string, bool) {
	if len(p.steps) == 0 {
		return "", false
	}
	if awaiter, ok := p.steps[0].(Awaiter); ok {
		return awaiter.AwaitingInput()
	}
	return "", false
}

// Len returns the number of steps still queued at this level.
func (p *Pipeline) Len() int {
	return len(p.steps) + len(p.queuedDuringCurrent)
}

// IsEmpty returns whether no steps remain.
func (p *Pipeline) IsEmpty() bool {
	return p.Len() == 0
}

// SimpleStep runs a function once.
type SimpleStep struct {
	Name string
	Fn   func()
}

// NewSimpleStep wraps fn as a step.
func NewSimpleStep(name string, fn func()) *SimpleStep {
	return &SimpleStep{Name: name, Fn: fn}
}

// Run implements Step.
func (s *SimpleStep) Run() bool {
	if s.Fn != nil {
		s.Fn()
	}
	return true
}

// StepWithPipeline is embedded by steps that run their own nested pipeline.
type StepWithPipeline struct {
	Pipeline *Pipeline
}

// Run drains the nested pipeline.
func (s *StepWithPipeline) Run() bool {
	return s.Pipeline.Continue()
}

// QueueStep queues into the nested pipeline.
func (s *StepWithPipeline) QueueStep(step Step) {
	s.Pipeline.QueueStep(step)
}

// HandleInput forwards input to the nested pipeline.
func (s *StepWithPipeline) HandleInput(in Input) bool {
	return s.Pipeline.HandleInput(in)
}

// AwaitingInput reports the nested pipeline's outstanding prompt.
func (s *StepWithPipeline) AwaitingInput() (string, bool) {
	return s.Pipeline.AwaitingInput()
}
