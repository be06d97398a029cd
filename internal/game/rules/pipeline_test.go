package rules

import (
	"reflect"
	"testing"
)

type blockingStep struct {
	id       string
	released bool
	log      *[]string
}

func (b *blockingStep) Run() bool {
	if !b.released {
		return false
	}
	*b.log = append(*b.log, b.id)
	return true
}

func (b *blockingStep) AwaitingInput() (string, bool) {
	return b.id, !b.released
}

func (b *blockingStep) HandleInput(in Input) bool {
	if in.PromptID != b.id {
		return false
	}
	b.released = true
	return true
}

type nestedStep struct {
	StepWithPipeline
}

func TestPipelineRunsStepsInOrder(t *testing.T) {
	var log []string
	p := NewPipeline()
	p.QueueStep(NewSimpleStep("a", func() { log = append(log, "a") }))
	p.QueueStep(NewSimpleStep("b", func() { log = append(log, "b") }))

	if !p.Continue() {
		t.Fatal("expected pipeline to drain")
	}
	if !reflect.DeepEqual(log, []string{"a", "b"}) {
		t.Fatalf("unexpected order %v", log)
	}
	if !p.IsEmpty() {
		t.Fatal("expected empty pipeline")
	}
}

func TestPipelineStepsQueuedDuringStepRunNext(t *testing.T) {
	var log []string
	p := NewPipeline()
	p.QueueStep(NewSimpleStep("outer", func() {
		log = append(log, "outer")
		p.QueueStep(NewSimpleStep("child1", func() { log = append(log, "child1") }))
		p.QueueStep(NewSimpleStep("child2", func() { log = append(log, "child2") }))
	}))
	p.QueueStep(NewSimpleStep("sibling", func() { log = append(log, "sibling") }))

	p.Continue()

	want := []string{"outer", "child1", "child2", "sibling"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
}

func TestPipelineBlocksOnInputAndResumes(t *testing.T) {
	var log []string
	p := NewPipeline()
	prompt := &blockingStep{id: "prompt-1", log: &log}
	p.QueueStep(NewSimpleStep("before", func() { log = append(log, "before") }))
	p.QueueStep(prompt)
	p.QueueStep(NewSimpleStep("after", func() { log = append(log, "after") }))

	if p.Continue() {
		t.Fatal("expected pipeline to block on prompt")
	}
	id, waiting := p.AwaitingInput()
	if !waiting || id != "prompt-1" {
		t.Fatalf("expected to await prompt-1, got %q %v", id, waiting)
	}
	if p.HandleInput(Input{PromptID: "other"}) {
		t.Fatal("expected mismatched input to be rejected")
	}
	if !p.HandleInput(Input{PromptID: "prompt-1"}) {
		t.Fatal("expected input to be handled")
	}
	if !p.Continue() {
		t.Fatal("expected pipeline to drain after input")
	}
	want := []string{"before", "prompt-1", "after"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
}

func TestPipelineQueuesIntoNestedStep(t *testing.T) {
	var log []string
	outer := NewPipeline()
	nested := &nestedStep{StepWithPipeline{Pipeline: NewPipeline()}}
	nested.Pipeline.QueueStep(NewSimpleStep("n1", func() {
		log = append(log, "n1")
		outer.QueueStep(NewSimpleStep("n1-child", func() { log = append(log, "n1-child") }))
	}))
	nested.Pipeline.QueueStep(NewSimpleStep("n2", func() { log = append(log, "n2") }))

	outer.QueueStep(nested)
	outer.QueueStep(NewSimpleStep("tail", func() { log = append(log, "tail") }))
	outer.Continue()

	want := []string{"n1", "n1-child", "n2", "tail"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
}

func TestPipelineNestedPromptForwardsInput(t *testing.T) {
	var log []string
	outer := NewPipeline()
	nested := &nestedStep{StepWithPipeline{Pipeline: NewPipeline()}}
	nested.Pipeline.QueueStep(&blockingStep{id: "inner", log: &log})
	outer.QueueStep(nested)

	if outer.Continue() {
		t.Fatal("expected outer pipeline to block")
	}
	if id, ok := outer.AwaitingInput(); !ok || id != "inner" {
		t.Fatalf("expected inner prompt, got %q", id)
	}
	if !outer.HandleInput(Input{PromptID: "inner"}) {
		t.Fatal("expected nested prompt to accept input")
	}
	if !outer.Continue() {
		t.Fatal("expected outer pipeline to drain")
	}
	if !reflect.DeepEqual(log, []string{"inner"}) {
		t.Fatalf("unexpected log %v", log)
	}
}

func TestPipelineStepsQueuedBetweenRunsKeepFIFOOrder(t *testing.T) {
	var log []string
	p := NewPipeline()
	p.QueueStep(NewSimpleStep("a", func() {
		log = append(log, "a")
		p.QueueStep(NewSimpleStep("a.child", func() { log = append(log, "a.child") }))
	}))
	p.QueueStep(NewSimpleStep("b", func() { log = append(log, "b") }))
	p.QueueStep(NewSimpleStep("c", func() { log = append(log, "c") }))

	p.Continue()

	want := []string{"a", "a.child", "b", "c"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
}

func TestPipelineQueueBehindBlockedStepGoesToBack(t *testing.T) {
	var log []string
	p := NewPipeline()
	prompt := &blockingStep{id: "prompt-1", log: &log}
	p.QueueStep(prompt)
	if p.Continue() {
		t.Fatal("expected pipeline to block on prompt")
	}

	p.QueueStep(NewSimpleStep("later", func() { log = append(log, "later") }))
	p.HandleInput(Input{PromptID: "prompt-1"})
	p.Continue()

	want := []string{"prompt-1", "later"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
}
