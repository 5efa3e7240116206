package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pubscan/pubscan/internal/model"
)

// recordingStep appends its name to a shared log when executed.
type recordingStep struct {
	name string
	log  *[]string
	err  error
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Do(_ context.Context, _ *Scan) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func testTarget(t *testing.T) model.CrawlTarget {
	t.Helper()
	target, err := model.NewCrawlTarget("https://example.com")
	if err != nil {
		t.Fatalf("NewCrawlTarget() unexpected error: %v", err)
	}
	return target
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("steps run in order", func(t *testing.T) {
		t.Parallel()

		var log []string
		p := New()
		p.AddSteps(
			&recordingStep{name: "first", log: &log},
			&recordingStep{name: "second", log: &log},
			&recordingStep{name: "third", log: &log},
		)

		if err := p.Execute(context.Background(), NewScan(testTarget(t))); err != nil {
			t.Fatalf("Execute() unexpected error: %v", err)
		}
		if want := []string{"first", "second", "third"}; !reflect.DeepEqual(log, want) {
			t.Errorf("execution order = %v, want %v", log, want)
		}
	})

	t.Run("stops at first failing step", func(t *testing.T) {
		t.Parallel()

		var log []string
		wantErr := errors.New("step broke")
		p := New()
		p.AddSteps(
			&recordingStep{name: "first", log: &log},
			&recordingStep{name: "second", log: &log, err: wantErr},
			&recordingStep{name: "third", log: &log},
		)

		err := p.Execute(context.Background(), NewScan(testTarget(t)))
		if !errors.Is(err, wantErr) {
			t.Fatalf("Execute() error = %v, want %v", err, wantErr)
		}
		if want := []string{"first", "second"}; !reflect.DeepEqual(log, want) {
			t.Errorf("execution order = %v, want %v", log, want)
		}
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var log []string
		p := New()
		p.AddSteps(&recordingStep{name: "never", log: &log})

		if err := p.Execute(ctx, NewScan(testTarget(t))); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
		if len(log) != 0 {
			t.Errorf("steps ran after cancellation: %v", log)
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	var log []string
	p := New()
	p.AddSteps(
		&recordingStep{name: "a", log: &log},
		&recordingStep{name: "b", log: &log},
	)
	if got, want := p.StepNames(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("StepNames() = %v, want %v", got, want)
	}
}

func TestNewScan(t *testing.T) {
	t.Parallel()

	scan := NewScan(testTarget(t))
	if scan.Report == nil {
		t.Fatal("NewScan() Report = nil")
	}
	if scan.Report.Target != "https://example.com/" {
		t.Errorf("Report.Target = %q, want normalized target", scan.Report.Target)
	}
	if scan.Duplicates == nil {
		t.Error("NewScan() Duplicates = nil")
	}
}
