package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"presskit/internal/config"
	"presskit/internal/ledger"
	"presskit/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BuildDir = filepath.Join(dir, "build")
	cfg.Paths.SiteDir = filepath.Join(dir, "site")
	cfg.Paths.FiguresDir = filepath.Join(dir, "figures")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

type fakeStep struct {
	name    string
	summary Summary
	err     error
	calls   int
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Run(_ context.Context, _ []string) (Summary, error) {
	s.calls++
	return s.summary, s.err
}

type captureRecorder struct {
	records []ledger.StepRecord
}

func (r *captureRecorder) RecordStep(_ context.Context, rec ledger.StepRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func TestRunnerExecutesStepsInOrder(t *testing.T) {
	cfg := testConfig(t)
	recorder := &captureRecorder{}
	first := &fakeStep{name: "encode", summary: Summary{Processed: 2, Skipped: 1}}
	second := &fakeStep{name: "stage", summary: Summary{Processed: 2}}

	runner := NewRunner(cfg, logging.NewNop(), recorder, first, second)
	if err := runner.Run(context.Background(), []string{"dark"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d, %d", first.calls, second.calls)
	}
	if len(recorder.records) != 2 {
		t.Fatalf("recorded %d steps", len(recorder.records))
	}
	if recorder.records[0].Step != "encode" || recorder.records[1].Step != "stage" {
		t.Fatalf("record order: %s, %s", recorder.records[0].Step, recorder.records[1].Step)
	}
	if recorder.records[0].Outcome != ledger.OutcomeOK {
		t.Fatalf("outcome = %s", recorder.records[0].Outcome)
	}
	if recorder.records[0].RunID == "" || recorder.records[0].RunID != recorder.records[1].RunID {
		t.Fatal("steps must share one run ID")
	}
}

func TestRunnerAbortsOnFirstFailure(t *testing.T) {
	cfg := testConfig(t)
	recorder := &captureRecorder{}
	boom := errors.New("encoder exploded")
	first := &fakeStep{name: "encode", err: boom}
	second := &fakeStep{name: "stage"}

	runner := NewRunner(cfg, logging.NewNop(), recorder, first, second)
	err := runner.Run(context.Background(), []string{"dark"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if second.calls != 0 {
		t.Fatal("later step ran after failure")
	}
	if len(recorder.records) != 1 || recorder.records[0].Outcome != ledger.OutcomeFailed {
		t.Fatalf("records = %+v", recorder.records)
	}
	if recorder.records[0].ErrorText == "" {
		t.Fatal("failure record missing error text")
	}
}

func TestRunnerFailsFastWhenLockHeld(t *testing.T) {
	cfg := testConfig(t)

	held := flock.New(LockPath(cfg))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("prepare lock: %v %v", locked, err)
	}
	defer held.Unlock()

	step := &fakeStep{name: "encode"}
	runner := NewRunner(cfg, logging.NewNop(), nil, step)
	err = runner.Run(context.Background(), []string{"dark"})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if step.calls != 0 {
		t.Fatal("step ran despite held lock")
	}
}

func TestFindSourcesSkipsIntermediates(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		filepath.Join("sde_animation", "intro.mp4"),
		filepath.Join("sde_animation", TempPrefix+"intro.mp4"),
		filepath.Join("sde_animation", PartialDirName, "chunk_0001.mp4"),
		filepath.Join("drift", "field.mp4"),
		filepath.Join("drift", "notes.txt"),
	} {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sources, err := FindSources(root, ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources: %+v", len(sources), sources)
	}
	// Lexical walk order.
	if sources[0].Scene != "field" || sources[1].Scene != "intro" {
		t.Fatalf("scenes = %s, %s", sources[0].Scene, sources[1].Scene)
	}
	if sources[1].Rel != filepath.Join("sde_animation", "intro.mp4") {
		t.Fatalf("rel = %s", sources[1].Rel)
	}
}

func TestTempPathKeepsExtension(t *testing.T) {
	got := TempPath(filepath.Join("a", "b", "intro.webm"))
	if got != filepath.Join("a", "b", TempPrefix+"intro.webm") {
		t.Fatalf("TempPath = %s", got)
	}
	if !IsTempName(filepath.Base(got)) {
		t.Fatal("TempPath result not recognized as temp")
	}
	if IsTempName("intro.webm") {
		t.Fatal("finished artifact flagged as temp")
	}
}

func TestWrapClassifies(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "encode", "transcode", "ffmpeg failed", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("marker lost")
	}
	if !errors.Is(err, base) {
		t.Fatal("cause lost")
	}

	err = Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("nil marker should default to external tool")
	}
}
