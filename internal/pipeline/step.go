package pipeline

import "context"

// Summary captures what a step did across the themes it was given.
type Summary struct {
	// Processed counts artifacts the step (re)generated or relocated.
	Processed int
	// Skipped counts up-to-date artifacts and unresolvable themes.
	Skipped int
}

// Add folds another summary into this one.
func (s *Summary) Add(other Summary) {
	s.Processed += other.Processed
	s.Skipped += other.Skipped
}

// Step is one pipeline stage. Run processes the given themes sequentially and
// independently: a theme that cannot be resolved is skipped, not fatal. A
// returned error aborts the whole pipeline run.
type Step interface {
	Name() string
	Run(ctx context.Context, themes []string) (Summary, error)
}
