package reconcile

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/gobwas/glob"

	"github.com/APImetrics/apimetrics-deploy/internal/apimetrics"
)

var ErrNoConfirmer = errors.New("interactive mode requires a confirmer")

// Confirmer asks the operator whether a workflow should be changed.
type Confirmer interface {
	Confirm(workflow apimetrics.Workflow) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(workflow apimetrics.Workflow) (bool, error)

func (f ConfirmFunc) Confirm(workflow apimetrics.Workflow) (bool, error) {
	return f(workflow)
}

// Filter decides which workflows a run touches.
type Filter struct {
	name        *regexp.Regexp
	exclude     []glob.Glob
	interactive bool
	confirmer   Confirmer
}

// NewFilter compiles namePattern (a regular expression, empty for none) and
// the exclude globs.
func NewFilter(namePattern string, exclude []string, interactive bool, confirmer Confirmer) (*Filter, error) {
	f := &Filter{interactive: interactive, confirmer: confirmer}

	if namePattern != "" {
		re, err := regexp.Compile(namePattern)
		if err != nil {
			return nil, fmt.Errorf("compiling name filter: %w", err)
		}
		f.name = re
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}

	if interactive && confirmer == nil {
		return nil, ErrNoConfirmer
	}

	return f, nil
}

// ShouldProcess applies the name filter (a search, not a full match), then
// the exclude globs, then asks for confirmation in interactive mode.
func (f *Filter) ShouldProcess(workflow apimetrics.Workflow) (bool, error) {
	name := workflow.Meta.Name

	if f.name != nil && !f.name.MatchString(name) {
		return false, nil
	}

	for _, g := range f.exclude {
		if g.Match(name) {
			return false, nil
		}
	}

	if f.interactive {
		return f.confirmer.Confirm(workflow)
	}
	return true, nil
}
