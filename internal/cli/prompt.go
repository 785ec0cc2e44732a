package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/APImetrics/apimetrics-deploy/internal/apimetrics"
)

// promptConfirmer asks on the terminal before a workflow is changed.
// Only "y" (any case) counts as yes; end of input declines.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(wf apimetrics.Workflow) (bool, error) {
	fmt.Fprintf(p.out, "Change deployments for Workflow \"%s\"? y/N: ", wf.Meta.Name)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
		return false, nil
	}

	answer := strings.TrimRight(line, "\r\n")
	return strings.EqualFold(answer, "y"), nil
}
