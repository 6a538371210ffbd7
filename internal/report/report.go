// Package report renders an evaluation into the plain-text save format.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/njchilds90/gocalc/internal/evaluator"
)

// TimeLayout is the timestamp format written at the top of a report.
const TimeLayout = "2006-01-02 15:04:05"

// ErrNothingToSave is returned when the entry carries no result.
var ErrNothingToSave = errors.New("no result to save")

// Entry is one saved computation.
type Entry struct {
	Time       time.Time
	Expression string
	Operation  evaluator.Operation
	Result     evaluator.Result
}

const template = `Computed at: %s

Expression: %s
Operation: %s

LaTeX:
%s

Text:
%s
`

// Format renders e in the report template.
func Format(e Entry) (string, error) {
	if e.Result.Empty() {
		return "", ErrNothingToSave
	}
	return fmt.Sprintf(template,
		e.Time.Format(TimeLayout),
		strings.TrimSpace(e.Expression),
		e.Operation,
		e.Result.Typeset,
		e.Result.Text,
	), nil
}

// WriteTo writes the formatted report to w.
func WriteTo(w io.Writer, e Entry) error {
	s, err := Format(e)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Save writes the report to path as UTF-8, replacing any existing file.
// Failures are returned as is; nothing is retried.
func Save(path string, e Entry) error {
	s, err := Format(e)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}
