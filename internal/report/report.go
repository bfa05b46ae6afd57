package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the name of the report written into every run directory.
const FileName = "rapport.txt"

// Kind is the final disposition of one spreadsheet row.
type Kind int

const (
	Converted Kind = iota
	SkippedInvalidReference
	FetchFailed
	ConversionFailed
)

func (k Kind) String() string {
	switch k {
	case Converted:
		return "converted"
	case SkippedInvalidReference:
		return "skipped"
	case FetchFailed:
		return "fetch_failed"
	case ConversionFailed:
		return "conversion_failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is produced exactly once per row.
type Outcome struct {
	ArticleNumber string
	Kind          Kind
	// Reason is empty for Converted rows.
	Reason string
	// Downloaded is set when the raw image reached disk, which can be true
	// for a ConversionFailed row.
	Downloaded bool
}

// Failure is one line in the failure section of the report.
type Failure struct {
	ArticleNumber string `json:"article_number"`
	Reason        string `json:"reason"`
}

// Summary accumulates outcomes for a run in processing order.
type Summary struct {
	TotalRows  int       `json:"total_rows"`
	Downloaded int       `json:"downloaded"`
	Converted  int       `json:"converted"`
	Failures   []Failure `json:"failures"`
}

// Add records one outcome.
func (s *Summary) Add(o Outcome) {
	s.TotalRows++
	if o.Downloaded {
		s.Downloaded++
	}
	if o.Kind == Converted {
		s.Converted++
		return
	}
	s.Failures = append(s.Failures, Failure{ArticleNumber: o.ArticleNumber, Reason: o.Reason})
}

// Lines returns the report, one entry per physical line.
func (s *Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Totalt antal rader i Excel: %d", s.TotalRows),
		fmt.Sprintf("Totalt antal bilder nedladdade: %d", s.Downloaded),
		fmt.Sprintf("Totalt antal bilder konverterade till webp: %d", s.Converted),
		"",
		"Artiklar där nedladdning/konvertering misslyckades:",
	}
	for _, f := range s.Failures {
		// one physical line per row even if a transport error spans several
		reason := strings.Join(strings.Fields(f.Reason), " ")
		lines = append(lines, fmt.Sprintf("Artikelnummer: %s, Anledning: %s", f.ArticleNumber, reason))
	}
	return lines
}

// Render returns the report text for display.
func (s *Summary) Render() string {
	return strings.Join(s.Lines(), "\n")
}

// WriteError reports that the report file could not be persisted. The run's
// results only exist in memory at that point.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WriteFile writes the report into dir as UTF-8 with newline-terminated
// lines and returns its path.
func (s *Summary) WriteFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	var b strings.Builder
	for _, line := range s.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}
