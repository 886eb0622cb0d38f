package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/turtacn/simheat/pkg/errors"
)

// AtomRecord is one row of a pattern report.
type AtomRecord struct {
	// Index is the 0-based row position.
	Index int `json:"index"`
	// Element is the second token of the row, when present.
	Element string `json:"element,omitempty"`
	// Name is the display label: the tokens between NameStart and the last
	// token, joined by single spaces. It may be empty.
	Name string `json:"name"`
	// Pattern is the last token of the row.
	Pattern string `json:"pattern"`
}

// AtomLabelSet is the ordered list of atom records read from a pattern report.
type AtomLabelSet struct {
	Records []AtomRecord `json:"records"`
}

// Len returns the number of atoms.
func (s *AtomLabelSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Names returns the display labels in row order.
func (s *AtomLabelSet) Names() []string {
	out := make([]string, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Name
	}
	return out
}

// Patterns returns the pattern codes in row order.
func (s *AtomLabelSet) Patterns() []string {
	out := make([]string, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Pattern
	}
	return out
}

// NameCount is one line of an abundance summary.
type NameCount struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Abundance counts atoms per name, most frequent first; ties sort by name.
func (s *AtomLabelSet) Abundance() []NameCount {
	counts := make(map[string]int)
	for _, r := range s.Records {
		counts[r.Name]++
	}
	out := make([]NameCount, 0, len(counts))
	total := float64(len(s.Records))
	for name, c := range counts {
		out = append(out, NameCount{Name: name, Count: c, Percent: 100 * float64(c) / total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ParsePattern reads a pattern report with the default layout.
func ParsePattern(r io.Reader) (*AtomLabelSet, error) {
	return defaultParser.ParsePattern(r)
}

// ReadPatternFile opens path and parses it with the default layout.
func ReadPatternFile(path string) (*AtomLabelSet, error) {
	return defaultParser.ReadPatternFile(path)
}

// ReadPatternFile opens path, parses it and closes it.
func (p *Parser) ReadPatternFile(path string) (*AtomLabelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportReadFailed, "open pattern report").WithDetail(path)
	}
	defer f.Close()
	return p.ParsePattern(f)
}

// ParsePattern reads the banner, the atom count n, skips the column header
// and reads exactly n rows. Every row contributes one record, so the result
// carries n names and n pattern codes.
func (p *Parser) ParsePattern(r io.Reader) (*AtomLabelSet, error) {
	lr := newLineReader(r, "pattern")
	if err := lr.skip(p.layout.HeaderLines, "the atom count line"); err != nil {
		return nil, err
	}
	n, err := lr.atomCount(p.maxAtoms())
	if err != nil {
		return nil, err
	}
	if err := lr.skip(p.layout.PatternSkip, "the first data row"); err != nil {
		return nil, err
	}

	set := &AtomLabelSet{Records: make([]AtomRecord, 0, n)}
	for i := 0; i < n; i++ {
		text, err := lr.next(fmt.Sprintf("all atom rows were read (%d of %d)", i, n))
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return nil, lr.fieldError("empty atom row")
		}
		rec := AtomRecord{Index: i, Pattern: fields[len(fields)-1]}
		if len(fields) > 1 {
			rec.Element = fields[1]
		}
		if last := len(fields) - 1; p.layout.NameStart < last {
			rec.Name = strings.Join(fields[p.layout.NameStart:last], " ")
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}

//Personal.AI order the ending
