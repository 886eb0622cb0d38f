package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/turtacn/simheat/pkg/errors"
)

// Parser reads reports laid out according to a Layout.
type Parser struct {
	layout Layout
}

// NewParser returns a Parser for layout.
func NewParser(layout Layout) (*Parser, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Parser{layout: layout}, nil
}

// Layout returns the parser's layout.
func (p *Parser) Layout() Layout { return p.layout }

func (p *Parser) maxAtoms() int {
	if p.layout.MaxAtoms <= 0 || p.layout.MaxAtoms > MaxMatrixSize {
		return DefaultMaxAtoms
	}
	return p.layout.MaxAtoms
}

var defaultParser = &Parser{layout: DefaultLayout()}

// ParseSimilarity reads a similarity report with the default layout.
func ParseSimilarity(r io.Reader) (*SimilarityMatrix, error) {
	return defaultParser.ParseSimilarity(r)
}

// ReadSimilarityFile opens path and parses it with the default layout.
func ReadSimilarityFile(path string) (*SimilarityMatrix, error) {
	return defaultParser.ReadSimilarityFile(path)
}

// ReadSimilarityFile opens path, parses it and closes it.
func (p *Parser) ReadSimilarityFile(path string) (*SimilarityMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportReadFailed, "open similarity report").WithDetail(path)
	}
	defer f.Close()
	return p.ParseSimilarity(f)
}

// ParseSimilarity reads the banner, the atom count n and then exactly n×n
// rows. Each row addresses its cell by the 1-based ids in tokens 0 and 1. A
// row whose last token is the missing marker scores 0; otherwise the token at
// ScoreOffset from the end is the score and must be finite. Every cell must
// be addressed once.
func (p *Parser) ParseSimilarity(r io.Reader) (*SimilarityMatrix, error) {
	lr := newLineReader(r, "similarity")
	if err := lr.skip(p.layout.HeaderLines, "the atom count line"); err != nil {
		return nil, err
	}
	n, err := lr.atomCount(p.maxAtoms())
	if err != nil {
		return nil, err
	}
	if err := lr.skip(p.layout.SimilaritySkip, "the first data row"); err != nil {
		return nil, err
	}

	m, err := NewSimilarityMatrix(n)
	if err != nil {
		return nil, err
	}
	assigned := make([]bool, n*n)
	minTokens := 2
	if p.layout.ScoreOffset > minTokens {
		minTokens = p.layout.ScoreOffset
	}

	cells := n * n
	for k := 0; k < cells; k++ {
		text, err := lr.next(fmt.Sprintf("all data rows were read (%d of %d)", k, cells))
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(text)
		if len(fields) < minTokens {
			return nil, lr.fieldError("expected at least %d fields, got %d", minTokens, len(fields))
		}
		row, err := p.atomIndex(lr, fields[0], n)
		if err != nil {
			return nil, err
		}
		col, err := p.atomIndex(lr, fields[1], n)
		if err != nil {
			return nil, err
		}

		var score float64
		if fields[len(fields)-1] == p.layout.MissingMarker {
			m.missing++
		} else {
			tok := fields[len(fields)-p.layout.ScoreOffset]
			score, err = strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, lr.fieldError("score %q is not a number", tok)
			}
			if math.IsNaN(score) || math.IsInf(score, 0) {
				return nil, lr.fieldError("score %q is not finite", tok)
			}
		}

		idx := row*n + col
		if assigned[idx] {
			return nil, errors.Newf(errors.ErrCodeReportDuplicateCell,
				"cell (%d,%d) assigned twice", row+1, col+1).WithDetailf("similarity report line %d", lr.line)
		}
		assigned[idx] = true
		m.data[idx] = score
	}
	return m, nil
}

// atomIndex converts a 1-based atom id token to a 0-based index in [0,n).
func (p *Parser) atomIndex(lr *lineReader, tok string, n int) (int, error) {
	id, err := strconv.Atoi(tok)
	if err != nil {
		return 0, lr.fieldError("atom id %q is not an integer", tok)
	}
	if id < 1 || id > n {
		return 0, errors.Newf(errors.ErrCodeReportIndexOutOfRange,
			"atom id %d outside 1..%d", id, n).WithDetailf("%s report line %d", lr.kind, lr.line)
	}
	return id - 1, nil
}

//Personal.AI order the ending
