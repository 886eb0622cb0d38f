// Package report reads the fixed-layout text reports written by the
// structural analysis tool: the pairwise similarity report and the pattern
// (common neighbour) analysis report. Both share an eight-line banner, an
// "atom count" line whose last token is the number of atoms, a short column
// header, and one data row per entry.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/simheat/pkg/errors"
)

// MaxMatrixSize is the largest n for which n×n cells fit in an int32.
const MaxMatrixSize = 46340

// SimilarityMatrix is a square n×n table of similarity scores stored in
// row-major order. Indices are 0-based.
type SimilarityMatrix struct {
	n       int
	data    []float64
	missing int
}

// NewSimilarityMatrix allocates a zero-filled n×n matrix.
func NewSimilarityMatrix(n int) (*SimilarityMatrix, error) {
	if n <= 0 {
		return nil, errors.Newf(errors.ErrCodeMatrixEmpty, "matrix size must be positive, got %d", n)
	}
	if n > MaxMatrixSize {
		return nil, errors.Newf(errors.ErrCodeValidation, "matrix size %d exceeds %d", n, MaxMatrixSize)
	}
	return &SimilarityMatrix{n: n, data: make([]float64, n*n)}, nil
}

// NewSimilarityMatrixFromRows builds a matrix from a square slice of rows.
func NewSimilarityMatrixFromRows(rows [][]float64) (*SimilarityMatrix, error) {
	m, err := NewSimilarityMatrix(len(rows))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.n {
			return nil, errors.Newf(errors.ErrCodeValidation,
				"row %d has %d columns, want %d", i, len(row), m.n)
		}
		copy(m.data[i*m.n:(i+1)*m.n], row)
	}
	return m, nil
}

// Size returns n, the number of rows (and columns).
func (m *SimilarityMatrix) Size() int {
	if m == nil {
		return 0
	}
	return m.n
}

// Missing returns how many cells were read as the missing marker.
func (m *SimilarityMatrix) Missing() int { return m.missing }

func (m *SimilarityMatrix) index(row, col int) (int, error) {
	if row < 0 || row >= m.n || col < 0 || col >= m.n {
		return 0, errors.Newf(errors.ErrCodeReportIndexOutOfRange,
			"cell (%d,%d) outside %d×%d matrix", row, col, m.n, m.n)
	}
	return row*m.n + col, nil
}

// At returns the score at (row, col).
func (m *SimilarityMatrix) At(row, col int) (float64, error) {
	i, err := m.index(row, col)
	if err != nil {
		return 0, err
	}
	return m.data[i], nil
}

// Set assigns the score at (row, col).
func (m *SimilarityMatrix) Set(row, col int, v float64) error {
	i, err := m.index(row, col)
	if err != nil {
		return err
	}
	m.data[i] = v
	return nil
}

// Row returns a copy of row i.
func (m *SimilarityMatrix) Row(i int) ([]float64, error) {
	if _, err := m.index(i, 0); err != nil {
		return nil, err
	}
	out := make([]float64, m.n)
	copy(out, m.data[i*m.n:(i+1)*m.n])
	return out, nil
}

// Rows returns the matrix as a fresh slice of rows.
func (m *SimilarityMatrix) Rows() [][]float64 {
	out := make([][]float64, m.n)
	for i := range out {
		out[i] = make([]float64, m.n)
		copy(out[i], m.data[i*m.n:(i+1)*m.n])
	}
	return out
}

// Values returns a copy of the row-major backing slice.
func (m *SimilarityMatrix) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Max returns the largest score.
func (m *SimilarityMatrix) Max() float64 {
	max := math.Inf(-1)
	for _, v := range m.data {
		if v > max {
			max = v
		}
	}
	return max
}

// Min returns the smallest score.
func (m *SimilarityMatrix) Min() float64 {
	min := math.Inf(1)
	for _, v := range m.data {
		if v < min {
			min = v
		}
	}
	return min
}

// IsSymmetric reports whether |m[i][j] - m[j][i]| <= eps for every pair.
func (m *SimilarityMatrix) IsSymmetric(eps float64) bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if math.Abs(m.data[i*m.n+j]-m.data[j*m.n+i]) > eps {
				return false
			}
		}
	}
	return true
}

// String renders the matrix one row per line with %.1f cells.
func (m *SimilarityMatrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f", m.data[i*m.n+j])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

type matrixJSON struct {
	Size    int         `json:"size"`
	Missing int         `json:"missing"`
	Rows    [][]float64 `json:"rows"`
}

// MarshalJSON encodes the matrix as {"size","missing","rows"}.
func (m *SimilarityMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Size: m.n, Missing: m.missing, Rows: m.Rows()})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (m *SimilarityMatrix) UnmarshalJSON(b []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode similarity matrix")
	}
	if raw.Size != len(raw.Rows) {
		return errors.Newf(errors.ErrCodeSerialization,
			"size %d does not match %d rows", raw.Size, len(raw.Rows))
	}
	decoded, err := NewSimilarityMatrixFromRows(raw.Rows)
	if err != nil {
		return err
	}
	decoded.missing = raw.Missing
	*m = *decoded
	return nil
}

//Personal.AI order the ending
