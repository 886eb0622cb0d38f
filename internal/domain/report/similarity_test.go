package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/testutil"
	"github.com/turtacn/simheat/pkg/errors"
)

func TestParseSimilarity_TwoAtoms(t *testing.T) {
	t.Parallel()

	src := testutil.SimilarityReport(2,
		"1 1 5.0 x x",
		"1 2 x x N/A",
		"2 1 3.2 x x",
		"2 2 7.0 x x",
	)

	m, err := ParseSimilarity(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Size())
	assert.Equal(t, [][]float64{{5.0, 0.0}, {3.2, 7.0}}, m.Rows())
	assert.Equal(t, 1, m.Missing())
}

func TestParseSimilarity_TrailingScoreLayout(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	layout.ScoreOffset = 1
	p, err := NewParser(layout)
	require.NoError(t, err)

	src := testutil.SimilarityReport(2,
		"1 1 x x 5.0",
		"1 2 x x N/A",
		"2 1 x x 3.2",
		"2 2 x x 7.0",
	)
	m, err := p.ParseSimilarity(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5.0, 0.0}, {3.2, 7.0}}, m.Rows())
}

func TestParseSimilarity_IdsAddressCellsOutOfOrder(t *testing.T) {
	t.Parallel()

	src := testutil.SimilarityReport(2,
		"2 2 4.0 x x",
		"1 2 2.0 x x",
		"2 1 3.0 x x",
		"1 1 1.0 x x",
	)
	m, err := ParseSimilarity(strings.NewReader(src))
	require.NoError(t, err)

	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	v, _ = m.At(1, 0)
	assert.Equal(t, 3.0, v)
}

func TestParseSimilarity_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		code errors.ErrorCode
	}{
		{
			name: "empty input",
			src:  "",
			code: errors.ErrCodeReportTruncated,
		},
		{
			name: "count not an integer",
			src:  strings.Replace(testutil.SimilarityReport(1, "1 1 1.0 x x"), "atoms: 1", "atoms: one", 1),
			code: errors.ErrCodeReportHeaderInvalid,
		},
		{
			name: "zero atoms",
			src:  testutil.SimilarityReport(0),
			code: errors.ErrCodeReportHeaderInvalid,
		},
		{
			name: "too few rows",
			src:  testutil.SimilarityReport(2, "1 1 1.0 x x", "1 2 1.0 x x"),
			code: errors.ErrCodeReportTruncated,
		},
		{
			name: "score not numeric",
			src:  testutil.SimilarityReport(1, "1 1 abc x x"),
			code: errors.ErrCodeReportFieldInvalid,
		},
		{
			name: "id not numeric",
			src:  testutil.SimilarityReport(1, "a 1 1.0 x x"),
			code: errors.ErrCodeReportFieldInvalid,
		},
		{
			name: "id out of range",
			src:  testutil.SimilarityReport(1, "2 1 1.0 x x"),
			code: errors.ErrCodeReportIndexOutOfRange,
		},
		{
			name: "id zero",
			src:  testutil.SimilarityReport(1, "0 1 1.0 x x"),
			code: errors.ErrCodeReportIndexOutOfRange,
		},
		{
			name: "duplicate cell",
			src:  testutil.SimilarityReport(2, "1 1 1 x x", "1 1 1 x x", "2 1 1 x x", "2 2 1 x x"),
			code: errors.ErrCodeReportDuplicateCell,
		},
		{
			name: "count wraps the cell count",
			src:  testutil.SimilarityReport(1<<32, "1 1 1.0 x x"),
			code: errors.ErrCodeReportHeaderInvalid,
		},
		{
			name: "count too large to allocate",
			src:  testutil.SimilarityReport(1<<31, "1 1 1.0 x x"),
			code: errors.ErrCodeReportHeaderInvalid,
		},
		{
			name: "count over the default limit",
			src:  testutil.SimilarityReport(DefaultMaxAtoms+1, "1 1 1.0 x x"),
			code: errors.ErrCodeReportHeaderInvalid,
		},
		{
			name: "NaN score",
			src:  testutil.SimilarityReport(1, "1 1 NaN x x"),
			code: errors.ErrCodeReportFieldInvalid,
		},
		{
			name: "infinite score",
			src:  testutil.SimilarityReport(1, "1 1 -Inf x x"),
			code: errors.ErrCodeReportFieldInvalid,
		},
		{
			name: "short row",
			src:  testutil.SimilarityReport(1, "1 1"),
			code: errors.ErrCodeReportFieldInvalid,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m, err := ParseSimilarity(strings.NewReader(tc.src))
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestParseSimilarity_ErrorNamesLine(t *testing.T) {
	t.Parallel()

	_, err := ParseSimilarity(strings.NewReader(testutil.SimilarityReport(1, "1 1 abc x x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 11")
}

func TestParseSimilarity_TruncationCountsRows(t *testing.T) {
	t.Parallel()

	_, err := ParseSimilarity(strings.NewReader(testutil.SimilarityReport(2, "1 1 1.0 x x", "1 2 1.0 x x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(2 of 4)")
}

func TestParseSimilarity_MaxAtoms(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	layout.MaxAtoms = 1
	p, err := NewParser(layout)
	require.NoError(t, err)

	sim, _ := testutil.SymmetricReports(2)
	_, err = p.ParseSimilarity(strings.NewReader(sim))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportHeaderInvalid))
	assert.Contains(t, err.Error(), "exceeds the limit of 1")

	m, err := p.ParseSimilarity(strings.NewReader(testutil.SimilarityReport(1, "1 1 2.0 x x")))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Size())
}

func TestReadSimilarityFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sim, _ := testutil.SymmetricReports(3)
	path := testutil.WriteFile(t, dir, "sa_test.txt", sim)

	m, err := ReadSimilarityFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Size())
	assert.True(t, m.IsSymmetric(0))
	assert.Equal(t, 5.0, m.Max())

	_, err = ReadSimilarityFile(filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportReadFailed))
}

func TestNewParser_RejectsBadLayout(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	layout.ScoreOffset = 0
	_, err := NewParser(layout)
	assert.Error(t, err)

	layout = DefaultLayout()
	layout.MissingMarker = ""
	_, err = NewParser(layout)
	assert.Error(t, err)

	for _, max := range []int{0, MaxMatrixSize + 1} {
		layout = DefaultLayout()
		layout.MaxAtoms = max
		_, err = NewParser(layout)
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidation), "max_atoms %d", max)
	}
}

//Personal.AI order the ending
