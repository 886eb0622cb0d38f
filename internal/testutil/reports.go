package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const rule = "----------------------------------------------------------------------------------------------------"

// Banner returns the eight banner lines and the atom-count line written at the
// top of every analysis report.
func Banner(atoms int) string {
	lines := []string{
		rule,
		"Executing Bramble v.1.0.2",
		"Author: Ivo Filot <i.a.w.filot@tue.nl>",
		"Documentation: https://bramble.imc-tue.nl",
		rule,
		"Compilation time: Jan 1 2024 00:00:00",
		"Git Hash: 0000000",
		rule,
		fmt.Sprintf("Number of atoms: %d", atoms),
	}
	return strings.Join(lines, "\n") + "\n"
}

// SimilarityReport builds a similarity report with the given data rows.
func SimilarityReport(atoms int, rows ...string) string {
	return Banner(atoms) + "   i    j  score  x  x\n" + strings.Join(rows, "\n") + "\n"
}

// PatternReport builds a pattern report with the given data rows.
func PatternReport(atoms int, rows ...string) string {
	header := rule + "\n#     atom           x             y             z   color       pattern  fingerprint\n" + rule + "\n"
	return Banner(atoms) + header + strings.Join(rows, "\n") + "\n"
}

// SymmetricReports returns a matching similarity and pattern report for n
// atoms; cell (i,j) scores i+j+1 and atom i is named "P<i>".
func SymmetricReports(n int) (similarity, pattern string) {
	var sim, pat []string
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			sim = append(sim, fmt.Sprintf("%d %d %.1f 0 0", i, j, float64(i+j-1)))
		}
		pat = append(pat, fmt.Sprintf("%04d Co 0.0 0.0 0.0 #ff0000 P%d fp%d", i, i-1, i))
	}
	return SimilarityReport(n, sim...), PatternReport(n, pat...)
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

//Personal.AI order the ending
