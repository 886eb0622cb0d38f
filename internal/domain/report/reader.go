package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/simheat/pkg/errors"
)

const maxLineBytes = 1 << 20

// lineReader wraps bufio.Scanner and tracks the 1-based line number.
type lineReader struct {
	sc   *bufio.Scanner
	line int
	kind string
}

func newLineReader(r io.Reader, kind string) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineReader{sc: sc, kind: kind}
}

// next returns the next line, or a truncation error naming what was expected.
func (lr *lineReader) next(want string) (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", errors.Wrapf(err, errors.ErrCodeReportReadFailed, "%s report", lr.kind).
				WithDetailf("line %d", lr.line+1)
		}
		return "", errors.Newf(errors.ErrCodeReportTruncated,
			"%s report ended before %s", lr.kind, want).WithDetailf("line %d", lr.line+1)
	}
	lr.line++
	return lr.sc.Text(), nil
}

func (lr *lineReader) skip(n int, want string) error {
	for i := 0; i < n; i++ {
		if _, err := lr.next(want); err != nil {
			return err
		}
	}
	return nil
}

// atomCount reads the count line; its last token is the number of atoms,
// which must lie in 1..max.
func (lr *lineReader) atomCount(max int) (int, error) {
	text, err := lr.next("the atom count line")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, errors.Newf(errors.ErrCodeReportHeaderInvalid, "%s report has an empty atom count line", lr.kind).
			WithDetailf("line %d", lr.line)
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrCodeReportHeaderInvalid, "%s report atom count %q is not an integer",
			lr.kind, fields[len(fields)-1]).WithDetailf("line %d", lr.line)
	}
	if n <= 0 {
		return 0, errors.Newf(errors.ErrCodeReportHeaderInvalid, "%s report atom count must be positive, got %d", lr.kind, n).
			WithDetailf("line %d", lr.line)
	}
	if n > max {
		return 0, errors.Newf(errors.ErrCodeReportHeaderInvalid, "%s report atom count %d exceeds the limit of %d", lr.kind, n, max).
			WithDetailf("line %d", lr.line)
	}
	return n, nil
}

func (lr *lineReader) fieldError(format string, args ...interface{}) *errors.AppError {
	return errors.Newf(errors.ErrCodeReportFieldInvalid, format, args...).WithDetailf("%s report line %d", lr.kind, lr.line)
}

//Personal.AI order the ending
