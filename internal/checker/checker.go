// Package checker parses special-judge output and compiles/embeds the
// default exact-match checker used when a package declares none.
package checker

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	apperrors "simjudge/pkg/errors"
)

// Verdict is the checker's pass/fail classification, independent of the
// scoring percentage it may also report.
type Verdict string

const (
	VerdictOK    Verdict = "OK"
	VerdictWrong Verdict = "WRONG"
)

// OutputReport is a checker run's parsed stdout: a verdict, an optional
// partial-credit percentage (0-100; absent means 100 for OK, 0 for
// WRONG), and a comment truncated to the caller's configured bound.
type OutputReport struct {
	Verdict       Verdict
	HasPercentage bool
	Percentage    float64
	Comment       string
}

// ParseOutput reads a checker's stdout: a verdict line ("OK" or
// "WRONG", case-insensitive), an optional percentage line, and a
// remaining free-form comment with trailing whitespace trimmed, bounded
// to maxCommentLen bytes.
func ParseOutput(r io.Reader, maxCommentLen int) (OutputReport, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return OutputReport{}, apperrors.New(apperrors.CheckerBadOutput).WithMessage("checker produced no output")
	}
	verdictLine := strings.TrimSpace(scanner.Text())
	verdict, err := parseVerdict(verdictLine)
	if err != nil {
		return OutputReport{}, err
	}

	report := OutputReport{Verdict: verdict}

	var commentLines []string
	if scanner.Scan() {
		line2 := scanner.Text()
		trimmed := strings.TrimSpace(line2)
		switch {
		case verdict == VerdictWrong:
			// The percentage line is only meaningful for OK: a WRONG
			// verdict never carries partial credit, so its second line
			// is just the start of the comment, whatever it contains.
			if trimmed != "" {
				commentLines = append(commentLines, line2)
			}
		case trimmed == "":
			// Empty second line on OK: no percentage reported, full
			// credit by default.
		default:
			pct, ok := parsePercentage(trimmed)
			if !ok {
				return OutputReport{}, apperrors.New(apperrors.CheckerBadOutput).WithMessage("checker's second line is neither empty nor a valid percentage")
			}
			report.HasPercentage = true
			report.Percentage = pct
		}
	}
	for scanner.Scan() {
		commentLines = append(commentLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return OutputReport{}, apperrors.Wrap(err, apperrors.CheckerBadOutput)
	}

	comment := strings.TrimRight(strings.Join(commentLines, "\n"), " \t\r\n")
	report.Comment = truncate(comment, maxCommentLen)
	return report, nil
}

func parseVerdict(line string) (Verdict, error) {
	switch strings.ToUpper(strings.TrimSpace(line)) {
	case "OK":
		return VerdictOK, nil
	case "WRONG", "WA":
		return VerdictWrong, nil
	default:
		return "", apperrors.Newf(apperrors.CheckerBadOutput, "unrecognized verdict line %q", line)
	}
}

func parsePercentage(line string) (float64, bool) {
	if line == "" {
		return 0, false
	}
	trimmed := strings.TrimSuffix(line, "%")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// ScoreFraction returns the checker's verdict as a 0..1 scoring
// fraction, defaulting the percentage when the checker didn't report
// one explicitly.
func (r OutputReport) ScoreFraction() float64 {
	if r.HasPercentage {
		return r.Percentage / 100.0
	}
	if r.Verdict == VerdictOK {
		return 1.0
	}
	return 0.0
}
