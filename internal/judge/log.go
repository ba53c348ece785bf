package judge

import (
	"fmt"
	"strings"

	"simjudge/internal/runner"
	"simjudge/internal/scoring"
)

// buildJudgeLog renders group reports into the human-readable judge_log
// described in §6: one block per group, one line per test of the form
//
//	  <name>  [ TL: <seconds> s ML: <KiB> KiB ]  Status: <STATUS>[ (comment)][  Checker: [ ML: <KiB> KiB ]]
//	Score: <score> / <max> (ratio: <x.xxxx>)
func buildJudgeLog(groups []scoring.GroupReport) string {
	var b strings.Builder
	for _, g := range groups {
		for _, tr := range g.Tests {
			b.WriteString(formatTestLine(tr))
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprintf("Score: %d / %d (ratio: %.4f)\n", g.Score, g.MaxScore, g.Ratio))
	}
	return b.String()
}

func formatTestLine(tr scoring.TestReport) string {
	timeLimitSec := float64(tr.Test.TimeLimitMs) / 1000.0
	line := fmt.Sprintf("  %s  [ TL: %g s ML: %d KiB ]  Status: %s", tr.Test.Name, timeLimitSec, tr.Test.MemoryLimitMB*1024, tr.Result.Status)
	if tr.Result.Comment != "" {
		line += fmt.Sprintf(" (%s)", tr.Result.Comment)
	}
	if tr.Result.Status == runner.StatusCheckerError {
		line += fmt.Sprintf("  Checker: [ ML: %d KiB ]", tr.Result.CheckerMemoryKB)
	}
	return line
}
