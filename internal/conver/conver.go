// Package conver normalizes a raw problem package into a validated,
// judge-ready Simfile: it loads whatever Simfile the package declares
// (or none at all), fills in everything the package conventionally
// leaves implicit (checker, statement, solutions, test discovery,
// memory limits, group scoring), and either returns a complete result
// or asks the caller to judge the model solution first so time limits
// can be calibrated from its measured runtime.
package conver

import (
	"path"
	"sort"
	"strings"

	"simjudge/internal/language"
	"simjudge/internal/pkgloader"
	"simjudge/internal/simfile"
	apperrors "simjudge/pkg/errors"
)

const simfileName = "simfile"

// Status is Conver's outcome: either the package is fully resolved, or
// it first needs a model-solution judging pass to calibrate time
// limits.
type Status string

const (
	StatusComplete                     Status = "COMPLETE"
	StatusNeedModelSolutionJudgeReport Status = "NEED_MODEL_SOLUTION_JUDGE_REPORT"
)

// RTLOptions parameterizes the runtime-to-time-limit formula, used both
// to size the model-solution probe and to calibrate final limits from
// its measured runtime. The exact functional form is an Open Question
// in the distilled spec; this repo follows its stated fallback:
// tl = max(min_tl, coefficient * runtime).
type RTLOptions struct {
	MinTimeLimitMs             int64
	SolutionRuntimeCoefficient float64
}

func (o RTLOptions) normalized() RTLOptions {
	if o.MinTimeLimitMs <= 0 {
		o.MinTimeLimitMs = 1000
	}
	if o.SolutionRuntimeCoefficient <= 0 {
		o.SolutionRuntimeCoefficient = 3.0
	}
	return o
}

// Options controls how Normalize resolves an ambiguous or incomplete
// package, per spec §4.6.
type Options struct {
	Name, Label string
	// Interactive, when non-nil, overrides whatever the Simfile (or its
	// absence) implies.
	Interactive *bool
	// MemoryLimitMB is the fallback used only when neither a test nor
	// the Simfile itself declares one.
	MemoryLimitMB int64
	// GlobalTimeLimitMs, when positive, forces a model-solution
	// recalibration pass even if every test already has a declared
	// limit.
	GlobalTimeLimitMs int64
	// MaxTimeLimitMs ceilings the model-solution probe's own time
	// budget; it is not a per-test limit.
	MaxTimeLimitMs                   int64
	IgnoreSimfile                    bool
	SeekForNewTests                  bool
	ResetScoring                     bool
	ResetTimeLimitsUsingMainSolution bool
	RequireStatement                 bool
	RTLOpts                          RTLOptions
}

// Result is what Normalize returns.
type Result struct {
	Status  Status
	Simfile *simfile.Simfile
	MainDir string
}

// TestRuntime is one test's outcome from a model-solution judging pass:
// enough for ResetTimeLimitsUsingJudgeReports to decide whether it is
// valid calibration evidence.
type TestRuntime struct {
	Name      string
	Status    string // "OK" or "WA" accepted as evidence; anything else aborts calibration
	RuntimeMs int64
}

var sourceRegistry = language.NewDefaultRegistry()

// isRecognizedSource reports whether relPath's extension matches one of
// the judge core's known language suites — the same test Normalize uses
// to tell a candidate solution or checker source from test data.
func isRecognizedSource(relPath string) bool {
	_, err := sourceRegistry.Resolve(relPath)
	return err == nil
}

// Normalize implements the ten-step algorithm of spec §4.6: load the
// package's contents, resolve name/label/checker/statement/solutions,
// scan for tests, resolve memory limits, compute group structure and
// scoring, and decide whether time limits are already complete or need
// a model-solution calibration pass.
func Normalize(loader pkgloader.Loader, opts Options) (Result, error) {
	opts.RTLOpts = opts.RTLOpts.normalized()

	files, err := loader.ListFiles()
	if err != nil {
		return Result{}, err
	}
	files = withoutUtils(files)

	raw, err := loadRawConfig(loader, opts)
	if err != nil {
		return Result{}, err
	}

	name, label := resolveNameLabel(raw, opts)

	interactive := raw.Interactive
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}

	checkerPath, err := resolveChecker(loader, files, raw, interactive)
	if err != nil {
		return Result{}, err
	}

	statementPath, err := resolveStatement(loader, files, raw, opts)
	if err != nil {
		return Result{}, err
	}

	solutions, err := resolveSolutions(loader, files, raw, checkerPath, statementPath)
	if err != nil {
		return Result{}, err
	}

	tests, err := scanTests(raw, files, interactive, opts)
	if err != nil {
		return Result{}, err
	}

	globalMemoryMB := raw.MemoryLimitMB
	if globalMemoryMB <= 0 {
		globalMemoryMB = opts.MemoryLimitMB
	}
	for i := range tests {
		if tests[i].MemoryLimitMB <= 0 {
			tests[i].MemoryLimitMB = globalMemoryMB
		}
		if tests[i].MemoryLimitMB <= 0 {
			return Result{}, apperrors.Newf(apperrors.PackageInvalid, "test %q has no memory limit, and none is declared package-wide", tests[i].Name)
		}
	}

	scoring := raw.Scoring
	if opts.ResetScoring {
		scoring = nil
	}
	groups, err := simfile.BuildGroups(tests, scoring)
	if err != nil {
		return Result{}, err
	}

	sf := &simfile.Simfile{
		Name:          name,
		Label:         label,
		Statement:     statementPath,
		Checker:       checkerPath,
		MemoryLimitMB: globalMemoryMB,
		Interactive:   interactive,
		Solutions:     solutions,
		Groups:        groups,
	}

	needsProbe := opts.ResetTimeLimitsUsingMainSolution || opts.GlobalTimeLimitMs > 0
	for _, g := range sf.Groups {
		for _, t := range g.Tests {
			if t.TimeLimitMs <= 0 {
				needsProbe = true
			}
		}
	}
	if !needsProbe {
		return Result{Status: StatusComplete, Simfile: sf, MainDir: loader.Root()}, nil
	}

	probeMs := timeLimitToSolutionRuntime(opts.MaxTimeLimitMs, opts.RTLOpts)
	for gi := range sf.Groups {
		for ti := range sf.Groups[gi].Tests {
			sf.Groups[gi].Tests[ti].TimeLimitMs = probeMs
		}
	}
	return Result{Status: StatusNeedModelSolutionJudgeReport, Simfile: sf, MainDir: loader.Root()}, nil
}

// ResetTimeLimitsUsingJudgeReports recalibrates every test's time limit
// from the model solution's measured runtimes in initial and final
// (the two halves a judge worker's probe run produces), per §4.6. Only
// OK or WA statuses are accepted as evidence; any other status aborts
// calibration rather than silently keeping the provisional probe limit.
func ResetTimeLimitsUsingJudgeReports(sf *simfile.Simfile, initial, final []TestRuntime, opts RTLOptions) error {
	opts = opts.normalized()

	byName := make(map[string]TestRuntime, len(initial)+len(final))
	for _, r := range initial {
		byName[r.Name] = r
	}
	for _, r := range final {
		byName[r.Name] = r
	}

	for gi := range sf.Groups {
		for ti := range sf.Groups[gi].Tests {
			t := &sf.Groups[gi].Tests[ti]
			r, ok := byName[t.Name]
			if !ok {
				continue
			}
			if r.Status != "OK" && r.Status != "WA" {
				return apperrors.Newf(apperrors.ConversionFailed, "model solution did not pass test %q (status %s); cannot calibrate time limits", t.Name, r.Status)
			}
			t.TimeLimitMs = floorTo10Ms(solutionRuntimeToTimeLimit(r.RuntimeMs, opts))
		}
	}
	return nil
}

func timeLimitToSolutionRuntime(maxTimeLimitMs int64, opts RTLOptions) int64 {
	coeff := opts.SolutionRuntimeCoefficient
	if coeff <= 0 {
		coeff = 1
	}
	v := int64(float64(maxTimeLimitMs) / coeff)
	if v < opts.MinTimeLimitMs {
		v = opts.MinTimeLimitMs
	}
	return v
}

func solutionRuntimeToTimeLimit(runtimeMs int64, opts RTLOptions) int64 {
	v := int64(float64(runtimeMs) * opts.SolutionRuntimeCoefficient)
	if v < opts.MinTimeLimitMs {
		v = opts.MinTimeLimitMs
	}
	return v
}

func floorTo10Ms(ms int64) int64 {
	return ms - ms%10
}

func loadRawConfig(loader pkgloader.Loader, opts Options) (simfile.RawConfig, error) {
	if opts.IgnoreSimfile || !loader.Exists(simfileName) {
		return simfile.RawConfig{}, nil
	}
	content, err := loader.LoadAsStr(simfileName)
	if err != nil {
		return simfile.RawConfig{}, apperrors.Wrap(err, apperrors.SimfileNotFound)
	}
	return simfile.Parse(strings.NewReader(content))
}

func resolveNameLabel(raw simfile.RawConfig, opts Options) (name, label string) {
	name = opts.Name
	if name == "" {
		name = raw.Name
	}
	label = opts.Label
	if label == "" {
		label = raw.Label
	}
	if label == "" {
		label = name
	}
	return name, label
}

// resolveChecker implements step 4: a declared checker that exists
// wins outright; otherwise check/ and checker/ are searched for a
// recognized source file, shortest path first, and an interactive
// problem with none found is a hard failure.
func resolveChecker(loader pkgloader.Loader, files []string, raw simfile.RawConfig, interactive bool) (string, error) {
	if raw.Checker != "" && loader.Exists(raw.Checker) {
		return raw.Checker, nil
	}
	if candidate, ok := shortestSourceUnder(files, "check/", "checker/"); ok {
		return candidate, nil
	}
	if interactive {
		return "", apperrors.New(apperrors.PackageInvalid).WithMessage("interactive package declares no checker and none was found under check/ or checker/")
	}
	return "", nil
}

// resolveStatement implements step 5: a declared statement that exists
// wins; otherwise doc/ is searched first, then the whole tree,
// preferring .pdf over .md/.txt and shortest path as the final
// tiebreak.
func resolveStatement(loader pkgloader.Loader, files []string, raw simfile.RawConfig, opts Options) (string, error) {
	if raw.Statement != "" && loader.Exists(raw.Statement) {
		return raw.Statement, nil
	}
	if s, ok := bestStatement(filterPrefix(files, "doc/")); ok {
		return s, nil
	}
	if s, ok := bestStatement(files); ok {
		return s, nil
	}
	if opts.RequireStatement {
		return "", apperrors.New(apperrors.PackageInvalid).WithMessage("package has no statement and one is required")
	}
	return "", nil
}

// resolveSolutions implements step 6: declared solutions that exist,
// deduplicated and kept in declaration order, extended with every
// other recognized source file in the package not already claimed by
// the checker or statement.
func resolveSolutions(loader pkgloader.Loader, files []string, raw simfile.RawConfig, checkerPath, statementPath string) ([]string, error) {
	seen := make(map[string]bool)
	var solutions []string
	for _, s := range raw.Solutions {
		if s == "" || seen[s] || !loader.Exists(s) {
			continue
		}
		seen[s] = true
		solutions = append(solutions, s)
	}

	var extra []string
	for _, f := range files {
		if seen[f] || f == checkerPath || f == statementPath || !isRecognizedSource(f) {
			continue
		}
		extra = append(extra, f)
	}
	sort.Strings(extra)
	for _, f := range extra {
		if seen[f] {
			continue
		}
		seen[f] = true
		solutions = append(solutions, f)
	}

	if len(solutions) == 0 {
		return nil, apperrors.New(apperrors.PackageInvalid).WithMessage("no solution source found in package")
	}
	return solutions, nil
}

// scanTests implements step 7: *.in/*.out files are paired by stem
// in the package's sorted file order, then tests_files: and limits:
// entries from the Simfile augment or add to that set. Unless
// SeekForNewTests is set, a discovered pair that appears in neither
// tests_files: nor limits: is left out of the final test set — a
// package's Simfile is treated as authoritative over which files found
// on disk are actually tests, not merely a set of hints.
func scanTests(raw simfile.RawConfig, files []string, interactive bool, opts Options) ([]simfile.Test, error) {
	outs := make(map[string]string)
	for _, f := range files {
		if strings.HasSuffix(f, ".out") {
			outs[strings.TrimSuffix(f, ".out")] = f
		}
	}

	discovered := make(map[string]*simfile.Test)
	var order []string
	for _, f := range files {
		if !strings.HasSuffix(f, ".in") {
			continue
		}
		stem := strings.TrimSuffix(f, ".in")
		if !interactive {
			if _, ok := outs[stem]; !ok {
				continue
			}
		}
		name := path.Base(stem)
		t := &simfile.Test{Name: name, GroupID: simfile.EffectiveGroupID(name), InputPath: f}
		if !interactive {
			t.OutputPath = outs[stem]
		}
		discovered[name] = t
		order = append(order, name)
	}

	declared := make(map[string]bool)
	for _, tf := range raw.TestsFiles {
		declared[tf.TestName] = true
		t, ok := discovered[tf.TestName]
		if !ok {
			t = &simfile.Test{Name: tf.TestName, GroupID: simfile.EffectiveGroupID(tf.TestName)}
			discovered[tf.TestName] = t
			order = append(order, tf.TestName)
		}
		t.InputPath = tf.InputPath
		if !interactive && tf.OutputPath != "" {
			t.OutputPath = tf.OutputPath
		}
	}

	limited := make(map[string]bool)
	for _, l := range raw.Limits {
		limited[l.TestName] = true
		t, ok := discovered[l.TestName]
		if !ok {
			return nil, apperrors.Newf(apperrors.SimfileInvalid, "limits entry references unknown test %q", l.TestName)
		}
		t.TimeLimitMs = int64(l.TimeLimitSec * 1000)
		if l.MemoryLimitMB > 0 {
			t.MemoryLimitMB = l.MemoryLimitMB
		}
	}

	var tests []simfile.Test
	for _, name := range order {
		if !opts.SeekForNewTests && !declared[name] && !limited[name] {
			continue
		}
		t := discovered[name]
		if t.InputPath == "" {
			return nil, apperrors.Newf(apperrors.PackageInvalid, "test %q has no input file", name)
		}
		if !interactive && t.OutputPath == "" {
			return nil, apperrors.Newf(apperrors.PackageInvalid, "test %q has no expected output file", name)
		}
		tests = append(tests, *t)
	}
	if len(tests) == 0 {
		return nil, apperrors.New(apperrors.PackageInvalid).WithMessage("package declares no tests")
	}
	return tests, nil
}

func withoutUtils(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f == "utils" || strings.HasPrefix(f, "utils/") {
			continue
		}
		out = append(out, f)
	}
	return out
}

func filterPrefix(files []string, prefix string) []string {
	var out []string
	for _, f := range files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out
}

func shortestSourceUnder(files []string, prefixes ...string) (string, bool) {
	var best string
	found := false
	for _, f := range files {
		matched := false
		for _, p := range prefixes {
			if strings.HasPrefix(f, p) {
				matched = true
				break
			}
		}
		if !matched || !isRecognizedSource(f) {
			continue
		}
		if !found || isShorterPath(f, best) {
			best, found = f, true
		}
	}
	return best, found
}

func bestStatement(files []string) (string, bool) {
	var pdf, other string
	foundPdf, foundOther := false, false
	for _, f := range files {
		switch strings.ToLower(path.Ext(f)) {
		case ".pdf":
			if !foundPdf || isShorterPath(f, pdf) {
				pdf, foundPdf = f, true
			}
		case ".md", ".txt":
			if !foundOther || isShorterPath(f, other) {
				other, foundOther = f, true
			}
		}
	}
	if foundPdf {
		return pdf, true
	}
	if foundOther {
		return other, true
	}
	return "", false
}

// isShorterPath breaks ties among equally-eligible candidates: fewer
// path segments first, then shorter string, then lexicographic, so the
// choice never depends on filesystem iteration order.
func isShorterPath(a, b string) bool {
	da, db := strings.Count(a, "/"), strings.Count(b, "/")
	if da != db {
		return da < db
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
