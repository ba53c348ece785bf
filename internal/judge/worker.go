package judge

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	defaultchecker "simjudge/internal/checker/default"
	"simjudge/internal/compilecache"
	"simjudge/internal/conver"
	"simjudge/internal/language"
	"simjudge/internal/pkgloader"
	pkgdir "simjudge/internal/pkgloader/dir"
	pkgzip "simjudge/internal/pkgloader/zip"
	"simjudge/internal/runner"
	"simjudge/internal/sandbox"
	"simjudge/internal/sandbox/engine"
	"simjudge/internal/sandbox/observer"
	"simjudge/internal/sandbox/profile"
	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/spec"
	"simjudge/internal/scoring"
	"simjudge/internal/simfile"

	"simjudge/pkg/logging"

	apperrors "simjudge/pkg/errors"
)

// Worker ties every subsystem together: package loading, normalization
// (including a model-solution calibration pass when time limits aren't
// already fixed), compilation (cached), per-test execution via the
// batch or interactive protocol, and score aggregation. It mirrors the
// teacher's sandbox Worker.Execute control flow, generalized from a
// fixed HTTP-service request shape to the judge core's own
// EvalRequest/JudgeReport types.
type Worker struct {
	Engine     engine.Engine
	Languages  *language.Registry
	Cache      compilecache.Cache
	ScratchDir string

	// CheckerProfile and InteractorProfile name the sandbox isolation
	// profiles that checker and interactor binaries run under; they are
	// typically looser than a submission's run profile since the
	// package author, not the contestant, supplies that code.
	CheckerProfile    string
	InteractorProfile string

	DefaultCheckerLimits spec.ResourceLimit

	// TaskProfiles optionally overrides compile/checker resource limits
	// per language, looked up by (LanguageID, TaskType) before falling
	// back to DefaultCheckerLimits or this file's own hardcoded compile
	// defaults. Most deployments leave this empty and rely on the
	// fallbacks; it exists for the judge core that wants, say, a Rust
	// submission's compile step to get a longer CPU allowance than a C
	// one without touching the shared defaults.
	TaskProfiles []profile.TaskProfile

	OutputLimitMB int64
	StackMB       int64
	PIDs          int64

	// StatusReporter, if set, receives intermediate progress updates as
	// tests complete, for a caller (e.g. a future queue consumer) that
	// wants to surface "N/M tests done" without polling.
	StatusReporter sandbox.StatusReporter
	// Metrics, if set, observes compile and run outcomes independently
	// of the returned JudgeReport, for a caller wiring up aggregate
	// dashboards rather than per-submission detail.
	Metrics observer.MetricsRecorder
}

// Evaluate runs a full judge workflow for one submission against one
// problem package: load, normalize (calibrating against the model
// solution first if the package leaves time limits implicit), compile,
// run every test, and score.
func (w *Worker) Evaluate(ctx context.Context, req EvalRequest) (JudgeReport, error) {
	report := JudgeReport{SubmissionID: req.SubmissionID, ReceivedAt: time.Now()}
	defer func() { report.FinishedAt = time.Now() }()

	if err := validateEvalRequest(req); err != nil {
		return report, err
	}

	w.reportLifecycle(ctx, req, result.StatusPending)

	suite, err := w.resolveLanguage(req)
	if err != nil {
		w.reportLifecycle(ctx, req, result.StatusFailed)
		return report, err
	}

	submissionRoot := filepath.Join(req.WorkRoot, req.SubmissionID)
	if err := os.MkdirAll(submissionRoot, 0755); err != nil {
		w.reportLifecycle(ctx, req, result.StatusFailed)
		return report, apperrors.Wrap(err, apperrors.IOError)
	}
	defer os.RemoveAll(submissionRoot)

	loader, err := openPackage(req.PackagePath, submissionRoot)
	if err != nil {
		w.reportLifecycle(ctx, req, result.StatusFailed)
		return report, err
	}
	defer loader.Close()

	sf, err := w.normalize(ctx, loader, submissionRoot, req.ConverOptions)
	if err != nil {
		report.Verdict = VerdictJudgeError
		w.reportLifecycle(ctx, req, result.StatusFailed)
		return report, err
	}

	binaryPath, compileLog, err := w.compileSubmission(ctx, req, suite, submissionRoot)
	report.CompileLog = compileLog
	if w.Metrics != nil {
		w.Metrics.ObserveCompile(ctx, suite.Spec.ID, err == nil, 0, 0)
	}
	if err != nil {
		report.Verdict = VerdictCompileError
		w.reportLifecycle(ctx, req, result.StatusFinished)
		return report, nil
	}
	report.CompileOK = true

	checkerPath, err := w.ensureChecker(ctx, sf, loader, submissionRoot)
	if err != nil {
		report.Verdict = VerdictJudgeError
		w.reportLifecycle(ctx, req, result.StatusFailed)
		return report, err
	}

	groupReports, err := w.evaluateGroups(ctx, req, sf, suite, binaryPath, checkerPath, submissionRoot)
	if err != nil {
		report.Verdict = VerdictJudgeError
		w.reportLifecycle(ctx, req, result.StatusFailed)
		return report, err
	}

	report.Groups = groupReports
	report.JudgeLog = buildJudgeLog(groupReports)
	report.Score, report.MaxScore = scoring.Aggregate(sf.Groups, reportsByID(groupReports))
	for _, gr := range groupReports {
		for _, tr := range gr.Tests {
			if !tr.Run {
				continue
			}
			report.TotalTimeMs += tr.Result.RuntimeMs
			if tr.Result.MemoryUsedKB > report.MaxMemoryKB {
				report.MaxMemoryKB = tr.Result.MemoryUsedKB
			}
		}
	}
	report.Verdict = deriveVerdict(report.Score, report.MaxScore, groupReports)
	w.reportLifecycle(ctx, req, result.StatusFinished)

	return report, nil
}

// normalize runs Conver against the package and, when it reports that
// time limits still need calibrating, judges the model solution itself
// through the same group/test machinery to measure real runtimes, then
// asks Conver to fold those runtimes back into fixed per-test limits.
func (w *Worker) normalize(ctx context.Context, loader pkgloader.Loader, submissionRoot string, opts conver.Options) (*simfile.Simfile, error) {
	result, err := conver.Normalize(loader, opts)
	if err != nil {
		return nil, err
	}
	if result.Status == conver.StatusComplete {
		return result.Simfile, nil
	}

	modelPath := result.Simfile.Solutions[0]
	modelSuite, err := w.Languages.Resolve(modelPath)
	if err != nil {
		return nil, err
	}
	modelBin, _, err := w.compileAuxSolution(ctx, modelSuite, loader, modelPath, submissionRoot)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ConversionFailed, "compile model solution for time-limit calibration")
	}
	checkerPath, err := w.ensureChecker(ctx, result.Simfile, loader, submissionRoot)
	if err != nil {
		return nil, err
	}

	var initial, final []conver.TestRuntime
	for _, g := range result.Simfile.Groups {
		for _, t := range g.Tests {
			tr, err := w.probeOneTest(ctx, "model-probe", submissionRoot, modelBin, checkerPath, modelSuite, result.Simfile.Interactive, t)
			if err != nil {
				return nil, err
			}
			rt := conver.TestRuntime{Name: t.Name, Status: string(tr.Status), RuntimeMs: tr.RuntimeMs}
			if g.ID == simfile.InitialGroupID {
				initial = append(initial, rt)
			} else {
				final = append(final, rt)
			}
		}
	}

	if err := conver.ResetTimeLimitsUsingJudgeReports(result.Simfile, initial, final, opts.RTLOpts); err != nil {
		return nil, err
	}
	return result.Simfile, nil
}

// probeOneTest runs the model solution once, outside the scoring
// pipeline, purely to measure its runtime for calibration; a checker
// verdict of WA is acceptable evidence (a model solution may legitimately
// differ on a test the author hasn't annotated yet), anything else is
// reported back to the caller to decide whether calibration can proceed.
func (w *Worker) probeOneTest(ctx context.Context, submissionID, submissionRoot, binaryPath, checkerPath string, suite language.Suite, interactive bool, test simfile.Test) (runner.TestResult, error) {
	testDir := filepath.Join(submissionRoot, "probe", test.Name)
	if err := os.MkdirAll(testDir, 0755); err != nil {
		return runner.TestResult{}, apperrors.Wrap(err, apperrors.IOError)
	}
	if interactive {
		interactiveRunner := runner.Interactive{Engine: w.Engine}
		return interactiveRunner.TestOnTest(ctx, runner.InteractiveParams{
			SubmissionID:  submissionID,
			WorkDir:       testDir,
			BinaryPath:    binaryPath,
			Suite:         suite,
			InteractorBin: checkerPath,
			OutputLimitMB: w.outputLimitMB(),
			StackMB:       w.StackMB,
			PIDs:          w.pids(),
			InteractorLim: w.checkerLimits(),
		}, test)
	}
	batch := runner.Batch{
		Engine: w.Engine,
		Checker: runner.BatchCheckerInvoker{
			Engine:     w.Engine,
			BinaryPath: checkerPath,
			Profile:    w.CheckerProfile,
			WorkDir:    filepath.Join(testDir, "checker"),
			Limits:     w.checkerLimits(),
		},
	}
	return batch.TestOnTest(ctx, runner.BatchParams{
		SubmissionID:  submissionID,
		WorkDir:       testDir,
		BinaryPath:    binaryPath,
		Suite:         suite,
		OutputLimitMB: w.outputLimitMB(),
		StackMB:       w.StackMB,
		PIDs:          w.pids(),
	}, test)
}

// evaluateGroups runs every group's tests in declaration order and
// returns their reports, streaming partial (skip-and-resume) reports
// and progress updates as it goes.
func (w *Worker) evaluateGroups(ctx context.Context, req EvalRequest, sf *simfile.Simfile, suite language.Suite, binaryPath, checkerPath, submissionRoot string) ([]scoring.GroupReport, error) {
	batch := runner.Batch{
		Engine: w.Engine,
		Checker: runner.BatchCheckerInvoker{
			Engine:     w.Engine,
			BinaryPath: checkerPath,
			Profile:    w.CheckerProfile,
			WorkDir:    filepath.Join(submissionRoot, "checker"),
			Limits:     w.checkerLimits(),
		},
	}
	interactive := runner.Interactive{Engine: w.Engine}

	totalTests := 0
	for _, g := range sf.Groups {
		totalTests += len(g.Tests)
	}
	doneTests := 0

	var groupReports []scoring.GroupReport
	for _, group := range sf.Groups {
		groupID := group.ID
		gr, err := scoring.EvaluateGroup(ctx, group, scoring.RunnerFunc(func(ctx context.Context, test simfile.Test) (runner.TestResult, error) {
			return w.runOneTest(ctx, req.SubmissionID, submissionRoot, binaryPath, checkerPath, suite, sf.Interactive, batch, interactive, test)
		}), func(partial scoring.GroupReport) {
			if req.OnPartialGroup != nil {
				req.OnPartialGroup(partial)
			}
		})
		if err != nil {
			return nil, err
		}
		for _, tr := range gr.Tests {
			if !tr.Run {
				continue
			}
			logTestResult(ctx, req.SubmissionID, groupID, tr.Result)
			if w.Metrics != nil {
				w.Metrics.ObserveRun(ctx, suite.Spec.ID, string(tr.Result.Status), tr.Result.RuntimeMs, tr.Result.MemoryUsedKB, tr.Result.Run.OutputKB)
			}
			doneTests++
			w.reportStatus(ctx, req, totalTests, doneTests)
			if req.OnTestDone != nil {
				req.OnTestDone(doneTests, totalTests)
			}
		}
		groupReports = append(groupReports, gr)
	}
	return groupReports, nil
}

func (w *Worker) runOneTest(ctx context.Context, submissionID, submissionRoot, binaryPath, checkerPath string, suite language.Suite, interactive bool, batch runner.Batch, interactiveRunner runner.Interactive, test simfile.Test) (runner.TestResult, error) {
	testDir := filepath.Join(submissionRoot, "tests", test.Name)
	if err := os.MkdirAll(testDir, 0755); err != nil {
		return runner.TestResult{}, apperrors.Wrap(err, apperrors.IOError)
	}

	if interactive {
		return interactiveRunner.TestOnTest(ctx, runner.InteractiveParams{
			SubmissionID:  submissionID,
			WorkDir:       testDir,
			BinaryPath:    binaryPath,
			Suite:         suite,
			InteractorBin: checkerPath,
			OutputLimitMB: w.outputLimitMB(),
			StackMB:       w.StackMB,
			PIDs:          w.pids(),
			InteractorLim: w.checkerLimits(),
		}, test)
	}

	return batch.TestOnTest(ctx, runner.BatchParams{
		SubmissionID:  submissionID,
		WorkDir:       testDir,
		BinaryPath:    binaryPath,
		Suite:         suite,
		OutputLimitMB: w.outputLimitMB(),
		StackMB:       w.StackMB,
		PIDs:          w.pids(),
	}, test)
}

func (w *Worker) outputLimitMB() int64 {
	if w.OutputLimitMB > 0 {
		return w.OutputLimitMB
	}
	return 256
}

func (w *Worker) pids() int64 {
	if w.PIDs > 0 {
		return w.PIDs
	}
	return 32
}

func (w *Worker) reportStatus(ctx context.Context, req EvalRequest, totalTests, doneTests int) {
	if w.StatusReporter == nil {
		return
	}
	_ = w.StatusReporter.ReportStatus(ctx, sandbox.StatusUpdate{
		SubmissionID: req.SubmissionID,
		Status:       result.StatusRunning,
		Language:     req.LanguageID,
		TotalTests:   totalTests,
		DoneTests:    doneTests,
		ReceivedAt:   time.Now().Unix(),
	})
}

// reportLifecycle pushes a bare Pending/Finished/Failed transition with
// no test-progress counters, bookending the per-test Running updates
// reportStatus sends while evaluateGroups is running.
func (w *Worker) reportLifecycle(ctx context.Context, req EvalRequest, status result.JudgeStatus) {
	if w.StatusReporter == nil {
		return
	}
	update := sandbox.StatusUpdate{
		SubmissionID: req.SubmissionID,
		Status:       status,
		Language:     req.LanguageID,
	}
	now := time.Now().Unix()
	if update.Done() {
		update.FinishedAt = now
	} else {
		update.ReceivedAt = now
	}
	_ = w.StatusReporter.ReportStatus(ctx, update)
}

func (w *Worker) checkerLimits() spec.ResourceLimit {
	if limits, ok := w.taskProfileLimits("", profile.TaskTypeChecker); ok {
		return limits
	}
	if w.DefaultCheckerLimits.CPUTimeMs > 0 {
		return w.DefaultCheckerLimits
	}
	return spec.ResourceLimit{CPUTimeMs: 10000, WallTimeMs: 20000, MemoryMB: 512, OutputMB: 64, PIDs: 16}
}

// taskProfileLimits looks up a (languageID, taskType) override from
// TaskProfiles; languageID == "" matches a profile entry declared for
// every language (an empty LanguageID field), used for task types like
// the checker that don't vary by the contestant's own language.
func (w *Worker) taskProfileLimits(languageID string, taskType profile.TaskType) (spec.ResourceLimit, bool) {
	p, ok := profile.Lookup(w.TaskProfiles, languageID, taskType)
	if !ok {
		return spec.ResourceLimit{}, false
	}
	return p.DefaultLimits, true
}

func (w *Worker) resolveLanguage(req EvalRequest) (language.Suite, error) {
	if req.LanguageID != "" {
		return w.Languages.ByID(req.LanguageID)
	}
	return w.Languages.Resolve(req.SourcePath)
}

func (w *Worker) compileSubmission(ctx context.Context, req EvalRequest, suite language.Suite, submissionRoot string) (string, string, error) {
	compileDir := filepath.Join(submissionRoot, "compile")
	if err := os.MkdirAll(compileDir, 0755); err != nil {
		return "", "", apperrors.Wrap(err, apperrors.IOError)
	}

	srcPath := filepath.Join(compileDir, suite.Spec.SourceFileName)
	if err := pkgloader.CopyFile(req.SourcePath, srcPath); err != nil {
		return "", "", err
	}

	if !suite.Spec.CompileEnabled {
		return srcPath, "", nil
	}

	binPath := filepath.Join(compileDir, suite.Spec.BinaryFileName)
	cmd, err := suite.BuildCompileCmd(srcPath, binPath)
	if err != nil {
		return "", "", err
	}
	cmd = append(cmd, req.ExtraCompileFlags...)

	compileLimits := spec.ResourceLimit{CPUTimeMs: 20000, WallTimeMs: 30000, MemoryMB: 1024, OutputMB: 16, PIDs: 32}
	if override, ok := w.taskProfileLimits(suite.Spec.ID, profile.TaskTypeCompile); ok {
		compileLimits = override
	}

	key := contentKey(req.SubmissionID, suite.Spec.ID)
	var compileLog string
	artifact, err := w.Cache.GetOrInsert(ctx, key, 0, func(ctx context.Context) (string, error) {
		runSpec := spec.RunSpec{
			SubmissionID: req.SubmissionID,
			TestID:       "compile",
			WorkDir:      compileDir,
			Cmd:          cmd,
			Profile:      suite.Spec.CompileProfile,
			Limits:       compileLimits,
			TaskType:     string(profile.TaskTypeCompile),
		}
		run, runErr := w.Engine.Run(ctx, runSpec)
		if runErr != nil {
			return "", apperrors.Wrap(runErr, apperrors.CompilationError)
		}
		compileLog = truncateLog(run.Stdout + run.Stderr)
		if run.ExitCode != 0 {
			return "", apperrors.Newf(apperrors.CompilationError, "compile exited %d", run.ExitCode)
		}
		return binPath, nil
	})
	if err != nil {
		return "", compileLog, err
	}
	return artifact, compileLog, nil
}

// compileAuxSolution compiles a package-supplied reference solution (the
// model solution, during calibration) the same way a submission is
// compiled, but keyed by its own content rather than a submission id so
// repeated calibration runs across packages reuse the same cache entry.
func (w *Worker) compileAuxSolution(ctx context.Context, suite language.Suite, loader pkgloader.Loader, relPath, submissionRoot string) (string, string, error) {
	srcPath, err := loader.LoadAsFile(relPath)
	if err != nil {
		return "", "", err
	}
	if !suite.Spec.CompileEnabled {
		return srcPath, "", nil
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", "", apperrors.Wrap(err, apperrors.IOError)
	}
	sum := sha256.Sum256(data)
	key := fmt.Sprintf("model-solution-%x", sum[:8])

	var compileLog string
	artifact, err := w.Cache.GetOrInsert(ctx, key, 0, func(ctx context.Context) (string, error) {
		buildDir := filepath.Join(submissionRoot, "model-build")
		if err := os.MkdirAll(buildDir, 0755); err != nil {
			return "", apperrors.Wrap(err, apperrors.IOError)
		}
		stagedSrc := filepath.Join(buildDir, suite.Spec.SourceFileName)
		if err := pkgloader.CopyFile(srcPath, stagedSrc); err != nil {
			return "", err
		}
		binPath := filepath.Join(buildDir, suite.Spec.BinaryFileName)
		cmd, err := suite.BuildCompileCmd(stagedSrc, binPath)
		if err != nil {
			return "", err
		}
		runSpec := spec.RunSpec{
			SubmissionID: "model-solution",
			TestID:       "compile",
			WorkDir:      buildDir,
			Cmd:          cmd,
			Profile:      suite.Spec.CompileProfile,
			Limits:       spec.ResourceLimit{CPUTimeMs: 20000, WallTimeMs: 30000, MemoryMB: 1024, OutputMB: 16, PIDs: 32},
			TaskType:     string(profile.TaskTypeCompile),
		}
		run, runErr := w.Engine.Run(ctx, runSpec)
		if runErr != nil {
			return "", apperrors.Wrap(runErr, apperrors.CompilationError)
		}
		compileLog = truncateLog(run.Stdout + run.Stderr)
		if run.ExitCode != 0 {
			return "", apperrors.Newf(apperrors.CompilationError, "model solution compile exited %d", run.ExitCode)
		}
		return binPath, nil
	})
	return artifact, compileLog, err
}

func (w *Worker) ensureChecker(ctx context.Context, sf *simfile.Simfile, loader pkgloader.Loader, submissionRoot string) (string, error) {
	if sf.Checker == "" {
		return defaultchecker.Ensure(ctx, w.Cache, filepath.Join(w.ScratchDir, "default-checker"))
	}
	return w.compileAuxBinary(ctx, "checker", sf.Checker, loader, submissionRoot)
}

// compileAuxBinary compiles a package-supplied checker or interactor
// source file with a direct g++ invocation: these binaries run as
// trusted package-author code, outside the contestant sandbox, so they
// don't need the engine's isolation and are compiled the same way
// defaultchecker compiles its own source.
func (w *Worker) compileAuxBinary(ctx context.Context, kind, relPath string, loader pkgloader.Loader, submissionRoot string) (string, error) {
	srcPath, err := loader.LoadAsFile(relPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.IOError)
	}
	sum := sha256.Sum256(data)
	key := fmt.Sprintf("%s-%x", kind, sum[:8])

	return w.Cache.GetOrInsert(ctx, key, 0, func(ctx context.Context) (string, error) {
		buildDir := filepath.Join(submissionRoot, kind+"-build")
		if err := os.MkdirAll(buildDir, 0755); err != nil {
			return "", apperrors.Wrap(err, apperrors.IOError)
		}
		stagedSrc := filepath.Join(buildDir, kind+".cpp")
		if err := pkgloader.CopyFile(srcPath, stagedSrc); err != nil {
			return "", err
		}
		binPath := filepath.Join(buildDir, kind)
		return compileWithGpp(ctx, stagedSrc, binPath)
	})
}

// compileWithGpp builds a checker or interactor source file directly on
// the host, the same way defaultchecker builds its embedded source:
// this code comes from the package author, not the contestant, so it
// runs outside the sandbox engine entirely.
func compileWithGpp(ctx context.Context, srcPath, binPath string) (string, error) {
	out, err := exec.CommandContext(ctx, "g++", "-O2", "-std=c++17", "-static", "-o", binPath, srcPath).CombinedOutput()
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.CompilationError, "build %s: %s", filepath.Base(srcPath), string(out))
	}
	return binPath, nil
}

func validateEvalRequest(req EvalRequest) error {
	if req.SubmissionID == "" {
		return apperrors.ValidationError("submission_id", "required")
	}
	if req.PackagePath == "" {
		return apperrors.ValidationError("package_path", "required")
	}
	if req.SourcePath == "" {
		return apperrors.ValidationError("source_path", "required")
	}
	if req.WorkRoot == "" {
		return apperrors.ValidationError("work_root", "required")
	}
	return nil
}

func openPackage(packagePath, submissionRoot string) (pkgloader.Loader, error) {
	if strings.EqualFold(filepath.Ext(packagePath), ".zip") {
		return pkgzip.Open(packagePath, filepath.Join(submissionRoot, "pkg"))
	}
	return pkgdir.Open(packagePath)
}

func contentKey(submissionID, languageID string) string {
	sum := sha256.Sum256([]byte(submissionID + "|" + languageID))
	return fmt.Sprintf("submission-%x", sum[:8])
}

const maxCompileLogLen = 16 * 1024

func truncateLog(s string) string {
	if len(s) <= maxCompileLogLen {
		return s
	}
	return s[:maxCompileLogLen]
}

func reportsByID(groups []scoring.GroupReport) map[string]scoring.GroupReport {
	m := make(map[string]scoring.GroupReport, len(groups))
	for _, g := range groups {
		m[g.GroupID] = g
	}
	return m
}

// deriveVerdict summarizes a full set of group reports into one overall
// Verdict: full score is AC, any points at all is PARTIAL, otherwise the
// first non-OK test status across every group, in report order, names
// what went wrong.
func deriveVerdict(score, maxScore int, groups []scoring.GroupReport) Verdict {
	if maxScore > 0 && score >= maxScore {
		return VerdictAccepted
	}
	if score > 0 {
		return VerdictPartial
	}
	for _, g := range groups {
		for _, tr := range g.Tests {
			if v := mapStatus(tr.Result.Status); v != VerdictAccepted && v != "" {
				return v
			}
		}
	}
	return VerdictWrongAnswer
}

func mapStatus(s runner.Status) Verdict {
	switch s {
	case runner.StatusOK:
		return VerdictAccepted
	case runner.StatusWA:
		return VerdictWrongAnswer
	case runner.StatusTLE:
		return VerdictTimeLimitExceeded
	case runner.StatusMLE:
		return VerdictMemoryLimitExceeded
	case runner.StatusOLE:
		return VerdictOutputLimitExceeded
	case runner.StatusRTE:
		return VerdictRuntimeError
	case runner.StatusCheckerError:
		return VerdictCheckerError
	default:
		return ""
	}
}

func logTestResult(ctx context.Context, submissionID, groupID string, tr runner.TestResult) {
	logging.Info(ctx, "test evaluated",
		zap.String("submission_id", submissionID),
		zap.String("group_id", groupID),
		zap.String("test_name", tr.TestName),
		zap.String("status", string(tr.Status)),
		zap.Int64("runtime_ms", tr.RuntimeMs),
		zap.Int64("memory_used_kb", tr.MemoryUsedKB),
		zap.Float64("score_fraction", tr.ScoreFraction),
		zap.String("signal", signalDescription(tr.Run)),
	)
}

// signalDescription normalizes a RunResult's exit classification into a
// short human-readable string, collapsing "killed and dumped by signal
// N" into "killed by signal N" per §6 so the per-test log entry stays
// deterministic regardless of whether the kernel happened to produce a
// core dump.
func signalDescription(run result.RunResult) string {
	switch run.SiStatus {
	case result.SiKilled, result.SiDumped:
		return fmt.Sprintf("killed by signal %d", run.SiCode)
	case result.SiExited:
		return fmt.Sprintf("exited(%d)", run.ExitCode)
	default:
		return "unknown"
	}
}
