//go:build linux

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/security"
	"simjudge/internal/sandbox/spec"
	"simjudge/pkg/logging"

	apperrors "simjudge/pkg/errors"

	"go.uber.org/zap"
)

const (
	defaultStdoutStderrMaxBytes int64 = 64 * 1024
)

type linuxEngine struct {
	cfg       Config
	resolver  ProfileResolver
	registry  map[string][]string
	registryM sync.Mutex
}

// NewEngine creates a Linux sandbox engine.
func NewEngine(cfg Config, resolver ProfileResolver) (Engine, error) {
	if resolver == nil {
		return nil, apperrors.New(apperrors.ConfigInvalid).WithMessage("profile resolver is required")
	}
	if cfg.StdoutStderrMaxBytes <= 0 {
		cfg.StdoutStderrMaxBytes = defaultStdoutStderrMaxBytes
	}
	if cfg.HelperPath == "" {
		cfg.HelperPath = "sandbox-init"
	}
	return &linuxEngine{
		cfg:      cfg,
		resolver: resolver,
		registry: make(map[string][]string),
	}, nil
}

// Run executes runSpec and blocks until it completes or ctx is cancelled.
func (e *linuxEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	handle, err := e.AsyncRun(ctx, runSpec)
	if err != nil {
		return result.RunResult{}, err
	}
	return handle.AwaitResult(ctx)
}

// AsyncRun starts runSpec inside a fresh sandbox and returns immediately
// with a Handle the caller awaits (or kills) independently.
func (e *linuxEngine) AsyncRun(ctx context.Context, runSpec spec.RunSpec) (Handle, error) {
	if err := validateRunSpec(runSpec); err != nil {
		return nil, err
	}

	isoProfile, err := e.resolver.Resolve(runSpec.Profile)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ProfileMissing, "resolve profile %q", runSpec.Profile)
	}
	if e.cfg.SeccompDir != "" && isoProfile.SeccompProfile != "" && !filepath.IsAbs(isoProfile.SeccompProfile) {
		isoProfile.SeccompProfile = filepath.Join(e.cfg.SeccompDir, isoProfile.SeccompProfile)
	}

	cgroupPath := ""
	cgroupCleanup := func() {}
	if e.cfg.EnableCgroup {
		cgroupPath, cgroupCleanup, err = createRunCgroup(e.cfg.CgroupRoot, runSpec.SubmissionID, runSpec.TestID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.SandboxSetupFailed)
		}
		if err := applyCgroupLimits(cgroupPath, runSpec.Limits); err != nil {
			cgroupCleanup()
			return nil, apperrors.Wrap(err, apperrors.SandboxSetupFailed)
		}
		e.registerCgroup(runSpec.SubmissionID, cgroupPath)
	}

	initReq := newInitRequest(runSpec, isoProfile, e.cfg)

	stdinPipe, err := jsonToPipe(initReq)
	if err != nil {
		cgroupCleanup()
		return nil, apperrors.Wrap(err, apperrors.SandboxSetupFailed)
	}

	cmd := exec.Command(e.cfg.HelperPath)
	cmd.SysProcAttr = buildSysProcAttr(isoProfile, e.cfg.EnableNamespaces)
	cmd.Stdin = stdinPipe

	helperStderr := &bytes.Buffer{}
	cmd.Stdout = io.Discard
	cmd.Stderr = helperStderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		stdinPipe.Close()
		if e.cfg.EnableCgroup {
			e.unregisterCgroup(runSpec.SubmissionID, cgroupPath)
			cgroupCleanup()
		}
		return nil, apperrors.Wrap(err, apperrors.SandboxSetupFailed)
	}

	if e.cfg.EnableCgroup {
		if err := addProcessToCgroup(cgroupPath, cmd.Process.Pid); err != nil {
			logging.Warn(ctx, "add process to cgroup failed", zap.String("cgroup", cgroupPath), zap.Error(err))
		}
	}

	h := &processHandle{
		cmd:           cmd,
		runSpec:       runSpec,
		rootfs:        isoProfile.RootFS,
		cgroupPath:    cgroupPath,
		start:         start,
		helperStderr:  helperStderr,
		maxBytes:      e.cfg.StdoutStderrMaxBytes,
		killCh:        make(chan struct{}),
		done:          make(chan struct{}),
		stdinPipeDone: stdinPipe,
	}
	h.onDone = func() {
		if e.cfg.EnableCgroup {
			e.unregisterCgroup(runSpec.SubmissionID, cgroupPath)
			cgroupCleanup()
		}
	}

	go h.supervise()

	return h, nil
}

type processHandle struct {
	cmd           *exec.Cmd
	runSpec       spec.RunSpec
	rootfs        string
	cgroupPath    string
	start         time.Time
	helperStderr  *bytes.Buffer
	maxBytes      int64
	stdinPipeDone io.Closer
	onDone        func()

	timedOut atomic.Bool
	killOnce sync.Once
	killCh   chan struct{}
	done     chan struct{}
	waitErr  error
}

// supervise races the wall-time limit against an explicit Kill() request
// and the process exiting on its own, then records the wait outcome.
func (h *processHandle) supervise() {
	defer close(h.done)
	defer h.stdinPipeDone.Close()
	defer func() {
		if h.onDone != nil {
			h.onDone()
		}
	}()

	waitDone := make(chan struct{})
	go func() {
		h.waitErr = h.cmd.Wait()
		close(waitDone)
	}()

	wallLimit := durationFromMs(h.runSpec.Limits.WallTimeMs)
	var wallTimer <-chan time.Time
	if wallLimit > 0 {
		wallTimer = time.After(wallLimit)
	}

	select {
	case <-waitDone:
	case <-h.killCh:
		h.killProcessGroup()
		<-waitDone
	case <-wallTimer:
		h.timedOut.Store(true)
		h.killProcessGroup()
		<-waitDone
	}
}

// AwaitResult blocks until the process finishes, respecting ctx
// cancellation by killing the process group and still waiting for the
// (now quick) exit so resource accounting stays accurate.
func (h *processHandle) AwaitResult(ctx context.Context) (result.RunResult, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		h.Kill()
		<-h.done
	}

	wallTimeMs := time.Since(h.start).Milliseconds()
	stdoutPath := resolveHostPath(h.runSpec.StdoutPath, h.rootfs)
	stderrPath := resolveHostPath(h.runSpec.StderrPath, h.rootfs)

	timeMs := cpuTimeMs(h.cmd.ProcessState)
	if cgroupMs, ok := cpuTimeUsedMs(h.cgroupPath); ok {
		timeMs = cgroupMs
	}

	runResult := result.RunResult{
		ExitCode:   exitCodeFromErr(h.waitErr, h.cmd.ProcessState),
		SiStatus:   signalStatus(h.cmd.ProcessState, h.timedOut.Load()),
		TimeMs:     timeMs,
		WallTimeMs: wallTimeMs,
		MemoryKB:   memoryPeakKB(h.cgroupPath, h.cmd.ProcessState),
		OutputKB:   stdoutSizeKB(stdoutPath),
		Stdout:     readLimitedFile(stdoutPath, h.maxBytes),
		Stderr:     readLimitedFile(stderrPath, h.maxBytes),
		OomKilled:  wasOomKilled(h.cgroupPath),
	}
	if state := h.cmd.ProcessState; state != nil {
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			runResult.SiCode = int(ws.Signal())
		}
	}

	if h.timedOut.Load() {
		runResult.ExitCode = -1
	}
	if h.helperStderr.Len() > 0 {
		logging.Warn(ctx, "sandbox helper stderr", zap.String("stderr", h.helperStderr.String()))
	}

	return runResult, nil
}

// Kill tears down the process group. Safe to call more than once and
// concurrently with AwaitResult.
func (h *processHandle) Kill() error {
	h.killOnce.Do(func() { close(h.killCh) })
	return nil
}

func (h *processHandle) killProcessGroup() {
	if h.cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-h.cmd.Process.Pid, syscall.SIGKILL)
}

func signalStatus(state *os.ProcessState, timedOut bool) result.SignalStatus {
	if timedOut {
		return result.SiKilled
	}
	if state == nil {
		return result.SiExited
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		if ws.CoreDump() {
			return result.SiDumped
		}
		return result.SiKilled
	}
	return result.SiExited
}

func exitCodeFromErr(err error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (e *linuxEngine) KillSubmission(ctx context.Context, submissionID string) error {
	if submissionID == "" {
		return apperrors.New(apperrors.InvalidParams).WithMessage("submission id is required")
	}
	paths := e.snapshotCgroups(submissionID)
	for _, cgroupPath := range paths {
		if err := killCgroup(cgroupPath); err != nil {
			logging.Warn(ctx, "kill cgroup failed", zap.String("cgroup", cgroupPath), zap.Error(err))
		}
	}
	return nil
}

func (e *linuxEngine) registerCgroup(submissionID, cgroupPath string) {
	e.registryM.Lock()
	defer e.registryM.Unlock()
	e.registry[submissionID] = append(e.registry[submissionID], cgroupPath)
}

func (e *linuxEngine) unregisterCgroup(submissionID, cgroupPath string) {
	e.registryM.Lock()
	defer e.registryM.Unlock()
	paths := e.registry[submissionID]
	if len(paths) == 0 {
		return
	}
	updated := paths[:0]
	for _, p := range paths {
		if p != cgroupPath {
			updated = append(updated, p)
		}
	}
	if len(updated) == 0 {
		delete(e.registry, submissionID)
		return
	}
	e.registry[submissionID] = updated
}

func (e *linuxEngine) snapshotCgroups(submissionID string) []string {
	e.registryM.Lock()
	defer e.registryM.Unlock()
	paths := e.registry[submissionID]
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}

func validateRunSpec(runSpec spec.RunSpec) error {
	if runSpec.SubmissionID == "" {
		return apperrors.New(apperrors.InvalidParams).WithMessage("submission id is required")
	}
	if runSpec.TestID == "" {
		return apperrors.New(apperrors.InvalidParams).WithMessage("test id is required")
	}
	if runSpec.WorkDir == "" {
		return apperrors.New(apperrors.InvalidParams).WithMessage("work dir is required")
	}
	if len(runSpec.Cmd) == 0 {
		return apperrors.New(apperrors.InvalidParams).WithMessage("command is required")
	}
	if runSpec.Profile == "" {
		return apperrors.New(apperrors.ProfileMissing)
	}
	return nil
}

func jsonToPipe(req initRequest) (io.ReadCloser, error) {
	reader, writer := io.Pipe()
	go func() {
		enc := json.NewEncoder(writer)
		err := enc.Encode(req)
		_ = writer.CloseWithError(err)
	}()
	return reader, nil
}

func buildSysProcAttr(profile security.IsolationProfile, enableNamespaces bool) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
	if !enableNamespaces {
		return attr
	}

	cloneFlags := uintptr(syscall.CLONE_NEWNS | syscall.CLONE_NEWPID | syscall.CLONE_NEWUTS | syscall.CLONE_NEWIPC)
	if profile.DisableNetwork {
		cloneFlags |= syscall.CLONE_NEWNET
	}
	cloneFlags |= syscall.CLONE_NEWUSER

	attr.Cloneflags = cloneFlags
	attr.GidMappingsEnableSetgroups = false
	attr.UidMappings = []syscall.SysProcIDMap{{
		ContainerID: 0,
		HostID:      os.Getuid(),
		Size:        1,
	}}
	attr.GidMappings = []syscall.SysProcIDMap{{
		ContainerID: 0,
		HostID:      os.Getgid(),
		Size:        1,
	}}
	return attr
}
