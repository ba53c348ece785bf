// Package spec defines the execution specification and resource limits
// passed down to the sandbox engine and its exec helper.
package spec

// ResourceLimit describes hard limits enforced by the sandbox.
type ResourceLimit struct {
	CPUTimeMs  int64
	WallTimeMs int64
	MemoryMB   int64
	StackMB    int64
	OutputMB   int64
	PIDs       int64
}

// MountSpec describes a bind mount inside the sandbox.
type MountSpec struct {
	Source   string
	Target   string
	ReadOnly bool
}

// RunSpec is the unified execution specification for one task: one
// compile, one test run, one checker invocation, or one interactor leg.
// SubmissionID and TestID namespace the cgroup hierarchy and let
// KillSubmission find every process belonging to a submission.
type RunSpec struct {
	SubmissionID string
	TestID       string

	WorkDir    string
	Cmd        []string
	Env        []string
	StdinPath  string
	StdoutPath string
	StderrPath string
	BindMounts []MountSpec
	Profile    string
	Limits     ResourceLimit

	// TaskType mirrors profile.TaskType (duplicated here rather than
	// imported, since profile already imports spec) and is passed through
	// to the exec helper as JUDGE_TASK_TYPE so a checker binary invoked
	// both as a batch checker and as an interactor can tell which mode
	// it is running in without a command-line flag.
	TaskType string
}
