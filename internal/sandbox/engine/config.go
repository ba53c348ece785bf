package engine

import "simjudge/internal/sandbox/security"

// ProfileResolver resolves a profile name into an isolation profile.
type ProfileResolver interface {
	Resolve(profile string) (security.IsolationProfile, error)
}

// Config controls sandbox engine behavior shared by every task the
// engine runs; per-task-type overrides (compile vs. run vs. checker
// limits) live one layer up, in the judge.Worker's profile.TaskProfile
// list, and are folded into each RunSpec.Limits before it reaches here.
type Config struct {
	CgroupRoot           string
	SeccompDir           string
	HelperPath           string
	StdoutStderrMaxBytes int64
	EnableSeccomp        bool
	EnableCgroup         bool
	EnableNamespaces     bool
}
