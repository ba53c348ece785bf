package engine

import (
	"simjudge/internal/sandbox/security"
	"simjudge/internal/sandbox/spec"
)

// initRequest is the JSON payload handed to the sandbox-init helper over
// a pipe; its field names and shapes must stay in lockstep with the
// mirrored structs cmd/sandbox-init/main.go decodes into.
type initRequest struct {
	RunSpec       spec.RunSpec
	Isolation     security.IsolationProfile
	EnableSeccomp bool
	EnableNs      bool
}

func newInitRequest(runSpec spec.RunSpec, isoProfile security.IsolationProfile, cfg Config) initRequest {
	return initRequest{
		RunSpec:       runSpec,
		Isolation:     isoProfile,
		EnableSeccomp: cfg.EnableSeccomp,
		EnableNs:      cfg.EnableNamespaces,
	}
}
