// Package security describes the isolation profiles the sandbox engine
// applies before handing control to the exec helper.
package security

// IsolationProfile names the rootfs, seccomp filter, and network posture
// a RunSpec's Profile resolves to.
type IsolationProfile struct {
	Name           string
	RootFS         string
	SeccompProfile string
	DisableNetwork bool
}
