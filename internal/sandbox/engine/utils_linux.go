//go:build linux

package engine

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

func durationFromMs(ms int64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// resolveHostPath maps a path that was meaningful inside the sandbox'd
// root filesystem back to a path the engine (which never chroots itself)
// can read. Without a rootfs the sandbox shares the host's filesystem
// view, so the path needs no translation.
func resolveHostPath(path, rootfs string) string {
	if path == "" || rootfs == "" {
		return path
	}
	return filepath.Join(rootfs, path)
}

func cpuTimeMs(state *os.ProcessState) int64 {
	if state == nil {
		return 0
	}
	return state.UserTime().Milliseconds() + state.SystemTime().Milliseconds()
}

func stdoutSizeKB(path string) int64 {
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size() / 1024
}

// readLimitedFile reads up to maxBytes from path, returning what is
// available even when the file is shorter. It never errors: a missing
// or unreadable output file just means an empty capture.
func readLimitedFile(path string, maxBytes int64) string {
	if path == "" {
		return ""
	}
	if maxBytes <= 0 {
		maxBytes = defaultStdoutStderrMaxBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, maxBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ""
	}
	return string(buf[:n])
}
