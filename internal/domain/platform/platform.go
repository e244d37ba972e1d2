package platform

import (
	"fmt"
	"strings"
)

// OS is an operating system a release archive is built for.
type OS string

// CPU is a processor architecture a release archive is built for.
type CPU string

const (
	// Linux targets.
	Linux OS = "linux"
	// MacOS targets.
	MacOS OS = "macos"
	// Windows targets.
	Windows OS = "windows"
)

const (
	// X86_64 is the 64-bit x86 architecture.
	X86_64 CPU = "x86_64" //nolint:revive,stylecheck // Mirrors the manifest value.
	// Aarch64 is the 64-bit ARM architecture.
	Aarch64 CPU = "aarch64"
)

// osAliases maps accepted spellings onto canonical operating systems.
//
//nolint:gochecknoglobals // Read-only lookup table.
var osAliases = map[string]OS{
	"linux":   Linux,
	"macos":   MacOS,
	"darwin":  MacOS,
	"windows": Windows,
}

// cpuAliases maps accepted spellings onto canonical architectures.
//
//nolint:gochecknoglobals // Read-only lookup table.
var cpuAliases = map[string]CPU{
	"x86_64":  X86_64,
	"amd64":   X86_64,
	"aarch64": Aarch64,
	"arm64":   Aarch64,
}

// OperatingSystems lists every supported OS in a stable order.
func OperatingSystems() []OS {
	return []OS{Linux, MacOS, Windows}
}

// ParseOS returns the canonical OS for s.
func ParseOS(s string) (OS, bool) {
	os, ok := osAliases[strings.ToLower(strings.TrimSpace(s))]
	return os, ok
}

// ParseCPU returns the canonical CPU for s.
func ParseCPU(s string) (CPU, bool) {
	cpu, ok := cpuAliases[strings.ToLower(strings.TrimSpace(s))]
	return cpu, ok
}

// Target is one (os, cpu) pair together with the files shipped for it.
// It is not modified after the parser builds it.
type Target struct {
	// OS is the operating system of the target.
	OS OS
	// CPU is the processor architecture of the target.
	CPU CPU
	// Paths are the resolved files, in configuration order.
	Paths []string
}

// Key returns the "<os>-<cpu>" identifier of the target.
func (t Target) Key() string {
	return Key(t.OS, t.CPU)
}

// Key formats an "<os>-<cpu>" identifier.
func Key(os OS, cpu CPU) string {
	return fmt.Sprintf("%s-%s", os, cpu)
}
