package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/datawire/dlib/dexec"
)

// Capability is an optional external tool that some commands need.
type Capability string

const (
	Docutils Capability = "docutils"
	Sphinx   Capability = "sphinx"
	Python   Capability = "python"
	Hg       Capability = "hg"
	Git      Capability = "git"
)

// capabilityPrograms lists, in order of preference, the executables that provide each capability.
var capabilityPrograms = map[Capability][]string{
	Docutils: {"rst2html", "rst2html.py"},
	Sphinx:   {"sphinx-build"},
	Python:   {"python3", "python"},
	Hg:       {"hg"},
	Git:      {"git"},
}

// Capabilities maps each available capability to the executable that provides it.
type Capabilities map[Capability]string

// DetectCapabilities searches $PATH for every known capability.
func DetectCapabilities() Capabilities {
	ret := make(Capabilities)
	for capability, programs := range capabilityPrograms {
		for _, program := range programs {
			if exe, err := dexec.LookPath(program); err == nil {
				ret[capability] = exe
				break
			}
		}
	}
	return ret
}

// Require returns a *MissingCapabilityError for the first of caps that isn't available.
func (c Capabilities) Require(caps ...Capability) error {
	for _, capability := range caps {
		if _, ok := c[capability]; !ok {
			return &MissingCapabilityError{
				Capability: capability,
				Programs:   capabilityPrograms[capability],
			}
		}
	}
	return nil
}

// Executable returns the program that provides a capability, or "" if it isn't available.
func (c Capabilities) Executable(capability Capability) string {
	return c[capability]
}

// Report lists every known capability and the program providing it (or "" if missing).
func (c Capabilities) Report() map[string]string {
	ret := make(map[string]string, len(capabilityPrograms))
	for capability := range capabilityPrograms {
		ret[string(capability)] = c[capability]
	}
	return ret
}

// KnownCapabilities returns every capability name, sorted.
func KnownCapabilities() []Capability {
	ret := make([]Capability, 0, len(capabilityPrograms))
	for capability := range capabilityPrograms {
		ret = append(ret, capability)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

type MissingCapabilityError struct {
	Capability Capability
	Programs   []string
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("%s is not available (looked for %s in $PATH)",
		e.Capability, strings.Join(e.Programs, ", "))
}

func (e *MissingCapabilityError) ExitCode() int { return 1 }
