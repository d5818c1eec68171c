// Package deps reports the availability of the external binaries the
// pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"presskit/internal/config"
)

// Requirement defines an external dependency presskit relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external binaries the configured pipeline needs.
// The renderer is optional because encode/posters/stage work on an existing
// build tree without it.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Transcodes renders to WebM and extracts poster frames",
		},
		{
			Name:        "Renderer",
			Command:     cfg.RenderCommand(),
			Description: "Renders animation scenes into theme build directories",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Require verifies a single binary is resolvable on PATH and returns a
// diagnostic error when it is not. Steps call this before any file work so a
// missing transcoder fails the whole invocation up front.
func Require(name, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("%s: command not configured", name)
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%s: binary %q not found on PATH", name, command)
	}
	return nil
}
