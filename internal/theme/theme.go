// Package theme models the theme tags that partition every pipeline artifact
// and resolves theme build roots across renderer directory conventions.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrRootNotFound marks a theme whose build directory cannot be located under
// any known renderer layout. Callers log and skip the theme rather than abort.
var ErrRootNotFound = errors.New("theme root not found")

// Parse normalizes the theme arguments against the configured set. An empty
// argument list selects every configured theme; unknown names are rejected.
func Parse(args []string, configured []string) ([]string, error) {
	if len(configured) == 0 {
		return nil, errors.New("no themes configured")
	}
	if len(args) == 0 {
		return append([]string(nil), configured...), nil
	}

	known := make(map[string]struct{}, len(configured))
	for _, theme := range configured {
		known[theme] = struct{}{}
	}

	selected := make([]string, 0, len(args))
	seen := map[string]struct{}{}
	for _, arg := range args {
		name := strings.ToLower(strings.TrimSpace(arg))
		if name == "" {
			continue
		}
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown theme %q (configured: %s)", arg, strings.Join(configured, ", "))
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, name)
	}
	if len(selected) == 0 {
		return nil, errors.New("no themes selected")
	}
	return selected, nil
}

// rootCandidates lists known build-tree layouts relative to the build
// directory, in probe order. Older renderer releases write straight into the
// theme directory; newer ones nest a media/videos tree.
func rootCandidates(theme string) []string {
	return []string{
		filepath.Join("manim", theme),
		filepath.Join("manim", theme, "media", "videos"),
		filepath.Join("media", "videos", theme),
	}
}

// ResolveRoot probes the candidate layouts under buildDir and returns the
// first existing directory for the theme. A miss returns ErrRootNotFound.
func ResolveRoot(buildDir, theme string) (string, error) {
	for _, candidate := range rootCandidates(theme) {
		path := filepath.Join(buildDir, candidate)
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: theme %q under %s", ErrRootNotFound, theme, buildDir)
}

// RenderDir returns the directory the renderer writes into for a theme. This
// is always the primary layout; ResolveRoot covers the alternates when
// reading back.
func RenderDir(buildDir, theme string) string {
	return filepath.Join(buildDir, "manim", theme)
}

// PosterName builds the shared-directory poster filename for a scene. The
// theme suffix is the only thing keeping parallel themes apart there.
func PosterName(scene, theme string) string {
	return fmt.Sprintf("%s-%s.jpg", scene, theme)
}
