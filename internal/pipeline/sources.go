package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// PartialDirName is the renderer's intermediate-clip directory. Anything
// under it is a partial movie file, never a finished render.
const PartialDirName = "partial_movie_files"

// TempPrefix marks an in-progress artifact. Steps write through a
// TempPath sibling and rename into place on success, so anything still
// carrying the prefix is a leftover from an interrupted run and must
// never be treated as a finished artifact.
const TempPrefix = ".tmp-"

// TempPath returns the in-progress sibling for an output path. The real
// extension is kept so tools that infer the container format from the
// output name still work.
func TempPath(output string) string {
	return filepath.Join(filepath.Dir(output), TempPrefix+filepath.Base(output))
}

// IsTempName reports whether a base name carries the in-progress prefix.
func IsTempName(name string) bool {
	return strings.HasPrefix(name, TempPrefix)
}

// Source is one finished render discovered under a theme root.
type Source struct {
	// Path is the absolute location of the render.
	Path string
	// Rel is the path relative to the theme root, kept when staging.
	Rel string
	// Scene is the base name without extension.
	Scene string
}

// FindSources walks root for files with the given extension, skipping the
// renderer's partial-clip subtrees and in-progress temp files. Results come
// back in walk order, which is lexical and therefore stable across runs.
func FindSources(root, ext string) ([]Source, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var sources []Source
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == PartialDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if IsTempName(entry.Name()) {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := entry.Name()
		sources = append(sources, Source{
			Path:  path,
			Rel:   rel,
			Scene: strings.TrimSuffix(name, filepath.Ext(name)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}
