package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/feichai0017/docprep/pkg/errs"
)

// MergeObligationContents copies everything under src into the flat dest
// folder. Items whose name does not already carry tag get "_<tag>" appended
// to the base name; remaining collisions get "_1", "_2", ... until unique.
// Traversal order decides who keeps the plain name, so the result is
// deterministic. An empty tag merges names unmodified.
func MergeObligationContents(src, dest, tag string) error {
	if err := CheckDir(src); err != nil {
		return err
	}
	if _, err := EnsureFolder(dest); err != nil {
		return err
	}

	entries, err := os.ReadDir(LongPath(src))
	if err != nil {
		return errs.IOFailure("failed to read folder "+src, err)
	}

	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())

		if e.IsDir() {
			// Subfolders are flattened into the same destination.
			if err := MergeObligationContents(srcPath, dest, tag); err != nil {
				return err
			}
			continue
		}

		name := e.Name()
		if tag != "" && !strings.Contains(name, tag) {
			base, ext := splitExt(name)
			name = base + "_" + tag + ext
		}

		destPath := filepath.Join(dest, name)
		for counter := 1; exists(destPath); counter++ {
			base, ext := splitExt(name)
			destPath = filepath.Join(dest, fmt.Sprintf("%s_%d%s", base, counter, ext))
		}

		if _, err := CopyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

func exists(path string) bool {
	_, err := os.Stat(LongPath(path))
	return err == nil
}
