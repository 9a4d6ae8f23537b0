// Package fsops locates and re-homes the files of a bankruptcy case folder:
// the claim document, the dossier and the obligation folders. All lookups
// enforce an exactly-one-match invariant; ambiguity is never silently
// resolved.
package fsops

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/feichai0017/docprep/pkg/errs"
)

const (
	// ClaimDocPrefix is the fixed filename prefix of the claim document.
	ClaimDocPrefix = "Заявление на включение требований"
	// ReservedFolder is never treated as an obligation folder.
	ReservedFolder = "Документы о банкротстве"
)

// LongPath normalizes a path for OS calls that may exceed platform limits.
// On Windows absolute paths get the extended-length prefix; elsewhere the
// path is returned cleaned.
func LongPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if runtime.GOOS == "windows" && !strings.HasPrefix(abs, `\\?\`) {
		return `\\?\` + abs
	}
	return abs
}

// CheckDir fails with NotFound unless path exists and is a directory.
func CheckDir(path string) error {
	info, err := os.Stat(LongPath(path))
	if err != nil {
		return errs.NotFound("folder %q does not exist", path)
	}
	if !info.IsDir() {
		return errs.NotFound("path %q is not a folder", path)
	}
	return nil
}

// FindClaimDoc returns the single .docx claim document inside folder.
// Only the folder itself is searched, never subfolders.
func FindClaimDoc(folder string) (string, error) {
	return findSingleFile(folder, func(name string) bool {
		return strings.HasPrefix(name, ClaimDocPrefix) && strings.EqualFold(filepath.Ext(name), ".docx")
	}, "claim document 'Заявление на включение требований'")
}

// FindUnlabeledDossier returns the single directory whose name contains
// "<caseNumberSuffix> без заявления", case-insensitive.
func FindUnlabeledDossier(folder, caseNumberSuffix string) (string, error) {
	if err := CheckDir(folder); err != nil {
		return "", err
	}
	needle := strings.ToLower(caseNumberSuffix + " без заявления")

	entries, err := os.ReadDir(LongPath(folder))
	if err != nil {
		return "", errs.IOFailure("failed to read folder "+folder, err)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() && strings.Contains(strings.ToLower(e.Name()), needle) {
			matches = append(matches, filepath.Join(folder, e.Name()))
		}
	}
	switch len(matches) {
	case 0:
		return "", errs.NotFound("folder %q not found", caseNumberSuffix+" без заявления")
	case 1:
		return matches[0], nil
	default:
		return "", errs.AmbiguousMatch("dossier folders", matches)
	}
}

func findSingleFile(folder string, match func(string) bool, what string) (string, error) {
	if err := CheckDir(folder); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(LongPath(folder))
	if err != nil {
		return "", errs.IOFailure("failed to read folder "+folder, err)
	}

	var matches []string
	for _, e := range entries {
		if !e.IsDir() && match(e.Name()) {
			matches = append(matches, filepath.Join(folder, e.Name()))
		}
	}
	switch len(matches) {
	case 0:
		return "", errs.NotFound("%s not found in %q", what, folder)
	case 1:
		return matches[0], nil
	default:
		return "", errs.AmbiguousMatch(what, matches)
	}
}

// EnsureFolder creates the folder when absent. Existing folders are fine.
func EnsureFolder(path string) (string, error) {
	if err := os.MkdirAll(LongPath(path), 0o755); err != nil {
		return "", errs.IOFailure("failed to create folder "+path, err)
	}
	return path, nil
}

// MoveFile moves a file into destFolder (or to a full destination path)
// and returns the new path.
func MoveFile(src, dest string) (string, error) {
	info, err := os.Stat(LongPath(src))
	if err != nil || info.IsDir() {
		return "", errs.NotFound("file %q not found", src)
	}
	if di, err := os.Stat(LongPath(dest)); err == nil && di.IsDir() {
		dest = filepath.Join(dest, filepath.Base(src))
	}
	if err := os.MkdirAll(LongPath(filepath.Dir(dest)), 0o755); err != nil {
		return "", errs.IOFailure("failed to create destination folder", err)
	}
	if err := os.Rename(LongPath(src), LongPath(dest)); err != nil {
		// Rename fails across devices; fall back to copy+remove.
		if _, cerr := CopyFile(src, dest); cerr != nil {
			return "", errs.IOFailure("failed to move "+src, err)
		}
		if rerr := os.Remove(LongPath(src)); rerr != nil {
			return "", errs.IOFailure("failed to remove source after copy", rerr)
		}
	}
	return dest, nil
}

// CopyFile copies a file into destFolder (or to a full destination path)
// and returns the new path.
func CopyFile(src, dest string) (string, error) {
	info, err := os.Stat(LongPath(src))
	if err != nil || info.IsDir() {
		return "", errs.NotFound("file %q not found", src)
	}
	if di, err := os.Stat(LongPath(dest)); err == nil && di.IsDir() {
		dest = filepath.Join(dest, filepath.Base(src))
	}
	if err := os.MkdirAll(LongPath(filepath.Dir(dest)), 0o755); err != nil {
		return "", errs.IOFailure("failed to create destination folder", err)
	}

	in, err := os.Open(LongPath(src))
	if err != nil {
		return "", errs.IOFailure("failed to open "+src, err)
	}
	defer in.Close()

	out, err := os.Create(LongPath(dest))
	if err != nil {
		return "", errs.IOFailure("failed to create "+dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", errs.IOFailure("failed to copy "+src, err)
	}
	return dest, nil
}

// CopyFolder copies src recursively under destFolder, keeping its base name.
func CopyFolder(src, destFolder string) (string, error) {
	if err := CheckDir(src); err != nil {
		return "", err
	}
	dest := filepath.Join(destFolder, filepath.Base(src))
	if err := copyTree(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func copyTree(src, dest string) error {
	if err := os.MkdirAll(LongPath(dest), 0o755); err != nil {
		return errs.IOFailure("failed to create folder "+dest, err)
	}
	entries, err := os.ReadDir(LongPath(src))
	if err != nil {
		return errs.IOFailure("failed to read folder "+src, err)
	}
	for _, e := range entries {
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dest, e.Name())
		if e.IsDir() {
			if err := copyTree(s, d); err != nil {
				return err
			}
			continue
		}
		if _, err := CopyFile(s, d); err != nil {
			return err
		}
	}
	return nil
}

// MoveFolder moves src under destFolder, keeping its base name.
func MoveFolder(src, destFolder string) (string, error) {
	if err := CheckDir(src); err != nil {
		return "", err
	}
	if _, err := EnsureFolder(destFolder); err != nil {
		return "", err
	}
	dest := filepath.Join(destFolder, filepath.Base(src))
	if err := os.Rename(LongPath(src), LongPath(dest)); err != nil {
		// Rename fails across devices; fall back to copy+remove.
		if cerr := copyTree(src, dest); cerr != nil {
			return "", cerr
		}
		if derr := DeleteFolder(src); derr != nil {
			return "", derr
		}
	}
	return dest, nil
}

// RenameFolder renames a folder in place (new base name, same parent).
func RenameFolder(path, newName string) (string, error) {
	if err := CheckDir(path); err != nil {
		return "", err
	}
	newPath := filepath.Join(filepath.Dir(path), newName)
	if err := os.Rename(LongPath(path), LongPath(newPath)); err != nil {
		return "", errs.IOFailure("failed to rename folder "+path, err)
	}
	return newPath, nil
}

// DeleteFile removes a single file.
func DeleteFile(path string) error {
	info, err := os.Stat(LongPath(path))
	if err != nil {
		return errs.NotFound("file %q not found", path)
	}
	if info.IsDir() {
		return errs.IOFailure("path "+path+" is not a file", nil)
	}
	if err := os.Remove(LongPath(path)); err != nil {
		return errs.IOFailure("failed to delete "+path, err)
	}
	return nil
}

// DeleteFolder removes a folder with everything in it.
func DeleteFolder(path string) error {
	if err := CheckDir(path); err != nil {
		return err
	}
	if err := os.RemoveAll(LongPath(path)); err != nil {
		return errs.IOFailure("failed to delete folder "+path, err)
	}
	return nil
}

// ListObligationFolders returns every immediate subdirectory of the dossier
// except the reserved system folder. The arbiter folder is filtered by the
// caller, which knows its path.
func ListObligationFolders(dossier string) ([]string, error) {
	if err := CheckDir(dossier); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(LongPath(dossier))
	if err != nil {
		return nil, errs.IOFailure("failed to read folder "+dossier, err)
	}
	var folders []string
	for _, e := range entries {
		if e.IsDir() && e.Name() != ReservedFolder {
			folders = append(folders, filepath.Join(dossier, e.Name()))
		}
	}
	return folders, nil
}

// SanitizeFilename replaces characters that are illegal in folder names.
// Case numbers carry a slash ("А33-12345/2024"), which becomes a dash.
func SanitizeFilename(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}

// ObligationTag extracts the obligation numbering token from a folder name:
// the third-from-last space-separated segment, when it contains a digit.
// Names that don't fit the pattern yield an empty tag, which means the
// folder is merged without renaming.
func ObligationTag(folderName string) string {
	parts := strings.Fields(folderName)
	if len(parts) < 3 {
		return ""
	}
	token := parts[len(parts)-3]
	for _, r := range token {
		if r >= '0' && r <= '9' {
			return token
		}
	}
	return ""
}

// CaseNumberFromFilename extracts the case number token from an archive
// filename: the first space-separated part containing both '-' and '_'.
func CaseNumberFromFilename(filename string) string {
	for _, part := range strings.Fields(filename) {
		if strings.Contains(part, "-") && strings.Contains(part, "_") {
			return part
		}
	}
	return ""
}
