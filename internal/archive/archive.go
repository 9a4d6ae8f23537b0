// Package archive locates and extracts the bankruptcy dossier archive,
// including every archive nested inside it. Extraction is member-by-member:
// a corrupt member aborts with a contextualized error rather than leaving a
// silently incomplete dossier.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode/v2"

	"github.com/feichai0017/docprep/internal/fsops"
	"github.com/feichai0017/docprep/pkg/errs"
)

// ArchivePrefix is the fixed filename prefix of the dossier archive.
const ArchivePrefix = "Досье по банкротству"

// FindArchive returns the single dossier archive (.zip or .rar) inside
// folder. Zero matches is NotFound, more than one is AmbiguousMatch.
func FindArchive(folder string) (string, error) {
	if err := fsops.CheckDir(folder); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(fsops.LongPath(folder))
	if err != nil {
		return "", errs.IOFailure("failed to read folder "+folder, err)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), ArchivePrefix) && isArchiveName(e.Name()) {
			matches = append(matches, filepath.Join(folder, e.Name()))
		}
	}
	switch len(matches) {
	case 0:
		return "", errs.NotFound("archive %q not found in %q", ArchivePrefix, folder)
	case 1:
		return matches[0], nil
	default:
		return "", errs.AmbiguousMatch("archives", matches)
	}
}

func isArchiveName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".zip" || ext == ".rar"
}

// Extract unpacks a ZIP or RAR archive into dest, creating dest when
// absent. Re-extracting into an existing non-empty folder is fine.
func Extract(archivePath, dest string) (string, error) {
	if _, err := os.Stat(fsops.LongPath(archivePath)); err != nil {
		return "", errs.NotFound("archive %q not found", archivePath)
	}
	if _, err := fsops.EnsureFolder(dest); err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		if err := extractZip(archivePath, dest); err != nil {
			return "", err
		}
	case ".rar":
		if err := extractRar(archivePath, dest); err != nil {
			return "", err
		}
	default:
		return "", errs.IOFailure("unsupported archive format "+filepath.Ext(archivePath), nil)
	}
	return dest, nil
}

func extractZip(archivePath, dest string) error {
	r, err := zip.OpenReader(fsops.LongPath(archivePath))
	if err != nil {
		return errs.IOFailure("failed to open archive "+archivePath, err)
	}
	defer r.Close()

	for _, member := range r.File {
		if err := extractZipMember(member, dest); err != nil {
			return errs.IOFailure("failed to extract member "+member.Name, err)
		}
	}
	return nil
}

func extractZipMember(member *zip.File, dest string) error {
	target, err := memberPath(dest, member.Name)
	if err != nil {
		return err
	}
	if member.FileInfo().IsDir() {
		return os.MkdirAll(fsops.LongPath(target), 0o755)
	}
	if err := os.MkdirAll(fsops.LongPath(filepath.Dir(target)), 0o755); err != nil {
		return err
	}

	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(fsops.LongPath(target))
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

func extractRar(archivePath, dest string) error {
	r, err := rardecode.OpenReader(fsops.LongPath(archivePath))
	if err != nil {
		return errs.IOFailure("failed to open archive "+archivePath, err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errs.IOFailure("failed to read archive "+archivePath, err)
		}
		if err := extractRarMember(r, header, dest); err != nil {
			return errs.IOFailure("failed to extract member "+header.Name, err)
		}
	}
}

func extractRarMember(r io.Reader, header *rardecode.FileHeader, dest string) error {
	target, err := memberPath(dest, header.Name)
	if err != nil {
		return err
	}
	if header.IsDir {
		return os.MkdirAll(fsops.LongPath(target), 0o755)
	}
	if err := os.MkdirAll(fsops.LongPath(filepath.Dir(target)), 0o755); err != nil {
		return err
	}

	out, err := os.Create(fsops.LongPath(target))
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, r)
	return err
}

// memberPath joins a member name under dest, refusing names that would
// escape the destination folder.
func memberPath(dest, name string) (string, error) {
	cleaned := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(cleaned, filepath.Clean(dest)+string(os.PathSeparator)) && cleaned != filepath.Clean(dest) {
		return "", errs.IOFailure("member path escapes destination: "+name, nil)
	}
	return cleaned, nil
}

// ExtractNested walks root depth-first and extracts every .zip/.rar file
// beside itself into a same-named folder, then recurses into that folder to
// catch archives-within-archives. Nothing is deleted. Each archive is
// processed at most once by cleaned path, so an archive whose contents
// include an identical archive file cannot loop forever.
func ExtractNested(root string) error {
	return extractNested(root, map[string]bool{})
}

func extractNested(folder string, seen map[string]bool) error {
	entries, err := os.ReadDir(fsops.LongPath(folder))
	if err != nil {
		return errs.IOFailure("failed to read folder "+folder, err)
	}

	for _, e := range entries {
		path := filepath.Join(folder, e.Name())
		if e.IsDir() {
			if err := extractNested(path, seen); err != nil {
				return err
			}
			continue
		}
		if !isArchiveName(e.Name()) {
			continue
		}
		key := filepath.Clean(path)
		if seen[key] {
			continue
		}
		seen[key] = true

		dest := strings.TrimSuffix(path, filepath.Ext(path))
		if _, err := Extract(path, dest); err != nil {
			return errs.IOFailure("failed to extract nested archive "+path, err)
		}
		if err := extractNested(dest, seen); err != nil {
			return err
		}
	}
	return nil
}
