package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/fsutil"
)

// stagingPrefix names the hidden directory ExtractStaged unpacks into.
const stagingPrefix = ".lolbackup-restore-"

// Extract unpacks every entry of the archive at path under target, overwriting
// files that already exist. It returns the number of files written.
//
// Extraction is not transactional: a failure part-way leaves the files written so
// far in place. Use ExtractStaged to avoid touching target on a corrupt archive.
func Extract(ctx context.Context, fsys afero.Fs, path, target string) (int, error) {
	zr, f, err := openArchive(fsys, path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := fsys.MkdirAll(target, 0o755); err != nil {
		return 0, fsutil.Wrap("create directory", target, err, domain.KindUnknown)
	}

	return extractAll(ctx, fsys, zr, target)
}

// ExtractStaged unpacks the archive into a staging directory inside target and
// only then moves the files into place. A corrupt archive therefore leaves target
// untouched; a file locked during the final move can still leave a partial restore.
func ExtractStaged(ctx context.Context, fsys afero.Fs, path, target string) (int, error) {
	zr, f, err := openArchive(fsys, path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := fsys.MkdirAll(target, 0o755); err != nil {
		return 0, fsutil.Wrap("create directory", target, err, domain.KindUnknown)
	}

	staging := filepath.Join(target, stagingPrefix+uuid.NewString())
	if err := fsys.Mkdir(staging, 0o700); err != nil {
		return 0, fsutil.Wrap("create staging directory", staging, err, domain.KindUnknown)
	}
	defer fsys.RemoveAll(staging) //nolint:errcheck

	n, err := extractAll(ctx, fsys, zr, staging)
	if err != nil {
		return 0, err
	}

	if err := promote(ctx, fsys, staging, target); err != nil {
		return 0, err
	}
	return n, nil
}

// Entries lists the file names stored in the archive at path.
func Entries(fsys afero.Fs, path string) ([]string, error) {
	zr, f, err := openArchive(fsys, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	return names, nil
}

func openArchive(fsys afero.Fs, path string) (*zip.Reader, afero.File, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil, fsutil.Wrap("open archive", path, err, domain.KindSourceMissing)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fsutil.Wrap("stat archive", path, err, domain.KindUnknown)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, domain.NewError(domain.KindArchiveCorrupt, "read archive", path, err)
	}
	return zr, f, nil
}

func extractAll(ctx context.Context, fsys afero.Fs, zr *zip.Reader, target string) (int, error) {
	written := 0
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		rel, err := entryPath(zf.Name)
		if err != nil {
			return written, domain.NewError(domain.KindArchiveCorrupt, "extract", zf.Name, err)
		}
		dest := filepath.Join(target, rel)

		if zf.FileInfo().IsDir() {
			if err := fsys.MkdirAll(dest, 0o755); err != nil {
				return written, fsutil.Wrap("create directory", dest, err, domain.KindUnknown)
			}
			continue
		}

		if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return written, fsutil.Wrap("create directory", filepath.Dir(dest), err, domain.KindUnknown)
		}
		if err := extractFile(fsys, zf, dest); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// entryPath converts an entry name into a relative OS path, rejecting names that
// would land outside the extraction directory.
func entryPath(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	rel := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("entry %q leads outside the target directory", name)
	}
	return rel, nil
}

func extractFile(fsys afero.Fs, zf *zip.File, dest string) error {
	rc, err := zf.Open()
	if err != nil {
		return domain.NewError(domain.KindArchiveCorrupt, "extract", zf.Name, err)
	}
	defer rc.Close()

	perm := zf.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	out, err := fsys.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o200)
	if err != nil {
		return fsutil.Wrap("write", dest, err, domain.KindPermissionDenied)
	}

	if _, err := io.Copy(out, &entryReader{r: rc, name: zf.Name}); err != nil {
		_ = out.Close()
		return fsutil.Wrap("write", dest, err, domain.KindUnknown)
	}

	return fsutil.Wrap("close", dest, out.Close(), domain.KindUnknown)
}

// entryReader marks read failures of a compressed entry as corruption so they are
// not mistaken for write failures on the target.
type entryReader struct {
	r    io.Reader
	name string
}

func (e *entryReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = domain.NewError(domain.KindArchiveCorrupt, "extract", e.name, err)
	}
	return n, err
}

// promote moves every file of staging to the same relative path under target.
func promote(ctx context.Context, fsys afero.Fs, staging, target string) error {
	var files []string
	err := afero.Walk(fsys, staging, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == staging {
			return nil
		}

		rel, err := filepath.Rel(staging, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			dir := filepath.Join(target, rel)
			return fsutil.Wrap("create directory", dir, fsys.MkdirAll(dir, 0o755), domain.KindUnknown)
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return fsutil.Wrap("promote", staging, err, domain.KindUnknown)
	}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := filepath.Join(target, rel)
		if err := fsys.Rename(filepath.Join(staging, rel), dest); err != nil {
			return fsutil.Wrap("replace", dest, err, domain.KindPermissionDenied)
		}
	}
	return nil
}
