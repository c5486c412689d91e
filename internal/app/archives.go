package app

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/fsutil"
)

// ListArchives returns the regular backup archives in the backup folder, newest first.
func (r *Runner) ListArchives() ([]domain.Archive, error) {
	return ListArchives(r.fs, r.config.BackupDir)
}

// ListArchives returns the LoLBackup_*.zip files in dir sorted by name in
// descending order. The embedded timestamp makes that newest first. The
// recovery archive never matches. A missing dir yields no archives.
//
// Only file names are matched against the pattern, so dir may contain glob
// metacharacters such as a bracketed user name.
func ListArchives(fsys afero.Fs, dir string) ([]domain.Archive, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Archive{}, nil
	}
	if err != nil {
		return nil, fsutil.Wrap("list archives", dir, err, domain.KindUnknown)
	}

	archives := make([]domain.Archive, 0, len(entries))
	for _, info := range entries {
		if ok, _ := filepath.Match(domain.ArchiveGlob, info.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, info.Name())
		if info.Mode()&fs.ModeSymlink != 0 {
			if info, err = fsys.Stat(path); err != nil {
				continue
			}
		}
		if info.IsDir() {
			continue
		}
		archives = append(archives, newArchive(path, info))
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Name > archives[j].Name
	})
	return archives, nil
}

// describeArchive stats a single archive chosen by the user.
func describeArchive(fsys afero.Fs, path string) (domain.Archive, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return domain.Archive{}, fsutil.Wrap("open archive", path, err, domain.KindSourceMissing)
	}
	if info.IsDir() {
		return domain.Archive{}, domain.NewError(domain.KindSourceMissing, "open archive", path, errors.New("is a directory"))
	}
	return newArchive(path, info), nil
}

// newArchive takes CreatedAt from the name when it carries a timestamp and
// from the modification time otherwise.
func newArchive(path string, info fs.FileInfo) domain.Archive {
	created, ok := domain.ParseArchiveTime(path)
	if !ok {
		created = info.ModTime()
	}

	return domain.Archive{
		Path:      path,
		Name:      filepath.Base(path),
		CreatedAt: created,
		Size:      info.Size(),
	}
}
