// Package fsutil copies directory trees and classifies filesystem errors.
package fsutil

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// CopyDir recursively copies the directory src into dst, creating dst and any
// missing parents. It never overwrites: a file that already exists in dst makes
// the copy fail with domain.KindDestinationConflict.
//
// The files of a directory are copied before its subdirectories are descended into.
func CopyDir(ctx context.Context, fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return domain.NewError(domain.KindSourceMissing, "copy", src, err)
	}
	if !info.IsDir() {
		return domain.NewError(domain.KindSourceMissing, "copy", src, fmt.Errorf("not a directory"))
	}

	return copyTree(ctx, fsys, src, dst, info.Mode())
}

func copyTree(ctx context.Context, fsys afero.Fs, src, dst string, mode fs.FileMode) error {
	entries, err := afero.ReadDir(fsys, src)
	if err != nil {
		return Wrap("read directory", src, err, domain.KindSourceMissing)
	}

	if err := fsys.MkdirAll(dst, mode.Perm()|0o700); err != nil {
		return Wrap("create directory", dst, err, domain.KindUnknown)
	}

	var subdirs []os.FileInfo
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(src, entry.Name())

		// Follow symlinks so links into the client's data are copied as content.
		if entry.Mode()&fs.ModeSymlink != 0 {
			target, err := fsys.Stat(path)
			if err != nil {
				return Wrap("stat", path, err, domain.KindSourceMissing)
			}
			entry = renamedInfo{FileInfo: target, name: entry.Name()}
		}

		switch {
		case entry.IsDir():
			subdirs = append(subdirs, entry)
		case entry.Mode().IsRegular():
			if err := copyFile(fsys, path, filepath.Join(dst, entry.Name()), entry.Mode()); err != nil {
				return err
			}
		}
	}

	for _, dir := range subdirs {
		err := copyTree(ctx, fsys,
			filepath.Join(src, dir.Name()),
			filepath.Join(dst, dir.Name()),
			dir.Mode(),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func copyFile(fsys afero.Fs, src, dst string, mode fs.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return Wrap("open", src, err, domain.KindSourceMissing)
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm()|0o200)
	if err != nil {
		return Wrap("create", dst, err, domain.KindUnknown)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return Wrap("copy", src, err, domain.KindUnknown)
	}

	if err := out.Sync(); err != nil {
		_ = out.Close()
		return Wrap("sync", dst, err, domain.KindUnknown)
	}

	return Wrap("close", dst, out.Close(), domain.KindUnknown)
}

// renamedInfo reports a followed symlink under the link's own name.
type renamedInfo struct {
	os.FileInfo
	name string
}

func (r renamedInfo) Name() string { return r.name }
