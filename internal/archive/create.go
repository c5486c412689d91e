// Package archive creates and extracts the zip archives that hold client settings.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/fsutil"
)

// Create writes a deflate-compressed zip of the tree rooted at dir to dest and
// returns the archive size in bytes. Entry names are slash-separated and relative
// to dir.
//
// Create never overwrites dest. If anything fails after dest has been opened the
// partial file is removed, so dest either holds a complete archive or does not exist.
func Create(ctx context.Context, fsys afero.Fs, dir, dest string) (int64, error) {
	info, err := fsys.Stat(dir)
	if err != nil {
		return 0, domain.NewError(domain.KindSourceMissing, "archive", dir, err)
	}
	if !info.IsDir() {
		return 0, domain.NewError(domain.KindSourceMissing, "archive", dir, errors.New("not a directory"))
	}

	empty, err := afero.IsEmpty(fsys, dir)
	if err != nil {
		return 0, fsutil.Wrap("archive", dir, err, domain.KindSourceMissing)
	}
	if empty {
		return 0, domain.NewError(domain.KindSourceMissing, "archive", dir, errors.New("directory is empty"))
	}

	out, err := fsys.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fsutil.Wrap("create archive", dest, err, domain.KindUnknown)
	}

	cw := &countingWriter{w: out}
	err = writeZip(ctx, fsys, dir, cw)
	if closeErr := out.Close(); err == nil {
		err = fsutil.Wrap("close archive", dest, closeErr, domain.KindUnknown)
	}
	if err != nil {
		_ = fsys.Remove(dest)
		return 0, err
	}

	return cw.n, nil
}

func writeZip(ctx context.Context, fsys afero.Fs, dir string, w io.Writer) error {
	zw := zip.NewWriter(w)

	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fsutil.Wrap("walk", path, err, domain.KindSourceMissing)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)

		if info.IsDir() {
			header.Name += "/"
			_, err := zw.CreateHeader(header)
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		header.Method = zip.Deflate
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		return copyInto(fsys, path, entry)
	})
	if err != nil {
		_ = zw.Close()
		return err
	}

	return zw.Close()
}

func copyInto(fsys afero.Fs, path string, w io.Writer) error {
	f, err := fsys.Open(path)
	if err != nil {
		return fsutil.Wrap("open", path, err, domain.KindSourceMissing)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fsutil.Wrap("compress", path, err, domain.KindUnknown)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
