package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemukujara/lolbackup/internal/domain"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

// storedZip writes entries uncompressed so tests can tamper with their bytes.
func storedZip(t *testing.T, path string, entries [][2]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e[0], Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// failingFs fails to open one path, simulating an unreadable file mid-archive.
type failingFs struct {
	afero.Fs
	failPath string
}

func (f *failingFs) Open(name string) (afero.File, error) {
	if name == f.failPath {
		return nil, &os.PathError{Op: "open", Path: name, Err: errors.New("injected failure")}
	}
	return f.Fs.Open(name)
}

// lockedFs refuses to write or replace one path, like a settings file the
// client still holds open.
type lockedFs struct {
	afero.Fs
	lockedPath string
}

func (f *lockedFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == f.lockedPath && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *lockedFs) Rename(oldname, newname string) error {
	if newname == f.lockedPath {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: fs.ErrPermission}
	}
	return f.Fs.Rename(oldname, newname)
}

func TestCreateExtract_RoundTrip(t *testing.T) {
	fsys := afero.NewOsFs()
	src := t.TempDir()
	files := map[string]string{
		"Config/game.cfg":               "[General]\nWindowMode=2\n",
		"Config/PersistedSettings.json": strings.Repeat(`{"k":"v"}`, 200),
		"CFG/defaults/LeagueClient.cfg": "x=1",
		"CFG/input.ini":                 "",
	}
	writeTree(t, src, files)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "CFG", "empty"), 0o755))

	dest := filepath.Join(t.TempDir(), "LoLBackup_20240101000000.zip")
	size, err := Create(context.Background(), fsys, src, dest)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)

	target := t.TempDir()
	n, err := Extract(context.Background(), fsys, dest, target)
	require.NoError(t, err)
	assert.Equal(t, len(files), n)
	assert.Equal(t, files, readTree(t, target))

	emptyInfo, err := os.Stat(filepath.Join(target, "CFG", "empty"))
	require.NoError(t, err)
	assert.True(t, emptyInfo.IsDir())
}

func TestCreate_EntryNamesAreRelative(t *testing.T) {
	fsys := afero.NewOsFs()
	src := t.TempDir()
	writeTree(t, src, map[string]string{"Config/game.cfg": "a", "CFG/input.ini": "b"})
	dest := filepath.Join(t.TempDir(), "out.zip")

	_, err := Create(context.Background(), fsys, src, dest)
	require.NoError(t, err)

	names, err := Entries(fsys, dest)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CFG/", "CFG/input.ini", "Config/", "Config/game.cfg"}, names)
}

func TestCreate_DestinationExists(t *testing.T) {
	fsys := afero.NewOsFs()
	src := t.TempDir()
	writeTree(t, src, map[string]string{"Config/game.cfg": "a"})
	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

	_, err := Create(context.Background(), fsys, src, dest)

	assert.Equal(t, domain.KindDestinationConflict, domain.KindOf(err))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestCreate_SourceMissingOrEmpty(t *testing.T) {
	fsys := afero.NewOsFs()
	dest := filepath.Join(t.TempDir(), "out.zip")

	t.Run("missing", func(t *testing.T) {
		_, err := Create(context.Background(), fsys, filepath.Join(t.TempDir(), "nope"), dest)
		assert.Equal(t, domain.KindSourceMissing, domain.KindOf(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Create(context.Background(), fsys, t.TempDir(), dest)
		assert.Equal(t, domain.KindSourceMissing, domain.KindOf(err))
		assert.ErrorContains(t, err, "directory is empty")
	})

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestCreate_RemovesPartialArchive(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"Config/a.cfg": "a", "Config/b.cfg": "b"})
	fsys := &failingFs{Fs: afero.NewOsFs(), failPath: filepath.Join(src, "Config", "b.cfg")}
	dest := filepath.Join(t.TempDir(), "out.zip")

	_, err := Create(context.Background(), fsys, src, dest)

	require.Error(t, err)
	assert.ErrorContains(t, err, "injected failure")
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "partial archive must be removed")
}

func TestExtract_OverwritesExisting(t *testing.T) {
	fsys := afero.NewOsFs()
	archivePath := filepath.Join(t.TempDir(), "a.zip")
	storedZip(t, archivePath, [][2]string{{"Config/game.cfg", "restored"}})

	target := t.TempDir()
	writeTree(t, target, map[string]string{"Config/game.cfg": "live", "Config/other.cfg": "kept"})

	_, err := Extract(context.Background(), fsys, archivePath, target)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Config/game.cfg":  "restored",
		"Config/other.cfg": "kept",
	}, readTree(t, target))
}

func TestExtract_NotAZip(t *testing.T) {
	fsys := afero.NewOsFs()
	archivePath := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("definitely not a zip"), 0o644))

	_, err := Extract(context.Background(), fsys, archivePath, t.TempDir())

	assert.Equal(t, domain.KindArchiveCorrupt, domain.KindOf(err))
	assert.ErrorIs(t, err, zip.ErrFormat)
}

func TestExtract_MissingArchive(t *testing.T) {
	_, err := Extract(context.Background(), afero.NewOsFs(), filepath.Join(t.TempDir(), "gone.zip"), t.TempDir())
	assert.Equal(t, domain.KindSourceMissing, domain.KindOf(err))
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../evil.cfg", "Config/../../evil.cfg", "/abs/evil.cfg"} {
		t.Run(name, func(t *testing.T) {
			fsys := afero.NewOsFs()
			parent := t.TempDir()
			target := filepath.Join(parent, "target")
			archivePath := filepath.Join(parent, "evil.zip")
			storedZip(t, archivePath, [][2]string{{name, "pwned"}})

			_, err := Extract(context.Background(), fsys, archivePath, target)

			assert.Equal(t, domain.KindArchiveCorrupt, domain.KindOf(err))
			assert.ErrorContains(t, err, "leads outside the target directory")
			_, statErr := os.Stat(filepath.Join(parent, "evil.cfg"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

// corruptSecondEntry flips a byte in the second entry's stored data so its CRC fails.
func corruptSecondEntry(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	i := bytes.Index(data, []byte("SECOND-ENTRY-PAYLOAD"))
	require.GreaterOrEqual(t, i, 0)
	data[i] = 'X'
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestExtract_ChecksumFailureIsPartial(t *testing.T) {
	fsys := afero.NewOsFs()
	archivePath := filepath.Join(t.TempDir(), "a.zip")
	storedZip(t, archivePath, [][2]string{
		{"Config/first.cfg", "first"},
		{"Config/second.cfg", "SECOND-ENTRY-PAYLOAD"},
	})
	corruptSecondEntry(t, archivePath)

	target := t.TempDir()
	_, err := Extract(context.Background(), fsys, archivePath, target)

	assert.Equal(t, domain.KindArchiveCorrupt, domain.KindOf(err))
	assert.ErrorIs(t, err, zip.ErrChecksum)
	// In-place extraction already wrote the first entry.
	assert.Contains(t, readTree(t, target), "Config/first.cfg")
}

func TestExtractStaged_CorruptArchiveLeavesTargetUntouched(t *testing.T) {
	fsys := afero.NewOsFs()
	archivePath := filepath.Join(t.TempDir(), "a.zip")
	storedZip(t, archivePath, [][2]string{
		{"Config/first.cfg", "first"},
		{"Config/second.cfg", "SECOND-ENTRY-PAYLOAD"},
	})
	corruptSecondEntry(t, archivePath)

	target := t.TempDir()
	writeTree(t, target, map[string]string{"Config/first.cfg": "live"})

	_, err := ExtractStaged(context.Background(), fsys, archivePath, target)

	assert.Equal(t, domain.KindArchiveCorrupt, domain.KindOf(err))
	assert.Equal(t, map[string]string{"Config/first.cfg": "live"}, readTree(t, target))

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), stagingPrefix), "staging directory left behind")
	}
}

func TestExtractStaged_RoundTrip(t *testing.T) {
	fsys := afero.NewOsFs()
	src := t.TempDir()
	files := map[string]string{
		"Config/game.cfg": "new game",
		"CFG/input.ini":   "new input",
	}
	writeTree(t, src, files)
	archivePath := filepath.Join(t.TempDir(), "a.zip")
	_, err := Create(context.Background(), fsys, src, archivePath)
	require.NoError(t, err)

	target := t.TempDir()
	writeTree(t, target, map[string]string{"Config/game.cfg": "old game", "Config/keep.cfg": "keep"})

	n, err := ExtractStaged(context.Background(), fsys, archivePath, target)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, map[string]string{
		"Config/game.cfg": "new game",
		"Config/keep.cfg": "keep",
		"CFG/input.ini":   "new input",
	}, readTree(t, target))
}

func TestExtract_LockedTargetFile(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "a.zip")
	storedZip(t, archivePath, [][2]string{{"Config/game.cfg", "restored"}})

	target := t.TempDir()
	writeTree(t, target, map[string]string{"Config/game.cfg": "live"})
	fsys := &lockedFs{Fs: afero.NewOsFs(), lockedPath: filepath.Join(target, "Config", "game.cfg")}

	_, err := Extract(context.Background(), fsys, archivePath, target)

	assert.Equal(t, domain.KindPermissionDenied, domain.KindOf(err))
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, map[string]string{"Config/game.cfg": "live"}, readTree(t, target))
}

func TestExtractStaged_LockedTargetFile(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "a.zip")
	storedZip(t, archivePath, [][2]string{
		{"CFG/input.ini", "restored input"},
		{"Config/game.cfg", "restored game"},
	})

	target := t.TempDir()
	writeTree(t, target, map[string]string{"Config/game.cfg": "live"})
	fsys := &lockedFs{Fs: afero.NewOsFs(), lockedPath: filepath.Join(target, "Config", "game.cfg")}

	_, err := ExtractStaged(context.Background(), fsys, archivePath, target)

	assert.Equal(t, domain.KindPermissionDenied, domain.KindOf(err))
	assert.ErrorIs(t, err, fs.ErrPermission)

	got := readTree(t, target)
	assert.Equal(t, "live", got["Config/game.cfg"], "locked file keeps its content")

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), stagingPrefix), "staging directory left behind")
	}
}
