package domain

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// ArchivePrefix is the file name prefix of every regular backup archive.
	ArchivePrefix = "LoLBackup_"
	// ArchiveExt is the archive file extension.
	ArchiveExt = ".zip"
	// ArchiveGlob matches regular backup archives; it never matches the recovery archive.
	ArchiveGlob = ArchivePrefix + "*" + ArchiveExt
	// ArchiveTimeLayout is the timestamp layout embedded in archive names (yyyyMMddHHmmss).
	ArchiveTimeLayout = "20060102150405"
	// RecoveryArchiveName is the fixed name of the pre-restore safety archive.
	RecoveryArchiveName = "LoLRecoveryBackup.zip"

	// StagingConfigDir and StagingCFGDir are the two top-level folders of every archive.
	StagingConfigDir = "Config"
	StagingCFGDir    = "CFG"
)

// Archive describes a backup archive on disk.
type Archive struct {
	Path      string    `json:"path" yaml:"path"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Size      int64     `json:"size" yaml:"size"`
}

// ArchiveName returns the archive file name for a backup taken at t.
func ArchiveName(t time.Time) string {
	return ArchivePrefix + t.Format(ArchiveTimeLayout) + ArchiveExt
}

// ParseArchiveTime extracts the creation timestamp from an archive file name.
func ParseArchiveTime(name string) (time.Time, bool) {
	name = filepath.Base(name)
	if !strings.HasPrefix(name, ArchivePrefix) || !strings.HasSuffix(name, ArchiveExt) {
		return time.Time{}, false
	}
	ts := strings.TrimSuffix(strings.TrimPrefix(name, ArchivePrefix), ArchiveExt)
	t, err := time.ParseInLocation(ArchiveTimeLayout, ts, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
