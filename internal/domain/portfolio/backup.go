package portfolio

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BackupKeyPrefix namespaces backup snapshots in the durable local tier.
const BackupKeyPrefix = "portfolioBackup_"

// MaxBackups is the retention limit. Every backup write is followed by a
// sweep that removes all but the newest MaxBackups snapshots.
const MaxBackups = 5

// Backup wraps a full document snapshot with its creation time.
type Backup struct {
	Timestamp time.Time `json:"timestamp"`
	Data      *Document `json:"data"`
}

// BackupKey builds the storage key for a snapshot created at t.
func BackupKey(t time.Time) string {
	return fmt.Sprintf("%s%d", BackupKeyPrefix, t.UnixMilli())
}

// ParseBackupKey recovers the creation time embedded in a backup key.
func ParseBackupKey(key string) (time.Time, error) {
	suffix, ok := strings.CutPrefix(key, BackupKeyPrefix)
	if !ok {
		return time.Time{}, fmt.Errorf("not a backup key: %q", key)
	}
	millis, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad backup key %q: %w", key, err)
	}
	return time.UnixMilli(millis), nil
}

// BackupInfo describes one stored snapshot without its payload.
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}
