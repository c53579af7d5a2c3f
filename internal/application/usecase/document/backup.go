package document

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
)

// createBackupLocked snapshots the current canonical document into the
// durable tier and sweeps old snapshots. Backup failures are logged, never
// fatal: the operation that triggered the backup still proceeds.
func (m *Manager) createBackupLocked(ctx context.Context) {
	// Two backups inside the same millisecond would share a key; bump
	// forward instead of overwriting the earlier snapshot.
	ms := time.Now().UnixMilli()
	if ms <= m.lastBackupMs {
		ms = m.lastBackupMs + 1
	}
	m.lastBackupMs = ms
	now := time.UnixMilli(ms).UTC()

	backup := portfolio.Backup{
		Timestamp: now,
		Data:      m.doc,
	}
	raw, err := json.Marshal(backup)
	if err != nil {
		m.logger.Error("Failed to serialize backup snapshot", err)
		return
	}

	key := portfolio.BackupKey(now)
	if err := m.local.Set(ctx, key, string(raw)); err != nil {
		m.logger.Error("Failed to write backup snapshot", err, zap.String("key", key))
		return
	}
	m.logger.Info("Backup created", zap.String("key", key))

	m.sweepBackups(ctx)
	m.uploadBackupOffsite(key, raw)
}

// sweepBackups enforces the retention limit: the newest MaxBackups
// snapshots survive, everything older goes.
func (m *Manager) sweepBackups(ctx context.Context) {
	infos, err := m.listBackupInfos(ctx)
	if err != nil {
		m.logger.Warn("Backup sweep could not list snapshots", zap.Error(err))
		return
	}
	if len(infos) <= portfolio.MaxBackups {
		return
	}
	for _, stale := range infos[portfolio.MaxBackups:] {
		if err := m.local.Remove(ctx, stale.Key); err != nil {
			m.logger.Warn("Failed to delete old backup", zap.String("key", stale.Key), zap.Error(err))
			continue
		}
		m.logger.Info("Deleted old backup", zap.String("key", stale.Key))
	}
}

// uploadBackupOffsite pushes a copy to the configured offsite provider in
// the background. Purely best-effort.
func (m *Manager) uploadBackupOffsite(key string, raw []byte) {
	if m.uploader == nil {
		return
	}
	go func() {
		url, err := m.uploader.Upload(context.Background(), strings.NewReader(string(raw)), "backups/portfolio", key)
		if err != nil {
			m.logger.Error("Failed to upload backup offsite", err, zap.String("key", key))
			return
		}
		m.logger.Info("Backup uploaded offsite", zap.String("key", key), zap.String("url", url))
	}()
}

// listBackupInfos returns snapshots newest first, ordered by the creation
// time embedded in each key.
func (m *Manager) listBackupInfos(ctx context.Context) ([]portfolio.BackupInfo, error) {
	keys, err := m.local.Keys(ctx, portfolio.BackupKeyPrefix)
	if err != nil {
		return nil, err
	}

	infos := make([]portfolio.BackupInfo, 0, len(keys))
	for _, key := range keys {
		ts, err := portfolio.ParseBackupKey(key)
		if err != nil {
			m.logger.Warn("Skipping malformed backup key", zap.String("key", key), zap.Error(err))
			continue
		}
		infos = append(infos, portfolio.BackupInfo{Key: key, Timestamp: ts})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})
	return infos, nil
}

type ListBackupsOutput struct {
	Backups []portfolio.BackupInfo
}

func (m *Manager) ListBackups(ctx context.Context) (*ListBackupsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	infos, err := m.listBackupInfos(ctx)
	if err != nil {
		return nil, apperror.NewStorageUnavailable("durable local", err)
	}
	return &ListBackupsOutput{Backups: infos}, nil
}

type RestoreBackupInput struct {
	Key     string
	Confirm bool
}

type RestoreBackupOutput struct {
	Document *portfolio.Document
	Result   SaveResult
}

// RestoreBackup replaces the canonical document with a stored snapshot. The
// current document is itself snapshotted first, so a restore is reversible
// for as long as retention keeps the backup around.
func (m *Manager) RestoreBackup(ctx context.Context, input RestoreBackupInput) (*RestoreBackupOutput, error) {
	if !strings.HasPrefix(input.Key, portfolio.BackupKeyPrefix) {
		return nil, apperror.NewInvalidInput("not a backup key", nil)
	}
	if !input.Confirm {
		return nil, apperror.NewConfirmationDeclined("restore")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReadyLocked(); err != nil {
		return nil, err
	}

	value, found, err := m.local.Get(ctx, input.Key)
	if err != nil {
		return nil, apperror.NewStorageUnavailable("durable local", err)
	}
	if !found {
		return nil, apperror.NewNotFound("backup", input.Key)
	}

	var backup portfolio.Backup
	if err := json.Unmarshal([]byte(value), &backup); err != nil || backup.Data == nil {
		return nil, apperror.NewMalformedImport("backup snapshot is not decodable", err)
	}

	m.createBackupLocked(ctx)
	m.doc = backup.Data.Clone()

	result, err := m.persistLocked(ctx, portfolio.ReasonRestore)
	if err != nil {
		return nil, err
	}
	return &RestoreBackupOutput{Document: m.doc.Clone(), Result: result}, nil
}
