package prune

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"
)

const (
	pruneBatchSize  = 1000
	archiveTimeForm = "2006_01_02T15_04_05Z"
)

// ArchiveDirector fans archive lines out to the local and, when configured, the remote archive
type ArchiveDirector struct {
	LocalArchiveWriter  *ArchiveWriter
	RemoteArchiveWriter *ArchiveWriter
}

// WriteLine writes the line to every archive
func (director *ArchiveDirector) WriteLine(ctx context.Context, line []byte) error {
	if _, err := director.LocalArchiveWriter.WriteLine(ctx, line); err != nil {
		return fmt.Errorf("failed to write to local archive: %w", err)
	}
	if director.RemoteArchiveWriter != nil {
		if _, err := director.RemoteArchiveWriter.WriteLine(ctx, line); err != nil {
			return fmt.Errorf("failed to write to remote archive: %w", err)
		}
	}
	return nil
}

// Commit makes everything written so far durable in every archive
func (director *ArchiveDirector) Commit() error {
	if err := director.LocalArchiveWriter.Commit(); err != nil {
		return err
	}
	if director.RemoteArchiveWriter != nil {
		return director.RemoteArchiveWriter.Commit()
	}
	return nil
}

// Close commits and logs failures
func (director *ArchiveDirector) Close() {
	if director.RemoteArchiveWriter != nil {
		if err := director.RemoteArchiveWriter.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close remote archive writer")
		}
	}
	if err := director.LocalArchiveWriter.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close local archive writer")
	}
}

type auditRecord struct {
	ID        string                 `json:"id"`
	Type      data.AuditType         `json:"type"`
	Actor     string                 `json:"actor"`
	Timestamp time.Time              `json:"timestamp"`
	QueueID   string                 `json:"queueId,omitempty"`
	LeadID    string                 `json:"leadId,omitempty"`
	MemberID  string                 `json:"memberId,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

func buildRemoteObjectName(pruneConfig config.AuditPruningConfig) string {
	now := time.Now().UTC().Format(archiveTimeForm)
	objectName := fmt.Sprintf("%s_%s.jsonl", pruneConfig.GetExportNodeName(), now)
	if len(pruneConfig.GetRemoteFilePrefix()) > 0 {
		objectName = fmt.Sprintf("%s/%s", pruneConfig.GetRemoteFilePrefix(), objectName)
	}
	return objectName
}

func maxArchiveSize(pruneConfig config.AuditPruningConfig) int64 {
	return int64(pruneConfig.GetMaxArchiveFileSizeInMB()) * 1024 * 1024
}

var (
	initLocalArchiveWriter = func(pruneConfig config.AuditPruningConfig) (*ArchiveWriter, error) {
		now := time.Now().UTC().Format(archiveTimeForm)
		dirPath := fmt.Sprintf("file://%s/%s", pruneConfig.GetExportPath(), pruneConfig.GetRemoteFilePrefix())
		objectName := fmt.Sprintf("local_%s_%s.jsonl", pruneConfig.GetExportNodeName(), now)
		log.Info().Str("path", dirPath).Str("object", objectName).Msg("local audit archive")
		fileBucket, err := blob.OpenBucket(context.Background(), dirPath+"?create_dir=1&no_tmp_dir=1")
		if err != nil {
			return nil, fmt.Errorf("failed to open local archive bucket: %w", err)
		}
		return NewArchiveWriter(NewBlobBucket(fileBucket), objectName, maxArchiveSize(pruneConfig)), nil
	}

	initRemoteArchiveWriter = func(pruneConfig config.AuditPruningConfig) (*ArchiveWriter, error) {
		if pruneConfig.GetRemoteExportURL() == nil {
			return nil, nil
		}
		bucket, err := blob.OpenBucket(context.Background(), pruneConfig.GetRemoteExportURL().String())
		if err != nil {
			return nil, fmt.Errorf("failed to open remote bucket: %w", err)
		}
		log.Info().Str("destination", string(pruneConfig.GetRemoteExportDestination())).Msg("remote audit archive")
		return NewArchiveWriter(NewBlobBucket(bucket), buildRemoteObjectName(pruneConfig), maxArchiveSize(pruneConfig)), nil
	}

	initArchiveDirector = func(pruneConfig config.AuditPruningConfig) (*ArchiveDirector, error) {
		localArchiveWriter, err := initLocalArchiveWriter(pruneConfig)
		if err != nil {
			return nil, err
		}
		remoteArchiveWriter, err := initRemoteArchiveWriter(pruneConfig)
		if err != nil {
			return nil, err
		}
		return &ArchiveDirector{LocalArchiveWriter: localArchiveWriter, RemoteArchiveWriter: remoteArchiveWriter}, nil
	}

	archiveEntries = func(entries []*data.AuditEntry, director *ArchiveDirector) error {
		ctx := context.Background()
		for _, entry := range entries {
			line, err := json.Marshal(&auditRecord{ID: entry.ID.String(), Type: entry.Type, Actor: entry.Actor, Timestamp: entry.Timestamp,
				QueueID: entry.QueueID, LeadID: entry.LeadID, MemberID: entry.MemberID, Details: entry.Details, CreatedAt: entry.CreatedAt})
			if err != nil {
				return fmt.Errorf("failed to marshal audit entry %s: %w", entry.ID, err)
			}
			if err = director.WriteLine(ctx, append(line, '\n')); err != nil {
				return err
			}
		}
		return director.Commit()
	}
)

// PruneAuditEntries archives audit entries older than the retention period as JSON lines and then deletes
// them from the database. A batch is deleted only after its archive part is committed. It returns the
// number of entries pruned.
func PruneAuditEntries(auditRepo storage.AuditRepository, pruneConfig config.AuditPruningConfig) (int, error) {
	if !pruneConfig.IsPruningEnabled() {
		log.Info().Msg("Pruning is disabled, so skipping")
		return 0, nil
	}

	archiveDirector, err := initArchiveDirector(pruneConfig)
	if err != nil {
		return 0, err
	}
	defer archiveDirector.Close()

	threshold := time.Now().Add(-time.Duration(pruneConfig.GetAuditRetentionDays()) * 24 * time.Hour)
	pruned := 0
	for {
		entries, err := auditRepo.GetEntriesOlderThan(threshold, pruneBatchSize)
		if err != nil {
			return pruned, err
		}
		if len(entries) == 0 {
			break
		}
		if err = archiveEntries(entries, archiveDirector); err != nil {
			return pruned, fmt.Errorf("failed to archive audit entries: %w", err)
		}
		if err = auditRepo.Delete(entries...); err != nil {
			log.Error().Err(err).Msg("failed to delete archived audit entries")
			return pruned, err
		}
		pruned += len(entries)
		log.Debug().Int("count", len(entries)).Msg("pruned audit entries")
	}
	log.Info().Int("pruned", pruned).Time("threshold", threshold).Msg("audit pruning finished")
	return pruned, nil
}
