package prune

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/newscred/lead-router/config"
	configmocks "github.com/newscred/lead-router/config/mocks"
	"github.com/newscred/lead-router/storage/data"
	storagemocks "github.com/newscred/lead-router/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	retentionInDays = 7
)

func getConfigurableMockedPruneConfig(t *testing.T, pruneEnabled bool, remoteDir string) *configmocks.AuditPruningConfig {
	mockedPruneConfig := configmocks.NewAuditPruningConfig(t)
	safeTestName := strings.ReplaceAll(t.Name(), "/", "_")
	mockedPruneConfig.On("IsPruningEnabled").Return(pruneEnabled)
	mockedPruneConfig.On("GetExportNodeName").Return(safeTestName + "_testdump").Maybe()
	mockedPruneConfig.On("GetExportPath").Return(t.TempDir()).Maybe()
	mockedPruneConfig.On("GetMaxArchiveFileSizeInMB").Return(uint(10)).Maybe()
	mockedPruneConfig.On("GetAuditRetentionDays").Return(uint(retentionInDays)).Maybe()
	mockedPruneConfig.On("GetRemoteFilePrefix").Return("unit-test-data").Maybe()
	mockedPruneConfig.On("GetRemoteExportDestination").Return(config.RemoteArchiveDestination("")).Maybe()
	if len(remoteDir) > 0 {
		mockedPruneConfig.On("GetRemoteExportURL").Return(&url.URL{Scheme: "file", Path: remoteDir}).Maybe()
	} else {
		mockedPruneConfig.On("GetRemoteExportURL").Return(nil).Maybe()
	}
	return mockedPruneConfig
}

func newAuditEntries(t *testing.T, count int) []*data.AuditEntry {
	entries := make([]*data.AuditEntry, 0, count)
	for index := 0; index < count; index++ {
		entry, err := data.NewAuditEntry(data.AuditDistributed, "ana", time.Now().Add(-(retentionInDays+1)*24*time.Hour))
		assert.Nil(t, err)
		entry.QueueID = "q1"
		entry.LeadID = "l1"
		entry.Details["escalatedFrom"] = "q0"
		entries = append(entries, entry)
	}
	return entries
}

func isWithinRetention(threshold time.Time) bool {
	expected := time.Now().Add(-retentionInDays * 24 * time.Hour)
	return threshold.Sub(expected) < time.Minute && expected.Sub(threshold) < time.Minute
}

func archivedFiles(t *testing.T, dir string) []string {
	files := make([]string, 0)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && strings.HasSuffix(path, ".jsonl") {
			files = append(files, path)
		}
		return err
	})
	assert.Nil(t, err)
	return files
}

func TestPruneAuditEntries(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		remoteDir := t.TempDir()
		pruneConfig := getConfigurableMockedPruneConfig(t, true, remoteDir)
		auditRepo := storagemocks.NewAuditRepository(t)
		entries := newAuditEntries(t, 3)
		auditRepo.On("GetEntriesOlderThan", mock.MatchedBy(isWithinRetention), pruneBatchSize).Return(entries, nil).Once()
		auditRepo.On("GetEntriesOlderThan", mock.Anything, pruneBatchSize).Return([]*data.AuditEntry{}, nil).Once()
		auditRepo.On("Delete", entries[0], entries[1], entries[2]).Return(nil).Once()

		pruned, err := PruneAuditEntries(auditRepo, pruneConfig)

		assert.Nil(t, err)
		assert.Equal(t, 3, pruned)
		files := archivedFiles(t, remoteDir)
		assert.Len(t, files, 1)
		content, readErr := os.ReadFile(files[0])
		assert.Nil(t, readErr)
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		assert.Len(t, lines, 3)
		assert.Contains(t, lines[0], `"type":"distributed"`)
		assert.Contains(t, lines[0], `"escalatedFrom":"q0"`)
		assert.Contains(t, lines[0], entries[0].ID.String())
	})

	t.Run("PruneDisabled", func(t *testing.T) {
		auditRepo := storagemocks.NewAuditRepository(t)
		pruned, err := PruneAuditEntries(auditRepo, getConfigurableMockedPruneConfig(t, false, ""))
		assert.Nil(t, err)
		assert.Equal(t, 0, pruned)
	})

	t.Run("QueryError", func(t *testing.T) {
		auditRepo := storagemocks.NewAuditRepository(t)
		auditRepo.On("GetEntriesOlderThan", mock.Anything, pruneBatchSize).Return(nil, assert.AnError).Once()
		_, err := PruneAuditEntries(auditRepo, getConfigurableMockedPruneConfig(t, true, ""))
		assert.Equal(t, assert.AnError, err)
	})

	t.Run("ArchiveError", func(t *testing.T) {
		originalArchiveEntries := archiveEntries
		defer func() { archiveEntries = originalArchiveEntries }()
		archiveEntries = func(entries []*data.AuditEntry, director *ArchiveDirector) error {
			return assert.AnError
		}
		auditRepo := storagemocks.NewAuditRepository(t)
		auditRepo.On("GetEntriesOlderThan", mock.Anything, pruneBatchSize).Return(newAuditEntries(t, 1), nil).Once()
		_, err := PruneAuditEntries(auditRepo, getConfigurableMockedPruneConfig(t, true, ""))
		assert.Equal(t, assert.AnError, errors.Unwrap(err))
		auditRepo.AssertNotCalled(t, "Delete", mock.Anything)
	})

	t.Run("DeleteError", func(t *testing.T) {
		auditRepo := storagemocks.NewAuditRepository(t)
		entries := newAuditEntries(t, 1)
		auditRepo.On("GetEntriesOlderThan", mock.Anything, pruneBatchSize).Return(entries, nil).Once()
		auditRepo.On("Delete", entries[0]).Return(assert.AnError).Once()
		pruned, err := PruneAuditEntries(auditRepo, getConfigurableMockedPruneConfig(t, true, ""))
		assert.Equal(t, assert.AnError, err)
		assert.Equal(t, 0, pruned)
	})

	t.Run("InitError", func(t *testing.T) {
		originalInit := initLocalArchiveWriter
		defer func() { initLocalArchiveWriter = originalInit }()
		initLocalArchiveWriter = func(pruneConfig config.AuditPruningConfig) (*ArchiveWriter, error) {
			return nil, assert.AnError
		}
		_, err := PruneAuditEntries(storagemocks.NewAuditRepository(t), getConfigurableMockedPruneConfig(t, true, ""))
		assert.Equal(t, assert.AnError, err)
	})
}

func TestArchiveDirector_Close(t *testing.T) {
	t.Run("RemoteArchiveWriterNotNil", func(t *testing.T) {
		director, err := initArchiveDirector(getConfigurableMockedPruneConfig(t, true, t.TempDir()))
		assert.Nil(t, err)
		assert.NotNil(t, director.RemoteArchiveWriter)
		director.Close()
	})
	t.Run("RemoteArchiveWriterNil", func(t *testing.T) {
		director, err := initArchiveDirector(getConfigurableMockedPruneConfig(t, true, ""))
		assert.Nil(t, err)
		assert.Nil(t, director.RemoteArchiveWriter)
		director.Close()
	})
}

func TestBuildRemoteObjectName(t *testing.T) {
	pruneConfig := configmocks.NewAuditPruningConfig(t)
	pruneConfig.On("GetExportNodeName").Return("node1")
	pruneConfig.On("GetRemoteFilePrefix").Return("audit")
	objectName := buildRemoteObjectName(pruneConfig)
	assert.True(t, strings.HasPrefix(objectName, "audit/node1_"))
	assert.True(t, strings.HasSuffix(objectName, ".jsonl"))
}
