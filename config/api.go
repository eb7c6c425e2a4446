package config

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// DBDialect is the name of the relational database flavor
type DBDialect string

const (
	// MySQLDialect is for MySQL 8+
	MySQLDialect DBDialect = "mysql"
	// SQLite3Dialect is for local and test deployments
	SQLite3Dialect DBDialect = "sqlite3"
)

// LogLevel is the minimum level of log entries written
type LogLevel string

const (
	// Debug logs everything
	Debug LogLevel = "debug"
	// Info logs info and above
	Info LogLevel = "info"
	// Error logs error and above
	Error LogLevel = "error"
	// Fatal logs only fatal entries
	Fatal LogLevel = "fatal"
)

// RelationalDatabaseConfig represents DB configuration related behaviors
type RelationalDatabaseConfig interface {
	GetDBDialect() DBDialect
	GetDBConnectionURL() string
	GetDBConnectionMaxIdleTime() time.Duration
	GetDBConnectionMaxLifetime() time.Duration
	GetMaxIdleDBConnections() uint16
	GetMaxOpenDBConnections() uint16
}

// HTTPConfig represents the HTTP configuration related behaviors
type HTTPConfig interface {
	GetHTTPListeningAddr() string
	GetHTTPReadTimeout() time.Duration
	GetHTTPWriteTimeout() time.Duration
}

// LogConfig represents the interface for log related configuration
type LogConfig interface {
	GetLogLevel() LogLevel
	IsLoggerConfigAvailable() bool
	GetLogFilename() string
	GetMaxLogFileSize() uint
	GetMaxLogBackups() uint
	GetMaxAgeForALogFile() uint
	IsCompressionEnabledOnLogBackups() bool
}

// RouterConfig provides the interface for configuring lead distribution
type RouterConfig interface {
	GetMaxLeadQueueSize() uint
	GetMaxWorkers() uint
	// GetTimezone is the location wall clock time is converted to before availability checks
	GetTimezone() *time.Location
	// GetRouletteQueueID is the queue roulette escalation retries in; empty means full matching
	GetRouletteQueueID() string
	GetQueueCacheTTL() time.Duration
	GetActorHeaderName() string
}

// RedistributionConfig provides the interface for configuring bulk redistribution
type RedistributionConfig interface {
	// GetThroughputPerMinute is the number of leads a job distributes per minute, used for estimates
	GetThroughputPerMinute() uint
	GetJobRunnerInterval() time.Duration
	GetJobBatchSize() uint
	GetMaxImportQuantity() uint
}

// SchedulerConfig represents configuration related to held lead retries
type SchedulerConfig interface {
	// GetHeldRetryInterval returns the interval between retry runs
	GetHeldRetryInterval() time.Duration
	// GetHeldRetryBatchSize returns the maximum number of held leads to retry per run
	GetHeldRetryBatchSize() int
}

// RemoteArchiveDestination represents the destination for archived audit entries.
type RemoteArchiveDestination string

const (
	// RemoteArchiveDestinationS3 represents AWS S3 as the archive destination.
	RemoteArchiveDestinationS3 RemoteArchiveDestination = "s3"
	// RemoteArchiveDestinationGCS represents Google Cloud Storage as the archive destination.
	RemoteArchiveDestinationGCS RemoteArchiveDestination = "gcs"
)

// AuditPruningConfig provides the interface for configuring audit log pruning.
type AuditPruningConfig interface {
	// IsPruningEnabled returns true if audit pruning is enabled.
	IsPruningEnabled() bool
	// GetExportPath returns the local filesystem path where entries will be exported before being uploaded.
	GetExportPath() string
	// GetExportNodeName returns a prefix to be added to the exported file name.
	GetExportNodeName() string
	// GetAuditRetentionDays returns the number of days audit entries are kept in the database.
	GetAuditRetentionDays() uint
	// GetRemoteExportDestination returns the remote destination derived from the remote URL scheme.
	GetRemoteExportDestination() RemoteArchiveDestination
	// GetRemoteExportURL returns the root URL for the remote export destination.
	GetRemoteExportURL() *url.URL
	// GetRemoteFilePrefix returns the prefix added to the exported file name when uploading.
	GetRemoteFilePrefix() string
	// GetMaxArchiveFileSizeInMB returns the maximum size of the exported file in MB before it is rotated to a new file
	GetMaxArchiveFileSizeInMB() uint
}

// SeedMember represents a pre configured queue member
type SeedMember struct {
	ID   string
	Name string
}

// SeedQueue represents a pre configured queue. Rules stay in their `field:operator:value` form.
type SeedQueue struct {
	ID       string
	Name     string
	Priority int
	Enabled  bool
	Rules    []string
	Members  []SeedMember

	CheckinEnabled bool
	CheckinDays    []string
	CheckinStart   string
	CheckinEnd     string
	RequireCheckin bool
	QREnabled      bool

	RedistributionActive     bool
	PreservePosition         bool
	EscalationTarget         string
	AttendanceTimeoutMinutes uint
	RotationPauseMinutes     uint
	BusinessHoursStart       string
	BusinessHoursEnd         string
}

// SeedData represents data specified in configuration to ensure is present when app starts up
type SeedData struct {
	DataHash string
	Queues   []SeedQueue
}

// Scan de-serializes SeedData for reading from DB
func (u *SeedData) Scan(value interface{}) (err error) {
	if stringVal, ok := value.(string); ok {
		err = json.NewDecoder(strings.NewReader(stringVal)).Decode(u)
	} else if sqlRawBytes, ok := value.(sql.RawBytes); ok {
		err = json.NewDecoder(bytes.NewReader(sqlRawBytes)).Decode(u)
	} else if rawBytes, ok := value.([]byte); ok {
		err = json.NewDecoder(bytes.NewReader(rawBytes)).Decode(u)
	}
	return err
}

// Value serializes SeedData to write to DB
func (u SeedData) Value() (driver.Value, error) {
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(u)
	return buf.Bytes(), err
}

// SeedDataConfig provides the interface for working with SeedData in configuration
type SeedDataConfig interface {
	GetSeedData() SeedData
}
