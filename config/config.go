package config

import (
	"net/url"
	"os/user"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/rs/zerolog/log"
)

// AppVersion is the version string type
type AppVersion string

// GetVersion provides the current version of the project
func GetVersion() AppVersion {
	return "0.1-dev"
}

const (
	// ConfigFilename is the default config file name
	ConfigFilename = "lead-router.cfg"
	// DefaultSystemConfigFilePath is the default system location of the configuration
	DefaultSystemConfigFilePath = "/etc/lead-router/" + ConfigFilename
	// DefaultCurrentDirConfigFilePath is the config file path based on current working dir
	DefaultCurrentDirConfigFilePath = ConfigFilename
)

var (
	// EmptyConfigurationForError Represents the configuration instance to be
	// used when there is a configuration error during load
	EmptyConfigurationForError = &Config{}

	defaultLoadFunc = func(configFilePath string) (*ini.File, error) {
		if len(configFilePath) > 0 {
			return ini.LooseLoad([]byte(DefaultConfiguration), DefaultSystemConfigFilePath, getUserHomeDirBasedDefaultConfigFileLocation(), DefaultCurrentDirConfigFilePath, configFilePath)
		}
		return ini.LooseLoad([]byte(DefaultConfiguration), DefaultSystemConfigFilePath, getUserHomeDirBasedDefaultConfigFileLocation(), DefaultCurrentDirConfigFilePath)
	}
	loadConfiguration = defaultLoadFunc
)

var currentUser = user.Current

func getUserHomeDirBasedDefaultConfigFileLocation() string {
	user, err := currentUser()
	if err != nil {
		return DefaultCurrentDirConfigFilePath
	}
	return user.HomeDir + "/.lead-router/" + ConfigFilename
}

// Config represents the application configuration
type Config struct {
	dbDialect               DBDialect
	dbConnectionURL         string
	dbConnectionMaxIdleTime time.Duration
	dbConnectionMaxLifetime time.Duration
	dbMaxIdleConnections    uint16
	dbMaxOpenConnections    uint16
	httpListeningAddr       string
	httpReadTimeout         time.Duration
	httpWriteTimeout        time.Duration
	logLevel                LogLevel
	logFilename             string
	maxFileSize             uint
	maxBackups              uint
	maxAge                  uint
	compressBackupsEnabled  bool
	maxLeadQueueSize        uint
	maxWorkers              uint
	timezone                *time.Location
	rouletteQueueID         string
	queueCacheTTL           time.Duration
	actorHeaderName         string
	throughputPerMinute     uint
	jobRunnerInterval       time.Duration
	jobBatchSize            uint
	maxImportQuantity       uint
	heldRetryInterval       time.Duration
	heldRetryBatchSize      uint
	pruningEnabled          bool
	exportPath              string
	exportNodeName          string
	auditRetentionDays      uint
	remoteExportURL         *url.URL
	remoteFilePrefix        string
	maxArchiveFileSizeInMB  uint
	seedData                SeedData
}

// GetDBDialect returns the DB dialect of the configuration
func (config *Config) GetDBDialect() DBDialect {
	return config.dbDialect
}

// GetDBConnectionURL returns the DB Connection URL string
func (config *Config) GetDBConnectionURL() string {
	return config.dbConnectionURL
}

// GetDBConnectionMaxIdleTime returns the DB Connection max idle time
func (config *Config) GetDBConnectionMaxIdleTime() time.Duration {
	return config.dbConnectionMaxIdleTime
}

// GetDBConnectionMaxLifetime returns the DB Connection max lifetime
func (config *Config) GetDBConnectionMaxLifetime() time.Duration {
	return config.dbConnectionMaxLifetime
}

// GetMaxIdleDBConnections returns the maximum number of idle DB connections to retain in pool
func (config *Config) GetMaxIdleDBConnections() uint16 {
	return config.dbMaxIdleConnections
}

// GetMaxOpenDBConnections returns the maximum number of concurrent DB connections to keep open
func (config *Config) GetMaxOpenDBConnections() uint16 {
	return config.dbMaxOpenConnections
}

// GetHTTPListeningAddr retrieves the connection string to listen to
func (config *Config) GetHTTPListeningAddr() string {
	return config.httpListeningAddr
}

// GetHTTPReadTimeout retrieves the connection read timeout
func (config *Config) GetHTTPReadTimeout() time.Duration {
	return config.httpReadTimeout
}

// GetHTTPWriteTimeout retrieves the connection write timeout
func (config *Config) GetHTTPWriteTimeout() time.Duration {
	return config.httpWriteTimeout
}

// GetLogLevel returns the minimum log level
func (config *Config) GetLogLevel() LogLevel {
	return config.logLevel
}

// IsLoggerConfigAvailable checks is logger configuration is set since its optional
func (config *Config) IsLoggerConfigAvailable() bool {
	return len(config.logFilename) > 0
}

// GetLogFilename retrieves the file name of the log
func (config *Config) GetLogFilename() string {
	return config.logFilename
}

// GetMaxLogFileSize retrieves the max log file size before its rotated in MB
func (config *Config) GetMaxLogFileSize() uint {
	return config.maxFileSize
}

// GetMaxLogBackups retrieves max rotated logs to retain
func (config *Config) GetMaxLogBackups() uint {
	return config.maxBackups
}

// GetMaxAgeForALogFile retrieves maximum day to retain a rotated log file
func (config *Config) GetMaxAgeForALogFile() uint {
	return config.maxAge
}

// IsCompressionEnabledOnLogBackups checks if log backups are compressed
func (config *Config) IsCompressionEnabledOnLogBackups() bool {
	return config.compressBackupsEnabled
}

// GetMaxLeadQueueSize is the buffer of leads waiting for a dispatcher worker
func (config *Config) GetMaxLeadQueueSize() uint {
	return config.maxLeadQueueSize
}

// GetMaxWorkers is the number of dispatcher workers
func (config *Config) GetMaxWorkers() uint {
	return config.maxWorkers
}

// GetTimezone returns the location availability windows are evaluated in
func (config *Config) GetTimezone() *time.Location {
	return config.timezone
}

// GetRouletteQueueID returns the roulette queue
func (config *Config) GetRouletteQueueID() string {
	return config.rouletteQueueID
}

// GetQueueCacheTTL returns how long queue reads are cached
func (config *Config) GetQueueCacheTTL() time.Duration {
	return config.queueCacheTTL
}

// GetActorHeaderName returns the request header naming who performs an operation
func (config *Config) GetActorHeaderName() string {
	return config.actorHeaderName
}

// GetThroughputPerMinute returns redistribution throughput
func (config *Config) GetThroughputPerMinute() uint {
	return config.throughputPerMinute
}

// GetJobRunnerInterval returns the interval between redistribution job runs
func (config *Config) GetJobRunnerInterval() time.Duration {
	return config.jobRunnerInterval
}

// GetJobBatchSize returns the number of queued jobs picked per run
func (config *Config) GetJobBatchSize() uint {
	return config.jobBatchSize
}

// GetMaxImportQuantity returns the largest accepted import batch
func (config *Config) GetMaxImportQuantity() uint {
	return config.maxImportQuantity
}

// GetHeldRetryInterval returns the interval between held lead retry runs
func (config *Config) GetHeldRetryInterval() time.Duration {
	return config.heldRetryInterval
}

// GetHeldRetryBatchSize returns the maximum number of held leads retried per run
func (config *Config) GetHeldRetryBatchSize() int {
	return int(config.heldRetryBatchSize)
}

// IsPruningEnabled returns true if audit pruning is enabled
func (config *Config) IsPruningEnabled() bool {
	return config.pruningEnabled
}

// GetExportPath returns the local archive directory
func (config *Config) GetExportPath() string {
	return config.exportPath
}

// GetExportNodeName returns the archive file name prefix
func (config *Config) GetExportNodeName() string {
	return config.exportNodeName
}

// GetAuditRetentionDays returns how many days audit entries stay in the database
func (config *Config) GetAuditRetentionDays() uint {
	return config.auditRetentionDays
}

// GetRemoteExportDestination derives the destination from the remote URL scheme; empty when not configured
func (config *Config) GetRemoteExportDestination() RemoteArchiveDestination {
	if config.remoteExportURL == nil {
		return ""
	}
	switch config.remoteExportURL.Scheme {
	case "s3":
		return RemoteArchiveDestinationS3
	case "gs":
		return RemoteArchiveDestinationGCS
	default:
		return ""
	}
}

// GetRemoteExportURL returns the remote bucket URL
func (config *Config) GetRemoteExportURL() *url.URL {
	return config.remoteExportURL
}

// GetRemoteFilePrefix returns the remote object prefix
func (config *Config) GetRemoteFilePrefix() string {
	return config.remoteFilePrefix
}

// GetMaxArchiveFileSizeInMB returns the archive rotation size
func (config *Config) GetMaxArchiveFileSizeInMB() uint {
	return config.maxArchiveFileSizeInMB
}

// GetSeedData returns the queues to seed
func (config *Config) GetSeedData() SeedData {
	return config.seedData
}

// GetAutoConfiguration gets configuration from default config and system defined path chain of
// /etc/lead-router/lead-router.cfg, {USER_HOME}/.lead-router/lead-router.cfg, lead-router.cfg (current dir)
func GetAutoConfiguration() (*Config, error) {
	return GetConfiguration("")
}

// GetConfiguration gets the current state of application configuration
func GetConfiguration(configFilePath string) (*Config, error) {
	configuration := &Config{}
	cfg, err := loadConfiguration(configFilePath)
	if err != nil {
		return EmptyConfigurationForError, err
	}
	setupStorageConfiguration(cfg, configuration)
	setupHTTPConfiguration(cfg, configuration)
	setupLogConfiguration(cfg, configuration)
	setupRouterConfiguration(cfg, configuration)
	setupRedistributionConfiguration(cfg, configuration)
	setupSchedulerConfiguration(cfg, configuration)
	setupPruneConfiguration(cfg, configuration)
	setupSeedDataConfiguration(cfg, configuration)
	return configuration, nil
}

func setupStorageConfiguration(cfg *ini.File, configuration *Config) {
	dbSection := cfg.Section("rdbms")
	configuration.dbDialect = DBDialect(dbSection.Key("dialect").MustString(string(SQLite3Dialect)))
	configuration.dbConnectionURL = dbSection.Key("connection-url").String()
	configuration.dbConnectionMaxIdleTime = time.Duration(dbSection.Key("connxn-max-idle-time-seconds").MustUint(0)) * time.Second
	configuration.dbConnectionMaxLifetime = time.Duration(dbSection.Key("connxn-max-lifetime-seconds").MustUint(0)) * time.Second
	configuration.dbMaxIdleConnections = uint16(dbSection.Key("max-idle-connxns").MustUint(10))
	configuration.dbMaxOpenConnections = uint16(dbSection.Key("max-open-connxns").MustUint(50))
}

func setupHTTPConfiguration(cfg *ini.File, configuration *Config) {
	httpSection := cfg.Section("http")
	configuration.httpListeningAddr = httpSection.Key("listener").MustString(":8080")
	configuration.httpReadTimeout = time.Duration(httpSection.Key("read-timeout").MustUint(180)) * time.Second
	configuration.httpWriteTimeout = time.Duration(httpSection.Key("write-timeout").MustUint(180)) * time.Second
}

func setupLogConfiguration(cfg *ini.File, configuration *Config) {
	logSection := cfg.Section("log")
	configuration.logLevel = LogLevel(strings.ToLower(logSection.Key("log-level").In(string(Debug), []string{string(Debug), string(Info), string(Error), string(Fatal)})))
	configuration.logFilename = logSection.Key("filename").String()
	configuration.maxFileSize = logSection.Key("max-file-size-in-mb").MustUint(50)
	configuration.maxBackups = logSection.Key("max-backups").MustUint(1)
	configuration.maxAge = logSection.Key("max-age-in-days").MustUint(30)
	configuration.compressBackupsEnabled = logSection.Key("compress-backups").MustBool(false)
}

func setupRouterConfiguration(cfg *ini.File, configuration *Config) {
	routerSection := cfg.Section("router")
	configuration.maxLeadQueueSize = routerSection.Key("max-lead-queue-size").MustUint(10000)
	configuration.maxWorkers = routerSection.Key("max-workers").MustUint(50)
	location, err := time.LoadLocation(routerSection.Key("timezone").MustString("UTC"))
	if err != nil {
		log.Warn().Err(err).Msg("unknown timezone, falling back to UTC")
		location = time.UTC
	}
	configuration.timezone = location
	configuration.rouletteQueueID = routerSection.Key("roulette-queue-id").String()
	configuration.queueCacheTTL = time.Duration(routerSection.Key("queue-cache-ttl-seconds").MustUint(30)) * time.Second
	configuration.actorHeaderName = routerSection.Key("actor-header-name").MustString("X-Lead-Router-Actor")
}

func setupRedistributionConfiguration(cfg *ini.File, configuration *Config) {
	section := cfg.Section("redistribution")
	configuration.throughputPerMinute = section.Key("throughput-per-minute").MustUint(60)
	if configuration.throughputPerMinute == 0 {
		configuration.throughputPerMinute = 60
	}
	configuration.jobRunnerInterval = time.Duration(section.Key("job-runner-interval-ms").MustUint(5000)) * time.Millisecond
	configuration.jobBatchSize = section.Key("job-batch-size").MustUint(10)
	configuration.maxImportQuantity = section.Key("max-import-quantity").MustUint(5000)
}

func setupSchedulerConfiguration(cfg *ini.File, configuration *Config) {
	section := cfg.Section("scheduler")
	configuration.heldRetryInterval = time.Duration(section.Key("held-retry-interval-ms").MustUint(30000)) * time.Millisecond
	configuration.heldRetryBatchSize = section.Key("held-retry-batch-size").MustUint(100)
}

func setupPruneConfiguration(cfg *ini.File, configuration *Config) {
	section := cfg.Section("prune")
	configuration.exportPath = section.Key("export-path").String()
	configuration.pruningEnabled = section.Key("enabled").MustBool(false) && len(configuration.exportPath) > 0
	configuration.exportNodeName = section.Key("export-node-name").String()
	configuration.auditRetentionDays = section.Key("audit-retention-days").MustUint(90)
	configuration.remoteFilePrefix = section.Key("remote-file-prefix").String()
	configuration.maxArchiveFileSizeInMB = section.Key("max-archive-file-size-in-mb").MustUint(100)
	if remoteURL := section.Key("remote-export-url").String(); len(remoteURL) > 0 {
		parsedURL, err := url.Parse(remoteURL)
		if err != nil {
			log.Warn().Err(err).Str("url", remoteURL).Msg("ignoring malformed remote export url")
		} else {
			configuration.remoteExportURL = parsedURL
		}
	}
}
