package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/dispatcher"
	"github.com/newscred/lead-router/prune"
	"github.com/newscred/lead-router/redistribution"
	"github.com/newscred/lead-router/scheduler"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	pruneInterval = 24 * time.Hour
)

var (
	// ErrMigrationSrcNotDir is returned when the migration source path is not a directory
	ErrMigrationSrcNotDir = errors.New("migration source is not a directory")

	exit           = os.Exit
	consolePrintln = func(output string) {
		fmt.Println(output)
	}
	getDataAccessor   = storage.GetNewDataAccessor
	seedQueues        = storage.SeedQueues
	pruneAuditEntries = prune.PruneAuditEntries
	processKiller     = utils.NewProcessKiller()
	restartRequested  atomic.Bool

	logLevels = map[config.LogLevel]zerolog.Level{
		config.Debug: zerolog.DebugLevel,
		config.Info:  zerolog.InfoLevel,
		config.Error: zerolog.ErrorLevel,
		config.Fatal: zerolog.FatalLevel,
	}
)

// HTTPServiceContainer wraps the HTTP server together with the services sharing its lifecycle
type HTTPServiceContainer struct {
	Configuration *config.Config
	DataAccessor  storage.DataAccessor
	Server        *http.Server
	Listener      *ServerLifecycleListenerImpl
	Dispatcher    dispatcher.LeadDispatcher
	JobRunner     redistribution.JobRunner
	Scheduler     scheduler.HeldLeadScheduler
	stopPruning   chan struct{}
}

// ServerLifecycleListenerImpl tracks the server so main can wait for its shutdown
type ServerLifecycleListenerImpl struct {
	shutdownListener chan bool
	startFailed      atomic.Bool
}

// NewServerListener creates a lifecycle listener
func NewServerListener() *ServerLifecycleListenerImpl {
	return &ServerLifecycleListenerImpl{shutdownListener: make(chan bool, 2)}
}

// StartingServer is called right before the server starts listening
func (impl *ServerLifecycleListenerImpl) StartingServer() {}

// ServerStartFailed is called when the server could not listen
func (impl *ServerLifecycleListenerImpl) ServerStartFailed(err error) {
	log.Error().Err(err).Msg("HTTP server could not be started")
	impl.startFailed.Store(true)
	impl.shutdownListener <- true
}

// ServerShutdownCompleted is called once the server has shut down
func (impl *ServerLifecycleListenerImpl) ServerShutdownCompleted() {
	impl.shutdownListener <- true
}

// WaitForShutdown blocks until the server stopped, either after an interrupt or a failed start
func (impl *ServerLifecycleListenerImpl) WaitForShutdown() {
	<-impl.shutdownListener
}

func main() {
	inConfig, output, err := parseArgs(os.Args[0], os.Args[1:])
	if err == flag.ErrHelp {
		consolePrintln(output)
		exit(1)
		return
	} else if err != nil {
		log.Error().Err(err).Msg(output)
		exit(1)
		return
	}
	inConfig.NotifyOnConfigFileChange(func() {
		restartRequested.Store(!inConfig.StopOnConfigChange)
		log.Info().Bool("restart", !inConfig.StopOnConfigChange).Msg("configuration file changed")
		if killErr := processKiller.Kill(os.Getpid(), syscall.SIGINT); killErr != nil {
			log.Error().Err(killErr).Msg("could not signal shutdown")
		}
	})
	defer inConfig.StopWatcher()

	configuration, err := config.GetConfiguration(inConfig.ConfigPath)
	if err != nil {
		log.Error().Err(err).Msg("could not load configuration")
		exit(2)
		return
	}
	setupLogger(configuration)
	log.Info().Str("version", string(GetAppVersion())).Msg("Lead Router")

	migrationConf := &storage.MigrationConfig{MigrationEnabled: inConfig.IsMigrationEnabled(), MigrationSource: inConfig.MigrationSource}
	dataAccessor, err := getDataAccessor(configuration, configuration, migrationConf, configuration)
	if err != nil {
		log.Error().Err(err).Msg("could not connect to the database")
		exit(3)
		return
	}
	defer dataAccessor.Close()

	for run(configuration, dataAccessor) {
		log.Info().Msg("restarting with the new configuration")
		if configuration, err = config.GetConfiguration(inConfig.ConfigPath); err != nil {
			log.Error().Err(err).Msg("could not reload configuration")
			exit(2)
			return
		}
		setupLogger(configuration)
	}
}

// run seeds the queues, starts the router and blocks until the server shuts down; it returns true when
// the router should start again with a reloaded configuration. The connection pool outlives restarts.
func run(configuration *config.Config, dataAccessor storage.DataAccessor) bool {
	restartRequested.Store(false)
	if err := seedQueues(dataAccessor, configuration); err != nil {
		log.Error().Err(err).Msg("could not seed queues")
		exit(4)
		return false
	}

	httpServiceContainer, err := GetHTTPServer(configuration, dataAccessor)
	if err != nil {
		log.Error().Err(err).Msg("could not build the router")
		exit(5)
		return false
	}
	httpServiceContainer.startBackgroundServices()
	httpServiceContainer.Listener.WaitForShutdown()
	httpServiceContainer.stopBackgroundServices()
	if httpServiceContainer.Listener.startFailed.Load() {
		exit(6)
		return false
	}
	return restartRequested.Load()
}

func (container *HTTPServiceContainer) startBackgroundServices() {
	container.JobRunner.Start()
	container.Scheduler.Start()
	container.stopPruning = make(chan struct{})
	if container.Configuration.IsPruningEnabled() {
		go runPruning(container.DataAccessor.GetAuditRepository(), container.Configuration, container.stopPruning)
	}
}

func (container *HTTPServiceContainer) stopBackgroundServices() {
	close(container.stopPruning)
	container.Scheduler.Stop()
	container.JobRunner.Stop()
	container.Dispatcher.Stop()
}

func runPruning(auditRepo storage.AuditRepository, pruneConfig config.AuditPruningConfig, stop <-chan struct{}) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		if _, err := pruneAuditEntries(auditRepo, pruneConfig); err != nil {
			log.Error().Err(err).Msg("audit pruning failed")
		}
		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}
}

func parseArgs(programName string, args []string) (cliConfig *config.CLIConfig, output string, err error) {
	flags := flag.NewFlagSet(programName, flag.ContinueOnError)
	var buf bytes.Buffer
	flags.SetOutput(&buf)

	var conf config.CLIConfig
	flags.StringVar(&conf.ConfigPath, "config", "", "Config file location")
	flags.StringVar(&conf.MigrationSource, "migrate", "", "Migration source folder")
	flags.BoolVar(&conf.StopOnConfigChange, "stop-on-conf-change", false, "Shut down instead of restarting when the config file changes")
	flags.BoolVar(&conf.DoNotWatchConfigChange, "do-not-watch-conf-change", false, "Do not watch the config file for changes")

	err = flags.Parse(args)
	if err != nil {
		return nil, buf.String(), err
	}

	if len(conf.MigrationSource) > 0 {
		var absPath string
		absPath, err = filepath.Abs(conf.MigrationSource)
		if err != nil {
			return nil, "could not resolve migration source", err
		}
		fileInfo, statErr := os.Stat(absPath)
		if statErr != nil {
			return nil, "could not read migration source", statErr
		}
		if !fileInfo.IsDir() {
			return nil, "migration source must be a directory", ErrMigrationSrcNotDir
		}
		conf.MigrationSource = "file://" + absPath
	}

	return &conf, buf.String(), nil
}

func setupLogger(logConfig config.LogConfig) {
	level, ok := logLevels[logConfig.GetLogLevel()]
	if !ok {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if logConfig.IsLoggerConfigAvailable() {
		writer := &lumberjack.Logger{
			Filename:   logConfig.GetLogFilename(),
			MaxSize:    int(logConfig.GetMaxLogFileSize()),
			MaxBackups: int(logConfig.GetMaxLogBackups()),
			MaxAge:     int(logConfig.GetMaxAgeForALogFile()),
			Compress:   logConfig.IsCompressionEnabledOnLogBackups(),
		}
		log.Logger = zerolog.New(writer).With().Timestamp().Logger()
		stdlog.SetFlags(0)
		stdlog.SetOutput(log.Logger)
	}
}
