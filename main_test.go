package main

import (
	"bytes"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/controllers"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	storagemocks "github.com/newscred/lead-router/storage/mocks"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

const (
	testDBFile  = "./lead-router.sqlite3"
	testLogFile = "./log-setup-test-output.log"
)

func TestGetAppVersion(t *testing.T) {
	assert.Equal(t, string(GetAppVersion()), "0.1-dev")
}

var mainFunctionBreaker = func(stop *chan os.Signal) {
	go func() {
		var client = &http.Client{Timeout: time.Second * 10}
		defer func() {
			client.CloseIdleConnections()
		}()
		for {
			response, err := client.Get("http://localhost:8080/_status")
			if err == nil {
				response.Body.Close()
				if response.StatusCode == http.StatusOK {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
		}
		*stop <- os.Interrupt
	}()
}

var panicExit = func(code int) {
	panic(code)
}

func expectExit(t *testing.T, code int) {
	if r := recover(); r != nil {
		assert.Equal(t, code, r.(int))
	} else {
		t.Error("expected exit", code)
	}
}

func TestMainFunc(t *testing.T) {
	os.Remove(testDBFile)
	t.Run("HelpError", func(t *testing.T) {
		oldExit := exit
		oldArgs := os.Args
		oldConsole := consolePrintln
		defer func() {
			exit = oldExit
			os.Args = oldArgs
			consolePrintln = oldConsole
		}()
		exit = panicExit
		consolePrintln = func(output string) {
			assert.Contains(t, output, "Usage of")
			assert.Contains(t, output, "-config")
			assert.Contains(t, output, "-migrate")
			assert.Contains(t, output, "-stop-on-conf-change")
		}
		os.Args = []string{"lead-router", "-h"}
		func() {
			defer expectExit(t, 1)
			main()
		}()
	})
	t.Run("ParseError", func(t *testing.T) {
		oldExit := exit
		oldArgs := os.Args
		defer func() {
			exit = oldExit
			os.Args = oldArgs
		}()
		exit = panicExit
		os.Args = []string{"lead-router", "-migrate1=test"}
		func() {
			defer expectExit(t, 1)
			main()
		}()
	})
	t.Run("DataAccessorErr", func(t *testing.T) {
		oldExit := exit
		oldArgs := os.Args
		oldGetDataAccessor := getDataAccessor
		defer func() {
			exit = oldExit
			os.Args = oldArgs
			getDataAccessor = oldGetDataAccessor
		}()
		exit = panicExit
		getDataAccessor = func(config.RelationalDatabaseConfig, config.RouterConfig, *storage.MigrationConfig, config.SeedDataConfig) (storage.DataAccessor, error) {
			return nil, errors.New("no database")
		}
		os.Args = []string{"lead-router", "-do-not-watch-conf-change"}
		func() {
			defer expectExit(t, 3)
			main()
		}()
	})
	t.Run("SeedErr", func(t *testing.T) {
		oldExit := exit
		oldArgs := os.Args
		oldGetDataAccessor := getDataAccessor
		oldSeedQueues := seedQueues
		defer func() {
			exit = oldExit
			os.Args = oldArgs
			getDataAccessor = oldGetDataAccessor
			seedQueues = oldSeedQueues
		}()
		dataAccessor := storagemocks.NewDataAccessor(t)
		dataAccessor.On("Close").Return().Once()
		exit = panicExit
		getDataAccessor = func(config.RelationalDatabaseConfig, config.RouterConfig, *storage.MigrationConfig, config.SeedDataConfig) (storage.DataAccessor, error) {
			return dataAccessor, nil
		}
		seedQueues = func(storage.DataAccessor, config.SeedDataConfig) error {
			return storage.ErrOptimisticAppComplete
		}
		os.Args = []string{"lead-router", "-do-not-watch-conf-change"}
		func() {
			defer expectExit(t, 4)
			main()
		}()
	})
	t.Run("SuccessRun", func(t *testing.T) {
		var buf bytes.Buffer
		oldLogger := log.Logger
		log.Logger = zerolog.New(&buf)
		oldArgs := os.Args
		os.Args = []string{"lead-router", "-migrate", "./migration/sqls/", "-do-not-watch-conf-change"}
		oldNotify := controllers.NotifyOnInterrupt
		oldSeedQueues := seedQueues
		controllers.NotifyOnInterrupt = mainFunctionBreaker
		defer func() {
			log.Logger = oldLogger
			os.Args = oldArgs
			controllers.NotifyOnInterrupt = oldNotify
			seedQueues = oldSeedQueues
		}()
		var app *data.App
		var queue *data.Queue
		var appErr, queueErr error
		seedQueues = func(dataAccessor storage.DataAccessor, seedDataConfig config.SeedDataConfig) error {
			err := storage.SeedQueues(dataAccessor, seedDataConfig)
			app, appErr = dataAccessor.GetAppRepository().GetApp()
			queue, queueErr = dataAccessor.GetQueueRepository().Get("sample-queue")
			return err
		}
		main()
		logString := buf.String()
		assert.Contains(t, logString, "Lead Router")
		assert.Contains(t, logString, string(GetAppVersion()))
		assert.Nil(t, appErr)
		assert.Equal(t, data.Initialized, app.GetStatus())
		assert.Nil(t, queueErr)
		assert.Equal(t, "Sample Queue", queue.Name)
	})
}

func TestParseArgs(t *testing.T) {
	absPath, _ := filepath.Abs("./migration")
	t.Run("FlagParseError", func(t *testing.T) {
		t.Parallel()
		_, _, err := parseArgs("lead-router", []string{"-migrate1", "no such path"})
		assert.NotNil(t, err)
	})
	t.Run("Help", func(t *testing.T) {
		t.Parallel()
		_, output, err := parseArgs("lead-router", []string{"-h"})
		assert.Equal(t, flag.ErrHelp, err)
		assert.Contains(t, output, "-do-not-watch-conf-change")
	})
	t.Run("NonExistentMigrationSource", func(t *testing.T) {
		t.Parallel()
		_, _, err := parseArgs("lead-router", []string{"-migrate", "no such path"})
		assert.NotNil(t, err)
	})
	t.Run("MigrationSourceNotDir", func(t *testing.T) {
		t.Parallel()
		_, _, err := parseArgs("lead-router", []string{"-migrate", "./main.go"})
		assert.NotNil(t, err)
		assert.Equal(t, err, ErrMigrationSrcNotDir)
	})
	t.Run("ValidMigrationSourceRelative", func(t *testing.T) {
		t.Parallel()
		cliConfig, _, err := parseArgs("lead-router", []string{"-migrate", "./migration"})
		assert.Nil(t, err)
		assert.True(t, cliConfig.IsMigrationEnabled())
		assert.Equal(t, "file://"+absPath, cliConfig.MigrationSource)
	})
	t.Run("ValidMigrationSourceAbs", func(t *testing.T) {
		t.Parallel()
		cliConfig, _, err := parseArgs("lead-router", []string{"-migrate", absPath})
		assert.Nil(t, err)
		assert.True(t, cliConfig.IsMigrationEnabled())
		assert.Equal(t, "file://"+absPath, cliConfig.MigrationSource)
	})
	t.Run("WatcherFlags", func(t *testing.T) {
		t.Parallel()
		cliConfig, _, err := parseArgs("lead-router", []string{"-config", "./custom.cfg", "-stop-on-conf-change", "-do-not-watch-conf-change"})
		assert.Nil(t, err)
		assert.False(t, cliConfig.IsMigrationEnabled())
		assert.Equal(t, "./custom.cfg", cliConfig.ConfigPath)
		assert.True(t, cliConfig.StopOnConfigChange)
		assert.True(t, cliConfig.DoNotWatchConfigChange)
	})
}

type MockLogConfig struct {
}

func (m MockLogConfig) GetLogLevel() config.LogLevel           { return config.Info }
func (m MockLogConfig) GetLogFilename() string                 { return testLogFile }
func (m MockLogConfig) GetMaxLogFileSize() uint                { return 10 }
func (m MockLogConfig) GetMaxLogBackups() uint                 { return 1 }
func (m MockLogConfig) GetMaxAgeForALogFile() uint             { return 1 }
func (m MockLogConfig) IsCompressionEnabledOnLogBackups() bool { return true }
func (m MockLogConfig) IsLoggerConfigAvailable() bool          { return true }

func TestSetupLog(t *testing.T) {
	_, err := os.Stat(testLogFile)
	if err == nil {
		os.Remove(testLogFile)
	}
	oldLogger := log.Logger
	defer func() {
		log.Logger = oldLogger
		stdlog.SetOutput(os.Stderr)
		stdlog.SetFlags(stdlog.LstdFlags)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		os.Remove(testLogFile)
	}()
	setupLogger(&MockLogConfig{})
	stdlog.Println("unit test")
	log.Debug().Msg("filtered out")
	log.Info().Str("queueId", "q1").Msg("structured")
	dat, err := os.ReadFile(testLogFile)
	assert.Nil(t, err)
	assert.Contains(t, string(dat), "unit test")
	assert.Contains(t, string(dat), `"queueId":"q1"`)
	assert.NotContains(t, string(dat), "filtered out")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestServerLifecycleListener(t *testing.T) {
	t.Run("StartFailed", func(t *testing.T) {
		listener := NewServerListener()
		listener.StartingServer()
		listener.ServerStartFailed(errors.New("address in use"))
		listener.WaitForShutdown()
		assert.True(t, listener.startFailed.Load())
	})
	t.Run("ShutdownCompleted", func(t *testing.T) {
		listener := NewServerListener()
		listener.ServerShutdownCompleted()
		listener.WaitForShutdown()
		assert.False(t, listener.startFailed.Load())
	})
}

func TestRunPruning(t *testing.T) {
	oldPrune := pruneAuditEntries
	defer func() {
		pruneAuditEntries = oldPrune
	}()
	var calls atomic.Int32
	stop := make(chan struct{})
	pruneAuditEntries = func(storage.AuditRepository, config.AuditPruningConfig) (int, error) {
		if calls.Add(1) == 1 {
			close(stop)
		}
		return 0, errors.New("bucket unavailable")
	}
	done := make(chan struct{})
	go func() {
		runPruning(storagemocks.NewAuditRepository(t), &config.Config{}, stop)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pruning loop did not stop")
	}
	assert.Equal(t, int32(1), calls.Load())
}
