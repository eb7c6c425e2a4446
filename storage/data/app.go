package data

import (
	"database/sql/driver"
	"errors"

	"github.com/newscred/lead-router/config"
)

// AppStatus represents the status of this App
type AppStatus int

const (
	// NotInitialized is when the App is just started and no initialization ever happened
	NotInitialized AppStatus = iota + 1
	// Initializing is when App has started to run the initializing process
	Initializing
	// Initialized is when init process is completed for the App
	Initialized
)

// Scan reads the status from an integer column
func (status *AppStatus) Scan(value interface{}) error {
	intValue, ok := value.(int64)
	if !ok {
		return errors.New("AppStatus must be an integer")
	}
	*status = AppStatus(intValue)
	return nil
}

// Value writes the status as an integer column
func (status AppStatus) Value() (driver.Value, error) {
	return int64(status), nil
}

// App represents this application state for cross cluster use
type App struct {
	seedData *config.SeedData
	status   AppStatus
}

// GetStatus retrieves the current status of the App
func (app *App) GetStatus() AppStatus {
	return app.status
}

// GetSeedData retrieves the seed data the App was initialized with. In NotInitialized status it can be nil
func (app *App) GetSeedData() *config.SeedData {
	return app.seedData
}

// NewApp initializes a new App instance
func NewApp(seedData *config.SeedData, status AppStatus) *App {
	return &App{seedData: seedData, status: status}
}
