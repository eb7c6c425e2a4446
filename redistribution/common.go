package redistribution

import (
	"errors"

	"github.com/google/wire"
)

const (
	panicString = "parameters null"
)

var (
	// RedistributionInjector is the injector for the redistribution module
	RedistributionInjector = wire.NewSet(NewWorker, NewJobRunner,
		wire.Struct(new(Configuration), "PoolLeadRepo", "JobRepo", "LockRepo", "Router", "RedistributionConfig", "Metrics"))
	// ErrInvalidImport is returned for an import without quantity, above the maximum or with unreadable CSV
	ErrInvalidImport = errors.New("invalid import payload")
	// ErrEmptySelection is returned for a selection naming neither lead ids nor a filter
	ErrEmptySelection = errors.New("selection needs lead ids or a filter")
)
