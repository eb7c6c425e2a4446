package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migrate_mysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migrate_sqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/google/wire"
	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/storage/data"

	// MySQL DB Driver
	_ "github.com/go-sql-driver/mysql"
	// SQLite3 DB Driver
	_ "github.com/mattn/go-sqlite3"
	// File as a source for migration
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationConfig represents the DB migration config
type MigrationConfig struct {
	MigrationEnabled bool
	MigrationSource  string
}

// RelationalDBDataAccessor represents the DataAccessor implementation for RDBMS
type RelationalDBDataAccessor struct {
	appRepository               AppRepository
	queueRepository             QueueRepository
	poolLeadRepository          PoolLeadRepository
	auditRepository             AuditRepository
	redistributionJobRepository RedistributionJobRepository
	lockRepository              LockRepository
	db                          *sql.DB
}

// GetAppRepository returns the AppRepository to be used for App ops
func (rdbmsDataAccessor *RelationalDBDataAccessor) GetAppRepository() AppRepository {
	return rdbmsDataAccessor.appRepository
}

// GetQueueRepository returns the QueueRepository to be used for Queue ops
func (rdbmsDataAccessor *RelationalDBDataAccessor) GetQueueRepository() QueueRepository {
	return rdbmsDataAccessor.queueRepository
}

// GetPoolLeadRepository returns the repository of the held pool and the archive
func (rdbmsDataAccessor *RelationalDBDataAccessor) GetPoolLeadRepository() PoolLeadRepository {
	return rdbmsDataAccessor.poolLeadRepository
}

// GetAuditRepository returns the audit log repository
func (rdbmsDataAccessor *RelationalDBDataAccessor) GetAuditRepository() AuditRepository {
	return rdbmsDataAccessor.auditRepository
}

// GetRedistributionJobRepository returns the repository of redistribution jobs
func (rdbmsDataAccessor *RelationalDBDataAccessor) GetRedistributionJobRepository() RedistributionJobRepository {
	return rdbmsDataAccessor.redistributionJobRepository
}

// GetLockRepository retrieves the LockRepository to be used for Lock ops
func (rdbmsDataAccessor *RelationalDBDataAccessor) GetLockRepository() LockRepository {
	return rdbmsDataAccessor.lockRepository
}

// Close closes the connection to DB
func (rdbmsDataAccessor *RelationalDBDataAccessor) Close() {
	if closeable, ok := rdbmsDataAccessor.queueRepository.(*CachedQueueRepository); ok {
		closeable.Close()
	}
	rdbmsDataAccessor.db.Close()
}

type orderByClause string
type limitOption string

const (
	insertStatement                               = "INSERT INTO app (id, seedData, appStatus) VALUES (?, ?, ?)"
	selectStatement                               = "SELECT seedData, appStatus FROM app WHERE id = 1"
	startInitUpdateStatement                      = `UPDATE app SET seedData = ?, appStatus = ? WHERE id = 1 AND appStatus != ?`
	completeInitUpdateStatement                   = `UPDATE app SET appStatus = ? WHERE id = 1 AND appStatus = ?`
	optimisticLockInitAppErrMsg                   = "initializing began in another app in the meantime"
	optimisticLockCompleteAppErrMsg               = "initializing not started so can not complete"
	limit25Suffix                   limitOption   = " LIMIT 25"
	baseOrderByClause               orderByClause = "ORDER BY createdAt desc, id desc"
	pageSizeWithOrder               orderByClause = baseOrderByClause + orderByClause(limit25Suffix)
	mysqlDuplicateKeyErrorNumber                  = 1062
)

var (
	// ErrOptimisticAppInit represents the Error when optimistically update fails to start app init
	ErrOptimisticAppInit = errors.New(optimisticLockInitAppErrMsg)
	// ErrOptimisticAppComplete represents the Error when app complete attempted from not initializing state
	ErrOptimisticAppComplete = errors.New(optimisticLockCompleteAppErrMsg)
	// ErrAppInitializing is returned when app is being initialized by another thread.
	ErrAppInitializing = errors.New("app is in initializing")
	// ErrNoDataChangeFromInitialized is returned when initialization is attempted without any seed data change while app has been initialized
	ErrNoDataChangeFromInitialized = errors.New("no data change on initialized App")
	// ErrCompleteWhileNotBeingInitialized is returned when complete is called without being initialized
	ErrCompleteWhileNotBeingInitialized = errors.New("app not initializing to complete initializing")
	// ErrNoRowsUpdated is returned when a UPDATE query does not change any row which is unexpected
	ErrNoRowsUpdated = errors.New("no rows updated on UPDATE query")
	// ErrInvalidStateToSave is returned when a data is not in a state we can send it to the repo as
	ErrInvalidStateToSave = errors.New("data model in invalid state to be stored")
	// ErrPaginationDeadlock is returned if both after and before is provided in pagination
	ErrPaginationDeadlock = errors.New("can not decide on pagination direction! Both after and before provided or pagination is nil")
)

// AppDBRepository is the repository to access App data
type AppDBRepository struct {
	db *sql.DB
}

// InitAppData initializes only and only if none present in DB with status NotInitialized. Error if insertion fails.
func (appRep *AppDBRepository) InitAppData(seedData *config.SeedData) error {
	_, err := appRep.GetApp()
	if err == nil {
		return nil
	}
	initialState := data.NotInitialized
	return transactionalSingleRowWriteExec(appRep.db, emptyOps, insertStatement, args2SliceFnWrapper(1, seedData, &initialState))
}

// GetApp retrieves the App from storage, it will never return nil
func (appRep *AppDBRepository) GetApp() (*data.App, error) {
	seedData := &config.SeedData{}
	appStatus := data.NotInitialized
	err := querySingleRow(appRep.db, selectStatement, nilArgs, args2SliceFnWrapper(seedData, &appStatus))
	return data.NewApp(seedData, appStatus), err
}

// StartAppInit stores state that App initialization started. It will return error if App is in Initializing state or if data hash is equal and app in initialized state
func (appRep *AppDBRepository) StartAppInit(seedData *config.SeedData) error {
	var appErr error
	currentApp, err := appRep.GetApp()
	if err != nil {
		return err
	}
	if currentApp.GetStatus() == data.Initializing {
		appErr = ErrAppInitializing
	}
	if currentApp.GetSeedData().DataHash == seedData.DataHash && currentApp.GetStatus() == data.Initialized {
		appErr = ErrNoDataChangeFromInitialized
	}
	if appErr == nil {
		appErr = transactionalSingleRowWriteExec(appRep.db, emptyOps, startInitUpdateStatement, args2SliceFnWrapper(*seedData, data.Initializing, data.Initializing))
		if appErr == ErrNoRowsUpdated {
			appErr = ErrOptimisticAppInit
		}
	}
	return appErr
}

// CompleteAppInit stores that App initialization completed; it will return error if app is not in initializing state before the update is made
func (appRep *AppDBRepository) CompleteAppInit() error {
	currentApp, err := appRep.GetApp()
	if err != nil {
		return err
	}
	if currentApp.GetStatus() != data.Initializing {
		return ErrCompleteWhileNotBeingInitialized
	}
	appErr := transactionalSingleRowWriteExec(appRep.db, emptyOps, completeInitUpdateStatement, args2SliceFnWrapper(data.Initialized, data.Initializing))
	if appErr == ErrNoRowsUpdated {
		appErr = ErrOptimisticAppComplete
	}
	return appErr
}

var (
	db                      *sql.DB
	dataAccessorInitializer sync.Once
	// ErrDBConnectionNeverInitialized is returned when same NewDataAccessor is called the first time and it failed to connec to DB; in all subsequent calls the accessor will remain nil
	ErrDBConnectionNeverInitialized = errors.New("DB Connection never initialized")
	// RDBMSStorageInternalInjector injector for data storage related implementation
	RDBMSStorageInternalInjector = wire.NewSet(GetConnectionPool, GetQueueCacheTTL, NewLockRepository, NewAppRepository, NewQueueRepository,
		NewCachedQueueRepository, NewPoolLeadRepository, NewAuditRepository, NewRedistributionJobRepository,
		wire.Struct(new(RelationalDBDataAccessor), "db", "appRepository", "queueRepository", "poolLeadRepository", "auditRepository",
			"redistributionJobRepository", "lockRepository"), wire.Bind(new(DataAccessor), new(*RelationalDBDataAccessor)))
)

// QueueCacheTTL is how long queue reads are served from memory
type QueueCacheTTL time.Duration

// GetQueueCacheTTL reads the queue cache TTL from configuration
func GetQueueCacheTTL(routerConfig config.RouterConfig) QueueCacheTTL {
	return QueueCacheTTL(routerConfig.GetQueueCacheTTL())
}

func panicIfNoDBConnectionPool(db *sql.DB) {
	if db == nil {
		panic(ErrDBConnectionNeverInitialized)
	}
}

// NewAppRepository retrieves App Repository
func NewAppRepository(db *sql.DB) AppRepository {
	panicIfNoDBConnectionPool(db)
	return &AppDBRepository{db: db}
}

// GetConnectionPool Gets the DB Connection Pool for the App
func GetConnectionPool(dbConfig config.RelationalDatabaseConfig, migrationConf *MigrationConfig, seedDataConfig config.SeedDataConfig) (*sql.DB, error) {
	return getConnectionPoolImpl(dbConfig, migrationConf, seedDataConfig)
}

var (
	getConnectionPoolImpl = func(dbConfig config.RelationalDatabaseConfig, migrationConf *MigrationConfig, seedDataConfig config.SeedDataConfig) (*sql.DB, error) {
		var err error
		dataAccessorInitializer.Do(func() {
			db, err = createDBConnectionPool(dbConfig)
			if err == nil {
				err = runMigration(db, dbConfig, migrationConf)
				if err == nil {
					appRepo := &AppDBRepository{db: db}
					seedData := seedDataConfig.GetSeedData()
					err = appRepo.InitAppData(&seedData)
				}
			}
		})
		if db == nil && err == nil {
			err = ErrDBConnectionNeverInitialized
		}
		return db, err
	}

	createDBConnectionPool = func(dbConfig config.RelationalDatabaseConfig) (*sql.DB, error) {
		db, err := getDB(string(dbConfig.GetDBDialect()), dbConfig.GetDBConnectionURL())
		if err == nil {
			db.SetConnMaxLifetime(dbConfig.GetDBConnectionMaxLifetime())
			db.SetMaxIdleConns(int(dbConfig.GetMaxIdleDBConnections()))
			db.SetMaxOpenConns(int(dbConfig.GetMaxOpenDBConnections()))
			db.SetConnMaxIdleTime(dbConfig.GetDBConnectionMaxIdleTime())
		}
		return db, err
	}

	getDB = func(dialect, connectionURL string) (*sql.DB, error) {
		return sql.Open(dialect, connectionURL)
	}

	runMigration = func(db *sql.DB, dbConfig config.RelationalDatabaseConfig, migrationConf *MigrationConfig) error {
		if !migrationConf.MigrationEnabled {
			return nil
		}
		dbDriver, err := getMigrationDriver(db, dbConfig)
		if err != nil {
			return err
		}
		dialect := string(dbConfig.GetDBDialect())
		sourceDriver, err := NewDialectSource(migrationConf.MigrationSource, dialect)
		if err != nil {
			return err
		}
		migration, err := getMigration(sourceDriver, dialect, dbDriver)
		if err != nil {
			return err
		}
		err = migration.Up()
		if err != nil && err != migrate.ErrNoChange {
			return err
		}
		return nil
	}

	getMigration = func(sourceDriver *DialectSource, dialect string, dbDriver database.Driver) (*migrate.Migrate, error) {
		return migrate.NewWithInstance("dialect", sourceDriver, dialect, dbDriver)
	}

	getMigrationDriver = func(db *sql.DB, dbConfig config.RelationalDatabaseConfig) (database.Driver, error) {
		switch dbConfig.GetDBDialect() {
		case config.MySQLDialect:
			return migrate_mysql.WithInstance(db, &migrate_mysql.Config{})
		default:
			return migrate_sqlite3.WithInstance(db, &migrate_sqlite3.Config{})
		}
	}

	rollback = func(tx *sql.Tx) {
		txErr := tx.Rollback()
		if txErr != nil {
			log.Error().Err(txErr).Msg("tx rollback error")
		}
	}

	transactionalOperations = func(db *sql.DB, txOps func(tx *sql.Tx) error) (err error) {
		var tx *sql.Tx
		tx, err = db.Begin()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Msg(fmt.Sprint("recovered from in-tx panic", r))
				rollback(tx)
				err = fmt.Errorf("in-tx panic: %v", r)
			}
		}()
		if err == nil {
			err = txOps(tx)
			if err == nil {
				txErr := tx.Commit()
				if txErr != nil {
					log.Error().Err(txErr).Msg("tx commit error")
					err = txErr
				}
			} else {
				rollback(tx)
			}
		}
		return err
	}

	inTransactionExec = func(tx *sql.Tx, prequeryOps func(), query string, arguments func() []interface{}, expectedRowEffected int64) (err error) {
		prequeryOps()
		var result sql.Result
		result, err = tx.Exec(query, arguments()...)
		if err == nil {
			var rowsAffected int64
			if rowsAffected, err = result.RowsAffected(); expectedRowEffected > 0 && rowsAffected != expectedRowEffected && err == nil {
				err = ErrNoRowsUpdated
			}
		}
		return err
	}

	getTxWrapperForSingleWriteQuery = func(prequeryOps func(), query string, arguments func() []interface{}) func(tx *sql.Tx) error {
		return func(tx *sql.Tx) error {
			return inTransactionExec(tx, prequeryOps, query, arguments, int64(1))
		}
	}

	transactionalSingleRowWriteExec = func(db *sql.DB, prequeryOps func(), query string, arguments func() []interface{}) error {
		return transactionalWrites(db, getTxWrapperForSingleWriteQuery(prequeryOps, query, arguments))
	}

	transactionalWrites = func(db *sql.DB, ops ...func(tx *sql.Tx) error) error {
		return transactionalOperations(db, func(tx *sql.Tx) (err error) {
			for _, op := range ops {
				err = op(tx)
				if err != nil {
					break
				}
			}
			return err
		})
	}

	getPaginationQueryFragmentWithConfigurablePageSize = func(page *data.Pagination, append bool, orderByQueryClause orderByClause) string {
		query := " "
		if page.Next != nil {
			if append {
				query = query + "AND "
			} else {
				query = query + "WHERE "
			}
			query = query + "id < ? AND createdAt <= ? "
		}
		if page.Previous != nil {
			if append || page.Next != nil {
				query = query + "AND "
			} else {
				query = query + "WHERE "
			}
			query = query + "id > ? AND createdAt >= ? "
		}
		query = query + string(orderByQueryClause)
		return query
	}

	getPaginationQueryFragment = func(page *data.Pagination, append bool) string {
		return getPaginationQueryFragmentWithConfigurablePageSize(page, append, pageSizeWithOrder)
	}

	getPaginationQueryArgs = func(page *data.Pagination) []interface{} {
		args := make([]interface{}, 0, 4)
		if page.Next != nil {
			args = append(args, page.Next.ID, page.Next.Timestamp)
		}
		if page.Previous != nil {
			args = append(args, page.Previous.ID, page.Previous.Timestamp)
		}
		return args
	}

	querySingleRow = func(db *sql.DB, query string, queryArgs func() []interface{}, scanArgs func() []interface{}) error {
		row := db.QueryRow(query, queryArgs()...)
		return row.Scan(scanArgs()...)
	}

	queryRows = func(db *sql.DB, query string, queryArgs func() []interface{}, scanArgs func() []interface{}) error {
		rows, err := db.Query(query, queryArgs()...)
		if err != nil {
			return err
		}
		defer func() { rows.Close() }()
		for rows.Next() {
			err = rows.Scan(scanArgs()...)
			if err != nil {
				return err
			}
		}
		return rows.Err()
	}

	appendWithPaginationArgs = func(page *data.Pagination, args ...interface{}) []interface{} {
		return append(args, getPaginationQueryArgs(page)...)
	}

	nilArgs             = func() []interface{} { return nil }
	emptyOps            = func() {}
	args2SliceFnWrapper = func(args ...interface{}) func() []interface{} {
		return func() []interface{} { return args }
	}
)

func isPaginationInvalid(page *data.Pagination) bool {
	return page == nil || (page.Next != nil && page.Previous != nil)
}

// inClause returns `(?, ?, ...)` with count placeholders
func inClause(count int) string {
	if count <= 0 {
		return "(NULL)"
	}
	placeholders := make([]byte, 0, count*3)
	placeholders = append(placeholders, '(')
	for index := 0; index < count; index++ {
		if index > 0 {
			placeholders = append(placeholders, ',', ' ')
		}
		placeholders = append(placeholders, '?')
	}
	placeholders = append(placeholders, ')')
	return string(placeholders)
}
