// Package integration provides integration testing utilities for the
// delivery backend. Tests run against a real PostgreSQL started with
// testcontainers and migrated with the project's SQL migrations.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is one migrated PostgreSQL container, owned by one test for
// full isolation. The container is terminated via t.Cleanup.
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts a fresh postgres container, connects and applies
// all migrations.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("lastmile_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, sqlDB := connectToDatabase(t, dsn)
	runMigrations(t, sqlDB)

	tdb := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(tdb.Close)

	return tdb
}

// Close closes the connection and terminates the container.
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	logMode := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logMode = logger.Info
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "Could not find migrations directory")

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "Failed to create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	require.NoError(t, err, "Failed to create migrate instance")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to run migrations")
	}
}

// findMigrationsPath walks up from this file until it finds the
// repository's migrations directory.
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// CreateTestOffice creates an office record for testing.
// Orders and employees reference offices, so most flows need at least one.
func (tdb *TestDB) CreateTestOffice(officeID uuid.UUID, cityCode, wardCode int) {
	tdb.t.Helper()

	code := fmt.Sprintf("OFC_%s", officeID.String()[:8])
	name := fmt.Sprintf("Test Office %s", officeID.String()[:8])

	err := tdb.DB.Exec(`
		INSERT INTO offices (id, created_at, updated_at, code, name, city_code, ward_code, active)
		VALUES (?, NOW(), NOW(), ?, ?, ?, ?, TRUE)
		ON CONFLICT (id) DO NOTHING
	`, officeID.String(), code, name, cityCode, wardCode).Error
	require.NoError(tdb.t, err, "Failed to create test office")
}

// CreateTestServiceType creates a service type record for testing.
// Rate brackets and fee configs reference service types.
func (tdb *TestDB) CreateTestServiceType(serviceTypeID uuid.UUID) {
	tdb.t.Helper()

	code := fmt.Sprintf("SVC_%s", serviceTypeID.String()[:8])
	name := fmt.Sprintf("Test Service %s", serviceTypeID.String()[:8])

	err := tdb.DB.Exec(`
		INSERT INTO service_types (id, created_at, updated_at, code, name, active)
		VALUES (?, NOW(), NOW(), ?, ?, TRUE)
		ON CONFLICT (id) DO NOTHING
	`, serviceTypeID.String(), code, name).Error
	require.NoError(tdb.t, err, "Failed to create test service type")
}

// CreateTestRateBracket creates an open-ended rate bracket so fee quoting works.
func (tdb *TestDB) CreateTestRateBracket(serviceTypeID uuid.UUID, region string, basePrice int64) {
	tdb.t.Helper()

	err := tdb.DB.Exec(`
		INSERT INTO rate_brackets (id, created_at, updated_at, service_type_id, region,
			weight_from_kg, weight_to_kg, unit_weight_kg, base_price, extra_price)
		VALUES (gen_random_uuid(), NOW(), NOW(), ?, ?, 0, NULL, 0.5, ?, 5000)
	`, serviceTypeID.String(), region, basePrice).Error
	require.NoError(tdb.t, err, "Failed to create test rate bracket")
}

// CreateTestUser creates a user record with the given role for testing.
func (tdb *TestDB) CreateTestUser(userID uuid.UUID, role string) {
	tdb.t.Helper()

	username := fmt.Sprintf("user_%s", userID.String()[:8])

	err := tdb.DB.Exec(`
		INSERT INTO users (id, created_at, updated_at, version, username, password_hash, role, status)
		VALUES (?, NOW(), NOW(), 1, ?, 'x', ?, 'active')
		ON CONFLICT (id) DO NOTHING
	`, userID.String(), username, role).Error
	require.NoError(tdb.t, err, "Failed to create test user")
}
