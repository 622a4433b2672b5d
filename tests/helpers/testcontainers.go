// Helpers for running integration tests against a real PostgreSQL
// instance via testcontainers. Tests that use these skip when no
// Docker daemon is reachable.

package helpers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/EliseTrad/gradapptracker/data"
	"github.com/EliseTrad/gradapptracker/internal/config"
)

const (
	testDBName     = "gradapptracker_test"
	testDBUser     = "gradapp"
	testDBPassword = "gradapp_test_pw"
)

type TestContainers struct {
	PostgresContainer testcontainers.Container
	Host              string
	Port              nat.Port
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.PostgresContainer != nil {
		if err := tc.PostgresContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Postgres: %v", err)
		}
	}
}

// Config returns a service configuration pointing at the container.
func (tc *TestContainers) Config(uploadDir string) *config.Config {
	return &config.Config{
		Port:              "0",
		DBType:            "postgres",
		DBHost:            tc.Host,
		DBPort:            tc.Port.Port(),
		DBDatabase:        testDBName,
		DBUser:            testDBUser,
		DBPassword:        testDBPassword,
		DBConnectionLimit: 5,
		JWTSecret:         "integration-test-secret",
		JWTExpiry:         time.Hour,
		UploadDir:         uploadDir,
	}
}

// DockerAvailable reports whether a Docker daemon is reachable.
func DockerAvailable() bool {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = cli.Ping(ctx)
	return err == nil
}

// CreatePostgresContainer starts a PostgreSQL container, applies the
// init DDL, and returns the connection coordinates.
func CreatePostgresContainer(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	image := os.Getenv("DB_IMAGE")
	if image == "" {
		image = "postgres:16-alpine"
	}

	tcpDbPort, err := nat.NewPort("tcp", "5432")
	if err != nil {
		exitWithError(t, err, "Failed to create DB port")
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if os.Getenv("DEBUG_CONTAINER") == "true" {
			// Pin the mapped port so psql sessions survive container restarts
			hostConfig.PortBindings = nat.PortMap{
				tcpDbPort: []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: "55432"},
				},
			}
		}
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"POSTGRES_DB":       testDBName,
				"POSTGRES_USER":     testDBUser,
				"POSTGRES_PASSWORD": testDBPassword,
			},
			HostConfigModifier: hostConfigModifier,
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort(tcpDbPort),
			).WithStartupTimeoutDefault(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		exitWithError(t, err, "Failed to start Postgres")
	}
	testContainers.PostgresContainer = pgContainer

	host, err := pgContainer.Host(ctx)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to resolve container host")
	}
	mappedPort, err := pgContainer.MappedPort(ctx, tcpDbPort)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to resolve mapped port")
	}
	testContainers.Host = host
	testContainers.Port = mappedPort

	if err := performPostgresDBInit(t, testContainers); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to initialize database")
	}

	logMessage(t, "Postgres testcontainer started at %s:%s", host, mappedPort.Port())
	return testContainers, nil
}

func performPostgresDBInit(t *testing.T, tc *TestContainers) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		tc.Host, testDBUser, testDBPassword, testDBName, tc.Port.Port())

	var db *gorm.DB
	var err error
	for i := 0; i < 30; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("postgres not ready after 30 seconds: %w", err)
	}

	if err := executeSQL(db, data.InitdbPostgres); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func executeSQL(db *gorm.DB, script string) error {
	lines := strings.Split(script, "\n")

	var ncls []string
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		ncls = append(ncls, l)
	}

	joined := strings.Join(ncls, "\n")
	queries := strings.Split(joined, ";")

	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if err := db.Exec(q).Error; err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
