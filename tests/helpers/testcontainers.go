// Helper for running tests against the full container stack: a MySQL
// database plus the queryvault service image. Used by the integration and
// e2e tests and by the cmd/testcontainers dev tool.
// Expects environment variables to be loaded from .env files.

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/queryvault/queryvault/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainers owns the container stack for one test run.
type TestContainers struct {
	Network          *testcontainers.DockerNetwork
	DBContainer      testcontainers.Container
	ServiceContainer testcontainers.Container
	ServiceBaseURL   string
	DBHostPort       string
}

// Terminate tears the stack down in reverse start order.
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.ServiceContainer != nil {
		if err := tc.ServiceContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate queryvault service: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MySQL: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateAllTestContainers starts MySQL, initializes the schema, then builds
// (if needed) and starts the queryvault service container.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	// Create and start the MySQL container
	dbNetworkName := getEnvDefault("DB_HOST", "queryvault-db")
	tcpDbPort, err := nat.NewPort("tcp", getEnvDefault("DB_PORT", "3306"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnvDefault("DB_IMAGE", "mysql:8.4"),
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": getEnvDefault("DB_ROOT_PASSWORD", "rootpass"),
				"MYSQL_DATABASE":      getEnvDefault("DB_DATABASE", "queryvault_db"),
				"MYSQL_USER":          getEnvDefault("DB_USER", "queryvault"),
				"MYSQL_PASSWORD":      getEnvDefault("DB_PASSWORD", "queryvault"),
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start MySQL")
	}
	testContainers.DBContainer = dbContainer

	// Initialize the schema through the mapped port
	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	testContainers.DBHostPort = fmt.Sprintf("%s:%s", dbHost, dbPort.Port())
	if err := performMySQLInit(t, testContainers, dbHost, dbPort); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to initialize database")
	}

	imageName := "queryvault-test:latest"

	exists, err := imageExists(ctx, imageName)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}

	servicePortNumber := getEnvDefault("PORT", "3000")
	tcpServicePort, err := nat.NewPort("tcp", servicePortNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create service port")
	}

	serviceContainerRequest := testcontainers.ContainerRequest{
		ExposedPorts: []string{string(tcpServicePort)},
		Env: map[string]string{
			"DB_TYPE":             "mysql",
			"DB_HOST":             dbNetworkName,
			"DB_PORT":             getEnvDefault("DB_PORT", "3306"),
			"DB_DATABASE":         getEnvDefault("DB_DATABASE", "queryvault_db"),
			"DB_USER":             getEnvDefault("DB_USER", "queryvault"),
			"DB_PASSWORD":         getEnvDefault("DB_PASSWORD", "queryvault"),
			"DB_CONNECTION_LIMIT": getEnvDefault("DB_CONNECTION_LIMIT", "5"),
			"PORT":                servicePortNumber,
		},
		WaitingFor: wait.ForHTTP("/metrics").WithPort(tcpServicePort).WithStartupTimeout(30 * time.Second),
		Networks:   []string{networkName},
	}

	if !exists {
		sessionID := uuid.New().String()
		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &sessionID,
		}

		buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
		if buildContext == "" {
			buildContext = "../.."
		}

		logMessage(t, "Image %s does not exist, building...", imageName)
		imageNameParts := strings.Split(imageName, ":")
		serviceContainerRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:       buildContext,
			Dockerfile:    "Dockerfile",
			Repo:          imageNameParts[0],
			Tag:           imageNameParts[1],
			KeepImage:     true, // Keep the image so we can reuse it
			BuildArgs:     buildArgs,
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", imageName)
		serviceContainerRequest.Image = imageName
	}

	serviceContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: serviceContainerRequest,
		Started:          true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start queryvault service")
	}
	testContainers.ServiceContainer = serviceContainer

	serviceHost, _ := serviceContainer.Host(ctx)
	servicePort, _ := serviceContainer.MappedPort(ctx, tcpServicePort)
	testContainers.ServiceBaseURL = fmt.Sprintf("http://%s:%s", serviceHost, servicePort.Port())
	logMessage(t, "BASE_URL=%s", testContainers.ServiceBaseURL)

	logMessage(t, "queryvault testcontainer stack started successfully")
	return testContainers, nil
}

// performMySQLInit creates the schema and grants through the root account.
func performMySQLInit(t *testing.T, testContainers *TestContainers, dbHost string, dbPort nat.Port) error {
	rootDSN := fmt.Sprintf("root:%s@tcp(%s:%s)/", getEnvDefault("DB_ROOT_PASSWORD", "rootpass"), dbHost, dbPort.Port())
	db, err := sql.Open("mysql", rootDSN)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to connect to MySQL for setup")
	}
	defer db.Close()

	// Wait for the server to really accept connections
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "MySQL not ready after 30 seconds")
	}

	database := getEnvDefault("DB_DATABASE", "queryvault_db")
	if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, fmt.Sprintf("Failed to create %s", database))
	}

	if err = executeSQL(db, data.InitdbMySQLTables); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to execute tables init sql")
	}
	if err = executeSQL(db, data.InitdbMySQLPrivileges); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to execute privileges init sql")
	}

	return nil
}

// executeSQL runs a multi-statement DDL script statement by statement.
// Line comments are stripped first; statements are split on semicolons,
// which is safe for our DDL (no literals containing either).
func executeSQL(db *sql.DB, script string) error {
	var sb strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		sb.WriteString(line)
		sb.WriteString(" ")
	}

	for _, stmt := range strings.Split(sb.String(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), stmt)
		}
	}
	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
