//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
	"github.com/fivetwenty-io/imodels-client/pkg/imodelsclient"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Endpoint   string
	Token      string
	IModelID   string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:   os.Getenv("IMODELS_API"),
		Token:      os.Getenv("IMODELS_TOKEN"),
		IModelID:   os.Getenv("IMODELS_TEST_IMODEL_ID"),
		BinaryPath: binaryPath(),
		Verbose:    os.Getenv("IMODELS_VERBOSE") == "true",
	}
}

// binaryPath determines the path to the imodels binary.
func binaryPath() string {
	if path := os.Getenv("IMODELS_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../imodels", "./imodels", "../imodels"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "imodels"
}

// SkipIfMissingConfig skips the test unless a token and a test iModel are configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Token == "" || config.IModelID == "" {
		t.Skip("IMODELS_TOKEN or IMODELS_TEST_IMODEL_ID not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the CLI has not been built.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("imodels binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// NewClient creates an SDK client for the configured endpoint.
func (config *TestConfig) NewClient(t *testing.T) imodels.Client {
	t.Helper()

	client, err := imodelsclient.NewWithToken(context.Background(), config.Endpoint, config.Token)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// CommandRunner runs the imodels CLI against the configured endpoint.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes an imodels command with an isolated config file.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	global := []string{"--config", runner.t.TempDir() + "/config.yml", "--token", runner.config.Token}
	if runner.config.Endpoint != "" {
		global = append(global, "--api", runner.config.Endpoint)
	}

	cmd := exec.Command(runner.config.BinaryPath, append(global, args...)...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// DecodeJSONOutput asserts that output is valid JSON and decodes it into value.
func DecodeJSONOutput(t *testing.T, output string, value interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal([]byte(output), value), "output is not valid JSON: %s", output)
}
