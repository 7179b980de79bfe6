package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegrid/internal/app"
)

// Manifests placed under this prefix are loaded as bundle libraries;
// everything else is an asset manifest.
const LibraryDir = "lib/"

// Options tweaks the application configuration used by the harness.
// Zero values fall back to app defaults, except Output which defaults to
// json so results can be decoded.
type Options struct {
	Output string
	Cycles string
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunManifests provides a standardized harness for running integration tests
// using a default background context.
func RunManifests(t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()
	return RunManifestsWithContext(context.Background(), t, files, opts)
}

// RunManifestsWithContext writes files into a temporary directory, runs the
// app over them once and returns everything it produced.
func RunManifestsWithContext(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	siteDir := filepath.Join(tmpDir, "site")
	libDir := filepath.Join(tmpDir, strings.TrimSuffix(LibraryDir, "/"))
	require.NoError(t, os.MkdirAll(siteDir, 0755))

	for name, content := range files {
		var filePath string
		if rest, ok := strings.CutPrefix(name, LibraryDir); ok {
			filePath = filepath.Join(libDir, rest)
		} else {
			filePath = filepath.Join(siteDir, name)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	output := opts.Output
	if output == "" {
		output = "json"
	}
	cfg, err := app.NewConfig(app.Config{
		ManifestPaths: []string{siteDir},
		LibraryPaths:  []string{libDir},
		Output:        output,
		Cycles:        opts.Cycles,
		LogLevel:      "debug",
		LogFormat:     "text",
	})
	require.NoError(t, err)

	outBuffer := &app.SafeBuffer{}
	logBuffer := &app.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(outBuffer, logBuffer, cfg, nil)
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)

	t.Cleanup(func() {
		if os.Getenv("BUNDLEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return &HarnessResult{
		Output:    outBuffer.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
