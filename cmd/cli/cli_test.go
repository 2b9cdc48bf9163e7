package cli

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmd2 "github.com/tinyio/shortener/cmd"
	apperrors "github.com/tinyio/shortener/internal/errors"
)

// run executes the root command in-process. Flag values live in package vars
// shared across runs, so they are reset first.
func run(t *testing.T, args ...string) string {
	t.Helper()

	for _, c := range []*cobra.Command{ShortenCmd, ResolveCmd, StatsCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out bytes.Buffer
	cmd2.RootCmd.SetOut(&out)
	cmd2.RootCmd.SetArgs(args)
	require.NoError(t, cmd2.RootCmd.Execute())
	return out.String()
}

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("DATABASE_URL", "sqlite:///"+filepath.Join(dir, "cli.db"))
	t.Setenv("BASE_URL", "https://tiny.io")
}

func TestCLI_ShortenResolveStats(t *testing.T) {
	setupEnv(t)

	assert.Contains(t, run(t, "migrate"), "completed successfully")

	shortURL := strings.TrimSpace(run(t, "shorten", "--url", "https://example.com/cli"))
	require.Regexp(t, `^https://tiny\.io/[A-Za-z0-9]{6}$`, shortURL)
	slug := strings.TrimPrefix(shortURL, "https://tiny.io/")

	again := strings.TrimSpace(run(t, "shorten", "--url", "https://example.com/cli"))
	assert.Equal(t, shortURL, again)

	assert.Equal(t, "https://example.com/cli", strings.TrimSpace(run(t, "resolve", "--slug", slug)))
	assert.Equal(t, "https://example.com/cli", strings.TrimSpace(run(t, "resolve", "-s", slug)))

	stats := run(t, "stats", "--slug", slug)
	assert.Contains(t, stats, "Long URL: https://example.com/cli")
	assert.Contains(t, stats, "Expires: never")
	assert.Contains(t, stats, "Clicks: 2")
}

func TestCLI_PurgeRemovesExpired(t *testing.T) {
	setupEnv(t)

	expired := strings.TrimSpace(run(t, "shorten", "--url", "https://example.com/old", "--expires-in-days", "0"))
	require.True(t, strings.HasPrefix(expired, "https://tiny.io/"))
	kept := strings.TrimSpace(run(t, "shorten", "--url", "https://example.com/new", "--expires-in-days", "30"))

	assert.Contains(t, run(t, "purge"), "Deleted 1 expired short URLs.")

	stats := run(t, "stats", "--slug", strings.TrimPrefix(kept, "https://tiny.io/"))
	assert.Contains(t, stats, "Long URL: https://example.com/new")
	assert.Contains(t, stats, "Clicks: 0")
}

func TestValidateExpiresInDays(t *testing.T) {
	tests := []struct {
		days    int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{30, false},
		{36500, false},
		{36501, true},
		{math.MaxInt, true},
	}
	for _, tt := range tests {
		err := validateExpiresInDays(tt.days)
		if tt.wantErr {
			var verr *apperrors.ValidationError
			assert.ErrorAs(t, err, &verr, "days=%d", tt.days)
		} else {
			assert.NoError(t, err, "days=%d", tt.days)
		}
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
