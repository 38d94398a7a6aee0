package options

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/component-base/config"
	"os"
	"path/filepath"
	"testing"
)

type testOptions struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	BaseOptions
}

func (o *testOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Name, "name", o.Name, "")
	fs.StringVar(&o.Region, "region", o.Region, "")
}

type envOptions struct {
	testOptions
}

func (o *envOptions) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("TEST_OPTIONS_REGION"); ok {
		o.Region = v
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func parseInto(t *testing.T, o Optioner, args []string) error {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)
	o.GetBaseOptions().AddBaseFlags(&cobra.Command{Use: "test"}, fs)
	require.NoError(t, fs.Parse(args))
	return ParseAndApplyConfigFile(o, args)
}

func TestConfigFileUnderFlags(t *testing.T) {
	path := writeConfig(t, "name: file\nregion: file-region\nlogging:\n  verbosity: 5\n")
	o := &testOptions{BaseOptions: NewDefaultBaseOptions()}

	require.NoError(t, parseInto(t, o, []string{"-c", path, "--name", "flag"}))
	assert.Equal(t, "flag", o.Name)
	assert.Equal(t, "file-region", o.Region)
	assert.Equal(t, config.VerbosityLevel(5), o.Logging.Verbosity)
	assert.Equal(t, "text", o.Logging.Format)
}

func TestEnvBetweenFileAndFlags(t *testing.T) {
	path := writeConfig(t, "name: file\nregion: file-region\n")
	t.Setenv("TEST_OPTIONS_REGION", "env-region")

	o := &envOptions{testOptions{BaseOptions: NewDefaultBaseOptions()}}
	require.NoError(t, parseInto(t, o, []string{"-c", path}))
	assert.Equal(t, "file", o.Name)
	assert.Equal(t, "env-region", o.Region)

	o = &envOptions{testOptions{BaseOptions: NewDefaultBaseOptions()}}
	require.NoError(t, parseInto(t, o, []string{"-c", path, "--region", "flag-region"}))
	assert.Equal(t, "flag-region", o.Region)
}

func TestVerbosityFlagWins(t *testing.T) {
	path := writeConfig(t, "logging:\n  verbosity: 5\n")
	o := &testOptions{BaseOptions: NewDefaultBaseOptions()}

	require.NoError(t, parseInto(t, o, []string{"-c", path, "--v", "4"}))
	assert.Equal(t, config.VerbosityLevel(4), o.Logging.Verbosity)
}

func TestConfigFileErrors(t *testing.T) {
	o := &testOptions{BaseOptions: NewDefaultBaseOptions()}
	assert.Error(t, parseInto(t, o, []string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}))

	o = &testOptions{BaseOptions: NewDefaultBaseOptions()}
	assert.Error(t, parseInto(t, o, []string{"-c", writeConfig(t, "nmae: typo\n")}))
}
