package options

import (
	"context"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
	baseoptions "tspgateway/pkg/generic/options"
	"tspgateway/pkg/storage"
)

func validOptions() *Options {
	o := NewDefaultOptions()
	o.GatewayURL = "https://tsp.example.com/api"
	o.Token = "token"
	return o
}

// parse runs the same layering as every tspctl subcommand.
func parse(t *testing.T, o *Options, args []string) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("limit", 0, "subcommand flag")
	o.AddFlags(fs)
	o.AddBaseFlags(&cobra.Command{Use: "test"}, fs)
	require.NoError(t, fs.Parse(args))
	require.NoError(t, baseoptions.ParseAndApplyConfigFile(o, args))
}

func TestPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tspctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gatewayURL: https://file.example.com
token: file-token
timeout: 10s
timezone: Asia/Shanghai
store:
  backend: dynamodb
  region: cn-north-1
  accessKey: file-key
`), 0o600))
	t.Setenv(EnvGatewayURL, "https://env.example.com")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvStoreAccessKey, "")

	o := NewDefaultOptions()
	parse(t, o, []string{"--config", path, "--gateway-url", "https://flag.example.com", "--limit", "5"})

	assert.Equal(t, "https://flag.example.com", o.GatewayURL)
	assert.Equal(t, "env-token", o.Token)
	assert.Equal(t, 10*time.Second, o.Timeout.Duration)
	assert.Equal(t, "Asia/Shanghai", o.Timezone)
	assert.Equal(t, BackendDynamoDB, o.Store.Backend)
	assert.Equal(t, "cn-north-1", o.Store.Region)
	assert.Equal(t, "file-key", o.Store.AccessKey)
	assert.Equal(t, storage.Tracks, o.Store.TracksTable)
	assert.Equal(t, OutputJSON, o.Output)
}

func TestEnvWithoutConfigFile(t *testing.T) {
	t.Setenv(EnvGatewayURL, "https://env.example.com")
	t.Setenv(EnvStoreAccessSecret, "env-secret")

	o := NewDefaultOptions()
	parse(t, o, []string{"--token", "flag-token"})

	assert.Equal(t, "https://env.example.com", o.GatewayURL)
	assert.Equal(t, "flag-token", o.Token)
	assert.Equal(t, "env-secret", o.Store.AccessSecret)
}

func TestValidateOptions(t *testing.T) {
	cases := map[string]struct {
		mutate func(o *Options)
		fields []string
	}{
		"valid": {mutate: func(o *Options) {}},
		"missing gateway and token": {
			mutate: func(o *Options) { o.GatewayURL, o.Token = "", " " },
			fields: []string{"gatewayURL", "token"},
		},
		"relative gateway": {
			mutate: func(o *Options) { o.GatewayURL = "tsp.example.com/api" },
			fields: []string{"gatewayURL"},
		},
		"negative timeout": {
			mutate: func(o *Options) { o.Timeout.Duration = -time.Second },
			fields: []string{"timeout"},
		},
		"unknown timezone": {
			mutate: func(o *Options) { o.Timezone = "Mars/Olympus" },
			fields: []string{"timezone"},
		},
		"unsupported output": {
			mutate: func(o *Options) { o.Output = "xml" },
			fields: []string{"output"},
		},
		"unsupported backend": {
			mutate: func(o *Options) { o.Store.Backend = "bigtable" },
			fields: []string{"store.backend"},
		},
		"incomplete tablestore": {
			mutate: func(o *Options) { o.Store.Endpoint = "https://ots.example.com" },
			fields: []string{"store.instanceName", "store.accessKey"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			o := validOptions()
			tc.mutate(o)
			var fields []string
			for _, err := range validateOptions(o) {
				fields = append(fields, err.Field)
			}
			assert.Equal(t, tc.fields, fields)
		})
	}
}

func TestNewStore(t *testing.T) {
	o := validOptions()
	store, err := o.newStore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, store)

	o.Store.Backend = BackendDynamoDB
	store, err = o.newStore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, store)

	o.Store.Backend = "bigtable"
	_, err = o.newStore(context.Background())
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	o := validOptions()
	o.Timezone = "Asia/Shanghai"
	c, err := o.Config(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, c.Client)
	assert.NotNil(t, c.DeviceMgr)
	assert.NotNil(t, c.Registry)
	assert.Equal(t, "Asia/Shanghai", c.Location.String())
	assert.Equal(t, o.GatewayURL, c.Client.Config().GatewayURL)
}
