package options

import (
	"context"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/klog/v2"
	"strings"
	"time"
	_ "time/tzdata"
	"tspgateway/cmd/tspctl/config"
	"tspgateway/pkg/device"
	baseoptions "tspgateway/pkg/generic/options"
	"tspgateway/pkg/storage"
	"tspgateway/pkg/storage/dynamo"
	"tspgateway/pkg/storage/tablestore"
	"tspgateway/pkg/tsp"
)

const (
	EnvGatewayURL        = "TSP_GATEWAY_URL"
	EnvToken             = "TSP_TOKEN"
	EnvStoreAccessKey    = "TSP_STORE_ACCESS_KEY"
	EnvStoreAccessSecret = "TSP_STORE_ACCESS_SECRET"

	BackendTablestore = "tablestore"
	BackendDynamoDB   = "dynamodb"

	OutputJSON = "json"
	OutputYAML = "yaml"
)

const (
	_defaultPort = "32300"
	_defaultWait = 15 * time.Second
)

type Options struct {
	GatewayURL         string          `json:"gatewayURL"`
	Token              string          `json:"token"`
	Timeout            metav1.Duration `json:"timeout"`
	InsecureSkipVerify bool            `json:"insecureSkipVerify"`
	// IANA name, empty for the local zone
	Timezone string          `json:"timezone"`
	Store    tsp.StoreConfig `json:"store"`
	Output   string          `json:"output"`

	Port     string          `json:"port"`
	Wait     metav1.Duration `json:"graceful-timeout"`
	CertFile string          `json:"certFile"`
	KeyFile  string          `json:"keyFile"`

	baseoptions.BaseOptions
}

func NewDefaultOptions() *Options {
	return &Options{
		Timeout:     metav1.Duration{Duration: tsp.DefaultTimeout},
		Store:       *tsp.DefaultStoreConfig(),
		Output:      OutputJSON,
		Port:        _defaultPort,
		Wait:        metav1.Duration{Duration: _defaultWait},
		BaseOptions: baseoptions.NewDefaultBaseOptions(),
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.GatewayURL, "gateway-url", o.GatewayURL, "URL of the TSP gateway, e.g. https://tsp.example.com/api. Overrides $"+EnvGatewayURL+".")
	fs.StringVar(&o.Token, "token", o.Token, "Token sent with every gateway request. Overrides $"+EnvToken+".")
	fs.DurationVar(&o.Timeout.Duration, "timeout", o.Timeout.Duration, "Timeout of one gateway request, e.g. 10s.")
	fs.BoolVar(&o.InsecureSkipVerify, "insecure-skip-verify", o.InsecureSkipVerify, "Skip verification of the gateway TLS certificate.")
	fs.StringVar(&o.Timezone, "timezone", o.Timezone, "Time zone message timestamps and calendar times are read in, e.g. Asia/Shanghai. Empty for the local zone.")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format, json or yaml.")

	fs.StringVar(&o.Store.Backend, "store-backend", o.Store.Backend, "History store, tablestore or dynamodb.")
	fs.StringVar(&o.Store.Endpoint, "store-endpoint", o.Store.Endpoint, "History store endpoint.")
	fs.StringVar(&o.Store.InstanceName, "store-instance", o.Store.InstanceName, "Tablestore instance name.")
	fs.StringVar(&o.Store.Region, "store-region", o.Store.Region, "DynamoDB region.")
	fs.StringVar(&o.Store.AccessKey, "store-access-key", o.Store.AccessKey, "History store access key. Overrides $"+EnvStoreAccessKey+".")
	fs.StringVar(&o.Store.AccessSecret, "store-access-secret", o.Store.AccessSecret, "History store access secret. Overrides $"+EnvStoreAccessSecret+".")
	fs.StringVar(&o.Store.TracksTable, "tracks-table", o.Store.TracksTable, "Table holding location samples.")
	fs.StringVar(&o.Store.MessagesTable, "messages-table", o.Store.MessagesTable, "Table holding raw terminal messages.")

	// refer to node port assignment https://rancher.com/docs/rancher/v2.x/en/installation/requirements/ports/#commonly-used-ports
	fs.StringVarP(&o.Port, "port", "P", o.Port, "Port exposed by serve")
	fs.DurationVar(&o.Wait.Duration, "graceful-timeout", o.Wait.Duration, "The duration for which the server gracefully wait for existing connections to finish - e.g. 15s or 1m")
	fs.StringVar(&o.CertFile, "cert-file", o.CertFile, "TLS certificate served by serve.")
	fs.StringVar(&o.KeyFile, "key-file", o.KeyFile, "TLS key served by serve.")
}

// ApplyEnv reads credentials and the gateway address from the environment.
func (o *Options) ApplyEnv(lookup func(string) (string, bool)) {
	for name, field := range map[string]*string{
		EnvGatewayURL:        &o.GatewayURL,
		EnvToken:             &o.Token,
		EnvStoreAccessKey:    &o.Store.AccessKey,
		EnvStoreAccessSecret: &o.Store.AccessSecret,
	} {
		if v, ok := lookup(name); ok && len(strings.TrimSpace(v)) > 0 {
			*field = v
		}
	}
}

func (o *Options) Location() (*time.Location, error) {
	if len(o.Timezone) == 0 {
		return time.Local, nil
	}
	return time.LoadLocation(o.Timezone)
}

func (o *Options) ClientConfig() tsp.ClientConfig {
	store := o.Store
	return tsp.ClientConfig{
		GatewayURL:         o.GatewayURL,
		Token:              o.Token,
		Timeout:            o.Timeout.Duration,
		InsecureSkipVerify: o.InsecureSkipVerify,
		Store:              &store,
	}
}

func (o *Options) Config(ctx context.Context) (*config.Config, error) {
	loc, err := o.Location()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	clientOpts := []tsp.Option{tsp.WithMetrics(tsp.NewMetrics(reg)), tsp.WithLocation(loc)}

	store, err := o.newStore(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		clientOpts = append(clientOpts, tsp.WithStore(store))
	} else {
		klog.V(2).InfoS("No history store configured, track and message history is unavailable")
	}

	client, err := tsp.NewClient(o.ClientConfig(), clientOpts...)
	if err != nil {
		return nil, err
	}

	return &config.Config{
		Client:    client,
		DeviceMgr: device.NewManager(client, loc),
		Registry:  reg,
		Location:  loc,
		CertFile:  o.CertFile,
		KeyFile:   o.KeyFile,
	}, nil
}

func (o *Options) newStore(ctx context.Context) (storage.RangeScanner, error) {
	s := o.Store
	switch s.Backend {
	case BackendTablestore:
		if len(s.Endpoint) == 0 {
			return nil, nil
		}
		store, err := tablestore.NewStore(tablestore.Config{
			Endpoint:     s.Endpoint,
			InstanceName: s.InstanceName,
			AccessKey:    s.AccessKey,
			AccessSecret: s.AccessSecret,
		})
		if err != nil {
			return nil, errors.Wrap(err, "tablestore")
		}
		return store, nil
	case BackendDynamoDB:
		if len(s.Endpoint) == 0 && len(s.Region) == 0 {
			return nil, nil
		}
		columns := map[string][]string{
			tableName(s.TracksTable, storage.Tracks):     dynamo.DefaultColumns[storage.Tracks],
			tableName(s.MessagesTable, storage.Messages): dynamo.DefaultColumns[storage.Messages],
		}
		store, err := dynamo.NewStore(ctx, dynamo.Config{
			Region:       s.Region,
			Endpoint:     s.Endpoint,
			AccessKey:    s.AccessKey,
			AccessSecret: s.AccessSecret,
			Columns:      columns,
		})
		if err != nil {
			return nil, errors.Wrap(err, "dynamodb")
		}
		return store, nil
	default:
		return nil, errors.Errorf("unsupported store backend %q", s.Backend)
	}
}

func tableName(configured, fallback string) string {
	if len(configured) > 0 {
		return configured
	}
	return fallback
}
