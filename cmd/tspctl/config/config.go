package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"time"
	"tspgateway/pkg/device"
	"tspgateway/pkg/tsp"
)

type Config struct {
	Client    *tsp.Client
	DeviceMgr *device.Manager
	Registry  *prometheus.Registry
	Location  *time.Location
	CertFile  string
	KeyFile   string
}
