package tsp

import (
	"net/url"
	"strings"
	"time"
	"tspgateway/pkg/storage"
)

const (
	DefaultPartitionKey = "device_hash"
	DefaultSortKey      = "timestamp"
	DefaultTimeout      = 30 * time.Second
)

// ClientConfig is read only once a Client has been built from it.
type ClientConfig struct {
	GatewayURL         string        `json:"gatewayURL"`
	Token              string        `json:"token"`
	Timeout            time.Duration `json:"timeout"`
	InsecureSkipVerify bool          `json:"insecureSkipVerify"`
	Store              *StoreConfig  `json:"store,omitempty"`
}

// StoreConfig describes the wide-column store holding track and message
// history.
type StoreConfig struct {
	// tablestore or dynamodb
	Backend       string `json:"backend"`
	Endpoint      string `json:"endpoint"`
	InstanceName  string `json:"instanceName"`
	Region        string `json:"region"`
	AccessKey     string `json:"accessKey"`
	AccessSecret  string `json:"accessSecret"`
	TracksTable   string `json:"tracksTable"`
	MessagesTable string `json:"messagesTable"`
	PartitionKey  string `json:"partitionKey"`
	SortKey       string `json:"sortKey"`
}

func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Backend:       "tablestore",
		TracksTable:   storage.Tracks,
		MessagesTable: storage.Messages,
		PartitionKey:  DefaultPartitionKey,
		SortKey:       DefaultSortKey,
	}
}

func (c *ClientConfig) validate() error {
	if len(strings.TrimSpace(c.GatewayURL)) == 0 {
		return &ConfigurationError{Field: "gatewayURL", Reason: "is required"}
	}
	if len(strings.TrimSpace(c.Token)) == 0 {
		return &ConfigurationError{Field: "token", Reason: "is required"}
	}
	u, err := url.Parse(c.GatewayURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || len(u.Host) == 0 {
		return &ConfigurationError{Field: "gatewayURL", Reason: "must be an absolute http(s) URL"}
	}
	if c.Timeout < 0 {
		return &ConfigurationError{Field: "timeout", Reason: "must not be negative"}
	}
	return nil
}

func (c *StoreConfig) table(name string) string {
	switch name {
	case storage.Tracks:
		if len(c.TracksTable) > 0 {
			return c.TracksTable
		}
	case storage.Messages:
		if len(c.MessagesTable) > 0 {
			return c.MessagesTable
		}
	}
	return name
}

func (c *StoreConfig) keyNames() (string, string) {
	pk, sk := c.PartitionKey, c.SortKey
	if len(pk) == 0 {
		pk = DefaultPartitionKey
	}
	if len(sk) == 0 {
		sk = DefaultSortKey
	}
	return pk, sk
}
