package device

import (
	"time"
	"tspgateway/pkg/storage"
)

const (
	// upper bound for one history request, the scan reads every page of it
	maxHistoryWindow = 31 * 24 * time.Hour
	maxPageLimit     = 1000
)

var directions = storage.DirectionFromString
