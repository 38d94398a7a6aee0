package apis

const (
	// HTTP Response Fields
	ContentType = "Content-Type"

	// Self-defined Fields
	Start     = "start"
	End       = "end"
	Limit     = "limit"
	Direction = "direction"
	Partner   = "partner"
	Imei      = "imei"
	Action    = "action"
)
