package device

import (
	"errors"
	"github.com/gin-gonic/gin"
	"io"
	"k8s.io/klog/v2"
	"net/http"
	"tspgateway/pkg/apis"
	"tspgateway/pkg/apis/response"
	"tspgateway/pkg/tsp"
)

func InstallHandler(group *gin.RouterGroup, mgr *Manager) {
	group.GET("/devices/:imei", getDevice(mgr))
	group.GET("/devices/:imei/online", getOnline(mgr))
	group.POST("/devices/:imei/actions/:action", performAction(mgr))
	group.GET("/devices/:imei/tracks", listTracks(mgr))
	group.GET("/devices/:imei/messages", listMessages(mgr))
	group.GET("/partners/:partner/online", getOnlineCount(mgr))
	group.GET("/partners/:partner/devices", listOnlineDevices(mgr))
}

func getOnline(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, mgr.Online(c.Request.Context(), c.Param(apis.Imei)))
	}
}

func getDevice(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := mgr.Device(c.Request.Context(), c.Param(apis.Imei))
		if err != nil {
			writeError(c, err)
			return
		}
		writeActionResponse(c, resp)
	}
}

func getOnlineCount(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, resp, err := mgr.OnlineCount(c.Request.Context(), c.Param(apis.Partner))
		if err != nil {
			writeError(c, err)
			return
		}
		if !resp.OK() {
			writeActionResponse(c, resp)
			return
		}
		c.JSON(http.StatusOK, count)
	}
}

func listOnlineDevices(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := mgr.OnlineDevices(c.Request.Context(), c.Param(apis.Partner))
		if err != nil {
			writeError(c, err)
			return
		}
		writeActionResponse(c, resp)
	}
}

func performAction(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := tsp.Params{}
		if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
			klog.V(2).InfoS("Failed to parse action params", "err", err)
			c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrMalformedJSON))
			return
		}

		resp, err := mgr.Perform(c.Request.Context(), c.Param(apis.Imei), c.Param(apis.Action), params)
		if err != nil {
			writeError(c, err)
			return
		}
		writeActionResponse(c, resp)
	}
}

func historyQuery(c *gin.Context) HistoryQuery {
	return HistoryQuery{
		Start:     c.Query(apis.Start),
		End:       c.Query(apis.End),
		Direction: c.Query(apis.Direction),
		Limit:     c.Query(apis.Limit),
	}
}

func listTracks(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		points, err := mgr.Tracks(c.Request.Context(), c.Param(apis.Imei), historyQuery(c))
		if err != nil {
			writeHistoryError(c, err)
			return
		}
		c.JSON(http.StatusOK, points)
	}
}

func listMessages(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		points, err := mgr.Messages(c.Request.Context(), c.Param(apis.Imei), historyQuery(c))
		if err != nil {
			writeHistoryError(c, err)
			return
		}
		c.JSON(http.StatusOK, points)
	}
}

// writeActionResponse answers 200 whenever the gateway answered, whatever its
// own status, and maps local failures onto HTTP statuses.
func writeActionResponse(c *gin.Context, resp *tsp.ActionResponse) {
	code := http.StatusOK
	var ve *tsp.ValidationError
	switch {
	case resp.Err == nil:
	case errors.As(resp.Err, &ve):
		code = http.StatusBadRequest
	case tsp.IsTimeout(resp.Err):
		code = http.StatusGatewayTimeout
	default:
		code = http.StatusBadGateway
	}
	c.JSON(code, resp)
}

func writeError(c *gin.Context, err error) {
	if writeKnownError(c, err) {
		return
	}
	klog.V(2).InfoS("Request failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusBadGateway, response.NewMultiError(response.ErrRequestFailed(err)))
}

func writeHistoryError(c *gin.Context, err error) {
	if writeKnownError(c, err) {
		return
	}
	klog.V(2).InfoS("Failed to read history", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusBadGateway, response.NewMultiError(response.ErrHistoryFailed(err)))
}

func writeKnownError(c *gin.Context, err error) bool {
	var (
		ve *tsp.ValidationError
		ce *tsp.ConfigurationError
	)
	switch {
	case errors.Is(err, errUnknownAction):
		c.JSON(http.StatusNotFound, response.NewMultiError(response.ErrLegalActionNotFound))
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrInvalidParameter(ve.Field, ve.Reason)))
	case errors.As(err, &ce):
		c.JSON(http.StatusServiceUnavailable, response.NewMultiError(response.ErrHistoryUnavailable))
	default:
		return false
	}
	return true
}
