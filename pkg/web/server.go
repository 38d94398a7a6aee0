package web

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"tspgateway/cmd/tspctl/config"
	"tspgateway/cmd/tspctl/options"
	"tspgateway/pkg/apis/response"
	"tspgateway/pkg/device"
	"tspgateway/pkg/generic"
)

type Server struct {
	*generic.Server
	*config.Config
}

func NewServer(router *gin.Engine, o *options.Options, config *config.Config) *Server {
	server := &Server{
		Server: &generic.Server{
			Router:   router,
			Port:     o.Port,
			CertFile: config.CertFile,
			KeyFile:  config.KeyFile,
		},
		Config: config,
	}
	server.InstallHandlers()
	return server
}

func (s *Server) InstallHandlers() {
	v1 := s.Router.Group("/api/v1")
	device.InstallHandler(v1, s.Config.DeviceMgr)

	s.Router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if s.Config.Registry != nil {
		s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Config.Registry, promhttp.HandlerOpts{})))
	}
	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.NewMultiError(response.ErrResourceNotFound(c.Request.URL.Path)))
	})
}
