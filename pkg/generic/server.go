package generic

import (
	"context"
	"crypto/tls"
	"fmt"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"net"
	"net/http"
)

// Server runs a gin router over HTTP, or HTTPS when both CertFile and KeyFile
// are set.
type Server struct {
	Router   *gin.Engine
	Port     string
	CertFile string
	KeyFile  string
}

// Serve binds the port and serves in the background. The returned function
// stops accepting connections and waits for in-flight requests until ctx is
// done.
func (s *Server) Serve() (func(ctx context.Context), error) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.Port),
		Handler: s.Router,
	}

	useTLS := len(s.CertFile) != 0 && len(s.KeyFile) != 0
	if useTLS {
		x509KeyPair, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{x509KeyPair},
		}
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}
	go func() {
		var err error
		if useTLS {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && err != http.ErrServerClosed {
			klog.ErrorS(err, "Server stopped unexpectedly")
		}
	}()

	return func(ctx context.Context) {
		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "Failed to shut down server")
		}
	}, nil
}
