package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/booky-next/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	// writeTimeoutSlack 上游超时之外留给中间件与写回的时间
	writeTimeoutSlack = 5 * time.Second
)

// HTTPService BFF HTTP 服务封装
type HTTPService struct {
	name   string
	server *http.Server
}

// NewHTTPService 创建 HTTP 服务；写超时跟随上游超时，避免转发尚未结束就被切断
func NewHTTPService(addr string, handler http.Handler, upstreamTimeout time.Duration) *HTTPService {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	if upstreamTimeout > 0 {
		server.WriteTimeout = upstreamTimeout + writeTimeoutSlack
	}
	return &HTTPService{name: "http", server: server}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	if s == nil || s.name == "" {
		return "http"
	}
	return s.name
}

// Start 启动服务，阻塞直到 Stop
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	logger.Infow("http_service_listening", "addr", s.server.Addr, "write_timeout", s.server.WriteTimeout)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
