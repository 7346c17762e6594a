package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caddyserver/certmagic"
	"go.uber.org/zap"
)

const shutdownGrace = 5 * time.Second

// Serve listens on http_addr until ctx is canceled. With http.tls_domain set
// it serves HTTPS using an ACME certificate managed by certmagic.
func (s *Server) Serve(ctx context.Context) error {
	addr := s.cfg.GetString("http_addr")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener. It closes ln.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log.Named("http")),
	}

	if domain := strings.TrimSpace(s.cfg.GetString("http.tls_domain")); domain != "" {
		tlsConf, err := buildACMETLS(ctx, domain, s.cfg.GetString("http.acme_email"))
		if err != nil {
			_ = ln.Close()
			return err
		}
		srv.TLSConfig = tlsConf
		ln = tls.NewListener(ln, tlsConf)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http listening", zap.String("addr", ln.Addr().String()), zap.Bool("tls", srv.TLSConfig != nil))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http stopped")
	return nil
}

func buildACMETLS(ctx context.Context, domain, email string) (*tls.Config, error) {
	dir := certCacheDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cert storage: %w", err)
	}
	cm := certmagic.NewDefault()
	cm.Storage = &certmagic.FileStorage{Path: dir}
	issuer := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:     certmagic.LetsEncryptProductionCA,
		Email:  email,
		Agreed: true,
	})
	cm.Issuers = []certmagic.Issuer{issuer}
	if err := cm.ManageSync(ctx, []string{domain}); err != nil {
		return nil, fmt.Errorf("acme manage %s: %w", domain, err)
	}
	tlsConf := cm.TLSConfig()
	tlsConf.NextProtos = append([]string{"h2", "http/1.1"}, tlsConf.NextProtos...)
	tlsConf.MinVersion = tls.VersionTLS12
	return tlsConf, nil
}

func certCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "lawbridge", "certmagic")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "lawbridge", "certmagic")
}
