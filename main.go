package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pdbogen/slackin/common/cache"
	"github.com/pdbogen/slackin/common/config"
	mbLog "github.com/pdbogen/slackin/common/log"
	"github.com/pdbogen/slackin/common/telemetry"
	"github.com/pdbogen/slackin/controller/audit"
	dashboardController "github.com/pdbogen/slackin/controller/dashboard"
	inviteController "github.com/pdbogen/slackin/controller/invite"
	"github.com/pdbogen/slackin/hub"
	httpUi "github.com/pdbogen/slackin/ui/http"
	"github.com/pdbogen/slackin/ui/slack"
	"golang.org/x/crypto/acme/autocert"
)

var log = mbLog.Log

func main() {
	ConfigPath := flag.String("config", "slackin.yaml", "YAML config file; skipped if missing")
	EnvFile := flag.String("env-file", ".env", "dotenv file of SLACKIN_* variables; skipped if missing")
	config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(*ConfigPath, *EnvFile, flag.CommandLine)
	if err != nil {
		log.Fatalf("loading configuration: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}
	if err := mbLog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("setting log level: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "slackin", cfg.OtelEndpoint)
	if err != nil {
		log.Fatalf("unable to set up tracing: %s", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Errorf("flushing traces: %s", err)
		}
	}()

	hub := &hub.Hub{}
	audit.Register(hub)

	slackUi, err := slack.New(slack.Config{
		Token:     cfg.Token,
		Subdomain: cfg.Subdomain,
		Timeout:   cfg.RequestTimeout,
	}, hub)
	if err != nil {
		log.Fatalf("unable to start Slack module: %s", err)
	}

	fetcher, err := dashboardController.New(slackUi, cache.NewMemory(), dashboardController.Config{
		Period:          cfg.CachePeriod,
		ThrottledPeriod: cfg.ThrottledCachePeriod,
		FallbackName:    cfg.FallbackName,
	})
	if err != nil {
		log.Fatalf("unable to start dashboard: %s", err)
	}

	invites, err := inviteController.New(slackUi, cfg.LoginRequired)
	if err != nil {
		log.Fatalf("unable to start invites: %s", err)
	}

	web, err := httpUi.New(fetcher, invites, httpUi.Options{
		LoginRequired: cfg.LoginRequired,
		LoginRedirect: cfg.RedirectURL(),
		AuthSecret:    cfg.Auth.Secret,
		AuthCookie:    cfg.Auth.Cookie,
		CORSOrigins:   cfg.CORSOrigins,
		LiveInterval:  cfg.LiveInterval,
		SecureCookies: cfg.TLS,
	})
	if err != nil {
		log.Fatalf("unable to start web UI: %s", err)
	}

	proto := "http"
	if cfg.TLS {
		proto = "https"
	}

	mgr := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domain),
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           web,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         &tls.Config{GetCertificate: mgr.GetCertificate},
	}

	errs := make(chan error, 2)
	if cfg.TLS {
		httpChallengeServer := &http.Server{
			Addr:              ":80",
			Handler:           mgr.HTTPHandler(http.RedirectHandler(fmt.Sprintf("https://%s", cfg.Domain), http.StatusMovedPermanently)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		defer httpChallengeServer.Close()

		log.Infof("Listening for ACME challenges on http://%s:80", cfg.Domain)
		go func() { errs <- httpChallengeServer.ListenAndServe() }()
		go func() { errs <- server.ListenAndServeTLS("", "") }()
	} else {
		go func() { errs <- server.ListenAndServe() }()
	}
	log.Infof("Listening on %s://%s:%d for team %s", proto, cfg.Domain, cfg.Port, cfg.Subdomain)

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server stopped: %s", err)
		}
	case <-ctx.Done():
		log.Infof("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutting down web server: %s", err)
	}
}
