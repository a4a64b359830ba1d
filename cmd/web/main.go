// cmd/web/main.go
//
// Property site – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (conf/.env → conf/global.yaml → env overrides).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Resolve vault: references in the spreadsheet credential, if any.
//
//  4. Open the optional GeoIP database for request enrichment.
//
//  5. Build the lead recorder: Google Sheets, or in-memory when
//     sheets.memory is set for local work.
//
//  6. Build the router (intake, catalogue, form fragments, /metrics) and
//     serve until SIGINT or SIGTERM, then drain.
//
// A missing spreadsheet configuration does not stop the boot.  The intake
// endpoint answers every lead with a configuration error until it is set.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanizio/propertysite/internal/config"
	"github.com/yanizio/propertysite/internal/logger"
	"github.com/yanizio/propertysite/internal/requestinfo"
	"github.com/yanizio/propertysite/internal/routing"
	"github.com/yanizio/propertysite/internal/server"
	"github.com/yanizio/propertysite/internal/sheets"
	"github.com/yanizio/propertysite/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Secrets ─────────────────────────────────────────────────────
	//
	if cfg.NeedsVault() {
		cli, err := vault.New(ctx, logOut)
		if err != nil {
			logOut.Errorw("vault unavailable; spreadsheet credential cleared", "err", err)
			cfg.Sheets.CredentialsB64 = ""
		} else if err := cfg.ResolveSecrets(ctx, cli); err != nil {
			logOut.Errorw("resolve spreadsheet credential", "err", err)
		}
	}

	//
	// ── 2.  Request enrichment ──────────────────────────────────────────
	//
	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		logOut.Warnw("geoip disabled", "path", cfg.Geo.DBPath, "err", err)
	}
	defer requestinfo.CloseGeo()

	//
	// ── 3.  Lead recorder ───────────────────────────────────────────────
	//
	var rec sheets.Recorder
	if cfg.Sheets.Memory {
		logOut.Warn("sheets.memory set: leads are kept in process only")
		rec = &sheets.Memory{}
	} else {
		rec = sheets.New(sheets.Config{
			SpreadsheetID:  cfg.Sheets.SpreadsheetID,
			CredentialsB64: cfg.Sheets.CredentialsB64,
			SheetName:      cfg.Sheets.SheetName,
			AppendTimeout:  cfg.Sheets.AppendTimeout,
		}, logOut)
	}
	if err := rec.Ready(); err != nil {
		logOut.Warnw("spreadsheet not configured; leads will be refused", "err", err)
	}

	//
	// ── 4.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, routing.New(routing.Deps{
		Config:   cfg,
		Recorder: rec,
		Logger:   logOut,
	}))

	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr, "force_https", cfg.HTTP.ForceHTTPS)
	if err := server.Run(ctx, srv, logOut); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
	logOut.Info("shutdown complete")
}
