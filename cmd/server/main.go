package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cashx/engine/internal/account"
	"github.com/cashx/engine/internal/api"
	"github.com/cashx/engine/internal/missions"
	"github.com/cashx/engine/internal/rng"
	"github.com/cashx/engine/internal/store"
	"github.com/cashx/engine/internal/wallet"
)

const appConfigDirName = "cashx"

func main() {
	// A local .env overrides nothing already in the environment.
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "[CASHX] ", log.LstdFlags|log.LUTC)

	if err := run(logger); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}

func run(logger *log.Logger) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := envStr("CASHX_DB_PATH", filepath.Join(dataDir, "engine.db"))
	db, err := store.NewSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	profile, err := loadOrCreateProfile(db, dataDir)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	logger.Printf("profile loaded id=%s name=%s balance=%d", profile.ID, profile.Name, profile.Balance)

	w, err := wallet.Open(db, profile.ID)
	if err != nil {
		return fmt.Errorf("open wallet: %w", err)
	}
	tracker, err := missions.NewTracker(db, profile.ID, w)
	if err != nil {
		return fmt.Errorf("load missions: %w", err)
	}

	server := api.NewServer(db, profile.ID, w, tracker, rng.NewCryptoSource())

	addr := envStr("CASHX_ADDR", "127.0.0.1:8077")
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if accountURL := os.Getenv("CASHX_ACCOUNT_URL"); accountURL != "" {
		go syncBalanceLoop(ctx, logger, accountURL, dataDir, profile.ID, w)
	}

	startTime := time.Now()
	auditLogger := api.NewAuditLogger()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening addr=%s db=%s", addr, dbPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	auditLogger.LogSystemShutdown("signal", time.Since(startTime))
	return nil
}

// loadOrCreateProfile keeps the active profile ID in a marker file next
// to the database so restarts resume the same wallet.
func loadOrCreateProfile(db store.DB, dataDir string) (*store.Profile, error) {
	marker := filepath.Join(dataDir, "profile_id")

	if raw, err := os.ReadFile(marker); err == nil {
		id := strings.TrimSpace(string(raw))
		if id != "" {
			if profile, err := db.GetProfile(id); err == nil {
				return profile, nil
			}
			// Stale marker, fall through and create fresh.
		}
	}

	profile, err := db.CreateProfile(envStr("CASHX_PROFILE_NAME", "Player"))
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(marker, []byte(profile.ID), 0o600); err != nil {
		return nil, err
	}
	return profile, nil
}

// syncBalanceLoop pushes the local balance to the account service once
// a minute. The local store stays authoritative; sync failures only
// log.
func syncBalanceLoop(ctx context.Context, logger *log.Logger, baseURL, dataDir, profileID string, w *wallet.Wallet) {
	secrets := account.NewKeyringStore("cashx-engine", filepath.Join(dataDir, "secrets.json"))
	client := account.NewClient(account.Config{BaseURL: baseURL})

	token, err := secrets.GetToken(profileID)
	if err != nil || token == "" {
		logger.Printf("balance sync disabled: no stored token for profile %s", profileID)
		return
	}
	client.SetToken(token)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.SyncBalance(ctx, w.Balance()); err != nil {
				var authErr *account.AuthError
				if errors.As(err, &authErr) {
					logger.Printf("balance sync stopped: %v", err)
					return
				}
				logger.Printf("balance sync failed: %v", err)
			}
		}
	}
}

func resolveDataDir() (string, error) {
	if dir := os.Getenv("CASHX_DATA_DIR"); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appConfigDirName), nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
