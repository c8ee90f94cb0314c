package app

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/seal"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

const (
	keyModeStatic  = "static"
	keyModeDerived = "derived"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	cfg, err := config.NewViper(path, func() {
		slog.Info("new code streams and requests use the reloaded settings")
	})
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("app.name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metrics_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

// initSeal enables snapshot encryption when snapshot.encryption_key is set.
// In static mode the key must be 32 bytes; in derived mode it is HKDF input.
func (a *App) initSeal() {
	rawKey := a.config.GetBinary("snapshot.encryption_key")
	if len(rawKey) == 0 && strings.TrimSpace(a.config.GetString("snapshot.encryption_key")) != "" {
		slog.Error("failed to init seal, encryption key is not valid base64")
		os.Exit(1)
	}
	if len(rawKey) == 0 {
		slog.Warn("snapshot encryption is disabled, accounts are stored in plain JSON")
		return
	}

	switch mode := strings.ToLower(strings.TrimSpace(a.config.GetString("snapshot.key_mode"))); mode {
	case "", keyModeStatic:
		if len(rawKey) != 32 {
			slog.Error("failed to init seal, encryption key must be 32 bytes (AES-256)", "length", len(rawKey))
			os.Exit(1)
		}
		a.sealer = seal.NewAESGCM(seal.StaticKeyProvider{KeyBytes: rawKey})
	case keyModeDerived:
		a.sealer = seal.NewAESGCM(seal.DerivedKeyProvider{
			Master: rawKey,
			Salt:   []byte(a.config.GetString("snapshot.key_salt")),
		})
	default:
		slog.Error("failed to init seal, unknown key mode", "mode", mode)
		os.Exit(1)
	}
}

func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("storage.driver"))

	stg, err := storage.NewFromDriver(driver, storage.FactoryOptions{
		File: storage.FileOptions{
			Dir: strings.TrimSpace(a.config.GetString("storage.file.dir")),
		},
		SQLite: storage.SQLiteOptions{
			Path:        strings.TrimSpace(a.config.GetString("storage.sqlite.path")),
			DSN:         strings.TrimSpace(a.config.GetString("storage.sqlite.dsn")),
			BusyRetries: uint64(max(a.config.GetInt("storage.sqlite.busy_retries"), 0)),
		},
	})
	if err != nil {
		slog.Error("failed to init storage", "driver", driver, "error", err)
		os.Exit(1)
	}

	slog.Info("storage ready", "driver", driver)
	a.storage = stg
}

func (a *App) initHTTPServer() {
	address := a.config.GetString("app.server.http.address")
	if a.config.GetBool("app.server.loopback_only") && !isLoopback(address) {
		slog.Error("refusing to listen on a non-loopback address", "address", address)
		os.Exit(1)
	}

	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{router.HeaderCorrelationID, "Content-Disposition"},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              address,
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

// isLoopback reports whether address binds only to the local machine.
// An empty host listens on every interface and is not loopback.
func isLoopback(address string) bool {
	host, _, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				return a.storage.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
