package app

import (
	"context"
	"net/http"

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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	sealer    seal.Sealer

	// resources
	storage storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initSeal()
	app.initStorage()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
