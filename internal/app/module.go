package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gotp/internal/authenticator"
)

func (a *App) initModules() {
	if err := authenticator.New(a.ctx, authenticator.Dependency{
		Goroutine:  a.goroutine,
		Router:     a.router,
		Storage:    a.storage,
		Sealer:     a.sealer,
		Config:     a.config,
		Instrument: a.ins,
		UUID:       a.uuid,
		Clock:      a.clock,
		Validator:  a.validator,
	}); err != nil {
		slog.Error("failed to init module authenticator", "error", err)
		os.Exit(1)
	}
}
