package authenticator

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/authenticator/bundle"
	"github.com/shandysiswandi/gotp/internal/authenticator/inbound"
	"github.com/shandysiswandi/gotp/internal/authenticator/outbound/snapshot"
	"github.com/shandysiswandi/gotp/internal/authenticator/store"
	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
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

// Dependency lists what the authenticator module needs from the application.
type Dependency struct {
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Sealer     seal.Sealer                // optional, plain snapshots when nil
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New loads the stored accounts and registers the authenticator endpoints on dep.Router.
func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repo := snapshot.New(dep.Storage, dep.Sealer, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		Store:      store.Open(ctx, repo, dep.UUID, dep.Clock),
		Bundle:     bundle.NewCodec(dep.Validator, dep.UUID, dep.Clock),
		Validator:  dep.Validator,
		Config:     dep.Config,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config)
	dep.Router.AddHealthCheck("snapshot", repo.Ping)

	return nil
}
