package inbound

import (
	"context"
	"net/http"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type uc interface {
	ListAccounts(ctx context.Context) (*usecase.ListAccountsOutput, error)
	AddAccount(ctx context.Context, in usecase.AddAccountInput) (*usecase.AccountOutput, error)
	ScanAccount(ctx context.Context, in usecase.ScanAccountInput) (*usecase.AccountOutput, error)
	UpdateAccount(ctx context.Context, in usecase.UpdateAccountInput) (*usecase.AccountOutput, error)
	DeleteAccount(ctx context.Context, in usecase.DeleteAccountInput) error
	ClearAccounts(ctx context.Context) (*usecase.ClearAccountsOutput, error)

	GetBackupCodes(ctx context.Context, in usecase.GetBackupCodesInput) (*usecase.BackupCodesOutput, error)
	SetBackupCodes(ctx context.Context, in usecase.SetBackupCodesInput) (*usecase.BackupCodesOutput, error)

	CurrentCode(ctx context.Context, in usecase.CurrentCodeInput) (*usecase.CodeOutput, error)
	ProvisioningURI(ctx context.Context, in usecase.ProvisioningURIInput) (*usecase.ProvisioningURIOutput, error)
	QRCode(ctx context.Context, in usecase.QRCodeInput) (*usecase.QRCodeOutput, error)

	ExportBundle(ctx context.Context) (*usecase.ExportBundleOutput, error)
	ImportBundle(ctx context.Context, in usecase.ImportBundleInput) (*usecase.ImportBundleOutput, error)

	StreamCodes(ctx context.Context) (<-chan usecase.StreamEvent, error)
}

const defaultHeartbeat = 15 * time.Second

func RegisterHTTPEndpoint(r *router.Router, uc uc, cfg config.Config) {
	end := &HTTPEndpoint{uc: uc, heartbeat: cfg.GetSecond("stream.heartbeat_seconds")}
	if end.heartbeat <= 0 {
		end.heartbeat = defaultHeartbeat
	}

	// Accounts
	r.GET("/api/v1/accounts", end.ListAccounts)
	r.POST("/api/v1/accounts", end.AddAccount)
	r.POST("/api/v1/accounts/scan", end.ScanAccount)
	r.DELETE("/api/v1/accounts", end.ClearAccounts)
	r.PUT("/api/v1/accounts/:id", end.UpdateAccount)
	r.DELETE("/api/v1/accounts/:id", end.DeleteAccount)
	//
	r.GET("/api/v1/accounts/:id/backup-codes", end.GetBackupCodes)
	r.PUT("/api/v1/accounts/:id/backup-codes", end.SetBackupCodes)

	// Codes & provisioning
	r.GET("/api/v1/accounts/:id/code", end.CurrentCode)
	r.GET("/api/v1/accounts/:id/uri", end.ProvisioningURI)
	r.GET("/api/v1/accounts/:id/qr", end.QRCode)
	r.GETRaw("/api/v1/codes/stream", http.HandlerFunc(end.StreamCodes))

	// Backup
	r.GET("/api/v1/backup/export", end.ExportBundle)
	r.POST("/api/v1/backup/import", end.ImportBundle)
}
