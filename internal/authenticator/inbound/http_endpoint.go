package inbound

import (
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

// maxBundleBytes bounds an uploaded backup bundle.
const maxBundleBytes = 4 << 20

// HTTPEndpoint exposes HTTP handlers for the local authenticator UI.
type HTTPEndpoint struct {
	uc        uc
	heartbeat time.Duration
}

// ListAccounts returns every stored account without secrets.
// @Summary List accounts
// @Tags Accounts
// @Produce json
// @Success 200 {object} router.successResponse{data=ListAccountsResponse} "Accounts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts [get]
func (h *HTTPEndpoint) ListAccounts(r *router.Request) (any, error) {
	resp, err := h.uc.ListAccounts(r.Context())
	if err != nil {
		return nil, err
	}

	return ListAccountsResponse(lo.Map(resp.Accounts, func(a usecase.AccountSummary, _ int) AccountResponse {
		return toAccountResponse(a)
	})), nil
}

// AddAccount stores a manually entered credential.
// @Summary Add account
// @Description Missing algorithm, digits and period default to SHA1, 6 and 30.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body AddAccountRequest true "Account payload"
// @Success 201 {object} router.successResponse{data=AccountResponse} "Created account"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts [post]
func (h *HTTPEndpoint) AddAccount(r *router.Request) (any, error) {
	var req AddAccountRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AddAccount(r.Context(), usecase.AddAccountInput{
		Issuer:    req.Issuer,
		Label:     req.Label,
		Secret:    req.Secret,
		Algorithm: req.Algorithm,
		Digits:    req.Digits,
		Period:    req.Period,
	})
	if err != nil {
		return nil, err
	}

	return CreatedAccountResponse{AccountResponse: toAccountResponse(resp.Account)}, nil
}

// ScanAccount stores the credential of a provisioning URI decoded from a QR code.
// @Summary Add account from QR text
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body ScanAccountRequest true "Decoded QR text"
// @Success 201 {object} router.successResponse{data=AccountResponse} "Created account"
// @Failure 400 {object} router.errorResponse "Invalid QR code"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts/scan [post]
func (h *HTTPEndpoint) ScanAccount(r *router.Request) (any, error) {
	var req ScanAccountRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ScanAccount(r.Context(), usecase.ScanAccountInput{URI: req.URI})
	if err != nil {
		return nil, err
	}

	return CreatedAccountResponse{AccountResponse: toAccountResponse(resp.Account)}, nil
}

// UpdateAccount replaces the fields present in the body.
// @Summary Update account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body UpdateAccountRequest true "Fields to replace"
// @Success 200 {object} router.successResponse{data=AccountResponse} "Updated account"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts/{id} [put]
func (h *HTTPEndpoint) UpdateAccount(r *router.Request) (any, error) {
	var req UpdateAccountRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.UpdateAccount(r.Context(), usecase.UpdateAccountInput{
		ID:        r.GetParam("id"),
		Issuer:    req.Issuer,
		Label:     req.Label,
		Secret:    req.Secret,
		Algorithm: req.Algorithm,
		Digits:    req.Digits,
		Period:    req.Period,
	})
	if err != nil {
		return nil, err
	}

	return toAccountResponse(resp.Account), nil
}

// DeleteAccount removes one account. Unknown ids succeed.
// @Summary Delete account
// @Tags Accounts
// @Param id path string true "Account ID"
// @Success 204 "Deleted"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts/{id} [delete]
func (h *HTTPEndpoint) DeleteAccount(r *router.Request) (any, error) {
	if err := h.uc.DeleteAccount(r.Context(), usecase.DeleteAccountInput{ID: r.GetParam("id")}); err != nil {
		return nil, err
	}

	return DeleteAccountResponse{}, nil
}

// ClearAccounts removes every account.
// @Summary Clear accounts
// @Tags Accounts
// @Produce json
// @Success 200 {object} router.successResponse{data=ClearAccountsResponse} "Removed count"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts [delete]
func (h *HTTPEndpoint) ClearAccounts(r *router.Request) (any, error) {
	resp, err := h.uc.ClearAccounts(r.Context())
	if err != nil {
		return nil, err
	}

	return ClearAccountsResponse{Removed: resp.Removed}, nil
}

// GetBackupCodes returns the stored backup codes of an account.
// @Summary Get backup codes
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} router.successResponse{data=BackupCodesResponse} "Backup codes"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Router /api/v1/accounts/{id}/backup-codes [get]
func (h *HTTPEndpoint) GetBackupCodes(r *router.Request) (any, error) {
	resp, err := h.uc.GetBackupCodes(r.Context(), usecase.GetBackupCodesInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return BackupCodesResponse{ID: resp.ID, Codes: resp.Codes}, nil
}

// SetBackupCodes replaces the backup codes of an account.
// @Summary Replace backup codes
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body BackupCodesRequest true "New codes"
// @Success 200 {object} router.successResponse{data=BackupCodesResponse} "Backup codes"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/accounts/{id}/backup-codes [put]
func (h *HTTPEndpoint) SetBackupCodes(r *router.Request) (any, error) {
	var req BackupCodesRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SetBackupCodes(r.Context(), usecase.SetBackupCodesInput{ID: r.GetParam("id"), Codes: req.Codes})
	if err != nil {
		return nil, err
	}

	return BackupCodesResponse{ID: resp.ID, Codes: resp.Codes}, nil
}

// CurrentCode returns the code valid now.
// @Summary Current code
// @Tags Codes
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} router.successResponse{data=CodeResponse} "Code"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Router /api/v1/accounts/{id}/code [get]
func (h *HTTPEndpoint) CurrentCode(r *router.Request) (any, error) {
	resp, err := h.uc.CurrentCode(r.Context(), usecase.CurrentCodeInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return toCodeResponse(*resp), nil
}

// ProvisioningURI returns the otpauth URI of an account.
// @Summary Provisioning URI
// @Tags Codes
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} router.successResponse{data=ProvisioningURIResponse} "URI"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Router /api/v1/accounts/{id}/uri [get]
func (h *HTTPEndpoint) ProvisioningURI(r *router.Request) (any, error) {
	resp, err := h.uc.ProvisioningURI(r.Context(), usecase.ProvisioningURIInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return ProvisioningURIResponse{URI: resp.URI}, nil
}

// QRCode renders the provisioning URI of an account as a PNG.
// @Summary Provisioning QR code
// @Tags Codes
// @Produce png
// @Param id path string true "Account ID"
// @Param size query int false "Edge length in pixels (64-1024)"
// @Success 200 {file} binary "PNG image"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Router /api/v1/accounts/{id}/qr [get]
func (h *HTTPEndpoint) QRCode(r *router.Request) (any, error) {
	size, err := r.GetQueryInt("size", 0)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.QRCode(r.Context(), usecase.QRCodeInput{ID: r.GetParam("id"), Size: size})
	if err != nil {
		return nil, err
	}

	return &router.Raw{ContentType: "image/png", Body: resp.PNG}, nil
}

// ExportBundle downloads every account as a versioned backup file.
// @Summary Export backup
// @Tags Backup
// @Produce json
// @Success 200 {file} binary "Backup bundle"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/backup/export [get]
func (h *HTTPEndpoint) ExportBundle(r *router.Request) (any, error) {
	resp, err := h.uc.ExportBundle(r.Context())
	if err != nil {
		return nil, err
	}

	return &router.Raw{ContentType: resp.ContentType, FileName: resp.FileName, Body: resp.Data}, nil
}

// ImportBundle appends the accounts of a backup file. The body is either the
// bundle itself or a multipart form with the bundle in the "file" field.
// @Summary Import backup
// @Tags Backup
// @Accept json
// @Accept mpfd
// @Produce json
// @Param file formData file false "Backup bundle"
// @Success 200 {object} router.successResponse{data=ImportBundleResponse} "Import result"
// @Failure 400 {object} router.errorResponse "Invalid backup file"
// @Failure 422 {object} router.errorResponse "Validation error or unsupported version"
// @Router /api/v1/backup/import [post]
func (h *HTTPEndpoint) ImportBundle(r *router.Request) (any, error) {
	data, err := h.readBundle(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ImportBundle(r.Context(), usecase.ImportBundleInput{Data: data})
	if err != nil {
		return nil, err
	}

	return ImportBundleResponse{Imported: resp.Imported, Total: resp.Total}, nil
}

func (h *HTTPEndpoint) readBundle(r *router.Request) ([]byte, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.EqualFold(mt, "multipart/form-data") {
		return r.ReadBody(maxBundleBytes)
	}

	file, err := r.StreamSingleFile("file")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.WarnContext(r.Context(), "failed to close uploaded bundle", "error", err)
		}
	}()

	return router.ReadLimited(file, maxBundleBytes)
}
