package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
)

type AccountResponse struct {
	ID               string `json:"id"`
	Issuer           string `json:"issuer"`
	Label            string `json:"label"`
	Algorithm        string `json:"algorithm"`
	Digits           int    `json:"digits"`
	Period           int    `json:"period"`
	CreatedAt        int64  `json:"created_at"`
	BackupCodesCount int    `json:"backup_codes_count"`
}

func toAccountResponse(a usecase.AccountSummary) AccountResponse {
	return AccountResponse{
		ID:               a.ID,
		Issuer:           a.Issuer,
		Label:            a.Label,
		Algorithm:        a.Algorithm.String(),
		Digits:           a.Digits,
		Period:           a.Period,
		CreatedAt:        a.CreatedAt,
		BackupCodesCount: a.BackupCodesCount,
	}
}

type ListAccountsResponse []AccountResponse

func (r ListAccountsResponse) Meta() map[string]any {
	return map[string]any{"total": len(r)}
}

type AddAccountRequest struct {
	Issuer    string `json:"issuer"`
	Label     string `json:"label"`
	Secret    string `json:"secret"`
	Algorithm string `json:"algorithm"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
}

type ScanAccountRequest struct {
	URI string `json:"uri"`
}

type CreatedAccountResponse struct {
	AccountResponse
}

func (CreatedAccountResponse) StatusCode() int {
	return http.StatusCreated
}

func (CreatedAccountResponse) Message() string {
	return "Account added"
}

type UpdateAccountRequest struct {
	Issuer    *string `json:"issuer"`
	Label     *string `json:"label"`
	Secret    *string `json:"secret"`
	Algorithm *string `json:"algorithm"`
	Digits    *int    `json:"digits"`
	Period    *int    `json:"period"`
}

type DeleteAccountResponse struct{}

func (DeleteAccountResponse) StatusCode() int {
	return http.StatusNoContent
}

type ClearAccountsResponse struct {
	Removed int `json:"removed"`
}

type BackupCodesRequest struct {
	Codes []string `json:"codes"`
}

type BackupCodesResponse struct {
	ID    string   `json:"id"`
	Codes []string `json:"codes"`
}

type CodeResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Valid      bool      `json:"valid"`
	Remaining  int       `json:"remaining"`
	Period     int       `json:"period"`
	ValidUntil time.Time `json:"valid_until"`
}

func toCodeResponse(c usecase.CodeOutput) CodeResponse {
	return CodeResponse{
		ID:         c.ID,
		Code:       c.Code,
		Valid:      c.Valid,
		Remaining:  c.Remaining,
		Period:     c.Period,
		ValidUntil: c.ValidUntil.UTC(),
	}
}

type ProvisioningURIResponse struct {
	URI string `json:"uri"`
}

type ImportBundleResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

func (ImportBundleResponse) Message() string {
	return "Backup imported"
}

type StreamAccountsEvent struct {
	IDs []string `json:"ids"`
}
