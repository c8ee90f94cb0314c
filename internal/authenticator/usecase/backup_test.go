package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportBundle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.add(t, "alice")
	_, err := f.uc.SetBackupCodes(ctx, SetBackupCodesInput{ID: a.ID, Codes: []string{"1111"}})
	require.NoError(t, err)

	exp, err := f.uc.ExportBundle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gotp-backup-1970-01-01.json", exp.FileName)
	assert.Equal(t, "application/json", exp.ContentType)
	assert.Equal(t, 1, exp.Accounts)

	imp, err := f.uc.ImportBundle(ctx, ImportBundleInput{Data: exp.Data})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Imported)
	assert.Equal(t, 2, imp.Total)

	list := f.store.List()
	require.Len(t, list, 2)
	assert.NotEqual(t, list[0].ID, list[1].ID, "imported accounts get fresh ids")
	assert.Equal(t, list[0].Secret, list[1].Secret)
	assert.Equal(t, list[0].BackupCodes, list[1].BackupCodes)
}

func TestImportBundle_Rejections(t *testing.T) {
	valid := `{"issuer":"A","label":"b","secret":"JBSWY3DPEHPK3PXP","algorithm":"SHA1","digits":6,"period":30,"backupCodes":[]}`

	tests := []struct {
		name string
		data string
		code goerror.Code
	}{
		{name: "malformed", data: `{`, code: goerror.CodeInvalidFormat},
		{name: "future version", data: `{"version":2,"accounts":[]}`, code: goerror.CodeUnsupported},
		{
			name: "one bad record",
			data: `{"version":1,"accounts":[` + valid + `,` + strings.Replace(valid, `"digits":6`, `"digits":0`, 1) + `]}`,
			code: goerror.CodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.add(t, "existing")

			_, err := f.uc.ImportBundle(context.Background(), ImportBundleInput{Data: []byte(tt.data)})

			gerr := requireCode(t, err, tt.code)
			if tt.code == goerror.CodeInvalidInput {
				assert.Contains(t, gerr.Fields(), "accounts[1].digits")
			}
			assert.Equal(t, 1, f.store.Len(), "nothing is imported from a rejected bundle")
		})
	}
}

func TestImportBundle_WriteFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "alice")

	exp, err := f.uc.ExportBundle(ctx)
	require.NoError(t, err)

	f.storage.setFail(true)
	_, err = f.uc.ImportBundle(ctx, ImportBundleInput{Data: exp.Data})

	requireCode(t, err, goerror.CodeInternal)
	assert.Equal(t, 1, f.store.Len())
}
