package export_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/convert"
	"github.com/joseph-ayodele/docconv/internal/export"
	"github.com/joseph-ayodele/docconv/internal/extract"
)

type stubConverter struct {
	res *convert.ConversionResult
}

func (s stubConverter) Convert(context.Context, convert.Mode, string, convert.Options) *convert.ConversionResult {
	return s.res
}

func sampleResult() *convert.ConversionResult {
	res := convert.Succeeded("## Page 1\n\n合同编号：HT-7\n\n", 2, "mupdf_embedded")
	res.PageTexts = []convert.PageResult{{Page: 1, Text: "合同编号：HT-7"}}
	res.Warnings = []string{"page 2: render: broken"}
	return res
}

func TestWorkbook_Sheets(t *testing.T) {
	buf, err := export.Workbook(sampleResult(), map[string]string{"title": "T", "contractNumber": "HT-7"}, "run-42")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Pages", "Fields", "Summary"}, f.GetSheetList())

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "run-42", props.Identifier)
	assert.Equal(t, "docconv", props.Creator)

	v, _ := f.GetCellValue("Pages", "B2")
	assert.Equal(t, "合同编号：HT-7", v)

	rows, err := f.GetRows("Fields")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Field", "Value"}, {"contractNumber", "HT-7"}, {"title", "T"}}, rows)

	v, _ = f.GetCellValue("Summary", "B2")
	assert.Equal(t, "mupdf_embedded", v)
	v, _ = f.GetCellValue("Summary", "B7")
	assert.Equal(t, "page 2: render: broken", v)
}

func TestService_Export(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")
	svc := export.NewService(extract.NewService(stubConverter{res: sampleResult()}, nil, nil), nil)

	ctx := common.WithRequestID(context.Background(), "run-7")
	res := svc.Export(ctx, "contract.pdf", out, []string{"contract_number"})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, out, res.Path)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, _ := f.GetCellValue("Fields", "B2")
	assert.Equal(t, "HT-7", v)
	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "run-7", props.Identifier)
}

func TestService_ExportConversionFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")
	svc := export.NewService(extract.NewService(stubConverter{res: convert.Failed("no such file", 0)}, nil, nil), nil)

	res := svc.Export(context.Background(), "missing.pdf", out, nil)

	assert.False(t, res.Success)
	assert.Equal(t, "no such file", res.Error)
	assert.NoFileExists(t, out)
}
