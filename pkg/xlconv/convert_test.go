package xlconv

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xlconv/xlconv-go/pkg/xlconv/models"
)

func workbookBytes(t *testing.T, build func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func peopleWorkbook(t *testing.T) []byte {
	return workbookBytes(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "Name")
		f.SetCellValue("Sheet1", "B1", "Age")
		f.SetCellValue("Sheet1", "A2", "John")
		f.SetCellValue("Sheet1", "B2", 30)
		f.SetCellValue("Sheet1", "A3", "Jane")
		f.SetCellValue("Sheet1", "B3", 25)
	})
}

func TestConvert_Workbook(t *testing.T) {
	res, err := Convert(context.Background(), BytesInput(peopleWorkbook(t)), Options{})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Nil(t, res.Sheets, "first-sheet selection uses the array shape")
	assert.Equal(t, models.Row{"Name": "John", "Age": float64(30)}, res.Data[0])
	assert.Equal(t, models.Row{"Name": "Jane", "Age": float64(25)}, res.Data[1])

	assert.Equal(t, "workbook", res.Metadata.SourceType)
	assert.Equal(t, 2, res.Metadata.TotalRows)
	assert.Equal(t, 1, res.Metadata.TotalSheets)
	require.Len(t, res.Metadata.Sheets, 1)
	assert.Equal(t, "Sheet1", res.Metadata.Sheets[0].Name)
	assert.Equal(t, 0, res.Metadata.Sheets[0].Index)
	assert.Equal(t, 2, res.Metadata.Sheets[0].RowCount)
}

func TestConvert_CSVText(t *testing.T) {
	res, err := Convert(context.Background(), TextInput("a,b\n1,yes\n2,no"), Options{})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, models.Row{"a": int64(1), "b": true}, res.Data[0])
	assert.Equal(t, models.Row{"a": int64(2), "b": false}, res.Data[1])
	assert.Equal(t, "csv", res.Metadata.SourceType)
}

func TestConvert_AllSheets(t *testing.T) {
	data := workbookBytes(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "a")
		f.SetCellValue("Sheet1", "A2", "x")
		_, err := f.NewSheet("Second")
		require.NoError(t, err)
		f.SetCellValue("Second", "A1", "b")
		f.SetCellValue("Second", "A2", "y")
	})

	res, err := Convert(context.Background(), BytesInput(data), Options{Sheets: AllSheets()})
	require.NoError(t, err)

	assert.Nil(t, res.Data)
	require.Len(t, res.Sheets, 2)
	assert.Equal(t, "x", res.Sheets["Sheet1"][0]["a"])
	assert.Equal(t, "y", res.Sheets["Second"][0]["b"])
	assert.Equal(t, 2, res.Metadata.TotalSheets)
}

func TestConvert_SheetSelectionByName(t *testing.T) {
	data := workbookBytes(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "a")
		f.SetCellValue("Sheet1", "A2", "x")
		_, err := f.NewSheet("Second")
		require.NoError(t, err)
		f.SetCellValue("Second", "A1", "b")
		f.SetCellValue("Second", "A2", "y")
	})

	// Unknown names are dropped silently.
	res, err := Convert(context.Background(), BytesInput(data),
		Options{Sheets: SheetsByName("Second", "Missing")})
	require.NoError(t, err)
	require.Len(t, res.Sheets, 1)
	assert.Contains(t, res.Sheets, "Second")
}

func TestConvert_NoSheetsFound(t *testing.T) {
	_, err := Convert(context.Background(), BytesInput(peopleWorkbook(t)),
		Options{Sheets: SheetsByName("Missing")})
	require.ErrorIs(t, err, ErrNoSheetsFound)
}

func TestConvert_InvalidInput(t *testing.T) {
	_, err := Convert(context.Background(), TextInput(""), Options{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Convert(context.Background(), BytesInput(nil), Options{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Convert(context.Background(), BytesInput([]byte("not csv not workbook")), Options{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestConvert_PathWithoutResolver(t *testing.T) {
	_, err := Convert(context.Background(), TextInput("/tmp/report.xlsx"), Options{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

type mapResolver map[string][]byte

func (m mapResolver) Resolve(ref string) ([]byte, SourceMeta, error) {
	data := m[ref]
	return data, SourceMeta{Name: ref}, nil
}

func TestConvert_ResolverReference(t *testing.T) {
	resolver := mapResolver{"/tmp/people.xlsx": peopleWorkbook(t)}

	res, err := Convert(context.Background(), TextInput("/tmp/people.xlsx"),
		Options{Resolver: resolver})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
}

func TestConvert_NestedObjects(t *testing.T) {
	res, err := Convert(context.Background(),
		TextInput("user.name,user.age,city\nJohn,30,Oslo"),
		Options{NestedObjects: true})
	require.NoError(t, err)

	require.Len(t, res.Data, 1)
	user, ok := res.Data[0]["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "John", user["name"])
	assert.Equal(t, int64(30), user["age"])
	assert.Equal(t, "Oslo", res.Data[0]["city"])
}

func TestConvert_ValidationDropsRows(t *testing.T) {
	cont := false
	opts := Options{
		ValidateTypes:             true,
		ContinueOnValidationError: &cont,
		CellValidator: func(value any, column string, rowIndex int) error {
			if column == "a" {
				if n, ok := value.(int64); ok && n > 1 {
					return assert.AnError
				}
			}
			return nil
		},
	}

	res, err := Convert(context.Background(), TextInput("a,b\n1,x\n2,y"), opts)
	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
	assert.NotEmpty(t, res.Metadata.ValidationErrors)
}

func TestConvert_ValidationKeepsRowsByDefault(t *testing.T) {
	opts := Options{
		ValidateTypes: true,
		RowValidator: func(row models.Row, index int) error {
			return assert.AnError
		},
	}

	res, err := Convert(context.Background(), TextInput("a,b\n1,x\n2,y"), opts)
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.NotEmpty(t, res.Metadata.ValidationErrors)
}

func TestConvert_IncludeSheetName(t *testing.T) {
	res, err := Convert(context.Background(), BytesInput(peopleWorkbook(t)),
		Options{IncludeSheetName: true})
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", res.Data[0]["_sheet"])
}

func TestConvert_DateFormatting(t *testing.T) {
	when := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	data := workbookBytes(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "when")
		f.SetCellValue("Sheet1", "A2", when)
	})

	res, err := Convert(context.Background(), BytesInput(data), Options{})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "15/06/2024", res.Data[0]["when"])

	res, err = Convert(context.Background(), BytesInput(data),
		Options{DateFormat: "YYYY-MM-DD"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", res.Data[0]["when"])
}

func TestConvert_CSVDateRendering(t *testing.T) {
	res, err := Convert(context.Background(), TextInput("name,joined\nJohn,2024-06-15"), Options{})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "15/06/2024", res.Data[0]["joined"])

	res, err = Convert(context.Background(), TextInput("name,joined\nJohn,2024-06-15"),
		Options{DateFormat: "YYYY-MM-DD"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", res.Data[0]["joined"])
}

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV("a,b\n1,yes\n2,no", Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.Row{"a": int64(1), "b": true}, rows[0])

	_, err = ParseCSV("", Options{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExtractSheet(t *testing.T) {
	g := models.NewGrid(1, 1, 3, 2)
	g.SetCell(1, 1, models.Cell{Value: "Name", Type: models.TypeString})
	g.SetCell(1, 2, models.Cell{Value: "Age", Type: models.TypeString})
	g.SetCell(2, 1, models.Cell{Value: "John", Type: models.TypeString})
	g.SetCell(2, 2, models.Cell{Value: float64(30), Type: models.TypeNumber})
	g.SetCell(3, 1, models.Cell{Value: "Jane", Type: models.TypeString})
	g.SetCell(3, 2, models.Cell{Value: float64(25), Type: models.TypeNumber})

	rows, err := ExtractSheet(g, "People", Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.Row{"Name": "John", "Age": float64(30)}, rows[0])
	assert.Equal(t, models.Row{"Name": "Jane", "Age": float64(25)}, rows[1])
}

func TestConvert_ResultJSONShape(t *testing.T) {
	res, err := Convert(context.Background(), TextInput("a,b\n1,2"), Options{})
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded struct {
		Data     []map[string]any `json:"data"`
		Metadata map[string]any   `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded.Data, 1)
	assert.EqualValues(t, 1, decoded.Metadata["totalRows"])
}

func TestConvert_HeaderWarningsInMetadata(t *testing.T) {
	res, err := Convert(context.Background(), TextInput("name,has space\nx,y"), Options{})
	require.NoError(t, err)

	require.NotEmpty(t, res.Metadata.ValidationErrors)
	assert.Equal(t, models.SeverityWarning, res.Metadata.ValidationErrors[0].Severity)
}
