package table

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSemicolonExport(t *testing.T) {
	// Numbers puts the sheet name on the first line and pads every row
	// with a trailing delimiter
	content := "My Sheet\n" +
		"video_id; Core_video ;note;\n" +
		"abc;1;keep this;\n" +
		"def;0;and this;\n"
	path := writeFile(t, "export.csv", content)

	tab, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"video_id", "Core_video", "note"}, tab.Columns)
	require.Len(t, tab.Rows, 2)
	assert.Equal(t, "abc", tab.Rows[0]["video_id"])
	assert.Equal(t, "1", tab.Rows[0]["Core_video"])
}

func TestLoadCommaFallback(t *testing.T) {
	content := "video_id,Core_video,note\n" +
		"abc,1,first\n" +
		"def,0,second\n"
	path := writeFile(t, "plain.csv", content)

	tab, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"video_id", "Core_video", "note"}, tab.Columns)
	require.Len(t, tab.Rows, 2)
	assert.Equal(t, "def", tab.Rows[1]["video_id"])
}

func TestLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"video_id", "Core_video"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"abc", "1"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tab, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"video_id", "Core_video"}, tab.Columns)
	require.Len(t, tab.Rows, 1)
	assert.Equal(t, "abc", tab.Rows[0]["video_id"])
}

func TestLoadDropsEmptyColumns(t *testing.T) {
	content := "video_id,empty,note\n" +
		"abc,,x\n" +
		"def,,y\n"
	path := writeFile(t, "empties.csv", content)

	tab, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"video_id", "note"}, tab.Columns)
}

func TestLoadHeaderOnlyKeepsColumns(t *testing.T) {
	path := writeFile(t, "header.csv", "video_id,Core_video\n")

	tab, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"video_id", "Core_video"}, tab.Columns)
	assert.Empty(t, tab.Rows)
}

func TestLoadGarbage(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestRequireColumns(t *testing.T) {
	tab := &Table{Columns: []string{"video_id"}}
	assert.NoError(t, tab.RequireColumns("video_id"))
	assert.ErrorIs(t, tab.RequireColumns("video_id", "Core_video"), ErrMissingColumn)
}

func TestMergeColumnKeepsNullDistinctFromEmpty(t *testing.T) {
	tab := &Table{
		Columns: []string{"video_id"},
		Rows: []map[string]string{
			{"video_id": "a"},
			{"video_id": "b"},
			{"video_id": "c"},
		},
	}

	tab.MergeColumn("video_id", "transcript", map[string]string{
		"a": "X",
		"b": "", // attempted, nothing obtainable
	})

	assert.Equal(t, []string{"video_id", "transcript"}, tab.Columns)
	assert.Equal(t, "X", tab.Rows[0]["transcript"])

	v, attempted := tab.Rows[1]["transcript"]
	assert.True(t, attempted)
	assert.Equal(t, "", v)

	_, attempted = tab.Rows[2]["transcript"]
	assert.False(t, attempted, "unflagged row must keep a null cell")
}

func TestWriteCSVWithBOM(t *testing.T) {
	tab := &Table{
		Columns: []string{"video_id", "title"},
		Rows: []map[string]string{
			{"video_id": "abc", "title": "héllo, wörld"},
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, tab.WriteCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "\xef\xbb\xbf"), "output must start with a UTF-8 BOM")

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\xef\xbb\xbf")))
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"video_id", "title"},
		{"abc", "héllo, wörld"},
	}, records)
}

func TestRoundTrip(t *testing.T) {
	tab := &Table{
		Columns: []string{"video_id", "Core_video"},
		Rows: []map[string]string{
			{"video_id": "abc", "Core_video": "1"},
			{"video_id": "def", "Core_video": "0"},
		},
	}
	path := filepath.Join(t.TempDir(), "roundtrip.csv")
	require.NoError(t, tab.WriteCSV(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tab.Columns, back.Columns)
	assert.Equal(t, tab.Rows, back.Rows)
}
