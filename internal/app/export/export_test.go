package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"meeting-transcriber/internal/app/model"
)

func TestToExcel(t *testing.T) {
	out := filepath.Join(t.TempDir(), "history.xlsx")
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	runs := []model.Run{
		{
			ID:             "r1",
			FileName:       "standup.mp4",
			Status:         model.RunResolved,
			ElapsedSeconds: 45,
			SizeBytes:      1024,
			Transcript:     "Hello\nworld",
			StartedAt:      started,
			FinishedAt:     started.Add(45 * time.Second),
		},
		{
			ID:           "r2",
			FileName:     "retro.mov",
			Status:       model.RunFailed,
			ErrorMessage: "upload failed",
			StartedAt:    started,
		},
	}

	require.NoError(t, ToExcel(runs, out))

	file, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Runs", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "File Name", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "standup.mp4", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "45", sheet.Rows[1].Cells[5].Value)
	assert.Equal(t, "", sheet.Rows[2].Cells[4].Value)
	assert.Equal(t, "upload failed", sheet.Rows[2].Cells[8].Value)
}

func TestToExcel_BadPath(t *testing.T) {
	err := ToExcel(nil, filepath.Join(t.TempDir(), "missing", "dir", "out.xlsx"))
	assert.Error(t, err)
}
