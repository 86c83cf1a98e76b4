package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointStore_Load(t *testing.T) {
	dir := t.TempDir()
	content := "id,latitude,longitude\ntokyo,35.68,139.77\nlondon, 51.51, -0.13\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cities_points.csv"), []byte(content), 0o644))

	s := NewPointStore(dir)
	pts, err := s.Load("Cities")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 35.68, pts[0].Latitude)
	assert.Equal(t, -0.13, pts[1].Longitude)
	assert.Equal(t, int64(-1), pts[0].K)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"cities"}, names)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing lon column", "lat,value\n1,2\n", "invalid CSV header"},
		{"bad latitude", "lat,lon\nabc,2\n", "line 2: invalid latitude"},
		{"latitude out of range", "lat,lon\n91,0\n", "between -90 and 90"},
		{"empty", "lat,lon\n", "no points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
