// Package csv provides CSV-based target point lists.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.ngs.io/regrid/internal/domain"
)

const suffix = "_points.csv"

// PointStore provides access to named lists of target points.
type PointStore struct {
	dataDir string
}

// NewPointStore creates a new CSV-based point store.
func NewPointStore(dataDir string) *PointStore {
	return &PointStore{
		dataDir: dataDir,
	}
}

// Load reads the list <name>_points.csv from the data directory.
func (s *PointStore) Load(name string) ([]domain.Point, error) {
	filename := filepath.Join(s.dataDir, strings.ToLower(name)+suffix)
	pts, err := ReadPoints(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load point list %s: %w", name, err)
	}
	return pts, nil
}

// ReadPoints reads a CSV file with a lat,lon header. Extra columns are
// ignored.
func ReadPoints(filename string) ([]domain.Point, error) {
	//nolint:gosec // G304: File path constructed from dataDir (config) or a CLI flag.
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return parse(file)
}

func parse(r io.Reader) ([]domain.Point, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Read header.
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	latCol, lonCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude":
			latCol = i
		case "lon", "longitude":
			lonCol = i
		}
	}
	if latCol < 0 || lonCol < 0 {
		return nil, fmt.Errorf("invalid CSV header: expected lat and lon columns, got %v", header)
	}

	points := make([]domain.Point, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) <= latCol || len(record) <= lonCol {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, max(latCol, lonCol)+1, len(record))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[latCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[lonCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid longitude: %w", line, err)
		}
		if lat < domain.SouthPole || lat > domain.NorthPole {
			return nil, fmt.Errorf("line %d: latitude %.6f must be between -90 and 90", line, lat)
		}
		points = append(points, domain.NewPoint(lat, lon))
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no points found in CSV")
	}
	return points, nil
}

// List returns the names of the available point lists.
func (s *PointStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	names := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, suffix) {
			names = append(names, strings.TrimSuffix(name, suffix))
		}
	}
	return names, nil
}
