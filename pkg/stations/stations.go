// Package stations provides the static station metadata table: every known
// camera site per array, with geodetic coordinates. The table ships embedded
// in the binary and is loaded fully into memory per Imager instantiation.
package stations

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed asi_stations.csv
var stationsCSV []byte

// ErrEmptyTable is returned when the embedded table contains no stations.
var ErrEmptyTable = errors.New("station table is empty")

// Station is one physical camera installation within an array.
type Station struct {
	Array     string
	Code      string
	Latitude  float64
	Longitude float64
	Location  string
}

// Table is the in-memory station metadata table.
type Table struct {
	stations []Station
}

// LoadTable parses the embedded station CSV into a Table.
func LoadTable() (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(stationsCSV))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read station table header: %w", err)
	}

	expected := []string{"array", "station", "latitude", "longitude", "location"}
	if len(header) != len(expected) {
		return nil, fmt.Errorf("invalid station table header: expected %v, got %v", expected, header)
	}
	for i, h := range header {
		if h != expected[i] {
			return nil, fmt.Errorf("invalid station table header: expected column %d to be %s, got %s", i, expected[i], h)
		}
	}

	all := make([]Station, 0)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read station record: %w", err)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude for station %s: %w", record[1], err)
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude for station %s: %w", record[1], err)
		}

		all = append(all, Station{
			Array:     strings.ToUpper(strings.TrimSpace(record[0])),
			Code:      strings.ToUpper(strings.TrimSpace(record[1])),
			Latitude:  lat,
			Longitude: lon,
			Location:  strings.TrimSpace(record[4]),
		})
	}

	if len(all) == 0 {
		return nil, ErrEmptyTable
	}

	return &Table{stations: all}, nil
}

// ForArray returns every station belonging to an array, in table order.
func (t *Table) ForArray(array string) []Station {
	array = strings.ToUpper(array)

	matched := make([]Station, 0)
	for _, s := range t.stations {
		if s.Array == array {
			matched = append(matched, s)
		}
	}

	return matched
}

// Lookup finds one station by array and case-insensitive code.
func (t *Table) Lookup(array, code string) (Station, bool) {
	array, code = strings.ToUpper(array), strings.ToUpper(code)

	for _, s := range t.stations {
		if s.Array == array && s.Code == code {
			return s, true
		}
	}

	return Station{}, false
}
