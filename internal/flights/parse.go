// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package flights ingests the flight-operations CSV exports uploaded
// by the sales team and derives the operations panels: per-year KPIs,
// monthly series, destination and operator rankings, and activity
// heatmaps. The exports come from a Spanish-language back office, so
// the column contract is Spanish and files may arrive in legacy
// encodings.
package flights

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/skyintel/skyintel/internal/logging"
)

// requiredColumns is the exact header contract of the operations
// export. A file missing any of these is rejected with the missing
// names spelled out.
var requiredColumns = []string{
	"Fase actual",
	"Tipo de aeronave",
	"Fecha y hora del vuelo",
	"Número de pasajeros",
	"Monto total a cobrar",
	"Cliente",
	"Aeronave",
	"Operador",
	"Costo del vuelo (acordado con el operador)",
	"Horas de vuelo",
	"Mes",
	"Ganancia",
	"Destino",
	"dia",
	"nombre_dia",
	"hora",
}

// Flight is one row of the operations export, cleaned: numeric fields
// coerce to zero when unparseable, the timestamp to the zero time, and
// the hour to -1 so midnight stays distinguishable from bad data.
type Flight struct {
	Phase        string    `json:"phase"`
	AircraftType string    `json:"aircraft_type"`
	FlownAt      time.Time `json:"flown_at"`
	Passengers   float64   `json:"passengers"`
	Revenue      float64   `json:"revenue"`
	Client       string    `json:"client"`
	Aircraft     string    `json:"aircraft"`
	Operator     string    `json:"operator"`
	Cost         float64   `json:"cost"`
	FlightHours  float64   `json:"flight_hours"`
	Month        string    `json:"month"`
	Profit       float64   `json:"profit"`
	Destination  string    `json:"destination"`
	Day          string    `json:"day"`
	DayName      string    `json:"day_name"`
	Hour         int       `json:"hour"`
	File         string    `json:"file"`
	Year         string    `json:"year"`
}

// Dataset is the unified collection of all uploaded files.
type Dataset struct {
	Flights []Flight `json:"flights"`
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// yearTag extracts the year label for a file: the first four-digit run
// in the name, else the filename stem.
func yearTag(filename string) string {
	if m := yearPattern.FindString(filename); m != "" {
		return m
	}
	stem, _, _ := strings.Cut(filename, ".")
	return stem
}

// decodeCSV turns raw bytes into text, accepting UTF-8 first and
// falling back to the legacy encodings the back office has exported
// over the years.
func decodeCSV(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := cm.NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("file is not valid UTF-8, Latin-1 or Windows-1252")
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseHour(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > 23 {
		return -1
	}
	return v
}

// Parse reads one uploaded CSV into flights tagged with the file name
// and its year label.
func Parse(filename string, data []byte) ([]Flight, error) {
	text, err := decodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	reader := csv.NewReader(bytes.NewReader([]byte(text)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file %s is empty", filename)
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("file %s is missing required columns: %s",
			filename, strings.Join(missing, ", "))
	}

	year := yearTag(filename)
	field := func(record []string, name string) string {
		i := col[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	flights := make([]Flight, 0, len(records)-1)
	for _, record := range records[1:] {
		flights = append(flights, Flight{
			Phase:        field(record, "Fase actual"),
			AircraftType: field(record, "Tipo de aeronave"),
			FlownAt:      parseTimestamp(field(record, "Fecha y hora del vuelo")),
			Passengers:   parseFloat(field(record, "Número de pasajeros")),
			Revenue:      parseFloat(field(record, "Monto total a cobrar")),
			Client:       field(record, "Cliente"),
			Aircraft:     field(record, "Aeronave"),
			Operator:     field(record, "Operador"),
			Cost:         parseFloat(field(record, "Costo del vuelo (acordado con el operador)")),
			FlightHours:  parseFloat(field(record, "Horas de vuelo")),
			Month:        field(record, "Mes"),
			Profit:       parseFloat(field(record, "Ganancia")),
			Destination:  field(record, "Destino"),
			Day:          field(record, "dia"),
			DayName:      field(record, "nombre_dia"),
			Hour:         parseHour(field(record, "hora")),
			File:         filename,
			Year:         year,
		})
	}
	logging.With("flights").Debug().
		Str("file", filename).
		Int("rows", len(flights)).
		Msg("parsed operations file")
	return flights, nil
}

// ParseAll unifies multiple uploads into one dataset. The first
// invalid file aborts the whole upload so the operator fixes it rather
// than silently analyzing partial data.
func ParseAll(files map[string][]byte) (*Dataset, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	ds := &Dataset{}
	for _, name := range names {
		flights, err := Parse(name, files[name])
		if err != nil {
			return nil, err
		}
		ds.Flights = append(ds.Flights, flights...)
	}
	return ds, nil
}
