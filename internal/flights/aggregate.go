// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package flights

import (
	"fmt"
	"sort"

	"github.com/skyintel/skyintel/internal/analytics"
	"github.com/skyintel/skyintel/internal/models"
)

// KPIs are the per-year headline numbers of the operations panel.
type KPIs struct {
	Year        string  `json:"year"`
	Flights     int     `json:"flights"`
	Passengers  float64 `json:"passengers"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
	FlightHours float64 `json:"flight_hours"`
	// AvgTicket is revenue per passenger, zero when no passengers.
	AvgTicket float64 `json:"avg_ticket"`
}

// YearKPIs computes KPIs per year label, sorted by year.
func (d *Dataset) YearKPIs() []KPIs {
	byYear := make(map[string]*KPIs)
	var years []string
	for _, f := range d.Flights {
		k, ok := byYear[f.Year]
		if !ok {
			k = &KPIs{Year: f.Year}
			byYear[f.Year] = k
			years = append(years, f.Year)
		}
		k.Flights++
		k.Passengers += f.Passengers
		k.Revenue += f.Revenue
		k.Profit += f.Profit
		k.FlightHours += f.FlightHours
	}
	sort.Strings(years)

	out := make([]KPIs, 0, len(years))
	for _, y := range years {
		k := byYear[y]
		if k.Passengers > 0 {
			k.AvgTicket = k.Revenue / k.Passengers
		}
		out = append(out, *k)
	}
	return out
}

// MonthlyPoint is one (year, month) bucket of the monthly series.
type MonthlyPoint struct {
	Year    string  `json:"year"`
	Month   string  `json:"month"`
	Flights int     `json:"flights"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// Monthly buckets flights by year and month label, sorted by year then
// month.
func (d *Dataset) Monthly() []MonthlyPoint {
	type key struct{ year, month string }
	byKey := make(map[key]*MonthlyPoint)
	var keys []key
	for _, f := range d.Flights {
		k := key{f.Year, f.Month}
		p, ok := byKey[k]
		if !ok {
			p = &MonthlyPoint{Year: f.Year, Month: f.Month}
			byKey[k] = p
			keys = append(keys, k)
		}
		p.Flights++
		p.Revenue += f.Revenue
		p.Profit += f.Profit
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

// rows converts flights to metric rows so the generic ranking builder
// can serve the destination, operator and aircraft panels.
func (d *Dataset) rows() []models.MetricRow {
	rows := make([]models.MetricRow, 0, len(d.Flights))
	for _, f := range d.Flights {
		rows = append(rows, models.MetricRow{
			Dimensions: map[string]string{
				"destination":   f.Destination,
				"operator":      f.Operator,
				"aircraft":      f.Aircraft,
				"aircraft_type": f.AircraftType,
			},
			Metrics: map[string]float64{
				"flights":    1,
				"passengers": f.Passengers,
				"revenue":    f.Revenue,
				"profit":     f.Profit,
			},
		})
	}
	return rows
}

// TopDestinationsByFlights ranks destinations by flight count.
func (d *Dataset) TopDestinationsByFlights(n int) models.RankingTable {
	return analytics.TopN(d.rows(), "destination", "flights", n, false)
}

// TopDestinationsByProfit ranks destinations by total profit.
func (d *Dataset) TopDestinationsByProfit(n int) models.RankingTable {
	return analytics.TopN(d.rows(), "destination", "profit", n, false)
}

// PassengersByDestination ranks destinations by passengers carried.
func (d *Dataset) PassengersByDestination(n int) models.RankingTable {
	return analytics.TopN(d.rows(), "destination", "passengers", n, false)
}

// FlightsByOperator ranks operators by flight count.
func (d *Dataset) FlightsByOperator(n int) models.RankingTable {
	return analytics.TopN(d.rows(), "operator", "flights", n, false)
}

// ProfitByAircraft ranks individual aircraft by profit.
func (d *Dataset) ProfitByAircraft(n int) models.RankingTable {
	return analytics.TopN(d.rows(), "aircraft", "profit", n, false)
}

// ProfitByAircraftType ranks aircraft types by profit.
func (d *Dataset) ProfitByAircraftType(n int) models.RankingTable {
	return analytics.TopN(d.rows(), "aircraft_type", "profit", n, false)
}

// Heatmap is a labeled grid of counts.
type Heatmap struct {
	Rows   []string    `json:"rows"`
	Cols   []string    `json:"cols"`
	Values [][]float64 `json:"values"`
}

// weekdayOrder fixes the column order of the weekday heatmaps to the
// labels the export uses.
var weekdayOrder = []string{
	"lunes", "martes", "miércoles", "jueves", "viernes", "sábado", "domingo",
}

// DestinationWeekdayHeatmap counts flights per destination and
// weekday. Rows are destinations sorted by total flights descending.
func (d *Dataset) DestinationWeekdayHeatmap() Heatmap {
	colIndex := make(map[string]int, len(weekdayOrder))
	for i, w := range weekdayOrder {
		colIndex[w] = i
	}

	counts := make(map[string][]float64)
	totals := make(map[string]float64)
	var dests []string
	for _, f := range d.Flights {
		j, ok := colIndex[f.DayName]
		if !ok || f.Destination == "" {
			continue
		}
		row, seen := counts[f.Destination]
		if !seen {
			row = make([]float64, len(weekdayOrder))
			counts[f.Destination] = row
			dests = append(dests, f.Destination)
		}
		row[j]++
		totals[f.Destination]++
	}
	sort.SliceStable(dests, func(i, j int) bool { return totals[dests[i]] > totals[dests[j]] })

	h := Heatmap{Cols: weekdayOrder, Rows: dests}
	for _, dest := range dests {
		h.Values = append(h.Values, counts[dest])
	}
	return h
}

// WeekdayHourHeatmap counts flights per weekday and departure hour.
// Rows follow the fixed weekday order; flights with an unparseable
// hour are skipped.
func (d *Dataset) WeekdayHourHeatmap() Heatmap {
	rowIndex := make(map[string]int, len(weekdayOrder))
	for i, w := range weekdayOrder {
		rowIndex[w] = i
	}
	values := make([][]float64, len(weekdayOrder))
	cols := make([]string, 24)
	for h := 0; h < 24; h++ {
		cols[h] = fmtHour(h)
	}
	for i := range values {
		values[i] = make([]float64, 24)
	}
	for _, f := range d.Flights {
		i, ok := rowIndex[f.DayName]
		if !ok || f.Hour < 0 {
			continue
		}
		values[i][f.Hour]++
	}
	return Heatmap{Rows: weekdayOrder, Cols: cols, Values: values}
}

func fmtHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// Filter returns the flights matching the given destination, operator
// and month; empty arguments match everything.
func (d *Dataset) Filter(destination, operator, month string) []Flight {
	var out []Flight
	for _, f := range d.Flights {
		if destination != "" && f.Destination != destination {
			continue
		}
		if operator != "" && f.Operator != operator {
			continue
		}
		if month != "" && f.Month != month {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Destinations lists distinct destinations, sorted.
func (d *Dataset) Destinations() []string {
	return d.distinct(func(f Flight) string { return f.Destination })
}

// Operators lists distinct operators, sorted.
func (d *Dataset) Operators() []string {
	return d.distinct(func(f Flight) string { return f.Operator })
}

func (d *Dataset) distinct(get func(Flight) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range d.Flights {
		v := get(f)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
