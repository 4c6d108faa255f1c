// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package flights

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const csvHeader = "Fase actual,Tipo de aeronave,Fecha y hora del vuelo,Número de pasajeros," +
	"Monto total a cobrar,Cliente,Aeronave,Operador," +
	"Costo del vuelo (acordado con el operador),Horas de vuelo,Mes,Ganancia," +
	"Destino,dia,nombre_dia,hora"

func sampleCSV(rows ...string) []byte {
	return []byte(csvHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

func row(month, dest, operator, dayName, hour string) string {
	return strings.Join([]string{
		"Completado", "Jet", "2024-0" + month + "-15 10:30", "4",
		"2000", "ACME", "N123", operator,
		"800", "1.5", month, "1200",
		dest, "15", dayName, hour,
	}, ",")
}

func TestParse(t *testing.T) {
	data := sampleCSV(row("3", "Cancún", "AeroSur", "lunes", "10"))
	flights, err := Parse("ventas_2024.csv", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(flights) != 1 {
		t.Fatalf("got %d flights", len(flights))
	}
	f := flights[0]
	if f.Year != "2024" {
		t.Errorf("year tag = %q, want 2024 from filename", f.Year)
	}
	if f.Destination != "Cancún" || f.Operator != "AeroSur" {
		t.Errorf("dims = %q / %q", f.Destination, f.Operator)
	}
	if f.Revenue != 2000 || f.Profit != 1200 || f.Passengers != 4 {
		t.Errorf("numbers = %v / %v / %v", f.Revenue, f.Profit, f.Passengers)
	}
	if f.FlownAt.IsZero() {
		t.Error("timestamp not parsed")
	}
	if f.Hour != 10 {
		t.Errorf("hour = %d", f.Hour)
	}
}

func TestParseMissingColumns(t *testing.T) {
	data := []byte("Destino,Mes\nCancún,3\n")
	_, err := Parse("2024.csv", data)
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "Fase actual") {
		t.Errorf("error should name missing columns, got %v", err)
	}
}

func TestParseLatin1Fallback(t *testing.T) {
	utf8CSV := sampleCSV(row("3", "Málaga", "AeroSur", "lunes", "9"))
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes(utf8CSV)
	if err != nil {
		t.Fatal(err)
	}
	flights, err := Parse("2023.csv", latin1)
	if err != nil {
		t.Fatalf("Parse latin1: %v", err)
	}
	if flights[0].Destination != "Málaga" {
		t.Errorf("destination = %q, want Málaga recovered from latin1", flights[0].Destination)
	}
}

func TestParseCoercesBadValues(t *testing.T) {
	bad := strings.Join([]string{
		"Completado", "Jet", "no-date", "n/a",
		"abc", "ACME", "N1", "Op",
		"", "", "3", "",
		"X", "15", "lunes", "99",
	}, ",")
	flights, err := Parse("2024.csv", sampleCSV(bad))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f := flights[0]
	if !f.FlownAt.IsZero() {
		t.Error("invalid timestamp should be zero time")
	}
	if f.Passengers != 0 || f.Revenue != 0 || f.Profit != 0 {
		t.Errorf("bad numerics should coerce to 0: %+v", f)
	}
	if f.Hour != -1 {
		t.Errorf("out-of-range hour = %d, want -1", f.Hour)
	}
}

func TestParseYearTagFallsBackToStem(t *testing.T) {
	flights, err := Parse("ventas.csv", sampleCSV(row("1", "X", "Op", "lunes", "8")))
	if err != nil {
		t.Fatal(err)
	}
	if flights[0].Year != "ventas" {
		t.Errorf("year = %q, want filename stem", flights[0].Year)
	}
}

func TestMonthlyBuckets(t *testing.T) {
	data := sampleCSV(
		row("1", "Cancún", "Op", "lunes", "10"),
		row("2", "Cancún", "Op", "martes", "11"),
	)
	flights, err := Parse("2024.csv", data)
	if err != nil {
		t.Fatal(err)
	}
	ds := &Dataset{Flights: flights}
	monthly := ds.Monthly()
	if len(monthly) != 2 {
		t.Fatalf("got %d buckets, want 2", len(monthly))
	}
	for _, p := range monthly {
		if p.Flights != 1 {
			t.Errorf("bucket %s/%s has %d flights, want 1", p.Year, p.Month, p.Flights)
		}
	}
}

func TestYearKPIs(t *testing.T) {
	data := sampleCSV(
		row("1", "Cancún", "Op", "lunes", "10"),
		row("2", "Madrid", "Op", "martes", "11"),
	)
	flights, _ := Parse("2024.csv", data)
	ds := &Dataset{Flights: flights}
	kpis := ds.YearKPIs()
	if len(kpis) != 1 {
		t.Fatalf("got %d years", len(kpis))
	}
	k := kpis[0]
	if k.Flights != 2 || k.Passengers != 8 || k.Revenue != 4000 || k.Profit != 2400 {
		t.Errorf("KPIs = %+v", k)
	}
	if k.AvgTicket != 500 {
		t.Errorf("avg ticket = %v, want 500", k.AvgTicket)
	}
}

func TestRankingsAndFilter(t *testing.T) {
	data := sampleCSV(
		row("1", "Cancún", "AeroSur", "lunes", "10"),
		row("1", "Cancún", "AeroSur", "lunes", "10"),
		row("2", "Madrid", "VoloAir", "martes", "11"),
	)
	flights, _ := Parse("2024.csv", data)
	ds := &Dataset{Flights: flights}

	top := ds.TopDestinationsByFlights(5)
	if top.Entries[0].Key != "Cancún" || top.Entries[0].Value != 2 {
		t.Errorf("top destination = %+v", top.Entries[0])
	}
	ops := ds.FlightsByOperator(5)
	if ops.Entries[0].Key != "AeroSur" {
		t.Errorf("top operator = %+v", ops.Entries[0])
	}
	if got := ds.Filter("Madrid", "", ""); len(got) != 1 {
		t.Errorf("filter by destination returned %d rows", len(got))
	}
	if got := ds.Filter("", "AeroSur", "1"); len(got) != 2 {
		t.Errorf("filter by operator+month returned %d rows", len(got))
	}
	if got := ds.Destinations(); len(got) != 2 || got[0] != "Cancún" {
		t.Errorf("destinations = %v", got)
	}
}

func TestHeatmaps(t *testing.T) {
	data := sampleCSV(
		row("1", "Cancún", "Op", "lunes", "10"),
		row("1", "Cancún", "Op", "lunes", "10"),
		row("1", "Madrid", "Op", "domingo", "22"),
	)
	flights, _ := Parse("2024.csv", data)
	ds := &Dataset{Flights: flights}

	dw := ds.DestinationWeekdayHeatmap()
	if dw.Rows[0] != "Cancún" {
		t.Errorf("busiest destination should sort first, got %v", dw.Rows)
	}
	if dw.Values[0][0] != 2 { // lunes is column 0
		t.Errorf("Cancún lunes count = %v, want 2", dw.Values[0][0])
	}

	wh := ds.WeekdayHourHeatmap()
	if wh.Values[0][10] != 2 {
		t.Errorf("lunes 10:00 count = %v, want 2", wh.Values[0][10])
	}
	if wh.Values[6][22] != 1 {
		t.Errorf("domingo 22:00 count = %v, want 1", wh.Values[6][22])
	}
}
