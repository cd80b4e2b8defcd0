// Copyright (c) 2023 BVK Chaitanya

package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bvk/krakenscan/trades"
	"github.com/bvk/krakenscan/volatility"
	"github.com/shopspring/decimal"
)

func TestWriteReports(t *testing.T) {
	d := decimal.RequireFromString
	reports := []*volatility.Report{
		{
			Name:          "XETHZUSD",
			Volume:        d("0.0125"),
			Potential:     d("0.892857142857"),
			Profit:        d("25"),
			Profit24:      d("66.67"),
			PercentRecent: d("40"),
			PercentDaily:  d("46.67"),
			Latest:        d("120.5"),
			High:          d("150"),
			High24:        d("200"),
			Low:           d("100"),
			Low24:         d("50"),
			Min:           d("0.002"),
		},
		{Name: "NEWUSD", Min: d("5")},
	}

	var buf bytes.Buffer
	if err := WriteReports(&buf, reports); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header and 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "name" || rows[0][12] != "min" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	want := []string{"XETHZUSD", "0.0125", "0.89", "25.00", "66.67", "40.00", "46.67", "120.5", "150", "200", "100", "50", "0.002"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("column %s: want %q, got %q", rows[0][i], v, rows[1][i])
		}
	}
	if rows[2][0] != "NEWUSD" || rows[2][2] != "0.00" || rows[2][12] != "5" {
		t.Errorf("unexpected empty report row %v", rows[2])
	}
}

func TestWriteTradesFile(t *testing.T) {
	records := []*trades.Record{
		{Price: decimal.RequireFromString("30243.4"), Volume: decimal.RequireFromString("0.345"), Time: decimal.RequireFromString("1688669597.8277369"), Side: "b", OrderType: "m", TradeID: 61160345},
	}
	file := filepath.Join(t.TempDir(), "XXBTZUSD.csv")
	if err := WriteFile(file, func(w io.Writer) error { return WriteTrades(w, records) }); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	want := "time,price,volume,side,type,misc,id\n1688669597.8277369,30243.4,0.345,b,m,,61160345\n"
	if string(data) != want {
		t.Fatalf("want %q, got %q", want, data)
	}
}

func TestWriteFileError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "out.csv")
	failure := errors.New("failed")
	if err := WriteFile(file, func(io.Writer) error { return failure }); !errors.Is(err, failure) {
		t.Fatalf("want the write error, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("want no leftover files, got %d", len(entries))
	}
}
