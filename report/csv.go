// Copyright (c) 2023 BVK Chaitanya

// Package report writes scan results and trade dumps as csv files.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bvk/krakenscan/trades"
	"github.com/bvk/krakenscan/volatility"
)

var reportHeader = []string{
	"name", "volume", "potential", "profit", "profit24", "percentRecent",
	"percentDaily", "latest", "high", "high24", "low", "low24", "min",
}

var tradeHeader = []string{
	"time", "price", "volume", "side", "type", "misc", "id",
}

// WriteReports writes one csv row per report. Potential, profits and
// percentages are written with two decimal places; prices are written as
// received from the exchange.
func WriteReports(w io.Writer, reports []*volatility.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range reports {
		row := []string{
			r.Name,
			r.Volume.String(),
			r.Potential.StringFixed(2),
			r.Profit.StringFixed(2),
			r.Profit24.StringFixed(2),
			r.PercentRecent.StringFixed(2),
			r.PercentDaily.StringFixed(2),
			r.Latest.String(),
			r.High.String(),
			r.High24.String(),
			r.Low.String(),
			r.Low24.String(),
			r.Min.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write report row for %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTrades writes one csv row per trade record.
func WriteTrades(w io.Writer, records []*trades.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Time.String(),
			r.Price.String(),
			r.Volume.String(),
			r.Side,
			r.OrderType,
			r.Misc,
			strconv.FormatInt(r.TradeID, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write trade row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile replaces the file with the output of the write function. Output
// is written to a temporary file in the same directory first, so readers
// never see a partial file.
func WriteFile(file string, write func(io.Writer) error) (status error) {
	abspath, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("could not determine absolute path: %w", err)
	}

	fp, err := os.CreateTemp(filepath.Dir(abspath), ".report*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		if status != nil {
			os.Remove(fp.Name())
		}
		fp.Close()
	}()

	bw := bufio.NewWriter(fp)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("could not flush the bufio writer: %w", err)
	}
	if err := fp.Sync(); err != nil {
		return fmt.Errorf("could not sync the output file: %w", err)
	}
	if err := os.Rename(fp.Name(), abspath); err != nil {
		return fmt.Errorf("could not rename temp file to %q: %w", abspath, err)
	}
	return nil
}
