package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/vecml/sampleset"
)

// readCSV reads numeric rows. With labeled set, the last column is the class
// label; an empty or "?" label is read as NaN. Lines starting with '#' are
// skipped.
func readCSV(r io.Reader, labeled bool) (*sampleset.SampleSet, []float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	samples := sampleset.New(0)
	var labels []float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("csv: %w", err)
		}

		fields := rec
		if labeled {
			if len(rec) < 2 {
				return nil, nil, fmt.Errorf("csv line %d: need at least one feature and a label", line)
			}
			fields = rec[:len(rec)-1]
			labels = append(labels, parseLabel(rec[len(rec)-1]))
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("csv line %d column %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		if err := samples.Append(row); err != nil {
			return nil, nil, fmt.Errorf("csv line %d: %w", line, err)
		}
	}
	return samples, labels, nil
}

func parseLabel(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "?" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func readCSVFile(path string, labeled bool) (*sampleset.SampleSet, []float64, error) {
	if path == "-" {
		return readCSV(os.Stdin, labeled)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return readCSV(f, labeled)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "?"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
