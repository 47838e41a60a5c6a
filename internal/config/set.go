package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Set assigns value to key after validating it.
func (c *Global) Set(key, value string) error {
	switch key {
	case "input":
		c.Input = value
	case "delimiter":
		switch value {
		case "", ",", ";", "|":
			c.Delimiter = value
		case "\t", "tab":
			c.Delimiter = "tab"
		default:
			return fmt.Errorf("invalid delimiter: %s (use ',', ';', '|' or tab)", value)
		}
	case "sheet":
		c.Sheet = value
	case "max_rows", "sample_rows":
		i, err := strconv.Atoi(value)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, value)
		}
		if key == "max_rows" {
			c.MaxRows = i
		} else {
			c.SampleRows = i
		}
	case "null_markers":
		if value == "" {
			c.NullMarkers = nil
			return nil
		}
		c.NullMarkers = strings.Split(value, ",")
	case "budget_column":
		c.BudgetColumn = value
	case "gross_column":
		c.GrossColumn = value
	case "released_column":
		c.ReleasedColumn = value
	case "company_column":
		c.CompanyColumn = value
	case "year_column":
		c.YearColumn = value
	case "row_policy":
		switch strings.ToLower(value) {
		case "abort", "skip":
			c.RowPolicy = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid row_policy: %s (use abort or skip)", value)
		}
	case "threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || f < -1 || f > 1 {
			return fmt.Errorf("invalid float for threshold: %v (want -1..1)", value)
		}
		c.Threshold = f
	case "dedupe_pairs", "plots":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %w", key, err)
		}
		if key == "plots" {
			c.Plots = b
		} else {
			c.DedupePairs = b
		}
	case "plot_format":
		switch strings.ToLower(value) {
		case "png", "svg", "pdf":
			c.PlotFormat = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid plot_format: %s (use png, svg or pdf)", value)
		}
	case "output_dir":
		c.OutputDir = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_level: %s", value)
		}
	case "log_format":
		switch value {
		case "console", "json":
			c.LogFormat = value
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", value)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// DelimiterRune maps the configured delimiter to a rune; 0 means infer.
func (c *Global) DelimiterRune() rune {
	switch c.Delimiter {
	case "":
		return 0
	case "tab", "\t":
		return '\t'
	default:
		return []rune(c.Delimiter)[0]
	}
}
