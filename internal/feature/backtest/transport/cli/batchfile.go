package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"

	"gopkg.in/yaml.v3"
)

// ErrInvalidBatchFile wraps every validation failure of a batch file.
var ErrInvalidBatchFile = errors.New("invalid batch file")

// BatchFile is the YAML document read by `backtest batch -f`.
//
//	source: db
//	calendar:
//	  trading_periods_per_year: 252
//	  days_per_year: 365
//	runs:
//	  - symbol: AAPL
//	    start: 2020-01-01
//	    end: 2023-01-01
//	    short: 20
//	    long: 50
type BatchFile struct {
	Source   string        `yaml:"source"`
	Calendar *CalendarSpec `yaml:"calendar"`
	Runs     []RunSpec     `yaml:"runs"`
}

// CalendarSpec overrides the annualisation constants.
type CalendarSpec struct {
	TradingPeriodsPerYear float64 `yaml:"trading_periods_per_year"`
	DaysPerYear           float64 `yaml:"days_per_year"`
}

// RunSpec is one run. Empty fields take the usual defaults.
type RunSpec struct {
	Symbol string `yaml:"symbol"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Short  *int   `yaml:"short"`
	Long   *int   `yaml:"long"`
}

// LoadBatchFile reads and validates the batch file at path.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return ParseBatchFile(data)
}

// ParseBatchFile decodes a batch file. Unknown keys are rejected.
func ParseBatchFile(data []byte) (*BatchFile, error) {
	var f BatchFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatchFile, err)
	}
	if c := f.Calendar; c != nil && (c.TradingPeriodsPerYear <= 0 || c.DaysPerYear <= 0) {
		return nil, fmt.Errorf("%w: calendar values must be positive", ErrInvalidBatchFile)
	}
	if _, err := f.Requests(); err != nil {
		return nil, err
	}
	return &f, nil
}

// CalendarOrDefault returns the configured calendar or fallback.
func (f *BatchFile) CalendarOrDefault(fallback entity.Calendar) entity.Calendar {
	if f.Calendar == nil {
		return fallback
	}
	return entity.Calendar{
		TradingPeriodsPerYear: f.Calendar.TradingPeriodsPerYear,
		DaysPerYear:           f.Calendar.DaysPerYear,
	}
}

// Requests converts the runs to usecase requests.
func (f *BatchFile) Requests() ([]usecase.Request, error) {
	reqs := make([]usecase.Request, 0, len(f.Runs))
	for i, r := range f.Runs {
		start, err := parseDate(r.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: runs[%d].start: %w", ErrInvalidBatchFile, i, err)
		}
		end, err := parseDate(r.End)
		if err != nil {
			return nil, fmt.Errorf("%w: runs[%d].end: %w", ErrInvalidBatchFile, i, err)
		}
		short, err := usecase.OptionalWindow(r.Short)
		if err != nil {
			return nil, fmt.Errorf("%w: runs[%d].short: %w", ErrInvalidBatchFile, i, err)
		}
		long, err := usecase.OptionalWindow(r.Long)
		if err != nil {
			return nil, fmt.Errorf("%w: runs[%d].long: %w", ErrInvalidBatchFile, i, err)
		}
		reqs = append(reqs, usecase.Request{
			Symbol:      r.Symbol,
			Start:       start,
			End:         end,
			ShortWindow: short,
			LongWindow:  long,
		})
	}
	return reqs, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
