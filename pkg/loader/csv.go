// pkg/loader/csv.go
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/stationlab/sensor-qc/pkg/model"
)

// Loader reads per-site measurement CSVs into frames and writes cleaned
// frames back out. The header row names the columns; the configured
// timestamp column is parsed as temporal, configured text columns stay
// free text, and everything else is numeric.
type Loader struct {
	timestampColumn string
	textColumns     map[string]bool
	logger          *zap.Logger
}

// NewLoader creates a loader for the given column roles
func NewLoader(timestampColumn string, textColumns []string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	text := make(map[string]bool, len(textColumns))
	for _, name := range textColumns {
		text[name] = true
	}

	return &Loader{
		timestampColumn: timestampColumn,
		textColumns:     text,
		logger:          logger.Named("loader"),
	}
}

// ReadFile parses a measurement CSV file into a frame
func (l *Loader) ReadFile(path string) (*model.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	frame, err := l.Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	l.logger.Info("Loaded measurements",
		zap.String("path", path),
		zap.Int("rows", frame.NumRows()),
		zap.Int("columns", frame.NumColumns()))

	return frame, nil
}

// Read parses measurement CSV data into a frame
func (l *Loader) Read(r io.Reader) (*model.Frame, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	floats := make([][]float64, len(header))
	times := make([][]time.Time, len(header))
	texts := make([][]string, len(header))

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row+1, err)
		}

		for i, cell := range record {
			name := header[i]
			switch {
			case name == l.timestampColumn:
				t, err := parseTime(cell)
				if err != nil {
					return nil, fmt.Errorf("row %d, column %s: %w", row+1, name, err)
				}
				times[i] = append(times[i], t)
			case l.textColumns[name]:
				texts[i] = append(texts[i], cell)
			default:
				v, err := parseFloat(cell)
				if err != nil {
					return nil, fmt.Errorf("row %d, column %s: %w", row+1, name, err)
				}
				floats[i] = append(floats[i], v)
			}
		}
		row++
	}

	series := make([]*model.Series, len(header))
	for i, name := range header {
		switch {
		case name == l.timestampColumn:
			if times[i] == nil {
				times[i] = make([]time.Time, 0)
			}
			series[i] = model.NewTimeSeries(name, times[i])
		case l.textColumns[name]:
			if texts[i] == nil {
				texts[i] = make([]string, 0)
			}
			series[i] = model.NewTextSeries(name, texts[i])
		default:
			if floats[i] == nil {
				floats[i] = make([]float64, 0)
			}
			series[i] = model.NewNumericSeries(name, floats[i])
		}
	}

	return model.NewFrame(series...)
}

// WriteFile writes a frame to a CSV file, creating parent directories as
// needed
func (l *Loader) WriteFile(path string, f *model.Frame) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := l.Write(file, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	l.logger.Info("Wrote cleaned measurements",
		zap.String("path", path),
		zap.Int("rows", f.NumRows()))

	return nil
}

// Write renders a frame as CSV with a header row. Missing markers become
// empty fields.
func (l *Loader) Write(w io.Writer, f *model.Frame) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(f.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	record := make([]string, f.NumColumns())
	for row := 0; row < f.NumRows(); row++ {
		for i, col := range f.Columns() {
			switch col.Kind {
			case model.KindNumeric:
				record[i] = formatFloat(col.Floats[row])
			case model.KindTime:
				record[i] = formatTime(col.Times[row])
			default:
				record[i] = col.Texts[row]
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
