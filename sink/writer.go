package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/aluiziolira/go-price-tracker/models"
)

// TimeLayout is the capture-timestamp format used in CSV and console output.
const TimeLayout = "2006-01-02 15:04:05"

// OutputWriter defines the interface for persisting a converted batch.
type OutputWriter interface {
	Write(products []*models.Product) error
	Close() error
	Validate() error
}

// CSVWriter writes one row per record to a delimited file, overwriting any
// existing file at the target path.
type CSVWriter struct {
	file        *os.File
	writer      *csv.Writer
	wroteHeader bool
}

// NewCSVWriter creates (or truncates) the output file. The header row is
// written lazily on the first batch, derived from the first record's fields.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: csv.NewWriter(f),
	}, nil
}

// Write appends the batch to the CSV output.
func (cw *CSVWriter) Write(products []*models.Product) error {
	for _, p := range products {
		if p == nil {
			continue
		}
		if !cw.wroteHeader {
			if err := cw.writer.Write(headerFor(p)); err != nil {
				return fmt.Errorf("write csv header: %w", err)
			}
			cw.wroteHeader = true
		}
		record := []string{
			p.Name,
			p.PriceSource.StringFixed(2),
			p.PriceTarget.StringFixed(2),
			p.CapturedAt.Format(TimeLayout),
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// headerFor derives column names from the record's csv field tags.
func headerFor(p *models.Product) []string {
	t := reflect.TypeOf(*p)
	header := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("csv"); tag != "" {
			header = append(header, tag)
		}
	}
	return header
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
