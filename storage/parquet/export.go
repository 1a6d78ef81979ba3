// Package parquet batches kernel audit-log rows into columnar parquet
// files for analytical export (compliance reporting, offline reconciliation
// against the kernel's event stream).
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// EventRow is one flattened kernel event ready for columnar export.
type EventRow struct {
	Sequence   int64
	Type       string
	Attributes map[string]string
	RecordedAt time.Time
}

type eventParquetRow struct {
	Sequence     int64  `parquet:"name=sequence, type=INT64"`
	Type         string `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8"`
	AttributesJSON string `parquet:"name=attributes_json, type=BYTE_ARRAY, convertedtype=UTF8"`
	RecordedAt   string `parquet:"name=recorded_at, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// WriteEvents writes rows to path as a snappy-compressed parquet file with
// row groups of up to 128 MiB. Returns the number of rows written.
func WriteEvents(path string, rows []EventRow) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("parquet: create file: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(eventParquetRow), 1)
	if err != nil {
		file.Close()
		return 0, fmt.Errorf("parquet: schema: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	written := 0
	for _, row := range rows {
		attrsJSON, err := marshalAttributes(row.Attributes)
		if err != nil {
			pw.WriteStop()
			file.Close()
			return written, fmt.Errorf("parquet: marshal attributes: %w", err)
		}
		pr := &eventParquetRow{
			Sequence:       row.Sequence,
			Type:           row.Type,
			AttributesJSON: attrsJSON,
			RecordedAt:     row.RecordedAt.UTC().Format(time.RFC3339),
		}
		if err := pw.Write(pr); err != nil {
			pw.WriteStop()
			file.Close()
			return written, fmt.Errorf("parquet: write row: %w", err)
		}
		written++
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return written, fmt.Errorf("parquet: flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("parquet: close file: %w", err)
	}
	return written, nil
}
