package refdata

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/claimready/internal/model"
)

// Reader wraps a parquet GenericReader for streaming procedure catalog rows.
type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[model.ProcedureRow]
}

// Open opens a procedure catalog Parquet file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open procedure catalog: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat procedure catalog: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[model.ProcedureRow](pf)
	return &Reader{file: f, reader: r}, nil
}

// NumRows returns the total number of rows in the catalog.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader) Read(rows []model.ProcedureRow) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read procedure rows: %w", err)
	}
	return n, err
}

// Schema returns the Parquet schema for validation.
func (r *Reader) Schema() *parquet.Schema {
	return r.reader.Schema()
}

// Close releases all resources.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ReadAll reads every row of the catalog at path.
func ReadAll(path string) ([]model.ProcedureRow, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := ValidateSchema(r.Schema()); err != nil {
		return nil, err
	}

	rows := make([]model.ProcedureRow, 0, r.NumRows())
	buf := make([]model.ProcedureRow, 128)
	for {
		n, err := r.Read(buf)
		rows = append(rows, buf[:n]...)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// WriteCatalog writes rows as a procedure catalog Parquet file.
func WriteCatalog(path string, rows []model.ProcedureRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create procedure catalog: %w", err)
	}
	w := parquet.NewGenericWriter[model.ProcedureRow](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write procedure rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}
