// Package records reads and writes the CSV files exchanged with operators:
// application form exports, seat lists, and published results. Every file
// has a header row. Readers skip the header, a leading UTF-8 byte-order mark,
// and blank rows. WriteSheet produces xlsx workbook copies of written rows.
package records

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Marshaler is a CSV-encoded record of a file.
type Marshaler interface {
	// MarshalCSV returns CSV fields describing the row.
	MarshalCSV() ([]string, error)
}

// Unmarshaler is implemented by pointers to CSV-decoded records.
type Unmarshaler interface {
	// UnmarshalCSV applies fields to unmarshal the row. It must copy the
	// []string fields if it wishes to retain them after returning.
	UnmarshalCSV([]string) error
}

// rowPtr constrains a pointer to T which is an Unmarshaler.
type rowPtr[T any] interface {
	*T
	Unmarshaler
}

// Mode is the write disposition of a file.
type Mode int

const (
	// Truncate the file, and write a header followed by rows.
	Truncate Mode = iota
	// Append rows to the file. A header is written only if the file
	// doesn't exist or is empty.
	Append
)

var bom = []byte("\xef\xbb\xbf")

// Decode rows of type T from |r|.
func Decode[T any, P rowPtr[T]](r io.Reader) ([]T, error) {
	var br = bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && bytes.Equal(b, bom) {
		_, _ = br.Discard(len(bom))
	}

	var cr = csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var out []T
	for header := true; ; header = false {
		var fields, err = cr.Read()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, err
		} else if header || isBlank(fields) {
			continue
		}

		var row T
		if err = P(&row).UnmarshalCSV(fields); err != nil {
			var line, _ = cr.FieldPos(0)
			return nil, errors.WithMessagef(err, "line %d", line)
		}
		if l, ok := any(&row).(interface{ setLine(int) }); ok {
			var line, _ = cr.FieldPos(0)
			l.setLine(line)
		}
		out = append(out, row)
	}
}

// Read rows of type T from the file |path| of |fs|.
func Read[T any, P rowPtr[T]](fs afero.Fs, path string) ([]T, error) {
	var f, err = fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := Decode[T, P](f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return out, nil
}

// Encode |rows| to |w|, preceded by |header| if it's non-nil.
func Encode[T Marshaler](w io.Writer, header []string, rows []T) error {
	var cw = csv.NewWriter(w)

	if header != nil {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if fields, err := r.MarshalCSV(); err != nil {
			return err
		} else if err = cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write |rows| to the file |path| of |fs| under |mode|.
func Write[T Marshaler](fs afero.Fs, path string, header []string, rows []T, mode Mode) error {
	var flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC

	if mode == Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND

		if fi, err := fs.Stat(path); err == nil && fi.Size() != 0 {
			header = nil
		}
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var f, err = fs.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	if err = Encode(f, header, rows); err != nil {
		_ = f.Close()
		return errors.WithMessage(err, path)
	}
	return f.Close()
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
