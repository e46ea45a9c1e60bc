package records

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// WriteSheet writes |rows| to the first sheet of the xlsx workbook |path| of
// |fs| under |mode|. A new workbook begins with a |header| row. Under Append,
// rows follow those of an existing workbook.
func WriteSheet[T Marshaler](fs afero.Fs, path string, header []string, rows []T, mode Mode) error {
	var book *excelize.File
	var next = 1 // Spreadsheet rows are 1-indexed.

	if mode == Append {
		var content, err = afero.ReadFile(fs, path)
		if err != nil && !os.IsNotExist(err) {
			return err
		} else if len(content) != 0 {
			if book, err = excelize.OpenReader(bytes.NewReader(content)); err != nil {
				return errors.WithMessagef(err, "opening %s", path)
			}
			existing, err := book.GetRows(book.GetSheetName(0))
			if err != nil {
				_ = book.Close()
				return errors.WithMessage(err, path)
			}
			next = len(existing) + 1
		}
	}
	if book == nil {
		book = excelize.NewFile()
	}
	defer book.Close()

	var sheet = book.GetSheetName(0)
	var setRow = func(fields []string) error {
		var cell, err = excelize.CoordinatesToCellName(1, next)
		if err != nil {
			return err
		}
		next++
		return book.SetSheetRow(sheet, cell, &fields)
	}

	if next == 1 && header != nil {
		if err := setRow(header); err != nil {
			return errors.WithMessage(err, path)
		}
	}
	for _, r := range rows {
		if fields, err := r.MarshalCSV(); err != nil {
			return err
		} else if err = setRow(fields); err != nil {
			return errors.WithMessage(err, path)
		}
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		return errors.WithMessage(err, path)
	} else if err = fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, buf.Bytes(), 0644)
}
