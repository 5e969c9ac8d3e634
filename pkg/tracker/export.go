package tracker

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Applications"
	dateLayout = "2006-01-02"
)

type column struct {
	header string
	width  float64
	value  func(a Application) interface{}
}

//nolint:gochecknoglobals // column layout
var columns = []column{
	{header: "Company", width: 28, value: func(a Application) interface{} { return a.CompanyName }},
	{header: "Position", width: 32, value: func(a Application) interface{} { return a.Position }},
	{header: "Status", width: 14, value: func(a Application) interface{} { return a.Status.Label() }},
	{header: "Date Applied", width: 14, value: func(a Application) interface{} { return formatDate(&a.DateApplied) }},
	{header: "Follow Up", width: 14, value: func(a Application) interface{} { return formatDate(a.FollowUpDate) }},
	{header: "Interviews", width: 24, value: func(a Application) interface{} { return formatDates(a.InterviewDates) }},
	{header: "Salary", width: 16, value: func(a Application) interface{} { return a.Salary }},
	{header: "Contact", width: 22, value: func(a Application) interface{} { return a.ContactPerson }},
	{header: "Career Page", width: 36, value: func(a Application) interface{} { return a.CareerPageURL }},
	{header: "Notes", width: 48, value: func(a Application) interface{} { return a.Notes }},
}

// ExportFilename names an export taken at now.
func ExportFilename(now time.Time) (name string) {
	name = "applications_" + now.Format("20060102_150405") + ".xlsx"
	return name
}

// ExportXLSX writes apps as a spreadsheet with a styled header row.
func ExportXLSX(apps []Application, w io.Writer) (err error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	err = f.SetSheetName("Sheet1", sheetName)
	if err != nil {
		err = errors.Wrap(err, "failed to name sheet")
		return err
	}

	for i, col := range columns {
		var cell string
		cell, err = excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			err = errors.Wrap(err, "failed to address header cell")
			return err
		}

		err = f.SetCellValue(sheetName, cell, col.header)
		if err != nil {
			err = errors.Wrapf(err, "failed to write header %s", col.header)
			return err
		}

		var colName string
		colName, err = excelize.ColumnNumberToName(i + 1)
		if err != nil {
			err = errors.Wrap(err, "failed to name column")
			return err
		}

		err = f.SetColWidth(sheetName, colName, colName, col.width)
		if err != nil {
			err = errors.Wrapf(err, "failed to size column %s", colName)
			return err
		}
	}

	var headerStyle int
	headerStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		err = errors.Wrap(err, "failed to create header style")
		return err
	}

	var endCell string
	endCell, err = excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		err = errors.Wrap(err, "failed to address header range")
		return err
	}

	err = f.SetCellStyle(sheetName, "A1", endCell, headerStyle)
	if err != nil {
		err = errors.Wrap(err, "failed to style header")
		return err
	}

	for rowIdx, app := range apps {
		for colIdx, col := range columns {
			var cell string
			cell, err = excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				err = errors.Wrap(err, "failed to address cell")
				return err
			}

			err = f.SetCellValue(sheetName, cell, col.value(app))
			if err != nil {
				err = errors.Wrapf(err, "failed to write %s for %s", col.header, app.ID)
				return err
			}
		}
	}

	err = f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		err = errors.Wrap(err, "failed to freeze header row")
		return err
	}

	err = f.Write(w)
	if err != nil {
		err = errors.Wrap(err, "failed to write spreadsheet")
		return err
	}

	return err
}

func formatDate(t *time.Time) (s string) {
	if t == nil || t.IsZero() {
		return s
	}
	s = t.Format(dateLayout)
	return s
}

func formatDates(ts []time.Time) (s string) {
	parts := make([]string, 0, len(ts))
	for i := range ts {
		parts = append(parts, formatDate(&ts[i]))
	}
	s = strings.Join(parts, ", ")
	return s
}
