package attendance

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

const (
	exportTimeLayout = "2006-01-02 15:04:05"
	exportMissing    = "N/A"
	ExportFilename   = "attendance_report.csv"
)

var exportHeader = []string{"Employee ID", "Name", "Date", "Check In", "Check Out", "Status", "Total Hours"}

// WriteCSV writes the header and one row per record. Records are expected
// to carry their owning User.
func WriteCSV(w io.Writer, records []Attendance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for i := range records {
		if err := cw.Write(exportRow(&records[i])); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportRow(r *Attendance) []string {
	code, name := exportMissing, exportMissing
	if r.User != nil {
		code, name = r.User.EmployeeCode, r.User.Name
	}

	return []string{
		code,
		name,
		r.Date.Format(dateLayout),
		exportTime(r.CheckInTime),
		exportTime(r.CheckOutTime),
		r.Status,
		strconv.FormatFloat(r.TotalHours, 'f', 2, 64),
	}
}

func exportTime(t *time.Time) string {
	if t == nil {
		return exportMissing
	}
	return t.In(time.Local).Format(exportTimeLayout)
}
