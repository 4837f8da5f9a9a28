// Package export writes the run log as a spreadsheet or CSV.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/ampco/intake-cli/internal/model"
)

// columns is the header row shared by every format.
var columns = []string{
	"Run ID",
	"Flow",
	"Filename",
	"Status",
	"Failed Stage",
	"Error",
	"Record ID",
	"Record Name",
	"Record URL",
	"Attachment ID",
	"Share URL",
	"Messages",
	"Created At",
	"Updated At",
}

// Columns returns a copy of the header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

func runToRow(r *model.Run) []string {
	res := r.Result
	if res == nil {
		res = &model.RunResult{}
	}
	return []string{
		r.ID,
		string(r.Flow),
		r.Filename,
		string(r.Status),
		res.Stage,
		res.Error,
		optionalID(res.RecordID),
		res.RecordName,
		res.RecordURL,
		optionalID(res.AttachmentID),
		res.ShareURL,
		strings.Join(res.Messages, "; "),
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	}
}

func optionalID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
