// internal/lead/row.go
//
// Spreadsheet row contract.
//
// The receiving sheet's header row is:
//
//	A Timestamp | B Form Type | C Full Name | D Email | E Phone |
//	F Property Category | G Project | H Budget | I Message | J Property Name
//
// Column order is load-bearing.  Changing Columns requires a matching
// migration of the sheet's header row.
package lead

import "time"

// Columns is the fixed header of the lead sheet, in append order.
var Columns = []string{
	"Timestamp",
	"Form Type",
	"Full Name",
	"Email",
	"Phone",
	"Property Category",
	"Project",
	"Budget",
	"Message",
	"Property Name",
}

// Column indexes into a Row.
const (
	ColTimestamp = iota
	ColFormType
	ColFullName
	ColEmail
	ColPhone
	ColPropertyCategory
	ColProject
	ColBudget
	ColMessage
	ColPropertyName
)

// LastColumn is the sheet letter of the final column ("J").
var LastColumn = string(rune('A' + len(Columns) - 1))

// IST is India Standard Time.  A fixed zone keeps the server independent of
// the host's tzdata.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// TimestampLayout renders "DD-MM-YYYY hh:mm:ss AM/PM (IST)".
const TimestampLayout = "02-01-2006 03:04:05 PM (IST)"

// Timestamp formats t in IST using TimestampLayout.
func Timestamp(t time.Time) string { return t.In(IST).Format(TimestampLayout) }

// Row is one spreadsheet row, ordered by Columns.
type Row []string

// RowOf maps s onto the sheet columns.  receivedAt is always server time.
func RowOf(s Submission, receivedAt time.Time) Row {
	ft := s.FormType
	if ft == "" {
		ft = FormContact
	}
	return Row{
		ColTimestamp:        Timestamp(receivedAt),
		ColFormType:         string(ft),
		ColFullName:         s.FullName,
		ColEmail:            s.Email,
		ColPhone:            s.Phone,
		ColPropertyCategory: s.PropertyCategory,
		ColProject:          s.Project,
		ColBudget:           s.Budget,
		ColMessage:          s.Message,
		ColPropertyName:     s.PropertyName,
	}
}

// Values converts r into the []interface{} shape the Sheets API expects.
func (r Row) Values() []interface{} {
	out := make([]interface{}, len(r))
	for i, v := range r {
		out[i] = v
	}
	return out
}
