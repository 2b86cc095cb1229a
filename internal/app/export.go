package app

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// byteOrderMark makes spreadsheet tools read the export as UTF-8.
const byteOrderMark = "\uFEFF"

var exportHeader = []string{
	"registrationId",
	"courseId",
	"courseName",
	"firstName",
	"lastName",
	"idCard",
	"birthDate",
	"phone",
	"email",
	"organization",
	"position",
	"address",
	"registrationDate",
	"status",
}

func exportRow(r domain.Registration) []string {
	return []string{
		r.ID,
		r.CourseID,
		r.CourseName,
		r.FirstName,
		r.LastName,
		r.IDCard,
		r.BirthDate,
		r.Phone,
		r.Email,
		r.Organization,
		r.Position,
		r.Address,
		r.RegistrationDate.Format(domain.DateLayout),
		string(r.Status),
	}
}

// Export is a rendered registration table ready for download.
type Export struct {
	Filename string
	Content  []byte
}

// ExportRegistrationsCSV renders registrations as a comma separated table
// with every field quoted. The header row is unquoted.
func ExportRegistrationsCSV(course domain.Course, regs []domain.Registration) Export {
	var buf bytes.Buffer
	buf.WriteString(byteOrderMark)
	buf.WriteString(strings.Join(exportHeader, ","))
	for _, r := range regs {
		buf.WriteByte('\n')
		for i, field := range exportRow(r) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return Export{
		Filename: ExportFilename(course),
		Content:  buf.Bytes(),
	}
}

// ExportFilename derives the download name from the course name.
func ExportFilename(course domain.Course) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' {
			return '_'
		}
		return r
	}, course.Name)
	return "registrations_" + name + ".csv"
}
