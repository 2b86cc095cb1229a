package app

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// DefaultPageSize is the number of courses per admin page.
const DefaultPageSize = 10

// SortKey names a course column the admin listing can be ordered by.
type SortKey string

const (
	SortByName                SortKey = "courseName"
	SortByGeneration          SortKey = "courseGen"
	SortByStartDate           SortKey = "startDate"
	SortByEndDate             SortKey = "endDate"
	SortByRegistrationStart   SortKey = "registrationStart"
	SortByRegistrationEnd     SortKey = "registrationEnd"
	SortByMaxParticipants     SortKey = "maxParticipants"
	SortByCurrentParticipants SortKey = "currentParticipants"
	SortByLocation            SortKey = "location"
	SortByInstructor          SortKey = "instructor"
	SortByStatus              SortKey = "status"
)

// SortDirection orders a sorted listing.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// View is the admin screen a query belongs to.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewCourses       View = "courses"
	ViewAnnouncements View = "cms"
	ViewContact       View = "settings_contact"
	ViewFaqs          View = "settings_faq"
)

type courseCmp func(a, b CourseListing) int

func byTime(f func(domain.Course) time.Time) courseCmp {
	return func(a, b CourseListing) int { return f(a.Course).Compare(f(b.Course)) }
}

func byString(f func(domain.Course) string) courseCmp {
	return func(a, b CourseListing) int { return strings.Compare(f(a.Course), f(b.Course)) }
}

func byInt(f func(domain.Course) int) courseCmp {
	return func(a, b CourseListing) int { return cmp.Compare(f(a.Course), f(b.Course)) }
}

var comparators = map[SortKey]courseCmp{
	SortByName:                byString(func(c domain.Course) string { return c.Name }),
	SortByGeneration:          byString(func(c domain.Course) string { return c.Generation }),
	SortByLocation:            byString(func(c domain.Course) string { return c.Location }),
	SortByInstructor:          byString(func(c domain.Course) string { return c.Instructor }),
	SortByStartDate:           byTime(func(c domain.Course) time.Time { return c.StartDate }),
	SortByEndDate:             byTime(func(c domain.Course) time.Time { return c.EndDate }),
	SortByRegistrationStart:   byTime(func(c domain.Course) time.Time { return c.RegistrationStart }),
	SortByRegistrationEnd:     byTime(func(c domain.Course) time.Time { return c.RegistrationEnd }),
	SortByMaxParticipants:     byInt(func(c domain.Course) int { return c.MaxParticipants }),
	SortByCurrentParticipants: byInt(func(c domain.Course) int { return c.CurrentParticipants }),
	SortByStatus: func(a, b CourseListing) int {
		return strings.Compare(string(a.Status), string(b.Status))
	},
}

// SortKeys returns every supported sort key.
func SortKeys() []SortKey {
	keys := make([]SortKey, 0, len(comparators))
	for k := range comparators {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidSortKey reports whether k names a sortable column.
func ValidSortKey(k SortKey) bool {
	_, ok := comparators[k]
	return ok
}

// CourseQuery is the admin listing state: what to show and which page.
type CourseQuery struct {
	View      View
	Search    string
	Status    string // StatusAll or a domain.CourseStatus
	SortKey   SortKey
	Direction SortDirection
	Page      int
	PageSize  int
}

// DefaultCourseQuery is the state the courses view opens with.
func DefaultCourseQuery() CourseQuery {
	return CourseQuery{
		View:      ViewCourses,
		Status:    StatusAll,
		SortKey:   SortByRegistrationStart,
		Direction: SortDesc,
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

// Refine moves to the next query state. Changing the search text, the status
// filter or the view sends the listing back to page 1.
func (q CourseQuery) Refine(next CourseQuery) CourseQuery {
	if next.Search != q.Search || next.Status != q.Status || next.View != q.View {
		next.Page = 1
	}
	return next
}

// ToggleSort orders by key ascending, or flips to descending when the listing
// is already ascending on that key.
func (q CourseQuery) ToggleSort(key SortKey) CourseQuery {
	dir := SortAsc
	if q.SortKey == key && q.Direction == SortAsc {
		dir = SortDesc
	}
	q.SortKey = key
	q.Direction = dir
	return q
}

// CoursePage is one page of an admin listing.
type CoursePage struct {
	Items      []CourseListing
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// QueryCourses filters, sorts and paginates a snapshot of courses. Status is
// derived once per course at now. The input slice is not modified.
func QueryCourses(courses []domain.Course, q CourseQuery, now time.Time, loc *time.Location) CoursePage {
	search := strings.ToLower(q.Search)

	matched := make([]CourseListing, 0, len(courses))
	for _, c := range courses {
		status := c.StatusAt(now, loc)
		if q.Status != "" && q.Status != StatusAll && domain.CourseStatus(q.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Generation), search) {
			continue
		}
		matched = append(matched, CourseListing{Course: c, Status: status})
	}

	if compare, ok := comparators[q.SortKey]; ok {
		if q.Direction == SortDesc {
			asc := compare
			compare = func(a, b CourseListing) int { return asc(b, a) }
		}
		slices.SortStableFunc(matched, compare)
	}

	return paginate(matched, q.Page, q.PageSize)
}

func paginate(items []CourseListing, page, size int) CoursePage {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size

	out := CoursePage{
		Items:      []CourseListing{},
		Page:       1,
		PageSize:   size,
		TotalCount: total,
		TotalPages: pages,
	}
	if pages == 0 {
		return out
	}

	out.Page = min(max(page, 1), pages)
	start := (out.Page - 1) * size
	end := min(start+size, total)
	out.Items = items[start:end]
	return out
}
