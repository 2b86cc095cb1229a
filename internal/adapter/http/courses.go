package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/coursereg/internal/app"
	"github.com/neomorfeo/coursereg/internal/domain"
)

// CourseResponse is the API representation of a course.
type CourseResponse struct {
	ID                  string `json:"id" doc:"Unique identifier"`
	Name                string `json:"courseName" doc:"Course name"`
	Generation          string `json:"courseGen" doc:"Generation label"`
	Description         string `json:"description" doc:"Course description"`
	StartDate           string `json:"startDate" doc:"Training start date (YYYY-MM-DD)"`
	EndDate             string `json:"endDate" doc:"Training end date (YYYY-MM-DD)"`
	RegistrationStart   string `json:"registrationStart" doc:"First day of registration (YYYY-MM-DD)"`
	RegistrationEnd     string `json:"registrationEnd" doc:"Last day of registration (YYYY-MM-DD)"`
	MaxParticipants     int    `json:"maxParticipants" doc:"Seat limit"`
	CurrentParticipants int    `json:"currentParticipants" doc:"Seats taken"`
	RemainingSeats      int    `json:"remainingSeats" doc:"Seats still free"`
	Location            string `json:"location" doc:"Venue"`
	Instructor          string `json:"instructor" doc:"Instructor"`
	Status              string `json:"status" doc:"Status derived from the registration window" enum:"active,upcoming,closed"`
}

func toCourseResponse(c app.CourseListing) CourseResponse {
	return CourseResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Generation:          c.Generation,
		Description:         c.Description,
		StartDate:           formatDate(c.StartDate),
		EndDate:             formatDate(c.EndDate),
		RegistrationStart:   formatDate(c.RegistrationStart),
		RegistrationEnd:     formatDate(c.RegistrationEnd),
		MaxParticipants:     c.MaxParticipants,
		CurrentParticipants: c.CurrentParticipants,
		RemainingSeats:      c.Remaining(),
		Location:            c.Location,
		Instructor:          c.Instructor,
		Status:              string(c.Status),
	}
}

func toCourseResponses(cs []app.CourseListing) []CourseResponse {
	resp := make([]CourseResponse, len(cs))
	for i, c := range cs {
		resp[i] = toCourseResponse(c)
	}
	return resp
}

// CourseBody is the admin-editable part of a course.
type CourseBody struct {
	Name              string `json:"courseName" minLength:"1" maxLength:"255" doc:"Course name"`
	Generation        string `json:"courseGen,omitempty" doc:"Generation label"`
	Description       string `json:"description,omitempty" doc:"Course description"`
	StartDate         string `json:"startDate,omitempty" format:"date" doc:"Training start date (YYYY-MM-DD)"`
	EndDate           string `json:"endDate,omitempty" format:"date" doc:"Training end date (YYYY-MM-DD)"`
	RegistrationStart string `json:"registrationStart" format:"date" doc:"First day of registration (YYYY-MM-DD)"`
	RegistrationEnd   string `json:"registrationEnd" format:"date" doc:"Last day of registration (YYYY-MM-DD)"`
	MaxParticipants   int    `json:"maxParticipants" minimum:"1" doc:"Seat limit"`
	Location          string `json:"location,omitempty" doc:"Venue"`
	Instructor        string `json:"instructor,omitempty" doc:"Instructor"`
}

func (b CourseBody) details() (domain.CourseDetails, error) {
	d := domain.CourseDetails{
		Name:            b.Name,
		Generation:      b.Generation,
		Description:     b.Description,
		MaxParticipants: b.MaxParticipants,
		Location:        b.Location,
		Instructor:      b.Instructor,
	}
	var err error
	if d.StartDate, err = parseDate("startDate", b.StartDate); err != nil {
		return d, err
	}
	if d.EndDate, err = parseDate("endDate", b.EndDate); err != nil {
		return d, err
	}
	if d.RegistrationStart, err = parseDate("registrationStart", b.RegistrationStart); err != nil {
		return d, err
	}
	if d.RegistrationEnd, err = parseDate("registrationEnd", b.RegistrationEnd); err != nil {
		return d, err
	}
	return d, nil
}

// --- Public ---

type ListCoursesOutput struct {
	Body []CourseResponse
}

type CourseIDInput struct {
	ID string `path:"id" doc:"Course ID"`
}

type CourseOutput struct {
	Body CourseResponse
}

// --- Admin ---

type QueryCoursesInput struct {
	View      string `query:"view" required:"false" default:"courses" enum:"dashboard,courses,cms,settings_contact,settings_faq" doc:"Active admin view"`
	Search    string `query:"search" required:"false" doc:"Case-insensitive match on name or generation"`
	Status    string `query:"status" required:"false" default:"all" enum:"all,active,upcoming,closed" doc:"Filter by derived status"`
	Sort      string `query:"sort" required:"false" default:"registrationStart" enum:"courseName,courseGen,startDate,endDate,registrationStart,registrationEnd,maxParticipants,currentParticipants,location,instructor,status" doc:"Sort key"`
	Direction string `query:"dir" required:"false" default:"desc" enum:"asc,desc" doc:"Sort direction"`
	Page      int    `query:"page" required:"false" default:"1" minimum:"1" doc:"1-indexed page"`
	PageSize  int    `query:"pageSize" required:"false" minimum:"0" maximum:"100" doc:"Page size; 0 uses the server default"`
}

type CoursePageResponse struct {
	Items      []CourseResponse `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalCount int              `json:"totalCount"`
	TotalPages int              `json:"totalPages"`
}

type QueryCoursesOutput struct {
	Body CoursePageResponse
}

type CreateCourseInput struct {
	Body CourseBody
}

type UpdateCourseInput struct {
	ID   string `path:"id" doc:"Course ID"`
	Body struct {
		CourseBody
		CurrentParticipants *int `json:"currentParticipants,omitempty" doc:"Read-only; must equal the stored count when sent"`
	}
}

type ReconcileResponse struct {
	CourseID   string `json:"courseId"`
	CourseName string `json:"courseName"`
	Recorded   int    `json:"recorded" doc:"Count stored before the repair"`
	Confirmed  int    `json:"confirmed" doc:"Confirmed registrations found"`
	Expected   int    `json:"expected" doc:"Count written by the repair"`
	Drifted    bool   `json:"drifted"`
}

type ReconcileOutput struct {
	Body ReconcileResponse
}

type SummaryResponse struct {
	TotalCourses           int `json:"totalCourses"`
	ActiveCourses          int `json:"activeCourses"`
	UpcomingCourses        int `json:"upcomingCourses"`
	ClosedCourses          int `json:"closedCourses"`
	ConfirmedRegistrations int `json:"confirmedRegistrations"`
	CancelledRegistrations int `json:"cancelledRegistrations"`
	OpenSeats              int `json:"openSeats"`
}

type SummaryOutput struct {
	Body SummaryResponse
}

func registerCourses(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "list-open-courses",
		Method:      http.MethodGet,
		Path:        "/api/v1/courses",
		Summary:     "List courses open or opening for registration",
		Tags:        []string{"Courses"},
	}, func(ctx context.Context, _ *struct{}) (*ListCoursesOutput, error) {
		courses, err := svc.Courses.ListOpen(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListCoursesOutput{Body: toCourseResponses(courses)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-course",
		Method:      http.MethodGet,
		Path:        "/api/v1/courses/{id}",
		Summary:     "Get a course by ID",
		Tags:        []string{"Courses"},
	}, func(ctx context.Context, input *CourseIDInput) (*CourseOutput, error) {
		course, err := svc.Courses.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CourseOutput{Body: toCourseResponse(course)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "query-courses",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/courses",
		Summary:     "Search, filter, sort and page the course inventory",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *QueryCoursesInput) (*QueryCoursesOutput, error) {
		q := app.CourseQuery{
			View:      app.View(input.View),
			Search:    input.Search,
			Status:    input.Status,
			SortKey:   app.SortKey(input.Sort),
			Direction: app.SortDirection(input.Direction),
			Page:      input.Page,
			PageSize:  input.PageSize,
		}
		if q.PageSize == 0 {
			q.PageSize = svc.PageSize
		}

		page, err := svc.Courses.Query(ctx, q)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &QueryCoursesOutput{Body: CoursePageResponse{
			Items:      toCourseResponses(page.Items),
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalCount: page.TotalCount,
			TotalPages: page.TotalPages,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-course",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/courses",
		Summary:       "Create a course",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateCourseInput) (*CourseOutput, error) {
		details, err := input.Body.details()
		if err != nil {
			return nil, toHumaError(err)
		}
		course, err := svc.Courses.Create(ctx, details)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CourseOutput{Body: toCourseResponse(course)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-course",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/courses/{id}",
		Summary:     "Edit a course",
		Description: "Every field except the participant count is editable.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *UpdateCourseInput) (*CourseOutput, error) {
		details, err := input.Body.details()
		if err != nil {
			return nil, toHumaError(err)
		}
		course, err := svc.Courses.Update(ctx, input.ID, app.CourseUpdate{
			CourseDetails:       details,
			CurrentParticipants: input.Body.CurrentParticipants,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CourseOutput{Body: toCourseResponse(course)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-course",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/courses/{id}",
		Summary:     "Delete a course",
		Description: "Registrations for the course are kept.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *CourseIDInput) (*struct{}, error) {
		if err := svc.Courses.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reconcile-course",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/courses/{id}/reconcile",
		Summary:     "Recount a course's confirmed registrations and repair its participant count",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *CourseIDInput) (*ReconcileOutput, error) {
		rec, err := svc.Registrations.Reconcile(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ReconcileOutput{Body: ReconcileResponse{
			CourseID:   rec.CourseID,
			CourseName: rec.CourseName,
			Recorded:   rec.Recorded,
			Confirmed:  rec.Confirmed,
			Expected:   rec.Expected,
			Drifted:    rec.Drifted(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-summary",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/summary",
		Summary:     "Dashboard counts",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, _ *struct{}) (*SummaryOutput, error) {
		s, err := svc.Dashboard.Summary(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SummaryOutput{Body: SummaryResponse(s)}, nil
	})
}
