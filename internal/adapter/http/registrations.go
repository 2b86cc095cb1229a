package http

import (
	"context"
	"mime"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/coursereg/internal/app"
	"github.com/neomorfeo/coursereg/internal/domain"
)

// RegistrationResponse is the API representation of a registration.
type RegistrationResponse struct {
	ID               string `json:"id" doc:"Unique identifier"`
	CourseID         string `json:"courseId" doc:"Course the seat belongs to"`
	CourseName       string `json:"courseName" doc:"Course name when the registration was made"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	IDCard           string `json:"idCard" doc:"National ID number"`
	BirthDate        string `json:"birthDate"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Organization     string `json:"organization"`
	Position         string `json:"position"`
	Address          string `json:"address"`
	RegistrationDate string `json:"registrationDate" doc:"Date the registration was made (YYYY-MM-DD)"`
	Status           string `json:"status" enum:"pending,confirmed,cancelled"`
}

func toRegistrationResponse(r domain.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:               r.ID,
		CourseID:         r.CourseID,
		CourseName:       r.CourseName,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		IDCard:           r.IDCard,
		BirthDate:        r.BirthDate,
		Phone:            r.Phone,
		Email:            r.Email,
		Organization:     r.Organization,
		Position:         r.Position,
		Address:          r.Address,
		RegistrationDate: formatDate(r.RegistrationDate),
		Status:           string(r.Status),
	}
}

func toRegistrationResponses(regs []domain.Registration) []RegistrationResponse {
	resp := make([]RegistrationResponse, len(regs))
	for i, r := range regs {
		resp[i] = toRegistrationResponse(r)
	}
	return resp
}

// --- Submit ---

type RegisterInput struct {
	CourseID string `path:"id" doc:"Course ID"`
	Body     struct {
		FirstName    string `json:"firstName" maxLength:"255"`
		LastName     string `json:"lastName" maxLength:"255"`
		IDCard       string `json:"idCard" maxLength:"32" doc:"National ID number"`
		BirthDate    string `json:"birthDate,omitempty"`
		Phone        string `json:"phone,omitempty"`
		Email        string `json:"email,omitempty"`
		Organization string `json:"organization,omitempty"`
		Position     string `json:"position,omitempty"`
		Address      string `json:"address,omitempty"`
	}
}

type RegistrationOutput struct {
	Body RegistrationResponse
}

// --- Admin ---

type RegistrationIDInput struct {
	ID string `path:"id" doc:"Registration ID"`
}

type ListRegistrationsInput struct {
	CourseID string `query:"courseId" required:"false" doc:"Filter by course"`
	IDCard   string `query:"idCard" required:"false" doc:"Filter by national ID number"`
	Status   string `query:"status" required:"false" enum:"pending,confirmed,cancelled" doc:"Filter by status"`
}

type ListRegistrationsOutput struct {
	Body []RegistrationResponse
}

// RosterInput selects a course's registrations, optionally narrowed by a
// case-insensitive match on name, email or organization.
type RosterInput struct {
	ID     string `path:"id" doc:"Course ID"`
	Search string `query:"search" maxLength:"255" doc:"Matches first name, last name, email or organization"`
}

type CourseRosterOutput struct {
	Body struct {
		Course        CourseResponse         `json:"course"`
		Registrations []RegistrationResponse `json:"registrations"`
	}
}

type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func registerRegistrations(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/courses/{id}/registrations",
		Summary:       "Register for a course",
		Description:   "Rejections carry a message meant to be shown to the registrant as is.",
		Tags:          []string{"Registrations"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*RegistrationOutput, error) {
		b := input.Body
		reg, err := svc.Registrations.Register(ctx, app.RegistrationRequest{
			CourseID: input.CourseID,
			Registrant: domain.Registrant{
				FirstName:    b.FirstName,
				LastName:     b.LastName,
				IDCard:       b.IDCard,
				BirthDate:    b.BirthDate,
				Phone:        b.Phone,
				Email:        b.Email,
				Organization: b.Organization,
				Position:     b.Position,
				Address:      b.Address,
			},
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegistrationOutput{Body: toRegistrationResponse(reg)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-registrations",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/registrations",
		Summary:     "List registrations",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ListRegistrationsInput) (*ListRegistrationsOutput, error) {
		filter := domain.RegistrationFilter{
			CourseID: input.CourseID,
			IDCard:   input.IDCard,
		}
		if input.Status != "" {
			s := domain.RegistrationStatus(input.Status)
			filter.Status = &s
		}

		regs, err := svc.Registrations.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListRegistrationsOutput{Body: toRegistrationResponses(regs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-registration",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/registrations/{id}",
		Summary:     "Get a registration by ID",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *RegistrationIDInput) (*RegistrationOutput, error) {
		reg, err := svc.Registrations.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegistrationOutput{Body: toRegistrationResponse(reg)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-registration",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/registrations/{id}/cancel",
		Summary:     "Cancel a registration",
		Description: "Cancelling an already cancelled registration returns it unchanged.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *RegistrationIDInput) (*RegistrationOutput, error) {
		reg, err := svc.Registrations.Cancel(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegistrationOutput{Body: toRegistrationResponse(reg)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-course-registrations",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/courses/{id}/registrations",
		Summary:     "List a course's registrations",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *RosterInput) (*CourseRosterOutput, error) {
		course, regs, err := svc.Registrations.ListForCourse(ctx, input.ID, input.Search)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &CourseRosterOutput{}
		out.Body.Course = toCourseResponse(course)
		out.Body.Registrations = toRegistrationResponses(regs)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-course-registrations",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/courses/{id}/registrations.csv",
		Summary:     "Download a course's registrations as CSV",
		Description: "Exports the same rows the roster returns for the given search.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *RosterInput) (*ExportOutput, error) {
		course, regs, err := svc.Registrations.ListForCourse(ctx, input.ID, input.Search)
		if err != nil {
			return nil, toHumaError(err)
		}

		export := app.ExportRegistrationsCSV(course, regs)
		return &ExportOutput{
			ContentType:        "text/csv; charset=utf-8",
			ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}),
			Body:               export.Content,
		}, nil
	})
}
