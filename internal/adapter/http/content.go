package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/coursereg/internal/app"
	"github.com/neomorfeo/coursereg/internal/domain"
)

type FaqResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type AnnouncementResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	PostedDate string `json:"date" doc:"Posting date (YYYY-MM-DD)"`
	Type       string `json:"type" enum:"info,success,warning"`
}

type ContactResponse struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func toAnnouncementResponse(a domain.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		PostedDate: formatDate(a.PostedDate),
		Type:       string(a.Type),
	}
}

// --- FAQs ---

type FaqBody struct {
	Question string `json:"question" minLength:"1"`
	Answer   string `json:"answer"`
}

type ListFaqsOutput struct {
	Body []FaqResponse
}

type CreateFaqInput struct {
	Body FaqBody
}

type UpdateFaqInput struct {
	ID   string `path:"id" doc:"FAQ ID"`
	Body FaqBody
}

type FaqOutput struct {
	Body FaqResponse
}

// --- Announcements ---

type AnnouncementBody struct {
	Title   string `json:"title" minLength:"1"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty" default:"info" enum:"info,success,warning"`
}

func (b AnnouncementBody) input() app.AnnouncementInput {
	return app.AnnouncementInput{
		Title:   b.Title,
		Content: b.Content,
		Type:    domain.AnnouncementType(b.Type),
	}
}

type ListAnnouncementsOutput struct {
	Body []AnnouncementResponse
}

type CreateAnnouncementInput struct {
	Body AnnouncementBody
}

type UpdateAnnouncementInput struct {
	ID   string `path:"id" doc:"Announcement ID"`
	Body AnnouncementBody
}

type AnnouncementOutput struct {
	Body AnnouncementResponse
}

// --- Contact ---

type ReplaceContactInput struct {
	Body ContactResponse
}

type ContactOutput struct {
	Body ContactResponse
}

type ContentIDInput struct {
	ID string `path:"id"`
}

func registerContent(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "list-faqs",
		Method:      http.MethodGet,
		Path:        "/api/v1/faqs",
		Summary:     "List FAQs",
		Tags:        []string{"Content"},
	}, func(ctx context.Context, _ *struct{}) (*ListFaqsOutput, error) {
		faqs, err := svc.Content.ListFaqs(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]FaqResponse, len(faqs))
		for i, f := range faqs {
			resp[i] = FaqResponse(f)
		}
		return &ListFaqsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-faq",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/faqs",
		Summary:       "Create an FAQ",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateFaqInput) (*FaqOutput, error) {
		faq, err := svc.Content.CreateFaq(ctx, input.Body.Question, input.Body.Answer)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &FaqOutput{Body: FaqResponse(faq)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-faq",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/faqs/{id}",
		Summary:     "Edit an FAQ",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *UpdateFaqInput) (*FaqOutput, error) {
		faq, err := svc.Content.UpdateFaq(ctx, domain.Faq{
			ID:       input.ID,
			Question: input.Body.Question,
			Answer:   input.Body.Answer,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &FaqOutput{Body: FaqResponse(faq)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-faq",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/faqs/{id}",
		Summary:     "Delete an FAQ",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ContentIDInput) (*struct{}, error) {
		if err := svc.Content.DeleteFaq(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-announcements",
		Method:      http.MethodGet,
		Path:        "/api/v1/announcements",
		Summary:     "List announcements, newest first",
		Tags:        []string{"Content"},
	}, func(ctx context.Context, _ *struct{}) (*ListAnnouncementsOutput, error) {
		items, err := svc.Content.ListAnnouncements(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AnnouncementResponse, len(items))
		for i, a := range items {
			resp[i] = toAnnouncementResponse(a)
		}
		return &ListAnnouncementsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-announcement",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/announcements",
		Summary:       "Post an announcement dated today",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateAnnouncementInput) (*AnnouncementOutput, error) {
		a, err := svc.Content.CreateAnnouncement(ctx, input.Body.input())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AnnouncementOutput{Body: toAnnouncementResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-announcement",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/announcements/{id}",
		Summary:     "Edit an announcement",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *UpdateAnnouncementInput) (*AnnouncementOutput, error) {
		a, err := svc.Content.UpdateAnnouncement(ctx, input.ID, input.Body.input())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AnnouncementOutput{Body: toAnnouncementResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-announcement",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/announcements/{id}",
		Summary:     "Delete an announcement",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ContentIDInput) (*struct{}, error) {
		if err := svc.Content.DeleteAnnouncement(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-contact",
		Method:      http.MethodGet,
		Path:        "/api/v1/contact",
		Summary:     "Contact information",
		Tags:        []string{"Content"},
	}, func(ctx context.Context, _ *struct{}) (*ContactOutput, error) {
		info, err := svc.Content.ContactInfo(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ContactOutput{Body: ContactResponse(info)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-contact",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/contact",
		Summary:     "Replace contact information",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ReplaceContactInput) (*ContactOutput, error) {
		info, err := svc.Content.ReplaceContactInfo(ctx, domain.ContactInfo(input.Body))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ContactOutput{Body: ContactResponse(info)}, nil
	})
}
