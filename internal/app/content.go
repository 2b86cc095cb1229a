package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// ContentRepository groups the stores behind the public site content.
type ContentRepository interface {
	domain.FaqRepository
	domain.AnnouncementRepository
	domain.ContactInfoRepository
}

// ContentService manages FAQs, announcements and the contact record.
type ContentService struct {
	repo ContentRepository
	opts options
}

// NewContentService creates a service over the given store.
func NewContentService(repo ContentRepository, opts ...Option) *ContentService {
	return &ContentService{repo: repo, opts: newOptions(opts)}
}

// ListFaqs returns every FAQ in store order.
func (s *ContentService) ListFaqs(ctx context.Context) ([]domain.Faq, error) {
	faqs, err := s.repo.ListFaqs(ctx)
	if err != nil {
		return nil, storageErr("listing faqs", err)
	}
	return faqs, nil
}

// CreateFaq stores a new question and answer.
func (s *ContentService) CreateFaq(ctx context.Context, question, answer string) (domain.Faq, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Faq{}, &domain.ValidationError{Field: "question", Reason: "must not be empty"}
	}
	id, err := generateID("faq")
	if err != nil {
		return domain.Faq{}, fmt.Errorf("generating faq id: %w", err)
	}
	faq := domain.Faq{ID: id, Question: question, Answer: answer}
	if err := s.repo.CreateFaq(ctx, faq); err != nil {
		return domain.Faq{}, storageErr("creating faq", err)
	}
	return faq, nil
}

// UpdateFaq replaces an existing FAQ.
func (s *ContentService) UpdateFaq(ctx context.Context, faq domain.Faq) (domain.Faq, error) {
	if strings.TrimSpace(faq.Question) == "" {
		return domain.Faq{}, &domain.ValidationError{Field: "question", Reason: "must not be empty"}
	}
	if err := s.repo.UpdateFaq(ctx, faq); err != nil {
		return domain.Faq{}, storageErr("updating faq", err)
	}
	return faq, nil
}

// DeleteFaq removes an FAQ.
func (s *ContentService) DeleteFaq(ctx context.Context, id string) error {
	if err := s.repo.DeleteFaq(ctx, id); err != nil {
		return storageErr("deleting faq", err)
	}
	return nil
}

// ListAnnouncements returns announcements, newest first.
func (s *ContentService) ListAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	items, err := s.repo.ListAnnouncements(ctx)
	if err != nil {
		return nil, storageErr("listing announcements", err)
	}
	slices.SortStableFunc(items, func(a, b domain.Announcement) int {
		return b.PostedDate.Compare(a.PostedDate)
	})
	return items, nil
}

// AnnouncementInput holds the editable fields of an announcement.
type AnnouncementInput struct {
	Title   string
	Content string
	Type    domain.AnnouncementType
}

func (in AnnouncementInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	switch in.Type {
	case domain.AnnouncementInfo, domain.AnnouncementSuccess, domain.AnnouncementWarning:
		return nil
	}
	return &domain.ValidationError{Field: "type", Reason: "must be one of info, success, warning"}
}

// CreateAnnouncement posts an announcement dated today.
func (s *ContentService) CreateAnnouncement(ctx context.Context, in AnnouncementInput) (domain.Announcement, error) {
	in.Type = cmp.Or(in.Type, domain.AnnouncementInfo)
	if err := in.validate(); err != nil {
		return domain.Announcement{}, err
	}
	id, err := generateID("ann")
	if err != nil {
		return domain.Announcement{}, fmt.Errorf("generating announcement id: %w", err)
	}
	y, m, d := s.opts.today().Date()
	a := domain.Announcement{
		ID:         id,
		Title:      in.Title,
		Content:    in.Content,
		Type:       in.Type,
		PostedDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
	if err := s.repo.CreateAnnouncement(ctx, a); err != nil {
		return domain.Announcement{}, storageErr("creating announcement", err)
	}
	return a, nil
}

// UpdateAnnouncement edits an announcement, keeping its posted date.
func (s *ContentService) UpdateAnnouncement(ctx context.Context, id string, in AnnouncementInput) (domain.Announcement, error) {
	in.Type = cmp.Or(in.Type, domain.AnnouncementInfo)
	if err := in.validate(); err != nil {
		return domain.Announcement{}, err
	}
	items, err := s.repo.ListAnnouncements(ctx)
	if err != nil {
		return domain.Announcement{}, storageErr("listing announcements", err)
	}
	i := slices.IndexFunc(items, func(a domain.Announcement) bool { return a.ID == id })
	if i < 0 {
		return domain.Announcement{}, domain.ErrAnnouncementNotFound
	}
	a := items[i]
	a.Title, a.Content, a.Type = in.Title, in.Content, in.Type
	if err := s.repo.UpdateAnnouncement(ctx, a); err != nil {
		return domain.Announcement{}, storageErr("updating announcement", err)
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement.
func (s *ContentService) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := s.repo.DeleteAnnouncement(ctx, id); err != nil {
		return storageErr("deleting announcement", err)
	}
	return nil
}

// ContactInfo returns the stored contact record, or the default when none
// has been saved.
func (s *ContentService) ContactInfo(ctx context.Context) (domain.ContactInfo, error) {
	info, err := s.repo.GetContactInfo(ctx)
	if errors.Is(err, domain.ErrContactInfoNotSet) {
		return domain.DefaultContactInfo, nil
	}
	if err != nil {
		return domain.ContactInfo{}, storageErr("loading contact info", err)
	}
	return info, nil
}

// ReplaceContactInfo swaps the contact record wholesale.
func (s *ContentService) ReplaceContactInfo(ctx context.Context, info domain.ContactInfo) (domain.ContactInfo, error) {
	if err := s.repo.ReplaceContactInfo(ctx, info); err != nil {
		return domain.ContactInfo{}, storageErr("replacing contact info", err)
	}
	return info, nil
}
