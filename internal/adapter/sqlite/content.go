package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// ContentRepository stores FAQs, announcements and the contact singleton.
type ContentRepository struct {
	db *sql.DB
}

var (
	_ domain.FaqRepository          = (*ContentRepository)(nil)
	_ domain.AnnouncementRepository = (*ContentRepository)(nil)
	_ domain.ContactInfoRepository  = (*ContentRepository)(nil)
)

func (r *ContentRepository) ListFaqs(ctx context.Context) ([]domain.Faq, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, question, answer FROM faqs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing faqs: %w", err)
	}
	defer rows.Close()

	faqs := []domain.Faq{}
	for rows.Next() {
		var f domain.Faq
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer); err != nil {
			return nil, fmt.Errorf("scanning faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

func (r *ContentRepository) CreateFaq(ctx context.Context, f domain.Faq) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO faqs (id, question, answer) VALUES (?, ?, ?)`,
		f.ID, f.Question, f.Answer,
	); err != nil {
		return fmt.Errorf("inserting faq: %w", err)
	}
	return nil
}

func (r *ContentRepository) UpdateFaq(ctx context.Context, f domain.Faq) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE faqs SET question = ?, answer = ? WHERE id = ?`,
		f.Question, f.Answer, f.ID,
	)
	if err != nil {
		return fmt.Errorf("updating faq: %w", err)
	}
	return checkAffected(result, domain.ErrFaqNotFound)
}

func (r *ContentRepository) DeleteFaq(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM faqs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting faq: %w", err)
	}
	return checkAffected(result, domain.ErrFaqNotFound)
}

func (r *ContentRepository) ListAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, posted_date, type FROM announcements ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing announcements: %w", err)
	}
	defer rows.Close()

	items := []domain.Announcement{}
	for rows.Next() {
		var a domain.Announcement
		var posted, typ string
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &posted, &typ); err != nil {
			return nil, fmt.Errorf("scanning announcement: %w", err)
		}
		if a.PostedDate, err = parseDate("posted_date", posted); err != nil {
			return nil, fmt.Errorf("scanning announcement %s: %w", a.ID, err)
		}
		a.Type = domain.AnnouncementType(typ)
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *ContentRepository) CreateAnnouncement(ctx context.Context, a domain.Announcement) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO announcements (id, title, content, posted_date, type) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, formatDate(a.PostedDate), string(a.Type),
	); err != nil {
		return fmt.Errorf("inserting announcement: %w", err)
	}
	return nil
}

func (r *ContentRepository) UpdateAnnouncement(ctx context.Context, a domain.Announcement) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE announcements SET title = ?, content = ?, posted_date = ?, type = ? WHERE id = ?`,
		a.Title, a.Content, formatDate(a.PostedDate), string(a.Type), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating announcement: %w", err)
	}
	return checkAffected(result, domain.ErrAnnouncementNotFound)
}

func (r *ContentRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting announcement: %w", err)
	}
	return checkAffected(result, domain.ErrAnnouncementNotFound)
}

func (r *ContentRepository) GetContactInfo(ctx context.Context) (domain.ContactInfo, error) {
	var info domain.ContactInfo
	err := r.db.QueryRowContext(ctx,
		`SELECT phone, email, address FROM contact_info WHERE id = 1`,
	).Scan(&info.Phone, &info.Email, &info.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContactInfo{}, domain.ErrContactInfoNotSet
	}
	if err != nil {
		return domain.ContactInfo{}, fmt.Errorf("reading contact info: %w", err)
	}
	return info, nil
}

func (r *ContentRepository) ReplaceContactInfo(ctx context.Context, info domain.ContactInfo) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_info (id, phone, email, address) VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET phone = excluded.phone, email = excluded.email, address = excluded.address`,
		info.Phone, info.Email, info.Address,
	); err != nil {
		return fmt.Errorf("replacing contact info: %w", err)
	}
	return nil
}
