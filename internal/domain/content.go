package domain

import "time"

// Faq is a question/answer pair shown on the public site.
type Faq struct {
	ID       string
	Question string
	Answer   string
}

// AnnouncementType controls how an announcement is highlighted.
type AnnouncementType string

const (
	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementSuccess AnnouncementType = "success"
	AnnouncementWarning AnnouncementType = "warning"
)

// Announcement is a dated notice.
type Announcement struct {
	ID         string
	Title      string
	Content    string
	PostedDate time.Time
	Type       AnnouncementType
}

// ContactInfo is the singleton contact record.
type ContactInfo struct {
	Phone   string
	Email   string
	Address string
}

// DefaultContactInfo is served until an admin stores a record.
var DefaultContactInfo = ContactInfo{
	Phone:   "02-XXX-XXXX",
	Email:   "admin@example.com",
	Address: "วิทยาลัยนักบริหารสาธารณสุข<br/>กระทรวงสาธารณสุข",
}
