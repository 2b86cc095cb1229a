package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/coursereg/internal/adapter/fsm"
	"github.com/neomorfeo/coursereg/internal/adapter/sqlite"
	"github.com/neomorfeo/coursereg/internal/app"
	"github.com/neomorfeo/coursereg/internal/config"
	"github.com/neomorfeo/coursereg/internal/domain"
)

type seedCourse struct {
	details domain.CourseDetails
	// registrants are admitted through the normal path after creation.
	registrants []domain.Registrant
}

// demoCourses builds a catalogue with one course in each status relative to
// today, so the public listing and the admin filters all have something to show.
func demoCourses(today time.Time) []seedCourse {
	day := func(offset int) time.Time {
		y, m, d := today.AddDate(0, 0, offset).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	return []seedCourse{
		{
			details: domain.CourseDetails{
				Name:              "การบริหารจัดการโรงพยาบาล",
				Generation:        "15",
				Description:       "หลักสูตรพัฒนาทักษะการบริหารจัดการโรงพยาบาลสำหรับผู้บริหารระดับกลาง",
				RegistrationStart: day(-30),
				RegistrationEnd:   day(30),
				StartDate:         day(45),
				EndDate:           day(50),
				MaxParticipants:   50,
				Location:          "โรงแรมสยาม บางกอก",
				Instructor:        "ดร.สมชาย ใจดี",
			},
			registrants: []domain.Registrant{
				{FirstName: "สมหญิง", LastName: "รักดี", IDCard: "1100100000011", Email: "somying@example.com", Organization: "โรงพยาบาลศูนย์", Position: "พยาบาลวิชาชีพ"},
				{FirstName: "ประเสริฐ", LastName: "มั่นคง", IDCard: "1100100000022", Email: "prasert@example.com", Organization: "สำนักงานสาธารณสุขจังหวัด", Position: "นักวิชาการสาธารณสุข"},
			},
		},
		{
			details: domain.CourseDetails{
				Name:              "นโยบายสาธารณสุขแห่งชาติ",
				Generation:        "8",
				Description:       "หลักสูตรวิเคราะห์นโยบายสาธารณสุขและการวางแผนเชิงกลยุทธ์",
				RegistrationStart: day(-10),
				RegistrationEnd:   day(60),
				StartDate:         day(75),
				EndDate:           day(80),
				MaxParticipants:   40,
				Location:          "ศูนย์ฝึกอบรมกระทรวงสาธารณสุข",
				Instructor:        "นางสาวสุภาพร แสงทอง",
			},
		},
		{
			details: domain.CourseDetails{
				Name:              "การจัดการทรัพยากรบุคคลในหน่วยงานสาธารณสุข",
				Generation:        "12",
				Description:       "พัฒนาทักษะการบริหารทรัพยากรบุคคลในองค์กรภาครัฐ",
				RegistrationStart: day(20),
				RegistrationEnd:   day(50),
				StartDate:         day(65),
				EndDate:           day(70),
				MaxParticipants:   35,
				Location:          "โรงแรมเซ็นทารา แกรนด์ บางกอก",
				Instructor:        "ผศ.ดร.วิชัย ทองคำ",
			},
		},
		{
			details: domain.CourseDetails{
				Name:              "การเงินและการคลังสำหรับผู้บริหาร",
				Generation:        "5",
				Description:       "หลักสูตรพื้นฐานด้านการเงินและการคลังสำหรับโรงพยาบาล",
				RegistrationStart: day(-90),
				RegistrationEnd:   day(-45),
				StartDate:         day(-30),
				EndDate:           day(-25),
				MaxParticipants:   30,
				Location:          "ออนไลน์ผ่าน Zoom",
				Instructor:        "รศ.ดร. สุดา การเงิน",
			},
		},
	}
}

var demoFaqs = []domain.Faq{
	{Question: "จะลงทะเบียนเข้าร่วมอบรมได้อย่างไร?", Answer: "เลือกหลักสูตรที่ต้องการจากหน้าหลักสูตร คลิกปุ่มลงทะเบียน และกรอกข้อมูลตามแบบฟอร์ม"},
	{Question: "สามารถยกเลิกการลงทะเบียนได้หรือไม่?", Answer: "สามารถยกเลิกได้ก่อนวันปิดรับสมัคร โดยติดต่อเจ้าหน้าที่"},
	{Question: "จะตรวจสอบสถานะการลงทะเบียนได้อย่างไร?", Answer: "ติดต่อเจ้าหน้าที่พร้อมแจ้งเลขบัตรประชาชนที่ใช้ลงทะเบียน"},
}

var demoAnnouncements = []app.AnnouncementInput{
	{Title: "เปิดรับสมัครหลักสูตรใหม่ประจำปี", Content: "ตรวจสอบรายละเอียดหลักสูตรและช่วงเวลารับสมัครได้ที่หน้าหลักสูตร", Type: domain.AnnouncementInfo},
	{Title: "แจ้งปรับปรุงระบบลงทะเบียนออนไลน์", Content: "ระบบได้รับการปรับปรุงเพื่อเพิ่มประสิทธิภาพในการใช้งาน", Type: domain.AnnouncementSuccess},
}

func seedDatabase(ctx context.Context, cfg config.Config) error {
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()

	opts := serviceOptions(cfg)
	ledger := app.NewCapacityLedger(store.Courses(), store.Registrations())

	return seed(ctx,
		app.NewCourseService(store.Courses(), ledger, opts...),
		app.NewRegistrationService(store.Courses(), store.Registrations(), ledger, logPublisher{}, fsm.New(), opts...),
		app.NewContentService(store.Content(), opts...),
		time.Now().In(cfg.Location()),
	)
}

// seed loads the demonstration data through the services so every write
// passes the same validation and capacity rules as live traffic.
func seed(ctx context.Context, courses *app.CourseService, registrations *app.RegistrationService, content *app.ContentService, today time.Time) error {
	for _, sc := range demoCourses(today) {
		course, err := courses.Create(ctx, sc.details)
		if err != nil {
			return fmt.Errorf("seeding course %q: %w", sc.details.Name, err)
		}
		for _, r := range sc.registrants {
			_, err := registrations.Register(ctx, app.RegistrationRequest{CourseID: course.ID, Registrant: r})
			if err != nil && !errors.Is(err, domain.ErrDuplicateRegistration) {
				return fmt.Errorf("seeding registration for %q: %w", course.Name, err)
			}
		}
	}

	for _, f := range demoFaqs {
		if _, err := content.CreateFaq(ctx, f.Question, f.Answer); err != nil {
			return fmt.Errorf("seeding faq: %w", err)
		}
	}
	for _, a := range demoAnnouncements {
		if _, err := content.CreateAnnouncement(ctx, a); err != nil {
			return fmt.Errorf("seeding announcement: %w", err)
		}
	}
	if _, err := content.ReplaceContactInfo(ctx, domain.DefaultContactInfo); err != nil {
		return fmt.Errorf("seeding contact info: %w", err)
	}

	slog.InfoContext(ctx, "seed complete", "courses", len(demoCourses(today)), "faqs", len(demoFaqs))
	return nil
}
