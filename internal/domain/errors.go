package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context. Admission and
// cancellation outcomes are terminal and never retried.
var (
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseFull            = errors.New("course is full")
	ErrRegistrationClosed    = errors.New("registration window has closed")
	ErrDuplicateRegistration = errors.New("id card already registered for this course")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrParticipantsReadOnly  = errors.New("current participants is maintained by the capacity ledger")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrStorageInconsistency  = errors.New("storage inconsistency")
	ErrFaqNotFound           = errors.New("faq not found")
	ErrAnnouncementNotFound  = errors.New("announcement not found")
	ErrContactInfoNotSet     = errors.New("contact info not set")
)

// messages are the user-facing texts shown verbatim to submitters. Each kind
// has its own text because they call for different remediation.
var messages = map[error]string{
	ErrCourseNotFound:        "ไม่พบหลักสูตรที่ระบุ",
	ErrCourseFull:            "ขออภัย หลักสูตรนี้เต็มแล้ว",
	ErrRegistrationClosed:    "ระยะเวลาการลงทะเบียนสำหรับหลักสูตรนี้สิ้นสุดแล้ว",
	ErrDuplicateRegistration: "ท่านได้ลงทะเบียนหลักสูตรนี้แล้วด้วยเลขบัตรประชาชนนี้",
	ErrRegistrationNotFound:  "ไม่พบข้อมูลการลงทะเบียน",
	ErrStorageInconsistency:  "บันทึกข้อมูลได้ไม่ครบถ้วน กรุณาติดต่อเจ้าหน้าที่เพื่อตรวจสอบ",
	ErrStorageUnavailable:    "เกิดข้อผิดพลาดที่ไม่คาดคิดบนเซิร์ฟเวอร์ กรุณาลองใหม่อีกครั้ง",
}

// UserMessage returns the human-readable message for a known error kind, or
// the storage-unavailable message for anything unclassified.
func UserMessage(err error) string {
	// Inconsistency wraps the underlying storage failure, so it must win.
	for _, kind := range []error{
		ErrStorageInconsistency,
		ErrCourseNotFound,
		ErrCourseFull,
		ErrRegistrationClosed,
		ErrDuplicateRegistration,
		ErrRegistrationNotFound,
	} {
		if errors.Is(err, kind) {
			return messages[kind]
		}
	}
	return messages[ErrStorageUnavailable]
}

// StorageError wraps a store failure that has no more specific meaning.
// It matches ErrStorageUnavailable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// StorageInconsistencyError is returned when the first write of a two-step
// commit landed but the second did not, even after a retry. The rows are left
// as they are for an administrator to reconcile.
type StorageInconsistencyError struct {
	Op             string
	RegistrationID string
	CourseID       string
	Err            error
}

func (e *StorageInconsistencyError) Error() string {
	return fmt.Sprintf("%s: registration %s written but course %s count not updated: %v",
		e.Op, e.RegistrationID, e.CourseID, e.Err)
}

func (e *StorageInconsistencyError) Unwrap() error { return e.Err }

func (e *StorageInconsistencyError) Is(target error) bool { return target == ErrStorageInconsistency }

// CapacityBelowOccupancyError is returned when an edit would set the seat
// limit below the seats already taken.
type CapacityBelowOccupancyError struct {
	CourseID string
	Max      int
	Current  int
}

func (e *CapacityBelowOccupancyError) Error() string {
	return fmt.Sprintf("course %s: max participants %d is below current participants %d",
		e.CourseID, e.Max, e.Current)
}

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current RegistrationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
