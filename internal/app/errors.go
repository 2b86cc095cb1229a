package app

import (
	"errors"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// passthrough lists errors that already carry domain meaning.
var passthrough = []error{
	domain.ErrCourseNotFound,
	domain.ErrRegistrationNotFound,
	domain.ErrDuplicateRegistration,
	domain.ErrFaqNotFound,
	domain.ErrAnnouncementNotFound,
	domain.ErrContactInfoNotSet,
	domain.ErrStorageUnavailable,
	domain.ErrStorageInconsistency,
}

// storageErr classifies a repository failure: known domain errors pass
// through, anything else becomes a StorageError.
func storageErr(op string, err error) error {
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return err
		}
	}
	return &domain.StorageError{Op: op, Err: err}
}
