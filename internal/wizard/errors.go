package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrTooManyImages    = fmt.Errorf("You can upload a maximum of %d images.", MaxImages)
	ErrNotEnoughImages  = fmt.Errorf("Please upload at least %d images.", MinImages)
	ErrForwardDisabled  = errors.New("cannot continue from this stage yet")
	ErrNotOnReview      = errors.New("claims can only be submitted from the review stage")
	ErrAlreadySubmitted = errors.New("this claim has already been submitted")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrSubmitFailed     = errors.New("Error submitting claim")
	ErrImageIndex       = errors.New("no image at that position")
)

// FieldErrors maps a form field to the message shown beside it
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// merge copies other into fe, keeping the first message per field
func (fe FieldErrors) merge(other FieldErrors) {
	for k, v := range other {
		if _, ok := fe[k]; !ok {
			fe[k] = v
		}
	}
}
