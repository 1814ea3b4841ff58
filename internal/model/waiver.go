package model

import (
	"errors"
	"fmt"
)

// WaiverStatus is the research-consent choice of a student. The wire value is the integer.
type WaiverStatus int

const (
	WaiverAgree      WaiverStatus = 1
	WaiverDecline    WaiverStatus = 2
	WaiverIneligible WaiverStatus = 3
)

var ErrUnknownWaiverStatus = errors.New("waiver status must be 1 (agree), 2 (decline) or 3 (ineligible)")

// WaiverStatuses lists the closed set of choices in display order.
var WaiverStatuses = []WaiverStatus{WaiverAgree, WaiverDecline, WaiverIneligible}

func ParseWaiverStatus(v int) (WaiverStatus, error) {
	s := WaiverStatus(v)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: got %d", ErrUnknownWaiverStatus, v)
	}
	return s, nil
}

func (s WaiverStatus) Valid() bool {
	switch s {
	case WaiverAgree, WaiverDecline, WaiverIneligible:
		return true
	default:
		return false
	}
}

func (s WaiverStatus) String() string {
	switch s {
	case WaiverAgree:
		return "AGREE"
	case WaiverDecline:
		return "DECLINE"
	case WaiverIneligible:
		return "INELIGIBLE"
	default:
		return fmt.Sprintf("WaiverStatus(%d)", int(s))
	}
}

// PermitsResearchUse reports whether the student's data may be used for research.
// Module access never depends on it.
func (s WaiverStatus) PermitsResearchUse() bool {
	switch s {
	case WaiverAgree:
		return true
	default:
		return false
	}
}
