package listing

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var ErrInvalidInquiry = errors.New("invalid inquiry")

type InquiryKind string

const (
	InquiryVisit   InquiryKind = "visit"
	InquiryContact InquiryKind = "contact"
)

// InquiryStore persists visit and contact requests.
type InquiryStore interface {
	CreateInquiry(ctx context.Context, in Inquiry) (Inquiry, error)
}

// Inquiry is a "Schedule a Visit" or "Contact Agent" request.
type Inquiry struct {
	ID            string      `json:"id"`
	Kind          InquiryKind `json:"kind"`
	Name          string      `json:"name"`
	Email         string      `json:"email,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	PropertyID    *int64      `json:"property_id,omitempty"`
	Message       string      `json:"message,omitempty"`
	PreferredDate string      `json:"preferred_date,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Normalize trims free-text fields and defaults Kind.
func (in *Inquiry) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	in.PreferredDate = strings.TrimSpace(in.PreferredDate)
	if in.Kind == "" {
		in.Kind = InquiryContact
		if in.PropertyID != nil {
			in.Kind = InquiryVisit
		}
	}
}

func (in Inquiry) Validate() error {
	var errs []error
	switch in.Kind {
	case InquiryVisit:
		if in.PropertyID == nil {
			errs = append(errs, errors.New("visit needs property_id"))
		}
	case InquiryContact:
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", in.Kind))
	}
	if in.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if in.Email == "" && in.Phone == "" {
		errs = append(errs, errors.New("email or phone is required"))
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			errs = append(errs, fmt.Errorf("email %q is not valid", in.Email))
		}
	}
	if in.PreferredDate != "" {
		if _, err := time.Parse(time.DateOnly, in.PreferredDate); err != nil {
			errs = append(errs, fmt.Errorf("preferred_date %q is not YYYY-MM-DD", in.PreferredDate))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInquiry, errors.Join(errs...))
	}
	return nil
}
