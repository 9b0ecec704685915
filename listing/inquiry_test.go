package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInquiry_NormalizeDefaultsKind(t *testing.T) {
	in := Inquiry{Name: "  Abebe ", PropertyID: ptr(int64(3))}
	in.Normalize()
	assert.Equal(t, InquiryVisit, in.Kind)
	assert.Equal(t, "Abebe", in.Name)

	in = Inquiry{Name: "Sara"}
	in.Normalize()
	assert.Equal(t, InquiryContact, in.Kind)
}

func TestInquiry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      Inquiry
		wantErr string
	}{
		{"contact by email", Inquiry{Kind: InquiryContact, Name: "Sara", Email: "sara@example.com"}, ""},
		{"visit by phone", Inquiry{Kind: InquiryVisit, Name: "Abebe", Phone: "+251911000000", PropertyID: ptr(int64(1)), PreferredDate: "2024-06-01"}, ""},
		{"visit without property", Inquiry{Kind: InquiryVisit, Name: "Abebe", Phone: "1"}, "property_id"},
		{"no contact details", Inquiry{Kind: InquiryContact, Name: "Sara"}, "email or phone"},
		{"bad email", Inquiry{Kind: InquiryContact, Name: "Sara", Email: "nope"}, "not valid"},
		{"bad date", Inquiry{Kind: InquiryContact, Name: "Sara", Phone: "1", PreferredDate: "01/06/2024"}, "YYYY-MM-DD"},
		{"unknown kind", Inquiry{Kind: "callback", Name: "Sara", Phone: "1"}, "unknown kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInquiry)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestResult_Page(t *testing.T) {
	res := Apply(fixture(), Query{Visible: 2})
	p := res.Page()
	assert.Len(t, p.Items, 2)
	assert.Equal(t, "ETB 8,700,000", p.Items[0].PriceFormatted)
	assert.Equal(t, "ETB 5,266,667", p.AveragePriceFormatted)
	assert.Len(t, SortOptions(), 4)
}
