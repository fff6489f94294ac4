package models

// InvoiceBreakdown is the tuition computation for one stay. All amounts are in
// the program currency; Tax and Total are rounded to cents.
type InvoiceBreakdown struct {
	Weeks                    int     `json:"weeks"`
	TuitionPerWeek           float64 `json:"tuitionPerWeek"`
	TuitionBeforeScholarship float64 `json:"tuitionBeforeScholarship"`
	ScholarshipDiscount      float64 `json:"scholarshipDiscount"`
	Subtotal                 float64 `json:"subtotal"`
	Tax                      float64 `json:"tax"`
	Total                    float64 `json:"total"`
}

// Computable is false for an empty or inverted date range.
func (b InvoiceBreakdown) Computable() bool {
	return b.Weeks > 0
}
