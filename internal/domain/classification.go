package domain

// Category is the top-level classification outcome that determines the
// mutation policy for a thread. Values outside the known set are routed to
// the GENERAL policy by the dispatcher.
type Category string

const (
	CategoryOTPVerify   Category = "OTP_VERIFY"
	CategoryNewsletter  Category = "NEWSLETTER"
	CategoryMarketplace Category = "MARKETPLACE"
	CategoryPriority    Category = "PRIORITY"
	CategoryGeneral     Category = "GENERAL"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryOTPVerify, CategoryNewsletter, CategoryMarketplace, CategoryPriority, CategoryGeneral:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Classification is the result of one classifier call for one thread.
// Confidence is advisory only; no dispatch branch consults it.
type Classification struct {
	Category    Category
	Subcategory string // empty when the classifier returned none
	Confidence  float64
	Reason      string
}
