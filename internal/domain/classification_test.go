package domain

import "testing"

func TestCategory_IsValid(t *testing.T) {
	tests := []struct {
		category Category
		want     bool
	}{
		{CategoryOTPVerify, true},
		{CategoryNewsletter, true},
		{CategoryMarketplace, true},
		{CategoryPriority, true},
		{CategoryGeneral, true},
		{Category("SPAM"), false},
		{Category(""), false},
	}
	for _, tt := range tests {
		if got := tt.category.IsValid(); got != tt.want {
			t.Errorf("Category(%q).IsValid() = %v, want %v", tt.category, got, tt.want)
		}
	}
}
