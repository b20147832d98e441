package models

import "testing"

func TestYearValue(t *testing.T) {
	var r BibRecord
	if _, ok := r.YearValue(); ok {
		t.Error("nil year should report absent")
	}
	y := 1905
	r.Year = &y
	if got, ok := r.YearValue(); !ok || got != 1905 {
		t.Errorf("YearValue() = %d, %v; want 1905, true", got, ok)
	}
}

func TestNormalizedRecordIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rec  NormalizedRecord
		want bool
	}{
		{"zero value", NormalizedRecord{}, true},
		{"title only", NormalizedRecord{Title: "on denoting"}, false},
		{"surname only", NormalizedRecord{Surnames: []string{"russell"}}, false},
		{"year only", NormalizedRecord{Year: 1905, HasYear: true}, false},
		{"journal only", NormalizedRecord{Journal: "mind"}, false},
		{"doi only", NormalizedRecord{DOI: "10.1093/mind/xiv.4.479"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
