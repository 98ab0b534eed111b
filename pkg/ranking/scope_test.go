package ranking

import (
	"errors"
	"slices"
	"testing"
)

func TestSuffixForRegion(t *testing.T) {
	tests := []struct {
		region  string
		want    string
		wantErr bool
	}{
		{"", ", España", false},
		{"   ", ", España", false},
		{"Aragón", ", Aragón, España", false},
		{"murcia", ", Murcia, España", false},
		{" Castilla y León ", ", Castilla y León, España", false},
		{"Atlantis", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			got, err := SuffixForRegion(tt.region)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SuffixForRegion(%q) error = %v, wantErr %v", tt.region, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("error = %v, want ErrInvalidQuery", err)
			}
			if got != tt.want {
				t.Errorf("SuffixForRegion(%q) = %q, want %q", tt.region, got, tt.want)
			}
		})
	}
}

func TestCleanNames(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"trims and drops blanks", []string{" Lorca ", "", "  ", "Cieza"}, []string{"Lorca", "Cieza"}},
		{"keeps duplicates", []string{"Lorca", "Lorca"}, []string{"Lorca", "Lorca"}},
		{"all blank", []string{"", " "}, []string{}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNames(tt.lines); !slices.Equal(got, tt.want) {
				t.Errorf("CleanNames(%q) = %q, want %q", tt.lines, got, tt.want)
			}
		})
	}
}
