package match

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases_and_trims",
			in:   "  ACME Corporation  ",
			want: "acme corporation",
		},
		{
			name: "strips_punctuation",
			in:   "O'Brien, Jr.",
			want: "obrien jr",
		},
		{
			name: "ampersand_becomes_and",
			in:   "Smith & Sons",
			want: "smith and sons",
		},
		{
			name: "collapses_whitespace",
			in:   "john\t  smith",
			want: "john smith",
		},
		{
			name: "dotted_suffix_collapses",
			in:   "Acme L.L.C.",
			want: "acme llc",
		},
		{
			name: "keeps_digits",
			in:   "Area 51 Ventures",
			want: "area 51 ventures",
		},
		{
			name: "empty_input",
			in:   "",
			want: "",
		},
		{
			name: "punctuation_only",
			in:   "...!!!",
			want: "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecomposePersonName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "last_first",
			in:   "Smith, John",
			want: "John Smith",
		},
		{
			name: "last_first_middle",
			in:   "Smith, John Michael",
			want: "John Michael Smith",
		},
		{
			name: "no_comma_passes_through",
			in:   "John Smith",
			want: "John Smith",
		},
		{
			name: "trailing_comma_passes_through",
			in:   "Smith,",
			want: "Smith,",
		},
		{
			name: "leading_comma_passes_through",
			in:   ", John",
			want: ", John",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := decomposePersonName(tc.in)
			if got != tc.want {
				t.Fatalf("decomposePersonName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripOrgSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips_llc",
			in:   "acme llc",
			want: "acme",
		},
		{
			name: "strips_only_one_suffix",
			in:   "acme holdings co ltd",
			want: "acme holdings co",
		},
		{
			name: "keeps_single_token",
			in:   "llc",
			want: "llc",
		},
		{
			name: "no_suffix_untouched",
			in:   "acme holdings",
			want: "acme holdings",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := stripOrgSuffix(tc.in)
			if got != tc.want {
				t.Fatalf("stripOrgSuffix(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
