package domain

import (
	"reflect"
	"testing"
)

func TestExtractCodes(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    []string
	}{
		{name: "empty caption", caption: "", want: nil},
		{name: "no hashtags", caption: "just a plain caption", want: nil},
		{name: "single code", caption: "Big Movie #A12", want: []string{"#A12"}},
		{name: "multiple codes keep order", caption: "#M1 something #A2 else #C3", want: []string{"#M1", "#A2", "#C3"}},
		{name: "maximal token match", caption: "watch #A12x now", want: []string{"#A12x"}},
		{name: "byte-identical duplicates collapse", caption: "#A12 again #A12", want: []string{"#A12"}},
		{name: "case variants both survive", caption: "#A12 and #a12", want: []string{"#A12", "#a12"}},
		{name: "adjacent punctuation excluded", caption: "new: #M001, enjoy!", want: []string{"#M001"}},
		{name: "bare marker ignored", caption: "just # nothing", want: nil},
		{name: "underscore is a word character", caption: "#part_2", want: []string{"#part_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCodes(tt.caption)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractCodes(%q) = %v, want %v", tt.caption, got, tt.want)
			}
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#A12", "A12"},
		{"A12", "A12"},
		{"  #A12  ", "A12"},
		{"#a12", "a12"},
		{"", ""},
		{"#", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsShortNumeric(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"7", true},
		{"12", true},
		{"999", true},
		{"007", false},  // leading zero
		{"0", false},    // leading zero
		{"1001", false}, // too long
		{"A12", false},  // not numeric
		{"", false},
		{"1a", false},
	}

	for _, tt := range tests {
		if got := isShortNumeric(tt.code); got != tt.want {
			t.Errorf("isShortNumeric(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestContentItemHasCode(t *testing.T) {
	item := &ContentItem{Codes: []string{"#A12", "#m1"}}

	if !item.HasCode("#A12") {
		t.Error("expected exact match")
	}
	if !item.HasCode("#a12") {
		t.Error("expected case-insensitive match")
	}
	if !item.HasCode("#M1") {
		t.Error("expected case-insensitive match on stored lowercase")
	}
	if item.HasCode("#A1") {
		t.Error("prefix of a stored code must not match")
	}
}
