package utils

import (
	"testing"
	"unicode/utf8"
)

func TestHTTPHelper_IsValidURL(t *testing.T) {
	h := NewHTTPHelper()

	tests := []struct {
		in   string
		want bool
	}{
		{"https://rptsvr1.tea.texas.gov/perfreport/tapr/2019/xplore/cstud.html", true},
		{"  http://example.com  ", true},
		{"", false},
		{"example.com/keys.html", false},
		{"ftp://example.com/keys.html", false},
		{"http://", false},
	}

	for _, tt := range tests {
		if got := h.IsValidURL(tt.in); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHTTPHelper_BuildHeaders(t *testing.T) {
	h := NewHTTPHelper()

	headers := h.BuildHeaders("", map[string]string{"Accept-Language": "en"})
	if headers.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", headers.Get("User-Agent"), DefaultUserAgent)
	}

	if headers.Get("Accept-Language") != "en" {
		t.Errorf("custom header missing: %v", headers)
	}

	custom := h.BuildHeaders("bot/2", nil)
	if custom.Get("User-Agent") != "bot/2" {
		t.Errorf("User-Agent = %q, want bot/2", custom.Get("User-Agent"))
	}
}

func TestStringHelper_SanitizeFilename(t *testing.T) {
	s := NewStringHelper()

	tests := []struct {
		in   string
		want string
	}{
		{"Campus Student Information", "Campus Student Information"},
		{"Grades 3/4: Reading?", "Grades 3_4_ Reading_"},
		{"  ..hidden.  ", "hidden"},
		{"tab\there", "tabhere"},
		{"", "untitled"},
	}

	for _, tt := range tests {
		if got := s.SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStringHelper_TruncateString(t *testing.T) {
	s := NewStringHelper()

	if got := s.TruncateString("Economically Disadvantaged", 10); got != "Economical..." {
		t.Errorf("TruncateString = %q", got)
	}

	if got := s.TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString = %q", got)
	}

	got := s.TruncateString("Élève: résultat", 3)
	if got != "Élè..." || !utf8.ValidString(got) {
		t.Errorf("TruncateString = %q", got)
	}
}
