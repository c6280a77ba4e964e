package pages

import (
	"strings"
	"testing"
)

func TestRenderEscapesBody(t *testing.T) {
	got := Render("Title", "<script>alert(1)</script>")
	if !strings.Contains(got, "<h1>Title</h1>") {
		t.Errorf("Render() missing heading: %s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("Render() did not escape body: %s", got)
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		title string
	}{
		{"privacy", PrivacyPolicy(), "Privacy Policy"},
		{"terms", TermsOfService(), "Terms of Service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.page, "<!DOCTYPE html>") {
				t.Errorf("page should start with a doctype")
			}
			if !strings.Contains(tt.page, "<title>"+tt.title+"</title>") {
				t.Errorf("page missing title %q", tt.title)
			}
		})
	}
}
