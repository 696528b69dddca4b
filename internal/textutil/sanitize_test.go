package textutil

import "testing"

func TestSlug(t *testing.T) {
	cases := map[string]string{
		":0.0":                   "0-0",
		"Über Café":              "uber-cafe",
		"  Python Basics Quiz! ": "python-basics-quiz",
		"***":                    "display",
	}
	for input, want := range cases {
		if got := Slug(input, "display"); got != want {
			t.Fatalf("Slug(%q) = %q want %q", input, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(` a/b:c*d?"e" `); got != "a-b-c-de" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title("mark resource completed"); got != "Mark Resource Completed" {
		t.Fatalf("unexpected title %q", got)
	}
}
