package credential

import (
	"encoding/base64"
	"testing"
)

func TestExtractEncoded(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"Holberton School", "", false},
		{"Basic", "", false},
		{"Basic1234", "", false},
		{"basic SG9sYmVydG9u", "", false},
		{"Bearer SG9sYmVydG9u", "", false},
		{"Basic SG9sYmVydG9u", "SG9sYmVydG9u", true},
		{"Basic SG9sYmVydG9uIFNjaG9vbA==", "SG9sYmVydG9uIFNjaG9vbA==", true},
		{"Basic ", "", true},
	}

	for _, tc := range cases {
		got, ok := ExtractEncoded(tc.header)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ExtractEncoded(%q) = (%q, %v), want (%q, %v)", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		encoded string
		want    string
		ok      bool
	}{
		{"", "", true},
		{"Holberton School", "", false},
		{"SG9sYmVydG9u", "Holberton", true},
		{"SG9sYmVydG9uIFNjaG9vbA==", "Holberton School", true},
		{"!!!not-base64!!!", "", false},
	}

	for _, tc := range cases {
		got, ok := Decode(tc.encoded)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Decode(%q) = (%q, %v), want (%q, %v)", tc.encoded, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})
	if _, ok := Decode(encoded); ok {
		t.Fatal("expected invalid UTF-8 payload to be rejected")
	}
}

// Decode(ExtractEncoded("Basic " + base64(s))) == s for every valid UTF-8 s,
// the empty string included.
func TestDecodeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		":",
		"bob@gmail.com:toto1234",
		"a:b:c",
		"héllo:wörld",
		"pass with spaces:and\ttabs",
		"\x00\x01binary-but-valid-utf8",
		"日本語:パスワード",
	}

	for _, s := range cases {
		header := "Basic " + base64.StdEncoding.EncodeToString([]byte(s))
		encoded, ok := ExtractEncoded(header)
		if !ok {
			t.Fatalf("ExtractEncoded(%q) unexpectedly failed", header)
		}
		decoded, ok := Decode(encoded)
		if !ok || decoded != s {
			t.Fatalf("round trip of %q = (%q, %v), want (%q, true)", s, decoded, ok, s)
		}
	}
}

func TestSplitCredentials(t *testing.T) {
	cases := []struct {
		decoded string
		email   string
		pwd     string
		ok      bool
	}{
		{"", "", "", false},
		{"Holberton School", "", "", false},
		{"Holberton:School", "Holberton", "School", true},
		{"bob@gmail.com:toto1234", "bob@gmail.com", "toto1234", true},
		{"a:b:c", "a", "b:c", true},
		{":password-only", "", "password-only", true},
	}

	for _, tc := range cases {
		email, pwd, ok := SplitCredentials(tc.decoded)
		if ok != tc.ok || email != tc.email || pwd != tc.pwd {
			t.Fatalf("SplitCredentials(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.decoded, email, pwd, ok, tc.email, tc.pwd, tc.ok)
		}
	}
}
