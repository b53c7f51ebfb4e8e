package gcsuploader

import "testing"

func TestFilenameFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/receipts/abc/img.jpg", "img.jpg"},
		{"gs://bucket/file.png", "file.png"},
		{"gs://bucket", "bucket"},
	}
	for _, tt := range tests {
		if got := FilenameFromURI(tt.uri); got != tt.want {
			t.Errorf("FilenameFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestSplitURI(t *testing.T) {
	bucket, object, err := splitURI("gs://my-bucket/receipts/1/a.jpg")
	if err != nil {
		t.Fatalf("splitURI: %v", err)
	}
	if bucket != "my-bucket" || object != "receipts/1/a.jpg" {
		t.Errorf("splitURI = (%q, %q)", bucket, object)
	}

	for _, bad := range []string{"http://x/y", "gs://bucket-only", ""} {
		if _, _, err := splitURI(bad); err == nil {
			t.Errorf("splitURI(%q) succeeded, want error", bad)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		ct   string
		want string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"application/pdf", ".pdf"},
		{"text/plain", ""},
	}
	for _, tt := range tests {
		if got := extensionFor(tt.ct); got != tt.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tt.ct, got, tt.want)
		}
	}
}
