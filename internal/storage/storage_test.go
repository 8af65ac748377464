package storage

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"report.pdf", "files/id-1/report.pdf"},
		{"../../etc/passwd", "files/id-1/passwd"},
		{`C:\Users\me\photo.jpg`, "files/id-1/photo.jpg"},
		{"", "files/id-1/file"},
		{"..", "files/id-1/file"},
	}
	for _, tt := range tests {
		if got := ObjectKey("id-1", tt.name); got != tt.want {
			t.Errorf("ObjectKey(%q) = %q, ожидался %q", tt.name, got, tt.want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	if got := ContentDisposition("a.txt", true); got != "attachment; filename=a.txt" {
		t.Errorf("attachment = %q", got)
	}
	if got := ContentDisposition("my file.txt", false); got != `inline; filename="my file.txt"` {
		t.Errorf("inline = %q", got)
	}
	got := ContentDisposition("отчёт.pdf", true)
	if !strings.HasPrefix(got, "attachment; filename*=utf-8''") {
		t.Errorf("не-ASCII имя = %q, ожидалось RFC 2231", got)
	}
}
