package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"oficio.PDF": "application/pdf",
		"scan.jpeg":  "image/jpeg",
		"scan.png":   "image/png",
		"notes.txt":  "text/plain; charset=utf-8",
		"blob":       "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, contentType(domain.Document{Name: name}), name)
	}
	assert.Equal(t, "image/tiff", contentType(domain.Document{Name: "a.pdf", ContentType: "image/tiff"}))
}

func TestObjectBase(t *testing.T) {
	u, _ := url.Parse("https://minio.local:9000")
	assert.Equal(t, "https://minio.local:9000/documents", objectBase(u, "documents"))
}
