package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestParseProductForm_FieldsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("name", "  Ceramic Mug ")
	_ = writer.WriteField("price", "12.50")
	_ = writer.WriteField("stock", "7")
	_ = writer.WriteField("category", "kitchen")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/products", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	parsed, err := parseProductForm(c, nil, "products", time.Second)
	if err != nil {
		t.Fatalf("parseProductForm returned error: %v", err)
	}
	if !parsed.NameSet || parsed.Name != "Ceramic Mug" {
		t.Fatalf("expected trimmed name, got %+v", parsed)
	}
	if !parsed.PriceSet || parsed.Price != 12.50 {
		t.Fatalf("expected price 12.50, got %+v", parsed)
	}
	if !parsed.StockSet || parsed.Stock != 7 {
		t.Fatalf("expected stock 7, got %+v", parsed)
	}
	if parsed.DescriptionSet {
		t.Fatal("description was not submitted and must not be marked set")
	}
	if parsed.ImagesSet {
		t.Fatal("no files were attached, images must not be marked set")
	}
}

func TestParseProductForm_RejectsNegativePrice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("price", "-1")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/products", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if _, err := parseProductForm(c, nil, "products", time.Second); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestValidateImageFile(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"jpeg ok", "photo.jpg", 1024, false},
		{"uppercase extension ok", "photo.PNG", 1024, false},
		{"webp ok", "photo.webp", 1024, false},
		{"gif rejected", "photo.gif", 1024, true},
		{"no extension rejected", "photo", 1024, true},
		{"oversized rejected", "photo.jpg", 6 << 20, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateImageFile(tc.filename, tc.size)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUploadImage_NoFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	r := gin.New()
	r.POST("/api/upload", UploadImage(unusedUploader{}, "orders", time.Second))
	r.ServeHTTP(w, req)

	if w.Code != 400 {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

// unusedUploader fails the test if any upload is attempted.
type unusedUploader struct{}

func (unusedUploader) Upload(_ context.Context, _ interface{}, _ string) (string, error) {
	panic("upload must not be called")
}
