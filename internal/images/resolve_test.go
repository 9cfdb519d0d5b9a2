package images

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"backend/internal/models"
)

func TestResolve_UploadsOnlyUnresolvedReferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	up := NewMockUploader(ctrl)
	up.EXPECT().
		Upload(gomock.Any(), "data:image/png;base64,AAAA", "orders").
		Return("https://cdn.example.com/new.png", nil)

	items := []models.OrderItem{
		{Name: "Mug", Image: "https://cdn.example.com/existing.png"},
		{Name: "Poster", Image: ""},
		{Name: "Sticker", Image: "data:image/png;base64,AAAA"},
	}

	Resolve(context.Background(), up, items, "orders", time.Second)

	if items[0].Image != "https://cdn.example.com/existing.png" {
		t.Fatalf("hosted URL must be left alone, got %q", items[0].Image)
	}
	if items[1].Image != "" {
		t.Fatalf("empty reference must stay empty, got %q", items[1].Image)
	}
	if items[2].Image != "https://cdn.example.com/new.png" {
		t.Fatalf("expected hosted URL, got %q", items[2].Image)
	}
}

func TestResolve_KeepsOriginalReferenceOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	up := NewMockUploader(ctrl)
	up.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("provider down"))

	items := []models.OrderItem{{Name: "Mug", Image: "raw-payload"}}

	Resolve(context.Background(), up, items, "orders", time.Second)

	if items[0].Image != "raw-payload" {
		t.Fatalf("failed upload must keep the original reference, got %q", items[0].Image)
	}
}

func TestIsRemoteURL(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"https://cdn.example.com/a.png", true},
		{"http://cdn.example.com/a.png", true},
		{"HTTPS://CDN.EXAMPLE.COM/A.PNG", true},
		{"data:image/png;base64,AAAA", false},
		{"/tmp/upload.png", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsRemoteURL(tc.ref); got != tc.want {
			t.Errorf("IsRemoteURL(%q) = %v, want %v", tc.ref, got, tc.want)
		}
	}
}
