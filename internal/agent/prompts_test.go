package agent

import (
	"strings"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"damage.png", true},
		{"photo.JPG", true},
		{"rear.jpeg", true},
		{"anim.gif", true},
		{"uploads/claim-7/side.PNG", true},
		{"claim_form.pdf", false},
		{"notes.txt", false},
		{"archive.png.zip", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestImageInstruction(t *testing.T) {
	got := ImageInstruction("uploads/damage.png")

	for _, want := range []string{
		"analyzeImage",
		"getClaimById",
		"createClaim",
		"sendNotification",
		"uploads/damage.png",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("image instruction missing %q", want)
		}
	}
}

func TestDocumentInstruction(t *testing.T) {
	got := DocumentInstruction("claim_form.pdf", "2026-03-01")

	for _, want := range []string{
		"getClaimById",
		"createClaim",
		"sendNotification",
		"claim_form.pdf",
		"2026-03-01",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("document instruction missing %q", want)
		}
	}
	if strings.Contains(got, "analyzeImage") {
		t.Error("document instruction should not route to image analysis")
	}
}
