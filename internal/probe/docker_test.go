package probe

import "testing"

func TestImageTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		image string
		want  string
	}{
		{"n8nio/n8n:1.64.0", "1.64.0"},
		{"n8nio/n8n:latest", "latest"},
		{"n8nio/n8n", ""},
		{"registry.local:5000/n8nio/n8n", ""},
		{"registry.local:5000/n8nio/n8n:1.64.0", "1.64.0"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := imageTag(tt.image); got != tt.want {
			t.Errorf("imageTag(%q) = %q, want %q", tt.image, got, tt.want)
		}
	}
}
