package gemini

import "testing"

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	if _, err := New(); err == nil {
		t.Error("Expected error without an API key")
	}
}

func TestNewFallsBackToGoogleAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	g, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.apiKey != "test-key" {
		t.Errorf("Expected fallback key, got %q", g.apiKey)
	}
}

func TestDefaultModel(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")
	if got := DefaultModel(); got != "gemini-2.5-flash" {
		t.Errorf("Unexpected default model %q", got)
	}

	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	if got := DefaultModel(); got != "gemini-2.5-pro" {
		t.Errorf("Expected env override, got %q", got)
	}
}
