package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "hebrew characters",
			input: " חופשה   שנתית ",
			want:  "חופשה שנתית",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "reason with extra spaces", input: "  Annual   leave ", want: "Annual leave"},
		{name: "control characters dropped", input: "Room\x00 maintenance\x07", want: "Room maintenance"},
		{name: "newlines collapsed", input: "Dr. out\nuntil noon", want: "Dr. out until noon"},
		{name: "idempotent", input: "Annual leave", want: "Annual leave"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeText(got); again != got {
				t.Errorf("SanitizeText is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeID(t *testing.T) {
	if got := SanitizeID("  65f1c0ffee  "); got != "65f1c0ffee" {
		t.Errorf("SanitizeID = %q", got)
	}
	if got := SanitizeID("Tenant-A"); got != "Tenant-A" {
		t.Errorf("SanitizeID must preserve case, got %q", got)
	}
}
