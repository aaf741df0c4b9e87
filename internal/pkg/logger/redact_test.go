package logger

import "testing"

func TestRedactPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"brazilian mobile", "+5511987654321", "+55*********21"},
		{"whatsapp prefix digits kept", "+5598984865648", "+55*********48"},
		{"short number fully masked", "12345", "***"},
		{"empty", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactPhone(tt.input); got != tt.want {
				t.Errorf("RedactPhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
