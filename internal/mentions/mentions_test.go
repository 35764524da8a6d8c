package mentions

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		allowed []string
		want    []string
	}{
		{
			name:    "case folded and deduplicated",
			text:    "@Codex hello @unknown @codex",
			allowed: []string{"codex", "research"},
			want:    []string{"codex"},
		},
		{
			name:    "multiple known mentions keep first-appearance order",
			text:    "ping @research then @codex then @research again",
			allowed: []string{"codex", "research"},
			want:    []string{"research", "codex"},
		},
		{
			name:    "hyphen and underscore ids",
			text:    "cc @ops-night_shift",
			allowed: []string{"ops-night_shift"},
			want:    []string{"ops-night_shift"},
		},
		{
			name:    "no mentions",
			text:    "nothing to see here",
			allowed: []string{"codex"},
			want:    nil,
		},
		{
			name:    "bare at sign ignored",
			text:    "email me @ the office @codex",
			allowed: []string{"codex"},
			want:    []string{"codex"},
		},
		{
			name:    "unknown only",
			text:    "@ghost @phantom",
			allowed: []string{"codex"},
			want:    nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.text, tc.allowed)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Extract(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
