package utils

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "さくらカフェです",
			want:  "さくらカフェです",
		},
		{
			name:  "br becomes newline",
			input: "一行目<br>二行目",
			want:  "一行目\n二行目",
		},
		{
			name:  "self closing br",
			input: "一行目<br/>二行目",
			want:  "一行目\n二行目",
		},
		{
			name:  "tags stripped",
			input: "<b>看板メニュー</b>は<i>パスタ</i>",
			want:  "看板メニューはパスタ",
		},
		{
			name:  "entities unescaped",
			input: "A &amp; B",
			want:  "A & B",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  text  ",
			want:  "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.input); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
