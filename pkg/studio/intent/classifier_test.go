package intent

import "testing"

func TestStyleSignal(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "asks about design direction",
			text: "素敵な店名ですね!どんなデザインの雰囲気がお好みですか?",
			want: true,
		},
		{
			name: "asks about style via markup",
			text: "次に<b>スタイル</b>を教えてください",
			want: true,
		},
		{
			name: "asks for shop name",
			text: "まずは店名を教えてください。",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.StyleSignal(tt.text); got != tt.want {
				t.Errorf("StyleSignal(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMenuSignal(t *testing.T) {
	c := NewKeywordClassifier()

	if !c.MenuSignal("ありがとうございます。看板メニューと価格を教えてください。") {
		t.Error("menu/price question should match")
	}
	if c.MenuSignal("どんな雰囲気がお好みですか?") {
		t.Error("style question should not match")
	}
}

func TestProposalPreview(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "announce plus stall",
			text: "以下の内容で提案をお作りします。少々お待ちください。",
			want: true,
		},
		{
			name: "announce without stall",
			text: "こちらがご提案です。",
			want: false,
		},
		{
			name: "stall without announce",
			text: "少々お待ちください。",
			want: false,
		},
		{
			name: "markup stripped before matching",
			text: "提案の構成を<br>これから作成します",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ProposalPreview(tt.text); got != tt.want {
				t.Errorf("ProposalPreview(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
