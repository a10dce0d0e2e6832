package category

import "testing"

func TestInfer(t *testing.T) {
	inf := NewInferrer()

	tests := []struct {
		name      string
		shopName  string
		direction string
		want      string
	}{
		{
			name:     "cafe from shop name",
			shopName: "さくらカフェ",
			want:     CategoryCafe,
		},
		{
			name:     "japanese from sushi",
			shopName: "寿司処 まつ",
			want:     CategoryJapanese,
		},
		{
			name:      "izakaya from direction",
			shopName:  "とり勝",
			direction: "焼鳥と串が映える居酒屋らしい賑やかな雰囲気",
			want:      CategoryIzakaya,
		},
		{
			name:      "western from direction",
			shopName:  "Lucia",
			direction: "イタリアンらしくパスタを主役に",
			want:      CategoryWestern,
		},
		{
			name:     "sweets",
			shopName: "パティスリー ミモザ",
			want:     CategorySweets,
		},
		{
			name:     "fallback to other",
			shopName: "田中商店",
			want:     CategoryOther,
		},
		{
			name:     "latin keywords case insensitive",
			shopName: "MORNING COFFEE STAND",
			want:     CategoryCafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inf.Infer(tt.shopName, tt.direction); got != tt.want {
				t.Errorf("Infer(%q, %q) = %q, want %q", tt.shopName, tt.direction, got, tt.want)
			}
		})
	}
}
