package category

import "strings"

// Categories select stylistically matching reference assets on the image
// generation side. CategoryOther is the fallback when nothing matches.
const (
	CategoryCafe     = "cafe"
	CategoryJapanese = "japanese"
	CategoryWestern  = "western"
	CategoryChinese  = "chinese"
	CategoryIzakaya  = "izakaya"
	CategoryBar      = "bar"
	CategorySweets   = "sweets"
	CategoryOther    = "other"
)

var categoryKeywords = map[string][]string{
	CategoryCafe:     {"カフェ", "珈琲", "コーヒー", "喫茶", "cafe", "coffee"},
	CategoryJapanese: {"和食", "寿司", "すし", "そば", "蕎麦", "うどん", "天ぷら", "定食", "食堂", "料亭", "割烹"},
	CategoryWestern:  {"イタリアン", "フレンチ", "パスタ", "ピザ", "洋食", "ビストロ", "トラットリア", "グリル"},
	CategoryChinese:  {"中華", "餃子", "ラーメン", "麺", "飯店", "点心"},
	CategoryIzakaya:  {"居酒屋", "酒場", "炉端", "串", "焼鳥", "焼き鳥", "ホルモン"},
	CategoryBar:      {"バー", "bar", "ワイン", "スタンド", "パブ"},
	CategorySweets:   {"スイーツ", "ケーキ", "パティスリー", "甘味", "パン", "ベーカリー", "和菓子", "アイス"},
}

// Inferrer classifies shop name plus design direction into the fixed
// category set. Pure text scoring; the highest keyword-hit count wins.
type Inferrer struct{}

func NewInferrer() *Inferrer {
	return &Inferrer{}
}

func (i *Inferrer) Infer(shopName, designDirection string) string {
	text := strings.ToLower(shopName + " " + designDirection)

	best := CategoryOther
	bestScore := 0
	// Deterministic iteration so ties resolve stably
	for _, cat := range []string{
		CategoryCafe, CategoryJapanese, CategoryWestern, CategoryChinese,
		CategoryIzakaya, CategoryBar, CategorySweets,
	} {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			score += strings.Count(text, strings.ToLower(kw))
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	return best
}
