package constant

import "time"

const (
	ChatMessageRoleUser = "user"
	ChatMessageRoleAI   = "ai"

	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"

	// Advisory conversation progress. Never used as a gate.
	FlowStepShopName       = 1
	FlowStepStyleCollected = 2
	FlowStepMenuCollected  = 3
	FlowStepProposalReady  = 4
	FlowStepImageGenerated = 5

	// Operation kinds for the rate limiter key (user, kind).
	RateLimitKindChat     = "chat"
	RateLimitKindGenerate = "generate"

	// Fallback wait when a 429 response carries no Retry-After header.
	DefaultRetryAfter = 60 * time.Second

	// Upstream cap: at most this many user reference images ride along with
	// one generation request.
	MaxReferenceImages = 3

	StudioSystemPromptV1 = `あなたは飲食店のSNS販促を手伝うデザインアシスタント「メニュースタジオ」です。
店主と会話しながら、メニュー画像の制作に必要な情報を集めてください。

進め方:
1. まず店名を聞く
2. 次にデザインの方向性(雰囲気・スタイル)を聞く
3. 看板メニューと価格を聞く
4. 集まった情報から「提案」を作る

提案を出すときは、必ず次の形式のJSONコードブロックを返答に含めてください。

` + "```json" + `
{"type":"proposal","shopName":"...","catchCopies":["...","..."],"designDirection":"...","hashtags":["#...","#..."]}
` + "```" + `

JSONブロックの前後には短い説明文をつけて構いません。
提案を出す前に「これから提案します」とだけ述べて止まらないでください。`

	// Sent automatically when the model narrates a proposal instead of
	// emitting the JSON block.
	ProposalFollowUpPrompt = `はい、提案内容を先ほどの形式のJSONコードブロックで提示してください。`

	// Shown when stripping the proposal block leaves no displayable text.
	ProposalReadyAck = `ご提案をまとめました。内容をご確認ください!`

	ImageGeneratedMessage = `画像が完成しました!ダウンロードしてSNSに投稿できます。`
)

// Quick replies attached when the conversation advances to the style step.
var StyleQuickReplies = []string{
	"ポップで明るい",
	"シックで高級感",
	"ナチュラル・手書き風",
	"おまかせで",
}

// Keyword sets for the advisory step heuristics. Language-specific by
// nature; kept as data so the classifier can be swapped out.
var (
	StyleKeywords = []string{
		"デザイン", "雰囲気", "スタイル", "テイスト", "方向性", "イメージ",
	}
	MenuKeywords = []string{
		"メニュー", "看板", "価格", "値段", "料金", "おすすめの商品",
	}

	// A proposal-preview is detected when a reply contains one keyword from
	// each group: it announced a structure AND asked the user to wait.
	ProposalAnnounceKeywords = []string{
		"提案", "構成", "まとめ", "以下の内容",
	}
	ProposalStallKeywords = []string{
		"作成します", "お作りします", "少々お待ち", "お待ちください", "これから",
	}
)

// User-facing failure copy, one entry per failure class.
const (
	ErrMsgOffline        = `ネットワークに接続されていません。接続を確認してからもう一度お試しください。`
	ErrMsgRateLimited    = `アクセスが集中しています。%d秒ほど待ってから再試行してください。`
	ErrMsgSessionExpired = `セッションの有効期限が切れました。もう一度ログインしてください。`
	ErrMsgUnavailable    = `画像生成サービスが混み合っています。しばらくしてから再試行してください。`
	ErrMsgGeneric        = `エラーが発生しました。もう一度お試しください。`
	ErrMsgGenerateBusy   = `前の画像を生成中です。完了してからもう一度お試しください。`
)
