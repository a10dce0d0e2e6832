package entity

// Proposal is the structured creative brief the completion model embeds in a
// reply. Approving one is what authorizes image generation.
type Proposal struct {
	ShopName        string   `json:"shopName"`
	CatchCopies     []string `json:"catchCopies"`
	DesignDirection string   `json:"designDirection"`
	Hashtags        []string `json:"hashtags"`
}
