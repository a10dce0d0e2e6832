package prompt

import (
	"fmt"
	"strings"

	"ai-menustudio-be/internal/entity"
)

// BuildImagePrompt renders the fixed generation template for an approved
// proposal. The negative instruction is load-bearing: without it the model
// tends to hallucinate captions and watermarks onto the artwork.
func BuildImagePrompt(p *entity.Proposal, aspectRatio string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A professional social-media menu image for the restaurant %q.\n", p.ShopName)
	fmt.Fprintf(&b, "Design direction: %s.\n", p.DesignDirection)
	if len(p.CatchCopies) > 0 {
		fmt.Fprintf(&b, "The mood should evoke: %s.\n", strings.Join(p.CatchCopies, " / "))
	}
	fmt.Fprintf(&b, "Aspect ratio %s, appetizing food photography, soft natural lighting, shallow depth of field.\n", aspectRatio)
	b.WriteString("Do NOT render any text, letters, captions, logos or watermarks in the image.")

	return b.String()
}
