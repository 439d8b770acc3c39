// AngelaMos | 2026
// dto.go

package emoji

type EmojiRequest struct {
	Emoji string `json:"emoji" validate:"required,max=64"`
}

type InterpretResponse struct {
	Interpretation string `json:"interpretation"`
}

type ExplainResponse struct {
	Explanation string `json:"explanation"`
}
