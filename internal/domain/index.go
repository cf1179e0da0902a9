package domain

// IndexArticle is one entry of the article index used for related-content
// ranking. Tagline is a short one-sentence description for the card.
type IndexArticle struct {
	Title     string
	URL       string
	Tagline   string
	ImageURL  string
	TopicTags []string
}
