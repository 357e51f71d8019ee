package knowledge

// Entry is a single policy or FAQ snippet stored in the knowledge base.
type Entry struct {
	ID           string
	RestaurantID string
	Title        string
	Content      string
}

// SearchResult pairs an entry with its semantic similarity to the query.
type SearchResult struct {
	Entry      Entry
	Similarity float32
}
