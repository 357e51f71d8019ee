package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/mesafina/mesafina/internal/embeddings"
)

const collectionName = "policies"

// KB is a semantic knowledge base of restaurant policies backed by chromem-go.
// Entries from all restaurants share one collection and are separated by a
// restaurant_id metadata filter at query time.
type KB struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewKB creates a new in-memory knowledge base.
func NewKB(embedder embeddings.Embedder) (*KB, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &KB{
		db:         db,
		collection: col,
		embedFunc:  ef,
	}, nil
}

// Add stores entries in the knowledge base. Entries without an ID get one.
func (k *KB) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		docs[i] = chromem.Document{
			ID:      id,
			Content: e.Content,
			Metadata: map[string]string{
				"restaurant_id": e.RestaurantID,
				"title":         e.Title,
			},
		}
	}

	return k.collection.AddDocuments(ctx, docs, 1)
}

// IngestPolicy splits a markdown policy document into heading-delimited
// sections and stores each as a separate entry. Existing entries for the
// restaurant are replaced.
func (k *KB) IngestPolicy(ctx context.Context, restaurantID, markdown string) (int, error) {
	if err := k.DeleteRestaurant(ctx, restaurantID); err != nil {
		return 0, err
	}

	sections := splitSections(markdown)
	entries := make([]Entry, 0, len(sections))
	for _, s := range sections {
		entries = append(entries, Entry{
			RestaurantID: restaurantID,
			Title:        s.title,
			Content:      s.body,
		})
	}

	if err := k.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("ingesting policy: %w", err)
	}
	return len(entries), nil
}

// Search performs a semantic search scoped to one restaurant.
func (k *KB) Search(ctx context.Context, restaurantID, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem-go requires nResults <= collection size.
	count := k.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	where := map[string]string{"restaurant_id": restaurantID}

	results, err := k.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			Entry: Entry{
				ID:           r.ID,
				RestaurantID: r.Metadata["restaurant_id"],
				Title:        r.Metadata["title"],
				Content:      r.Content,
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

// DeleteRestaurant removes all entries for the given restaurant.
func (k *KB) DeleteRestaurant(ctx context.Context, restaurantID string) error {
	if k.collection.Count() == 0 {
		return nil
	}
	where := map[string]string{"restaurant_id": restaurantID}
	return k.collection.Delete(ctx, where, nil)
}

// Persist saves the knowledge base to the given directory.
func (k *KB) Persist(ctx context.Context, dir string) error {
	return k.db.ExportToFile(dir+"/knowledge.gob.gz", true, "")
}

// Load restores the knowledge base from the given directory.
func (k *KB) Load(ctx context.Context, dir string) error {
	if err := k.db.ImportFromFile(dir+"/knowledge.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := k.db.GetCollection(collectionName, k.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	k.collection = col
	return nil
}

// Count returns the total number of entries across all restaurants.
func (k *KB) Count() int {
	return k.collection.Count()
}

type section struct {
	title string
	body  string
}

// splitSections breaks markdown into sections at ATX headings. Text before
// the first heading becomes a section titled "General".
func splitSections(markdown string) []section {
	var sections []section
	cur := section{title: "General"}

	flush := func() {
		body := strings.TrimSpace(cur.body)
		if body != "" {
			cur.body = body
			sections = append(sections, cur)
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			flush()
			cur = section{title: strings.TrimSpace(strings.TrimLeft(trimmed, "# "))}
			continue
		}
		cur.body += line + "\n"
	}
	flush()

	return sections
}
