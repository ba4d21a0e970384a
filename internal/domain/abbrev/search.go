package abbrev

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchDocument is the indexed shape of one abbreviation entry.
type SearchDocument struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// DescriptionIndex offers full-text search over pay-code descriptions, for
// interactive lookup of codes by what they mean ("provident fund" → DSOP).
// The index is in-memory and built once from the registry.
type DescriptionIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewDescriptionIndex builds an in-memory index over the registry's entries.
func NewDescriptionIndex(r *Registry) (*DescriptionIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for _, e := range r.Entries() {
		doc := SearchDocument{
			Code:        e.Code,
			Description: e.Description,
			Category:    string(e.Category),
		}
		if err := batch.Index(doc.Code, doc); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", doc.Code, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to execute batch index: %w", err)
	}

	return &DescriptionIndex{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("code", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Search returns the codes whose descriptions best match the query,
// typo-tolerant by one edit.
func (si *DescriptionIndex) Search(query string, limit int) ([]SearchDocument, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	docs := make([]SearchDocument, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		doc := SearchDocument{Code: hit.ID}
		if description, ok := hit.Fields["description"].(string); ok {
			doc.Description = description
		}
		if category, ok := hit.Fields["category"].(string); ok {
			doc.Category = category
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close releases the index.
func (si *DescriptionIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()
	if si.index != nil {
		return si.index.Close()
	}
	return nil
}
