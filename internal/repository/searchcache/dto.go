package searchcache

import (
	"encoding/json"

	"github.com/pai-oys/orda-service/internal/domain/search/result"
)

// cachedItem is the stored form of one result item.
type cachedItem struct {
	ID       string            `json:"id,omitempty"`
	Title    string            `json:"title"`
	Score    float64           `json:"score"`
	Address  string            `json:"address,omitempty"`
	Label    string            `json:"label,omitempty"`
	Content  string            `json:"content,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func encodeItems(items []result.Item) ([]byte, error) {
	out := make([]cachedItem, len(items))
	for i := range items {
		it := &items[i]
		out[i] = cachedItem{
			ID:       it.ID(),
			Title:    it.Title(),
			Score:    it.Score(),
			Address:  it.Address(),
			Label:    it.Label(),
			Content:  it.Content(),
			Metadata: it.Metadata(),
		}
	}
	return json.Marshal(out)
}

func decodeItems(data []byte) ([]result.Item, error) {
	var raw []cachedItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	items := make([]result.Item, len(raw))
	for i, r := range raw {
		items[i] = result.NewItem(r.ID, r.Title, r.Score, r.Address, r.Label, r.Content, r.Metadata)
	}
	return items, nil
}
