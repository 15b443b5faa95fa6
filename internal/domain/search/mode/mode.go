package mode

// Mode is the search strategy requested from the vector backend.
type Mode string

// Search mode constants.
const (
	// Similarity is plain nearest-neighbour search. Sub-queries always use it.
	Similarity Mode = "similarity"
	// Diversity is the backend's MMR reranking mode. Noticeably slower;
	// kept for callers that opt into it explicitly.
	Diversity Mode = "mmr"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Similarity || m == Diversity
}
