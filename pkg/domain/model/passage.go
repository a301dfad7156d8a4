package model

// PassageChunk is one scored chunk of a retrieved document
type PassageChunk struct {
	ChunkIndex int
	Content    string
	Score      float64
}

// DocumentMatch groups the chunks retrieved from a single document,
// ranked by aggregate relevance. Matches are ephemeral: produced per
// query and consumed once when the context window is assembled.
type DocumentMatch struct {
	DocumentID string
	Chunks     []PassageChunk
}

// TopChunk returns the highest scored chunk, used for citations
func (d *DocumentMatch) TopChunk() *PassageChunk {
	if len(d.Chunks) == 0 {
		return nil
	}
	top := &d.Chunks[0]
	for i := 1; i < len(d.Chunks); i++ {
		if d.Chunks[i].Score > top.Score {
			top = &d.Chunks[i]
		}
	}
	return top
}
