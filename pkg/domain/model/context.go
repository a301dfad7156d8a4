package model

// ContextWindow is the bounded, ranked input set assembled for one chat
// turn. Bounds are by item count: up to 3 long-term summaries, up to 8
// recent turns, up to 3 retrieved documents. Each source is independently
// optional; an unavailable source is flagged so the prompt can carry an
// explicit marker instead of silently dropping the grounding.
type ContextWindow struct {
	UserMessage string

	Metrics  *KPISnapshot
	LongTerm []*MemoryRecord
	Turns    []ConversationTurn
	Matches  []*DocumentMatch

	MetricsUnavailable   bool
	RetrievalUnavailable bool
	MemoryUnavailable    bool
}

// Citations derives one citation per retrieved document from its top
// scored chunk.
func (w *ContextWindow) Citations() []Citation {
	citations := make([]Citation, 0, len(w.Matches))
	for _, match := range w.Matches {
		if top := match.TopChunk(); top != nil {
			citations = append(citations, Citation{
				DocumentID: match.DocumentID,
				ChunkIndex: top.ChunkIndex,
			})
		}
	}
	return citations
}
