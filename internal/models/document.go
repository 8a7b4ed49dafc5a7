package models

// Chunk is a contiguous span of a document's text, the unit of embedding and
// retrieval. Chunks are immutable once created.
type Chunk struct {
	Text       string
	Index      int
	DocumentID string
}

// Document describes one uploaded file. The ID is an opaque token generated at
// upload time; the filename is a display label, not a key.
type Document struct {
	ID       string
	Filename string
	Chunks   []Chunk
}

// Hit is one k-NN match returned by the document store, in relevance order.
type Hit struct {
	DocumentID string
	Filename   string
	Text       string
	ChunkIndex int
	Distance   float64
}

// IngestResult reports what a single upload produced. Outcomes has one entry
// per record handed to the store; a record-level failure does not fail the
// whole ingestion.
type IngestResult struct {
	DocumentID string
	IndexName  string
	Records    int
	Outcomes   []WriteOutcome
}

// WriteOutcome is the per-record result of a bulk write.
type WriteOutcome struct {
	Record int
	Err    error
}

// Failed returns the outcomes that carry an error.
func (r *IngestResult) Failed() []WriteOutcome {
	var failed []WriteOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
