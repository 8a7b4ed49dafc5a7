package models

// Column names of the shared free-text index. Every uploaded free-text
// document writes its chunks here, tagged with its document identifier.
const (
	FieldDocumentID = "document_id"
	FieldFilename   = "filename"
	FieldContent    = "content"
	FieldChunkIndex = "chunk_index"
	FieldEmbedding  = "embedding"
)

// TextIndexSchema declares the shared free-text index with the given vector
// dimensionality.
func TextIndexSchema(dim int) IndexSchema {
	return IndexSchema{
		Fields: []Field{
			{Name: FieldDocumentID, Kind: KindText},
			{Name: FieldFilename, Kind: KindText},
			{Name: FieldChunkIndex, Kind: KindInteger},
			{Name: FieldContent, Kind: KindText},
			{Name: FieldEmbedding, Kind: KindVector, Dim: dim},
		},
	}
}
