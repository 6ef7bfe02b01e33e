package graphstore

// BatchConfig controls how many rows accompany a single UNWIND statement.
// §4.3 fixes the default at 500 rows and requires it stay tunable; per-label
// overrides exist because Chunk and Symbol rows carry much heavier payload
// (content, signatures) than a GitCommit or Library row, so one global
// number would either under-batch the light labels or risk the store's
// parameter-count ceiling on the heavy ones.
type BatchConfig struct {
	Default int

	GitCommitBatchSize           int
	FileBatchSize                int
	DirectoryBatchSize           int
	DocumentBatchSize            int
	ChunkBatchSize               int
	SymbolBatchSize              int
	LibraryBatchSize             int
	RequirementBatchSize         int
	SprintBatchSize              int
	DerivationWatermarkBatchSize int

	EdgeBatchSize int
}

// DefaultBatchConfig matches the 500-row default from §4.3; edges batch
// larger since they carry fewer properties per row, and Chunk batches
// smaller since chunk content dominates parameter payload size.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Default:                      500,
		GitCommitBatchSize:           500,
		FileBatchSize:                500,
		DirectoryBatchSize:           500,
		DocumentBatchSize:            500,
		ChunkBatchSize:               200,
		SymbolBatchSize:              500,
		LibraryBatchSize:             500,
		RequirementBatchSize:         500,
		SprintBatchSize:              500,
		DerivationWatermarkBatchSize: 500,
		EdgeBatchSize:                2000,
	}
}

// SizeForLabel returns the configured batch size for a node label, falling
// back to Default for anything not explicitly tuned.
func (bc BatchConfig) SizeForLabel(label string) int {
	switch label {
	case "GitCommit":
		return bc.GitCommitBatchSize
	case "File":
		return bc.FileBatchSize
	case "Directory":
		return bc.DirectoryBatchSize
	case "Document":
		return bc.DocumentBatchSize
	case "Chunk":
		return bc.ChunkBatchSize
	case "Symbol":
		return bc.SymbolBatchSize
	case "Library":
		return bc.LibraryBatchSize
	case "Requirement":
		return bc.RequirementBatchSize
	case "Sprint":
		return bc.SprintBatchSize
	case "DerivationWatermark":
		return bc.DerivationWatermarkBatchSize
	default:
		if bc.Default > 0 {
			return bc.Default
		}
		return 500
	}
}
