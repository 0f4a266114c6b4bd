package store

// Store is the snapshot view over the three canonical tables. A cycle
// reads its snapshot once at dispatch time; workers never re-read
// canonical state mid-run, and only the aggregator ever appends.
type Store interface {
	Catalog() Catalog
	Successes() Successes
	Outcomes() Outcomes
}

type FileStore struct {
	catalog   Catalog
	successes Successes
	outcomes  Outcomes
}

// NewStore builds a file-backed store over the three table paths.
func NewStore(catalogPath, successPath, outcomePath string) *FileStore {
	return &FileStore{
		catalog:   newCatalog(catalogPath),
		successes: newSuccesses(successPath),
		outcomes:  newOutcomes(outcomePath),
	}
}

func (s *FileStore) Catalog() Catalog { return s.catalog }

func (s *FileStore) Successes() Successes { return s.successes }

func (s *FileStore) Outcomes() Outcomes { return s.outcomes }
