package store

import (
	"strings"

	"github.com/genomehub/busco-tracker/internal/store/model"
)

// Catalog is the read-only view over the annotation catalog. The catalog
// is produced by an external loading process; this side never writes it.
type Catalog interface {
	// Load returns every catalog entry keyed by annotation id.
	// ErrCatalogNotFound is returned when the file does not exist.
	Load() (map[string]model.WorkItem, error)
	IDs() (map[string]struct{}, error)
	Path() string
}

type catalogTable struct {
	*table
}

func newCatalog(path string) Catalog {
	return &catalogTable{table: newTable(path, model.CatalogHeader)}
}

func (c *catalogTable) Load() (map[string]model.WorkItem, error) {
	if !c.Exists() {
		return nil, ErrCatalogNotFound
	}
	recs, err := c.records()
	if err != nil {
		return nil, err
	}
	items := make(map[string]model.WorkItem)
	for _, rec := range recs {
		if len(rec) < 3 {
			continue
		}
		id := strings.TrimSpace(rec[0])
		if id == "" || id == model.CatalogHeader[0] {
			continue
		}
		items[id] = model.WorkItem{
			ID:            id,
			AnnotationURL: strings.TrimSpace(rec[1]),
			AssemblyURL:   strings.TrimSpace(rec[2]),
		}
	}
	return items, nil
}

func (c *catalogTable) IDs() (map[string]struct{}, error) {
	if !c.Exists() {
		return nil, ErrCatalogNotFound
	}
	return c.table.IDs()
}
