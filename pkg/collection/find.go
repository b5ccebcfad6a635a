package collection

import (
	"sort"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/indexing"
)

func validateOptions(opts *domain.FindOptions) error {
	if opts == nil {
		return nil
	}
	return opts.Validate()
}

// materialize turns ids into documents, then sorts and pages them. Without a
// sort field the order of ids is kept.
func (c *Collection) materialize(st *snapshot, ids []string, opts *domain.FindOptions) []domain.Document {
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		rec, ok := st.data[id]
		if !ok {
			c.logger.Debugf("collection '%s': index refers to missing document %s", c.name, id)
			continue
		}
		docs = append(docs, domain.NewDocument(id, rec))
	}

	if opts == nil {
		return docs
	}

	if opts.SortBy != "" {
		sortDocuments(docs, opts.SortBy, opts.Descending)
	}

	start, end := opts.Window(len(docs))
	return docs[start:end]
}

// sortDocuments orders docs by field, breaking ties by id. Documents lacking
// the field sort first.
func sortDocuments(docs []domain.Document, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		cmp := indexing.Compare(docs[i][field], docs[j][field])
		if cmp == 0 {
			return docs[i].ID() < docs[j].ID()
		}
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}
