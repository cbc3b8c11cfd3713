package ontology

import "context"

// Repository provides access to stored ontology concepts.
type Repository interface {
	GetByKey(ctx context.Context, key string) (*Record, error)
}

// Writer is implemented by stores that can be populated locally.
type Writer interface {
	Upsert(ctx context.Context, rec *Record) error
}

// Store is a Repository that can also be written to.
type Store interface {
	Repository
	Writer
}
