package ontology

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// maxDepth bounds ancestor loading so that corrupt parent links in a store
// cannot loop forever.
const maxDepth = 64

var (
	ErrTooDeep  = errors.New("ancestor chain exceeds maximum depth")
	ErrReadOnly = errors.New("ontology store is read-only")
)

// Service resolves stored concepts into in-memory trees.
type Service struct {
	repo Repository
}

// NewService creates a new ontology service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve loads the concept identified by key, and every ancestor not yet
// present, into tree. It returns the id of the concept.
func (s *Service) Resolve(ctx context.Context, tree *Tree, key string) (NodeID, error) {
	if key == "" {
		return NoParent, fmt.Errorf("concept key is required")
	}
	if n, ok := tree.Lookup(key); ok {
		return n.ID, nil
	}

	// Walk up until a root or an already loaded ancestor, then attach the
	// chain top-down.
	var chain []*Record
	attachTo := NoParent
	seen := make(map[string]bool)
	for next := key; next != ""; {
		if len(chain) >= maxDepth || seen[next] {
			return NoParent, fmt.Errorf("%w: %s", ErrTooDeep, key)
		}
		seen[next] = true
		rec, err := s.repo.GetByKey(ctx, next)
		if err != nil {
			return NoParent, err
		}
		chain = append(chain, rec)
		if rec.ParentKey == "" {
			break
		}
		if p, ok := tree.Lookup(rec.ParentKey); ok {
			attachTo = p.ID
			break
		}
		next = rec.ParentKey
	}

	id := attachTo
	for i := len(chain) - 1; i >= 0; i-- {
		var err error
		id, err = tree.Add(chain[i].Node, id)
		if err != nil {
			return NoParent, err
		}
	}
	return id, nil
}

// IsDemographic reports whether a concept is stored in the patient
// dimension, and therefore cannot be constrained to an encounter. When the
// node carries no table name it is looked up by key.
func (s *Service) IsDemographic(ctx context.Context, n *Node) (bool, error) {
	if n.TableName != nil {
		return strings.EqualFold(*n.TableName, DemographicTable), nil
	}
	rec, err := s.repo.GetByKey(ctx, n.Key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if rec.TableName == nil {
		return false, nil
	}
	return strings.EqualFold(*rec.TableName, DemographicTable), nil
}

// Validate checks the fields every stored concept needs.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("concept key is required")
	}
	if r.Name == "" {
		return fmt.Errorf("concept %s: name is required", r.Key)
	}
	if len(r.Kind) < 2 {
		return fmt.Errorf("concept %s: visual attributes %q too short", r.Key, r.Kind)
	}
	if r.ParentKey == r.Key {
		return fmt.Errorf("concept %s: cannot be its own parent", r.Key)
	}
	return nil
}

// Import validates and stores recs. Nothing is written unless every record
// is valid. It returns the number of records stored.
func (s *Service) Import(ctx context.Context, recs []Record) (int, error) {
	w, ok := s.repo.(Writer)
	if !ok {
		return 0, ErrReadOnly
	}
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return 0, err
		}
	}
	for i := range recs {
		if err := w.Upsert(ctx, &recs[i]); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}
