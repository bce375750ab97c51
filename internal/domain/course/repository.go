package course

import "context"

// Repository defines the persistence contract for the course catalog.
type Repository interface {
	// GetByCode returns a catalog entry, or shared.ErrCourseNotFound.
	GetByCode(ctx context.Context, code string) (*Entry, error)

	// GetOrCreate returns the entry for a code, creating a minimal
	// placeholder (name = code) when the catalog does not know it yet.
	GetOrCreate(ctx context.Context, code string) (*Entry, error)

	// List returns the whole catalog ordered by semester (NULLs first),
	// then by course code.
	List(ctx context.Context) ([]Entry, error)
}
