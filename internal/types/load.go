// README: Outcome of loading a static data source.
package types

import "time"

// LoadResult reports how a static source load went. Loaders never return an
// error to their caller; they return a LoadResult and keep running on
// whatever state they already had.
type LoadResult struct {
	Source   string
	Count    int
	Err      error
	LoadedAt time.Time
}

func (r LoadResult) OK() bool {
	return r.Err == nil && !r.LoadedAt.IsZero()
}

// Pending reports whether the load has not completed yet.
func (r LoadResult) Pending() bool {
	return r.Err == nil && r.LoadedAt.IsZero()
}

func Loaded(source string, count int) LoadResult {
	return LoadResult{Source: source, Count: count, LoadedAt: time.Now()}
}

func LoadFailed(source string, err error) LoadResult {
	return LoadResult{Source: source, Err: err, LoadedAt: time.Now()}
}
