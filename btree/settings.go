package btree

import s "github.com/bnclabs/gosettings"

// DefaultSettings for building a digest btree, tuned for corpora in
// the hundreds of millions of digests.
//
// "order" (int64, default 1024)
//	Branching order m. Nodes hold up to 2m digests and 2m+1
//	children; non-root interior nodes hold at least m digests
//	once finalized. Files written with one order cannot be read
//	as another, the header disambiguates.
func DefaultSettings() s.Settings {
	return s.Settings{
		"order": 1024,
	}
}
