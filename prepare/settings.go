package prepare

import s "github.com/bnclabs/gosettings"

// DefaultSettings for preparing a corpus.
//
// "order" (int64, default 1024)
//	Branching order for the produced btree, passed through to the
//	builder.
//
// "memlimit" (int64, default 512MB)
//	Upper bound, in bytes, on the in-memory chunk used by the
//	external sort when the corpus is not already sorted. Clamped
//	against free system memory at run time.
//
// "sorted" (bool, default true)
//	Whether the input corpus is already in ascending digest order,
//	as the ordered-by-hash corpus downloads are. When false the
//	preparer sorts the corpus through temporary run files first.
func DefaultSettings() s.Settings {
	return s.Settings{
		"order":    1024,
		"memlimit": 512 * 1024 * 1024,
		"sorted":   true,
	}
}
