package lib

import "encoding/json"

// Fixbuffer returns a buffer of size length, reallocating only when
// the supplied buffer's capacity falls short.
func Fixbuffer(buffer []byte, size int64) []byte {
	if buffer == nil || int64(cap(buffer)) < size {
		buffer = make([]byte, size)
	}
	return buffer[:size]
}

// Prettystats marshals a stats map into json, indented if pretty is
// true. Panics if the map won't marshal, stats maps are always
// expected to.
func Prettystats(stats map[string]interface{}, pretty bool) string {
	if pretty {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			panic(err)
		}
		return string(data)
	}
	data, err := json.Marshal(stats)
	if err != nil {
		panic(err)
	}
	return string(data)
}
