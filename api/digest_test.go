package api

import "sort"
import "testing"

import "github.com/stretchr/testify/require"

func TestParseDigest(t *testing.T) {
	ref := "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8"
	d, err := ParseDigest(ref)
	require.NoError(t, err)
	require.Equal(t, ref, d.String())

	lower, err := ParseDigest("5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8")
	require.NoError(t, err)
	require.Equal(t, d, lower)

	require.Equal(t, byte(0x5B), d[0])
	require.Equal(t, byte(0xD8), d[19])
}

func TestParseDigestBad(t *testing.T) {
	for _, text := range []string{
		"",
		"5BAA61",
		"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD", // 39 chars
		"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8A", // 41 chars
		"XBAA61E4C9B93F3F0682250B6CF8331B7EE68FD8",
		"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FG8",
	} {
		if _, err := ParseDigest(text); err == nil {
			t.Fatalf("expected error for %q", text)
		}
	}
}

func TestDigestOrdering(t *testing.T) {
	texts := []string{
		"0000000000000000000000000000000000000000",
		"00000000000000000000000000000000000000FF",
		"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8",
		"FF00000000000000000000000000000000000000",
		"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF",
	}
	digests := make([]Digest, 0, len(texts))
	for _, text := range texts {
		d, err := ParseDigest(text)
		require.NoError(t, err)
		digests = append(digests, d)
	}
	require.True(t, sort.SliceIsSorted(digests, func(i, j int) bool {
		return digests[i].Less(digests[j])
	}))
	for i, d := range digests {
		require.Equal(t, 0, d.Compare(digests[i]))
		if i > 0 {
			require.Equal(t, 1, d.Compare(digests[i-1]))
			require.Equal(t, -1, digests[i-1].Compare(d))
		}
	}
}
