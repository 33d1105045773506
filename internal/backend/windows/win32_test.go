package windows

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBOOL(t *testing.T) {
	t.Parallel()

	allBits := ^uintptr(0)

	testCases := map[string]struct {
		r uintptr

		want bool
	}{
		"FALSE":                         {r: 0, want: false},
		"TRUE":                          {r: 1, want: true},
		"Any non-zero value is TRUE":    {r: 0x80000000, want: true},
		"FALSE with garbage upper bits": {r: allBits &^ uintptr(math.MaxUint32), want: false},
		"TRUE with garbage upper bits":  {r: allBits, want: true},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, fromBOOL(tc.r), "Unexpected BOOL conversion of 0x%x", tc.r)
		})
	}
}
