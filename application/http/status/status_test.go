package status

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromCode(t *testing.T) {
	testcases := []struct {
		desc     string
		code     uint
		expected Status
		ok       bool
	}{
		{desc: "ok", code: 200, expected: OK, ok: true},
		{desc: "not found", code: 404, expected: Status{404, "NotFound"}, ok: true},
		{desc: "header fields too large", code: 431, expected: RequestHeaderFieldsTooLarge, ok: true},
		{desc: "unused 306", code: 306, expected: Status{306, ReasonUnknown}, ok: false},
		{desc: "unmapped", code: 999, expected: Status{999, ReasonUnknown}, ok: false},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			got, ok := FromCode(tc.code)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestReason(t *testing.T) {
	assert.Equal(t, "InternalServerError", Reason(500))
	assert.Equal(t, ReasonUnknown, Reason(0))
}

func TestCodes(t *testing.T) {
	codes := Codes()
	assert.Len(t, codes, len(sm))
	assert.True(t, slices.IsSorted(codes))

	// Returned slice is a copy.
	codes[0] = 0
	assert.Equal(t, uint(100), Codes()[0])
}
