package push

import (
	"errors"
	"testing"
)

func TestParseCount_AcceptedShapes(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		shape CountShape
		want  int64
	}{
		{"raw number", `7`, ShapeNumber, 7},
		{"integral float", `3.0`, ShapeNumber, 3},
		{"count object", `{"count":4}`, ShapeObject, 4},
		{"data wrapped", `{"data":{"count":2},"code":0}`, ShapeDataObject, 2},
		{"serialized number", `"9"`, ShapeSerialized, 9},
		{"serialized object", `"{\"count\":11}"`, ShapeSerialized, 11},
		{"serialized wrapped", `"{\"data\":{\"count\":0}}"`, ShapeSerialized, 0},
		{"padded", "  5\n", ShapeNumber, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCount([]byte(tc.raw))
			if err != nil {
				t.Fatalf("ParseCount(%s): %v", tc.raw, err)
			}
			if got.Shape != tc.shape || got.Count != tc.want {
				t.Fatalf("ParseCount(%s) = %+v, want shape=%s count=%d", tc.raw, got, tc.shape, tc.want)
			}
		})
	}
}

func TestParseCount_RejectsUnknown(t *testing.T) {
	for _, raw := range []string{
		``,
		`null`,
		`true`,
		`-1`,
		`1.5`,
		`[1]`,
		`{"total":1}`,
		`{"data":5}`,
		`{"data":{"total":1}}`,
		`"\"3\""`, // 只解一层字符串
		`"abc"`,
		`1 2`,
	} {
		_, err := ParseCount([]byte(raw))
		if !errors.Is(err, ErrUnknownCountShape) {
			t.Errorf("ParseCount(%q) expected ErrUnknownCountShape, got %v", raw, err)
		}
	}
}
