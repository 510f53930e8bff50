/*
DESCRIPTION
  morph_test.go provides testing for mask morphology and cleanup.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package morph

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/motion/frame"
)

// parseMask builds a mask from rows of '.' (background) and '#' (foreground).
func parseMask(t *testing.T, rows ...string) *frame.Mask {
	t.Helper()
	m, err := frame.NewMask(len(rows[0]), len(rows))
	if err != nil {
		t.Fatalf("could not create mask: %v", err)
	}
	for y, r := range rows {
		for x, c := range r {
			m.Set(x, y, c == '#')
		}
	}
	return m
}

func formatMask(m *frame.Mask) string {
	var sb strings.Builder
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Foreground(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func newGift(t *testing.T) *Gift {
	t.Helper()
	g, err := NewGift(DefaultKernel)
	if err != nil {
		t.Fatalf("could not create gift morphology: %v", err)
	}
	return g
}

func TestNewGift(t *testing.T) {
	for _, k := range []int{-1, 0, 1, 2, 4} {
		if _, err := NewGift(k); err == nil {
			t.Errorf("expected error for kernel size %d", k)
		}
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		op         Op
		iterations int
		in         []string
		want       []string
	}{
		{
			name:       "open removes speckle",
			op:         Open,
			iterations: 1,
			in: []string{
				"........",
				".#......",
				"....###.",
				"....###.",
				"....###.",
				"........",
			},
			want: []string{
				"........",
				"........",
				"....###.",
				"....###.",
				"....###.",
				"........",
			},
		},
		{
			name:       "close fills hole",
			op:         Close,
			iterations: 1,
			in: []string{
				".........",
				".........",
				"..#####..",
				"..##.##..",
				"..#####..",
				".........",
				".........",
			},
			want: []string{
				".........",
				".........",
				"..#####..",
				"..#####..",
				"..#####..",
				".........",
				".........",
			},
		},
		{
			name:       "close joins fragments",
			op:         Close,
			iterations: 2,
			in: []string{
				"..............",
				"..............",
				"..............",
				"..............",
				"....##..##....",
				"....##..##....",
				"..............",
				"..............",
				"..............",
				"..............",
			},
			want: []string{
				"..............",
				"..............",
				"..............",
				"..............",
				"....######....",
				"....######....",
				"..............",
				"..............",
				"..............",
				"..............",
			},
		},
		{
			name:       "zero iterations",
			op:         Open,
			iterations: 0,
			in:         []string{"#..", "...", "..#"},
			want:       []string{"#..", "...", "..#"},
		},
	}

	g := newGift(t)
	for _, test := range tests {
		in := parseMask(t, test.in...)
		before := formatMask(in)
		got, err := g.Apply(in, test.op, test.iterations)
		if err != nil {
			t.Errorf("unexpected error for test %s: %v", test.name, err)
			continue
		}
		want := formatMask(parseMask(t, test.want...))
		if formatMask(got) != want {
			t.Errorf("unexpected result for test %s\n%s", test.name, cmp.Diff(want, formatMask(got)))
		}
		if formatMask(in) != before {
			t.Errorf("input modified for test %s", test.name)
		}
	}
}

func TestApplyErrors(t *testing.T) {
	g := newGift(t)
	m := parseMask(t, "...", "...")
	if _, err := g.Apply(m, Open, -1); err == nil {
		t.Error("expected error for negative iterations")
	}
	if _, err := g.Apply(m, Op(5), 1); err == nil {
		t.Error("expected error for unknown operation")
	}
}

func TestCleanIdempotentOnBlob(t *testing.T) {
	rows := make([]string, 16)
	for y := range rows {
		if y >= 4 && y < 12 {
			rows[y] = "....########...."
		} else {
			rows[y] = "................"
		}
	}
	in := parseMask(t, rows...)

	got, err := NewCleaner(newGift(t)).Clean(in)
	if err != nil {
		t.Fatalf("could not clean mask: %v", err)
	}
	if formatMask(got) != formatMask(in) {
		t.Errorf("clean modified a clean mask\n%s", cmp.Diff(formatMask(in), formatMask(got)))
	}
}

func TestCleanRemovesSinglePixel(t *testing.T) {
	in := parseMask(t,
		"....",
		"..#.",
		"....",
		"....",
	)
	got, err := NewCleaner(newGift(t)).Clean(in)
	if err != nil {
		t.Fatalf("could not clean mask: %v", err)
	}
	if n := got.Count(); n != 0 {
		t.Errorf("single pixel survived cleanup\n%s", formatMask(got))
	}
}

type recorder struct {
	ops  []Op
	iter []int
}

func (r *recorder) Apply(m *frame.Mask, op Op, iterations int) (*frame.Mask, error) {
	r.ops = append(r.ops, op)
	r.iter = append(r.iter, iterations)
	return m.Clone(), nil
}

func TestCleanOrder(t *testing.T) {
	r := &recorder{}
	_, err := NewCleaner(r).Clean(parseMask(t, "#"))
	if err != nil {
		t.Fatalf("could not clean mask: %v", err)
	}
	if want := []Op{Open, Close}; !cmp.Equal(r.ops, want) {
		t.Errorf("unexpected operation order\n%s", cmp.Diff(want, r.ops))
	}
	if want := []int{1, 2}; !cmp.Equal(r.iter, want) {
		t.Errorf("unexpected iterations\n%s", cmp.Diff(want, r.iter))
	}
}
