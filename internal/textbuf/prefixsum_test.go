package textbuf

import "testing"

func TestPrefixSumAccumulatedValue(t *testing.T) {
	p := newPrefixSum([]int{4, 4, 3})

	if got := p.AccumulatedValue(-1); got != 0 {
		t.Errorf("AccumulatedValue(-1) = %d, want 0", got)
	}
	if got := p.AccumulatedValue(0); got != 4 {
		t.Errorf("AccumulatedValue(0) = %d, want 4", got)
	}
	if got := p.AccumulatedValue(2); got != 11 {
		t.Errorf("AccumulatedValue(2) = %d, want 11", got)
	}
	if got := p.Total(); got != 11 {
		t.Errorf("Total() = %d, want 11", got)
	}
}

func TestPrefixSumIndexOf(t *testing.T) {
	p := newPrefixSum([]int{4, 4, 3})

	cases := []struct {
		offset    int
		index     int
		remainder int
	}{
		{0, 0, 0},
		{3, 0, 3},
		{4, 1, 0},
		{7, 1, 3},
		{8, 2, 0},
		{10, 2, 2},
		// the total collapses onto the last entry
		{11, 2, 3},
	}
	for _, c := range cases {
		index, remainder := p.IndexOf(c.offset)
		if index != c.index || remainder != c.remainder {
			t.Errorf("IndexOf(%d) = (%d, %d), want (%d, %d)", c.offset, index, remainder, c.index, c.remainder)
		}
	}
}

func TestPrefixSumIndexOfZeroEntries(t *testing.T) {
	// a piece ending with a line feed carries a trailing zero-length line
	p := newPrefixSum([]int{4, 0})
	index, remainder := p.IndexOf(4)
	if index != 1 || remainder != 0 {
		t.Errorf("IndexOf(4) = (%d, %d), want (1, 0)", index, remainder)
	}
}

func TestPrefixSumEdits(t *testing.T) {
	p := newPrefixSum([]int{2, 5})

	p.ChangeValue(0, 4)
	if got := p.Total(); got != 9 {
		t.Errorf("Total() after ChangeValue = %d, want 9", got)
	}

	p.InsertValues(1, []int{1, 1})
	if got := p.Count(); got != 4 {
		t.Errorf("Count() after InsertValues = %d, want 4", got)
	}
	if got := p.AccumulatedValue(2); got != 6 {
		t.Errorf("AccumulatedValue(2) = %d, want 6", got)
	}

	p.RemoveValues(0, 2)
	if got := p.Total(); got != 6 {
		t.Errorf("Total() after RemoveValues = %d, want 6", got)
	}
	if got := p.Count(); got != 2 {
		t.Errorf("Count() after RemoveValues = %d, want 2", got)
	}
}

func TestComputeLineStarts(t *testing.T) {
	lfCnt, lengths := computeLineStarts("abc\ndef")
	if lfCnt != 1 {
		t.Errorf("lfCnt = %d, want 1", lfCnt)
	}
	if len(lengths) != 2 || lengths[0] != 4 || lengths[1] != 3 {
		t.Errorf("lengths = %v, want [4 3]", lengths)
	}

	lfCnt, lengths = computeLineStarts("x\n")
	if lfCnt != 1 || lengths[0] != 2 || lengths[1] != 0 {
		t.Errorf("computeLineStarts(%q) = %d, %v", "x\n", lfCnt, lengths)
	}

	lfCnt, lengths = computeLineStarts("")
	if lfCnt != 0 || len(lengths) != 1 || lengths[0] != 0 {
		t.Errorf("computeLineStarts(%q) = %d, %v", "", lfCnt, lengths)
	}
}
