package dataset

import (
	"fmt"
	"testing"

	"github.com/kbukum/datafeed/errors"
	"github.com/kbukum/datafeed/rng"
)

func examples(n int) []Example {
	out := make([]Example, n)
	for i := range out {
		out[i] = Example{Primary: fmt.Sprintf("%d.png", i), Labels: []string{fmt.Sprintf("%d_l.png", i)}}
	}
	return out
}

func primaries(exs []Example) []string {
	out := make([]string, len(exs))
	for i, e := range exs {
		out[i] = e.Primary
	}
	return out
}

func TestNewIndexEmpty(t *testing.T) {
	if _, err := NewIndex(nil, rng.New(1), false); !errors.HasCode(err, errors.ErrCodeEmptyIndex) {
		t.Errorf("expected EMPTY_INDEX, got %v", err)
	}
}

func TestNextInFileOrderThenWraps(t *testing.T) {
	idx, err := NewIndex(examples(5), rng.New(1), false)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if got := idx.Next().Primary; got != fmt.Sprintf("%d.png", i) {
			t.Fatalf("call %d returned %s", i, got)
		}
	}
	if idx.Epoch() != 1 || idx.Cursor() != 0 {
		t.Errorf("expected epoch 1 cursor 0, got %d/%d", idx.Epoch(), idx.Cursor())
	}
	if got := idx.Next().Primary; got != "0.png" {
		t.Errorf("call size+1 returned %s, want 0.png", got)
	}
}

func TestShuffleDeterministicForSeed(t *testing.T) {
	a, _ := NewIndex(examples(20), rng.New(99), true)
	b, _ := NewIndex(examples(20), rng.New(99), true)
	a.Shuffle()
	b.Shuffle()

	for epoch := 0; epoch < 3; epoch++ {
		var pa, pb []string
		for i := 0; i < 20; i++ {
			pa = append(pa, a.Next().Primary)
			pb = append(pb, b.Next().Primary)
		}
		if fmt.Sprint(pa) != fmt.Sprint(pb) {
			t.Fatalf("epoch %d orders differ:\n%v\n%v", epoch, pa, pb)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	idx, _ := NewIndex(examples(50), rng.New(3), true)
	idx.Shuffle()
	seen := make(map[string]bool)
	for _, p := range primaries(idx.Examples()) {
		seen[p] = true
	}
	if len(seen) != 50 {
		t.Errorf("shuffle lost examples: %d unique", len(seen))
	}
	if fmt.Sprint(primaries(idx.Examples())) == fmt.Sprint(primaries(examples(50))) {
		t.Error("shuffle of 50 examples left the order unchanged")
	}
}

func TestReshuffleAtEpochBoundary(t *testing.T) {
	idx, _ := NewIndex(examples(10), rng.New(5), true)
	first := primaries(idx.Examples())
	for i := 0; i < 9; i++ {
		idx.Next()
	}
	if fmt.Sprint(primaries(idx.Examples())) != fmt.Sprint(first) {
		t.Fatal("order must not change mid-epoch")
	}
	idx.Next()
	if fmt.Sprint(primaries(idx.Examples())) == fmt.Sprint(first) {
		t.Error("expected a reshuffle on wrap")
	}
	if idx.Epoch() != 1 {
		t.Errorf("expected epoch 1, got %d", idx.Epoch())
	}
}

func TestNoReshuffleWhenDisabled(t *testing.T) {
	idx, _ := NewIndex(examples(3), rng.New(5), false)
	for i := 0; i < 7; i++ {
		idx.Next()
	}
	if fmt.Sprint(primaries(idx.Examples())) != fmt.Sprint(primaries(examples(3))) {
		t.Error("order changed without shuffling enabled")
	}
}

func TestSkipAhead(t *testing.T) {
	idx, _ := NewIndex(examples(5), rng.New(11), false)

	if skip, err := idx.SkipAhead(0); err != nil || skip != 0 || idx.Cursor() != 0 {
		t.Errorf("SkipAhead(0) = %d, %v", skip, err)
	}

	skip, err := idx.SkipAhead(4)
	if err != nil {
		t.Fatal(err)
	}
	if skip < 0 || skip >= 4 || idx.Cursor() != skip {
		t.Errorf("skip %d cursor %d", skip, idx.Cursor())
	}
	if got := idx.Next().Primary; got != fmt.Sprintf("%d.png", skip) {
		t.Errorf("first Next after skip returned %s", got)
	}

	if _, err := idx.SkipAhead(5); !errors.HasCode(err, errors.ErrCodeSkipOutOfRange) {
		t.Errorf("expected SKIP_OUT_OF_RANGE, got %v", err)
	}
}

func TestSkipAheadDeterministic(t *testing.T) {
	a, _ := NewIndex(examples(100), rng.New(8), false)
	b, _ := NewIndex(examples(100), rng.New(8), false)
	sa, _ := a.SkipAhead(50)
	sb, _ := b.SkipAhead(50)
	if sa != sb {
		t.Errorf("same seed skipped %d and %d", sa, sb)
	}
}

func TestSeek(t *testing.T) {
	idx, _ := NewIndex(examples(5), rng.New(1), false)
	if err := idx.Seek(3); err != nil {
		t.Fatal(err)
	}
	got := []string{idx.Next().Primary, idx.Next().Primary, idx.Next().Primary}
	if fmt.Sprint(got) != "[3.png 4.png 0.png]" {
		t.Errorf("unexpected order after seek: %v", got)
	}
	if err := idx.Seek(5); !errors.HasCode(err, errors.ErrCodeSkipOutOfRange) {
		t.Errorf("expected SKIP_OUT_OF_RANGE, got %v", err)
	}
}

func TestNewIndexCopiesInput(t *testing.T) {
	in := examples(3)
	idx, _ := NewIndex(in, rng.New(2), true)
	idx.Shuffle()
	if in[0].Primary != "0.png" || in[2].Primary != "2.png" {
		t.Error("shuffling must not reorder the caller's slice")
	}
}
