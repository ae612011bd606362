package bucket

import (
	"errors"
	"testing"

	"github.com/vnykmshr/ratebucket/internal/testutil"
	gferrors "github.com/vnykmshr/ratebucket/pkg/common/errors"
)

var allKinds = []Kind{KindFloat, KindInt, KindCombined, KindCombinedMT}

func TestNewSafe(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens uint64
		interval  uint64
		wantErr   bool
	}{
		{"valid parameters", 3, 10, false},
		{"zero tokens", 0, 10, false},
		{"tokens above interval", 100, 10, false},
		{"zero interval", 3, 0, true},
		{"zero everything", 0, 0, true},
	}

	for _, kind := range allKinds {
		for _, tt := range tests {
			t.Run(kind.String()+"/"+tt.name, func(t *testing.T) {
				b, err := NewSafe(kind, tt.maxTokens, tt.interval)
				if tt.wantErr {
					if err == nil {
						t.Fatal("expected error for zero interval")
					}
					if b != nil {
						t.Error("expected nil bucket on error")
					}
					if !errors.Is(err, gferrors.ErrInvalidConfiguration) {
						t.Errorf("error should wrap ErrInvalidConfiguration, got %v", err)
					}
					if !gferrors.IsValidationError(err) {
						t.Errorf("expected ValidationError, got %T", err)
					}
					return
				}
				testutil.AssertNoError(t, err)
				testutil.AssertEqual(t, b.MaxTokens(), tt.maxTokens)
				testutil.AssertEqual(t, b.Interval(), tt.interval)
				testutil.AssertEqual(t, KindOf(b), kind.String())
			})
		}
	}
}

func TestNewSafeUnknownKind(t *testing.T) {
	b, err := NewSafe(Kind(42), 1, 10)
	if err == nil || b != nil {
		t.Fatalf("NewSafe(Kind(42)) = %v, %v; want nil, error", b, err)
	}
}

func TestVariantConstructors(t *testing.T) {
	if _, err := NewFloatBucket(1, 0); err == nil {
		t.Error("NewFloatBucket should reject zero interval")
	}
	if _, err := NewIntBucket(1, 0); err == nil {
		t.Error("NewIntBucket should reject zero interval")
	}
	if _, err := NewIntBucketCombined(1, 0); err == nil {
		t.Error("NewIntBucketCombined should reject zero interval")
	}
	if _, err := NewIntBucketCombinedMT(1, 0); err == nil {
		t.Error("NewIntBucketCombinedMT should reject zero interval")
	}

	fb, err := NewFloatBucket(1, 10)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, fb.Tokens(), 0.0)
	testutil.AssertEqual(t, fb.LastFillTime(), uint64(0))
}

func TestNewPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("New with zero interval should panic")
		}
		if err, ok := r.(error); !ok || !gferrors.IsValidationError(err) {
			t.Errorf("panic value = %v, want ValidationError", r)
		}
	}()
	New(KindInt, 1, 0)
}

func TestAcceptsFirst(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 1, 10)
			if !b.Accept(10000) {
				t.Error("first call after a full interval should be admitted")
			}
		})
	}
}

func TestStartsDrained(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 1, 10)
			if b.Accept(0) {
				t.Error("call at time zero should be rejected")
			}
			if b.Accept(9) {
				t.Error("call before one interval has elapsed should be rejected")
			}
			if !b.Accept(10) {
				t.Error("call after exactly one interval should be admitted")
			}
		})
	}
}

func TestFailMultiple(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 2, 10)
			got := make([]bool, 4)
			for i := range got {
				got[i] = b.Accept(10000)
			}
			testutil.AssertEqual(t, testutil.Pattern(got), "TTFF")
		})
	}
}

func TestPassAfterTime(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 1, 10)
			got := []bool{b.Accept(10000), b.Accept(10000), b.Accept(10010)}
			testutil.AssertEqual(t, testutil.Pattern(got), "TFT")
		})
	}
}

// steadyState is the admission pattern of a 3-per-10 bucket called once per
// time unit from 10000 to 10024.
const steadyState = "TTTFTFFTFFTFFFTFFTFFTFFFT"

func TestOnePerTimeUnit(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 3, 10)
			got := make([]bool, 0, len(steadyState))
			for ts := uint64(10000); ts <= 10024; ts++ {
				got = append(got, b.Accept(ts))
			}
			testutil.AssertEqual(t, testutil.Pattern(got), steadyState)
		})
	}
}

func TestZeroTokensNeverAdmits(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 0, 10)
			for _, ts := range []uint64{0, 10, 10000, 1 << 40} {
				if b.Accept(ts) {
					t.Fatalf("Accept(%d) admitted with zero capacity", ts)
				}
			}
		})
	}
}

func TestBurstIsCapped(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 5, 100)
			// A long idle period must not bank more than one full bucket.
			admitted := 0
			for i := 0; i < 20; i++ {
				if b.Accept(1_000_000) {
					admitted++
				}
			}
			testutil.AssertEqual(t, admitted, 5)
		})
	}
}

func TestRejectLeavesStateUnchanged(t *testing.T) {
	ib := newIntBucket(3, 10)
	ib.Accept(10000)
	ib.Accept(10000)
	ib.Accept(10000)
	tokenTime, lastFill := ib.TokenTime(), ib.LastFillTime()
	if ib.Accept(10001) {
		t.Fatal("expected rejection")
	}
	testutil.AssertEqual(t, ib.TokenTime(), tokenTime)
	testutil.AssertEqual(t, ib.LastFillTime(), lastFill)

	fb := newFloatBucket(3, 10)
	fb.Accept(10000)
	fb.Accept(10000)
	fb.Accept(10000)
	tokens, lastFill := fb.Tokens(), fb.LastFillTime()
	if fb.Accept(10001) {
		t.Fatal("expected rejection")
	}
	testutil.AssertEqual(t, fb.Tokens(), tokens)
	testutil.AssertEqual(t, fb.LastFillTime(), lastFill)

	cb := newIntBucketCombined(3, 10)
	mt := newIntBucketCombinedMT(3, 10)
	for i := 0; i < 3; i++ {
		cb.Accept(10000)
		mt.Accept(10000)
	}
	before := cb.Combined()
	if cb.Accept(10001) || mt.Accept(10001) {
		t.Fatal("expected rejection")
	}
	testutil.AssertEqual(t, cb.Combined(), before)
	testutil.AssertEqual(t, mt.Combined(), before)
}

func TestCombinedEncoding(t *testing.T) {
	// combined = maxTokens*lastFillTime - tokenTime after every call.
	ib := newIntBucket(3, 10)
	cb := newIntBucketCombined(3, 10)
	for ts := uint64(10000); ts < 10100; ts++ {
		a, b := ib.Accept(ts), cb.Accept(ts)
		if a != b {
			t.Fatalf("ts=%d: int=%v combined=%v", ts, a, b)
		}
		want := ib.MaxTokens()*ib.LastFillTime() - ib.TokenTime()
		if cb.Combined() != want {
			t.Fatalf("ts=%d: combined=%d, want %d", ts, cb.Combined(), want)
		}
	}
}

func TestTimestampRegression(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			b := New(kind, 1, 10)
			got := []bool{
				b.Accept(10000),
				b.Accept(5000), // earlier than the last admission
				b.Accept(9999),
				b.Accept(10009),
				b.Accept(10010),
			}
			testutil.AssertEqual(t, testutil.Pattern(got), "TFFFT")
		})
	}
}

func TestFloatClampsRegression(t *testing.T) {
	// Unclamped, 9000-10000 would wrap around and refill the whole bucket.
	fb := newFloatBucket(2, 10)
	got := []bool{fb.Accept(10000), fb.Accept(9000), fb.Accept(8000)}
	testutil.AssertEqual(t, testutil.Pattern(got), "TTF")
	testutil.AssertEqual(t, fb.LastFillTime(), uint64(10000))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"float", KindFloat, false},
		{"INT", KindInt, false},
		{" combined ", KindCombined, false},
		{"combined_mt", KindCombinedMT, false},
		{"", KindCombinedMT, false},
		{"leaky", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.want)
		})
	}
}

func TestKindText(t *testing.T) {
	for _, kind := range allKinds {
		text, err := kind.MarshalText()
		testutil.AssertNoError(t, err)

		var parsed Kind
		testutil.AssertNoError(t, parsed.UnmarshalText(text))
		testutil.AssertEqual(t, parsed, kind)
	}

	var k Kind
	testutil.AssertNoError(t, k.Set("int"))
	testutil.AssertEqual(t, k, KindInt)
	testutil.AssertEqual(t, k.Type(), "kind")
	testutil.AssertError(t, k.Set("bogus"))
	testutil.AssertEqual(t, k, KindInt)
	testutil.AssertEqual(t, Kind(99).String(), "unknown")

	if !KindCombinedMT.Concurrent() || KindInt.Concurrent() {
		t.Error("only KindCombinedMT is concurrent")
	}
}
