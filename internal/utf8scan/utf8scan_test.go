package utf8scan

import "testing"

func TestDecodeStringASCII(t *testing.T) {
	got, err := DecodeString("abc")
	if err != nil {
		t.Fatal(err)
	}

	want := []rune{'a', 'b', 'c'}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDecodeStringEuroSign(t *testing.T) {
	// U+20AC (€) encodes to 0xE2 0x82 0xAC.
	d := New()

	for _, b := range []byte{0xE2, 0x82, 0xAC} {
		if err := d.Push(b); err != nil {
			t.Fatalf("Push(0x%02X): %v", b, err)
		}
	}

	if !d.Ready() {
		t.Fatal("decoder not ready after 3 bytes of a 3-byte sequence")
	}

	r, err := d.TakeValidChar()
	if err != nil {
		t.Fatal(err)
	}

	if r != 0x20AC {
		t.Fatalf("got %U, want U+20AC", r)
	}
}

func TestOverlongNULRejected(t *testing.T) {
	d := New()
	if err := d.Push(0xC0); err == nil {
		t.Fatal("expected error on lead byte 0xC0")
	}
}

func TestSurrogateRejected(t *testing.T) {
	// U+D800 encoded naively as a 3-byte sequence: ED A0 80.
	d := New()

	for _, b := range []byte{0xED, 0xA0} {
		if err := d.Push(b); err != nil {
			t.Fatalf("Push(0x%02X): %v", b, err)
		}
	}

	if err := d.Push(0x80); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if _, err := d.TakeValidChar(); err == nil {
		t.Fatal("expected surrogate rejection")
	}
}

func TestContinuationWithNothingPending(t *testing.T) {
	d := New()
	if err := d.Push(0x80); err == nil {
		t.Fatal("expected error for stray continuation byte")
	}
}

func TestInvalidLeadBytesRejectedWithinFourPushes(t *testing.T) {
	for _, b := range []byte{0xC0, 0xC1, 0xF5, 0xFF} {
		d := New()
		if err := d.Push(b); err == nil {
			t.Fatalf("lead byte 0x%02X should be rejected immediately", b)
		}
	}
}
