package leb128

import "testing"

func TestUintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1, ^uint64(0)}

	for _, v := range values {
		w := NewWriter()
		if err := w.WriteUint(v); err != nil {
			t.Fatalf("WriteUint(%d): %v", v, err)
		}

		r := NewReader(w.Bytes())

		got, err := r.ReadUint()
		if err != nil {
			t.Fatalf("ReadUint after WriteUint(%d): %v", v, err)
		}

		if got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestIntRoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, 63, -64, 64, -65, 1000000, -1000000, -1 << 62}

	for _, v := range values {
		w := NewWriter()
		if err := w.WriteInt(v); err != nil {
			t.Fatalf("WriteInt(%d): %v", v, err)
		}

		r := NewReader(w.Bytes())

		got, err := r.ReadInt()
		if err != nil {
			t.Fatalf("ReadInt after WriteInt(%d): %v", v, err)
		}

		if got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestWriteBlobPrependsLength(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBlob([]byte("abc")); err != nil {
		t.Fatal(err)
	}

	want := []byte{3, 'a', 'b', 'c'}
	if string(w.Bytes()) != string(want) {
		t.Fatalf("WriteBlob bytes = %v, want %v", w.Bytes(), want)
	}
}

func TestBoundedWriterOverflow(t *testing.T) {
	w := NewBoundedWriter(2)
	if err := w.WriteByte(1); err != nil {
		t.Fatal(err)
	}

	if err := w.WriteByte(2); err != nil {
		t.Fatal(err)
	}

	if err := w.WriteByte(3); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestWriteDispatchesOnStaticType(t *testing.T) {
	w := NewWriter()
	if err := w.Write(U32(300)); err != nil {
		t.Fatal(err)
	}

	if err := w.Write(I32(-1)); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes())

	u, err := r.ReadUint()
	if err != nil || u != 300 {
		t.Fatalf("ReadUint = %d, %v, want 300", u, err)
	}

	i, err := r.ReadInt()
	if err != nil || i != -1 {
		t.Fatalf("ReadInt = %d, %v, want -1", i, err)
	}
}
