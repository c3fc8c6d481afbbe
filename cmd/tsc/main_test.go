package main

import (
	"bytes"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestDriverCompileOnceWritesOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFileSystem(ctrl)

	fs.EXPECT().ReadFile("in.sv").Return([]byte("function f(){}"), nil)

	var written []byte
	fs.EXPECT().WriteFile("out.wasm", gomock.Any()).DoAndReturn(func(_ string, data []byte) error {
		written = append([]byte(nil), data...)
		return nil
	})

	d := &driver{fs: fs, mode: modeCompile, out: "out.wasm"}

	if ok := d.compileOnce("in.sv"); !ok {
		t.Fatal("compileOnce returned false, want true")
	}

	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(written[:8], want) {
		t.Fatalf("written header = % X, want % X", written[:8], want)
	}
}

func TestDriverCompileOnceReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFileSystem(ctrl)

	fs.EXPECT().ReadFile("missing.sv").Return(nil, errors.New("no such file"))

	d := &driver{fs: fs, mode: modeCompile}

	if ok := d.compileOnce("missing.sv"); ok {
		t.Fatal("compileOnce returned true, want false on read error")
	}
}

func TestDriverCompileOnceCompileError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := NewMockFileSystem(ctrl)

	fs.EXPECT().ReadFile("bad.sv").Return([]byte("function f("), nil)

	d := &driver{fs: fs, mode: modeCompile}

	if ok := d.compileOnce("bad.sv"); ok {
		t.Fatal("compileOnce returned true, want false on compile error")
	}
}

func TestModeOf(t *testing.T) {
	cases := []struct {
		ast, tir bool
		want     mode
	}{
		{false, false, modeCompile},
		{true, false, modeAST},
		{false, true, modeMidIR},
	}

	for _, c := range cases {
		if got := modeOf(c.ast, c.tir); got != c.want {
			t.Errorf("modeOf(%v, %v) = %v, want %v", c.ast, c.tir, got, c.want)
		}
	}
}
