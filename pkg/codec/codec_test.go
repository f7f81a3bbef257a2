// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package codec_test

import (
	"bytes"
	"testing"

	"github.com/go8080/machemu/pkg/codec"
)

func TestRoundTripNoCompression(t *testing.T) {
	r := codec.NewRegistry()
	data := []byte("the quick brown fox jumps over the lazy dog")

	text, err := r.EncodeBytes("base64", "none", data)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}

	got, err := r.DecodeBytes("base64", "none", text)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, data)
	}
}

func TestRoundTripZlib(t *testing.T) {
	r := codec.NewRegistry()
	data := bytes.Repeat([]byte{0xAA, 0x00, 0xFF}, 4096)

	text, err := r.EncodeBytes("base64", "zlib", data)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}

	got, err := r.DecodeBytes("base64", "zlib", text)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	if !bytes.Equal(got, data) {
		t.Fatal("zlib round trip mismatch")
	}
}

func TestUnknownEncoderErrors(t *testing.T) {
	r := codec.NewRegistry()

	if _, err := r.EncodeBytes("rot13", "none", []byte("x")); err == nil {
		t.Fatal("expected an error for an unregistered encoder")
	}
}

func TestMD5Stable(t *testing.T) {
	a := codec.MD5([]byte("rom bytes"))
	b := codec.MD5([]byte("rom bytes"))

	if a != b {
		t.Fatal("MD5 of identical input should be identical")
	}
}
