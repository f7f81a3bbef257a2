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

package codec

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Encoder turns bytes into text and back. "base64" is required; hosts may
// register additional encoders through a Registry.
type Encoder interface {
	Name() string
	Encode([]byte) string
	Decode(string) ([]byte, error)
}

// Compressor shrinks and restores a byte slice. "none" is the identity
// compressor; "zlib" is provided out of the box.
type Compressor interface {
	Name() string
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}

// base64Encoder implements Encoder using the standard base64 alphabet,
// matching the save-document schema in spec.md §6 exactly.
type base64Encoder struct{}

func (base64Encoder) Name() string { return "base64" }

func (base64Encoder) Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func (base64Encoder) Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

// noneCompressor is the identity compressor.
type noneCompressor struct{}

func (noneCompressor) Name() string { return "none" }

func (noneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (noneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// zlibCompressor implements Compressor over github.com/klauspost/compress/zlib.
type zlibCompressor struct{}

func (zlibCompressor) Name() string { return "zlib" }

func (zlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (zlibCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// Registry resolves encoder/compressor names from the option store into
// concrete implementations. A Registry from NewRegistry already knows
// "base64", "none", and "zlib"; hosts may register more via
// RegisterEncoder and RegisterCompressor. The zero value has no maps: it
// resolves no names and panics on registration.
type Registry struct {
	encoders     map[string]Encoder
	compressors  map[string]Compressor
}

// NewRegistry returns a Registry pre-populated with the built-in codecs.
func NewRegistry() *Registry {
	r := &Registry{
		encoders:    map[string]Encoder{},
		compressors: map[string]Compressor{},
	}

	r.RegisterEncoder(base64Encoder{})
	r.RegisterCompressor(noneCompressor{})
	r.RegisterCompressor(zlibCompressor{})

	return r
}

func (r *Registry) RegisterEncoder(e Encoder)       { r.encoders[e.Name()] = e }
func (r *Registry) RegisterCompressor(c Compressor) { r.compressors[c.Name()] = c }

func (r *Registry) Encoder(name string) (Encoder, error) {
	e, ok := r.encoders[name]
	if !ok {
		return nil, fmt.Errorf("codec: unknown encoder %q", name)
	}
	return e, nil
}

func (r *Registry) Compressor(name string) (Compressor, error) {
	c, ok := r.compressors[name]
	if !ok {
		return nil, fmt.Errorf("codec: unknown compressor %q", name)
	}
	return c, nil
}

// EncodeBytes applies compressor then encoder: encode(compress(bytes)).
func (r *Registry) EncodeBytes(encoderName, compressorName string, data []byte) (string, error) {
	compressor, err := r.Compressor(compressorName)
	if err != nil {
		return "", err
	}

	encoder, err := r.Encoder(encoderName)
	if err != nil {
		return "", err
	}

	compressed, err := compressor.Compress(data)
	if err != nil {
		return "", err
	}

	return encoder.Encode(compressed), nil
}

// DecodeBytes reverses EncodeBytes: decompress(decode(text)).
func (r *Registry) DecodeBytes(encoderName, compressorName, text string) ([]byte, error) {
	encoder, err := r.Encoder(encoderName)
	if err != nil {
		return nil, err
	}

	compressor, err := r.Compressor(compressorName)
	if err != nil {
		return nil, err
	}

	decoded, err := encoder.Decode(text)
	if err != nil {
		return nil, err
	}

	return compressor.Decompress(decoded)
}

// MD5 returns the MD5 digest of data, used as the stable ROM identity
// across saves (spec.md §4.F).
func MD5(data []byte) [16]byte {
	return md5.Sum(data)
}
