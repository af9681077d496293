package xlconv

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xlconv/xlconv-go/pkg/xlconv/csvconv"
)

// Input is the closed set of conversion inputs. Use TextInput for CSV
// text or a path/URL reference, BytesInput for workbook or CSV bytes.
type Input interface {
	isInput()
}

// TextInput is CSV content or an external reference to resolve.
type TextInput string

// BytesInput is raw workbook or CSV bytes.
type BytesInput []byte

func (TextInput) isInput()  {}
func (BytesInput) isInput() {}

// SourceMeta describes resolved input.
type SourceMeta struct {
	// Type is "csv", "workbook", or the resolver-reported type.
	Type string
	// Name is the source file name when known.
	Name string
	// Size is the content size in bytes.
	Size int64
}

// SourceResolver turns a path or URL reference into raw content. The
// conversion core performs no I/O itself; the CLI supplies a
// file-backed resolver and callers may plug in their own.
type SourceResolver interface {
	Resolve(ref string) ([]byte, SourceMeta, error)
}

// source is the classified form the extraction stage dispatches on.
type source struct {
	meta     SourceMeta
	csvText  string
	workbook []byte
}

var (
	zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}
	oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0}
)

// classifySource decides between CSV text and workbook bytes,
// resolving external references first when a resolver is available.
func classifySource(input Input, resolver SourceResolver) (source, error) {
	switch v := input.(type) {
	case TextInput:
		text := string(v)
		if csvconv.LooksLikeCSV(text) {
			return source{
				meta:    SourceMeta{Type: "csv", Size: int64(len(text))},
				csvText: text,
			}, nil
		}
		if resolver == nil {
			return source{}, fmt.Errorf("%w: string is neither CSV content nor a resolvable reference", ErrInvalidInput)
		}
		data, meta, err := resolver.Resolve(strings.TrimSpace(text))
		if err != nil {
			return source{}, fmt.Errorf("%w: resolve %q: %v", ErrInvalidInput, text, err)
		}
		return classifyBytes(data, meta)
	case BytesInput:
		return classifyBytes(v, SourceMeta{})
	default:
		return source{}, fmt.Errorf("%w: unsupported input %T", ErrInvalidInput, input)
	}
}

func classifyBytes(data []byte, meta SourceMeta) (source, error) {
	meta.Size = int64(len(data))
	if bytes.HasPrefix(data, zipMagic) {
		meta.Type = "workbook"
		return source{meta: meta, workbook: data}, nil
	}
	if bytes.HasPrefix(data, oleMagic) {
		return source{}, fmt.Errorf("%w: legacy binary workbook (.xls) is not supported", ErrInvalidInput)
	}

	text := string(data)
	if csvconv.LooksLikeCSV(text) {
		meta.Type = "csv"
		return source{meta: meta, csvText: text}, nil
	}
	return source{}, fmt.Errorf("%w: content is neither a workbook nor CSV text", ErrInvalidInput)
}
