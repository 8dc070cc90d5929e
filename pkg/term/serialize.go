package term

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	errwrap "github.com/pkg/errors"
)

// Tag bytes of the binary format.
const (
	tagAtom  byte = 0x01 // atom index
	tagNVar  byte = 0x02 // name length, name bytes
	tagIVar  byte = 0x03 // rank
	tagApp   byte = 0x04 // argc, head, args
	tagSpine byte = 0x05 // argc<<spineShift | atom index, args
	tagJoin  byte = 0x06 // branch count, branches
	tagAbs   byte = 0x07
	tagQuote byte = 0x08
	tagFun   byte = 0x09 // name, body
	tagLet   byte = 0x0a // name, defn, body
)

const spineShift = 5

// maxNameLen bounds names read from untrusted input.
const maxNameLen = 1 << 16

var (
	// ErrTruncated is reported when the input ends inside a term.
	ErrTruncated = errors.New("truncated input")
	// ErrMalformed is reported for bytes that do not describe a term.
	ErrMalformed = errors.New("malformed input")
)

// DecodeError describes a failure to read a term from bytes.
type DecodeError struct {
	Offset int
	Err    error
	Msg    string
}

func (e *DecodeError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("term: decode at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("term: decode at offset %d: %v: %s", e.Offset, e.Err, e.Msg)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var atomIndex = func() map[string]uint64 {
	m := make(map[string]uint64, len(AtomNames))
	for i, name := range AtomNames {
		m[name] = uint64(i)
	}
	return m
}()

// Dump serializes t.
func Dump(t *Term) []byte {
	return AppendBinary(nil, t)
}

// AppendBinary appends the serialization of t to buf.
func AppendBinary(buf []byte, t *Term) []byte {
	switch t.kind {
	case KindAtom:
		buf = append(buf, tagAtom)
		return binary.AppendUvarint(buf, atomIndex[t.name])
	case KindNVar:
		buf = append(buf, tagNVar)
		return appendName(buf, t.name)
	case KindIVar:
		buf = append(buf, tagIVar)
		return binary.AppendUvarint(buf, uint64(t.rank))
	case KindApp:
		head, args := t.Spine()
		if head.kind == KindAtom {
			buf = append(buf, tagSpine)
			buf = binary.AppendUvarint(buf, uint64(len(args))<<spineShift|atomIndex[head.name])
		} else {
			buf = append(buf, tagApp)
			buf = binary.AppendUvarint(buf, uint64(len(args)))
			buf = AppendBinary(buf, head)
		}
		for _, arg := range args {
			buf = AppendBinary(buf, arg)
		}
		return buf
	case KindJoin:
		branches := t.JoinTerms()
		buf = append(buf, tagJoin)
		buf = binary.AppendUvarint(buf, uint64(len(branches)))
		for _, b := range branches {
			buf = AppendBinary(buf, b)
		}
		return buf
	case KindAbs:
		return AppendBinary(append(buf, tagAbs), t.a)
	case KindQuote:
		return AppendBinary(append(buf, tagQuote), t.a)
	case KindFun:
		buf = appendName(append(buf, tagFun), t.a.name)
		return AppendBinary(buf, t.b)
	case KindLet:
		buf = appendName(append(buf, tagLet), t.a.name)
		buf = AppendBinary(buf, t.b)
		return AppendBinary(buf, t.c)
	}
	panic(fmt.Sprintf("term: cannot serialize kind %s", t.kind))
}

func appendName(buf []byte, name string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(name)))
	return append(buf, name...)
}

// Encode writes the serialization of t to w.
func Encode(w io.Writer, t *Term) error {
	if _, err := w.Write(Dump(t)); err != nil {
		return errwrap.Wrapf(err, "can't write term")
	}
	return nil
}

// Load reads exactly one term from data.
func Load(data []byte) (*Term, error) {
	d := &Decoder{r: bytes.NewReader(data)}
	t, err := d.Decode()
	if err == io.EOF {
		return nil, &DecodeError{Offset: 0, Err: ErrTruncated, Msg: "empty input"}
	}
	if err != nil {
		return nil, err
	}
	if d.offset != len(data) {
		return nil, &DecodeError{Offset: d.offset, Err: ErrMalformed, Msg: "trailing bytes"}
	}
	return t, nil
}

// Decoder reads a stream of serialized terms.
type Decoder struct {
	r      io.ByteReader
	offset int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br}
}

// Decode reads the next term. It returns io.EOF when the stream ends cleanly
// between terms and a *DecodeError otherwise.
func (d *Decoder) Decode() (*Term, error) {
	tag, err := d.r.ReadByte()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &DecodeError{Offset: d.offset, Err: err}
	}
	d.offset++
	return d.decodeTagged(tag)
}

func (d *Decoder) decodeTerm() (*Term, error) {
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}
	return d.decodeTagged(tag)
}

func (d *Decoder) decodeTagged(tag byte) (*Term, error) {
	switch tag {
	case tagAtom:
		return d.readAtom()
	case tagNVar:
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		return NVar(name), nil
	case tagIVar:
		rank, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		if rank > 1<<32-1 {
			return nil, d.malformed("rank %d out of range", rank)
		}
		return IVar(uint32(rank)), nil
	case tagApp:
		argc, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		head, err := d.decodeTerm()
		if err != nil {
			return nil, err
		}
		return d.readArgs(head, argc)
	case tagSpine:
		packed, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		idx := packed & (1<<spineShift - 1)
		if idx >= uint64(len(AtomNames)) {
			return nil, d.malformed("unknown atom index %d", idx)
		}
		return d.readArgs(Atom(AtomNames[idx]), packed>>spineShift)
	case tagJoin:
		n, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		var branches []*Term
		for i := uint64(0); i < n; i++ {
			b, err := d.decodeTerm()
			if err != nil {
				return nil, err
			}
			branches = append(branches, b)
		}
		return JoinAll(branches...), nil
	case tagAbs, tagQuote:
		body, err := d.decodeTerm()
		if err != nil {
			return nil, err
		}
		if tag == tagAbs {
			return Abs(body), nil
		}
		return Quote(body), nil
	case tagFun:
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		body, err := d.decodeTerm()
		if err != nil {
			return nil, err
		}
		return Fun(NVar(name), body), nil
	case tagLet:
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		defn, err := d.decodeTerm()
		if err != nil {
			return nil, err
		}
		body, err := d.decodeTerm()
		if err != nil {
			return nil, err
		}
		return Let(NVar(name), defn, body), nil
	}
	return nil, d.malformed("unknown tag 0x%02x", tag)
}

func (d *Decoder) readArgs(head *Term, argc uint64) (*Term, error) {
	for i := uint64(0); i < argc; i++ {
		arg, err := d.decodeTerm()
		if err != nil {
			return nil, err
		}
		head = App(head, arg)
	}
	return head, nil
}

func (d *Decoder) readAtom() (*Term, error) {
	idx, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if idx >= uint64(len(AtomNames)) {
		return nil, d.malformed("unknown atom index %d", idx)
	}
	return Atom(AtomNames[idx]), nil
}

func (d *Decoder) readName() (string, error) {
	n, err := d.readUvarint()
	if err != nil {
		return "", err
	}
	if n == 0 || n > maxNameLen {
		return "", d.malformed("bad name length %d", n)
	}
	buf := make([]byte, n)
	for i := range buf {
		if buf[i], err = d.readByte(); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err == io.EOF {
		return 0, &DecodeError{Offset: d.offset, Err: ErrTruncated}
	}
	if err != nil {
		return 0, &DecodeError{Offset: d.offset, Err: err}
	}
	d.offset++
	return b, nil
}

func (d *Decoder) readUvarint() (uint64, error) {
	v, err := binary.ReadUvarint(byteCounter{d})
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return 0, de
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, &DecodeError{Offset: d.offset, Err: ErrTruncated}
		}
		return 0, &DecodeError{Offset: d.offset, Err: ErrMalformed, Msg: err.Error()}
	}
	return v, nil
}

func (d *Decoder) malformed(format string, args ...interface{}) error {
	return &DecodeError{Offset: d.offset, Err: ErrMalformed, Msg: fmt.Sprintf(format, args...)}
}

// byteCounter lets binary.ReadUvarint advance the decoder offset.
type byteCounter struct{ d *Decoder }

func (c byteCounter) ReadByte() (byte, error) {
	return c.d.readByte()
}
