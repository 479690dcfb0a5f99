package poinet

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// encoder acumula campos no formato protobuf. Valores zero não são serializados (proto3).
type encoder struct {
	buf []byte
}

func newEncoder() *encoder {
	return &encoder{buf: make([]byte, 0, 128)}
}

func (e *encoder) Bytes() []byte {
	return e.buf
}

func (e *encoder) EncodeUvarint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

func (e *encoder) EncodeVarint(num protowire.Number, v int64) {
	e.EncodeUvarint(num, uint64(v))
}

// EncodeSint usa zigzag: coordenadas negativas ficam curtas.
func (e *encoder) EncodeSint(num protowire.Number, v int64) {
	e.EncodeUvarint(num, protowire.EncodeZigZag(v))
}

func (e *encoder) EncodeString(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, v)
}

func (e *encoder) EncodeBytes(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, v)
}

// EncodeSubmessage grava a submensagem mesmo vazia: num repeated o item precisa existir.
func (e *encoder) EncodeSubmessage(num protowire.Number, sub []byte) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, sub)
}

// decoder lê campos protobuf em sequência.
type decoder struct {
	buf []byte
}

func newDecoder(buf []byte) *decoder {
	return &decoder{buf: buf}
}

func (d *decoder) Done() bool {
	return len(d.buf) == 0
}

func (d *decoder) advance(n int) error {
	if n < 0 {
		return fmt.Errorf("poinet: %w", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return nil
}

func (d *decoder) ReadTag() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(d.buf)
	if err := d.advance(n); err != nil {
		return 0, 0, err
	}
	return num, typ, nil
}

func (d *decoder) ReadUvarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf)
	if err := d.advance(n); err != nil {
		return 0, err
	}
	return v, nil
}

func (d *decoder) ReadVarint() (int64, error) {
	v, err := d.ReadUvarint()
	return int64(v), err
}

func (d *decoder) ReadSint() (int64, error) {
	v, err := d.ReadUvarint()
	return protowire.DecodeZigZag(v), err
}

func (d *decoder) ReadBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.buf)
	if err := d.advance(n); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	return string(b), err
}

// SkipField pula o valor de um campo desconhecido (compatibilidade com versões novas).
func (d *decoder) SkipField(num protowire.Number, typ protowire.Type) error {
	return d.advance(protowire.ConsumeFieldValue(num, typ, d.buf))
}
