package fb

import (
	"bytes"

	flatbuffers "github.com/google/flatbuffers/go"
)

type Entry struct {
	_tab flatbuffers.Table
}

func (rcv *Entry) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Entry) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *Entry) Path() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func (rcv *Entry) DataOffset() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *Entry) DataSize() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *Entry) OriginalSize() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(10))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *Entry) Hash(j int) byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(12))
	if o != 0 {
		a := rcv._tab.Vector(o)
		return rcv._tab.GetByte(a + flatbuffers.UOffsetT(j*1))
	}
	return 0
}

func (rcv *Entry) HashLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(12))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *Entry) HashBytes() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(12))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func (rcv *Entry) Compression() Compression {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(14))
	if o != 0 {
		return Compression(rcv._tab.GetByte(o + rcv._tab.Pos))
	}
	return CompressionNone
}

// LookupByKey binary searches the sorted entry vector at vectorLocation for
// key and points rcv at the match.
func (rcv *Entry) LookupByKey(key string, vectorLocation flatbuffers.UOffsetT, buf []byte) bool {
	span := flatbuffers.GetUOffsetT(buf[vectorLocation-4:])
	start := flatbuffers.UOffsetT(0)
	bKey := []byte(key)
	for span != 0 {
		middle := span / 2
		tableOffset := vectorLocation + 4*(start+middle)
		tableOffset += flatbuffers.GetUOffsetT(buf[tableOffset:])
		obj := &Entry{}
		obj.Init(buf, tableOffset)
		comp := bytes.Compare(obj.Path(), bKey)
		switch {
		case comp > 0:
			span = middle
		case comp < 0:
			middle++
			start += middle
			span -= middle
		default:
			rcv.Init(buf, tableOffset)
			return true
		}
	}
	return false
}

func EntryStart(builder *flatbuffers.Builder) {
	builder.StartObject(6)
}

func EntryAddPath(builder *flatbuffers.Builder, path flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, path, 0)
}

func EntryAddDataOffset(builder *flatbuffers.Builder, dataOffset uint64) {
	builder.PrependUint64Slot(1, dataOffset, 0)
}

func EntryAddDataSize(builder *flatbuffers.Builder, dataSize uint64) {
	builder.PrependUint64Slot(2, dataSize, 0)
}

func EntryAddOriginalSize(builder *flatbuffers.Builder, originalSize uint64) {
	builder.PrependUint64Slot(3, originalSize, 0)
}

func EntryAddHash(builder *flatbuffers.Builder, hash flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(4, hash, 0)
}

func EntryStartHashVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(1, numElems, 1)
}

func EntryAddCompression(builder *flatbuffers.Builder, compression Compression) {
	builder.PrependByteSlot(5, byte(compression), 0)
}

func EntryEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
