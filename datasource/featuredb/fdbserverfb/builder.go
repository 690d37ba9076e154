package fdbserverfb

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// BuildRecordBlock serializes one RecordBlock holding values in order.
func BuildRecordBlock(values [][]byte) []byte {
	builder := flatbuffers.NewBuilder(1024)

	columns := make([]flatbuffers.UOffsetT, len(values))
	for i, v := range values {
		data := builder.CreateByteVector(v)
		UInt8ValueColumnStart(builder)
		UInt8ValueColumnAddValue(builder, data)
		columns[i] = UInt8ValueColumnEnd(builder)
	}

	RecordBlockStartValuesVector(builder, len(columns))
	for i := len(columns) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(columns[i])
	}
	vector := builder.EndVector(len(columns))

	RecordBlockStart(builder)
	RecordBlockAddValues(builder, vector)
	builder.Finish(RecordBlockEnd(builder))
	return builder.FinishedBytes()
}
