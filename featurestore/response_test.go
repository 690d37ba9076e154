package featurestore

import (
	"testing"
	"time"

	"fortio.org/assert"
)

func testResponse() *OnlineResponse {
	ids := newFeatureVector("driver_id", 2)
	ids.Values = []interface{}{int64(1), int64(2)}
	ids.Statuses = []FieldStatus{FieldStatusPresent, FieldStatusPresent}

	rates := newFeatureVector("conv_rate", 2)
	rates.Values = []interface{}{[]float64{0.5, 0.25}, nil}
	rates.Statuses = []FieldStatus{FieldStatusPresent, FieldStatusNotFound}
	rates.EventTimestamps[0] = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	return &OnlineResponse{NumRows: 2, Vectors: []*FeatureVector{ids, rates}}
}

func TestResponseRowsAndColumns(t *testing.T) {
	response := testResponse()

	rows := response.ToRows()
	assert.Equal(t, 2, len(rows))
	assert.Equal(t, interface{}(int64(2)), rows[1]["driver_id"])
	assert.Equal(t, nil, rows[1]["conv_rate"])

	columns := response.ToColumns()
	assert.Equal(t, []interface{}{int64(1), int64(2)}, columns["driver_id"])
}

func TestResponseToStruct(t *testing.T) {
	s, err := testResponse().ToStruct()
	assert.NoError(t, err)

	names := s.Fields["metadata"].GetStructValue().Fields["feature_names"].GetListValue().AsSlice()
	assert.Equal(t, []interface{}{"driver_id", "conv_rate"}, names)

	results := s.Fields["results"].GetListValue().Values
	rates := results[1].GetStructValue()
	assert.Equal(t, []interface{}{[]interface{}{0.5, 0.25}, nil}, rates.Fields["values"].GetListValue().AsSlice())
	assert.Equal(t, []interface{}{"PRESENT", "NOT_FOUND"}, rates.Fields["statuses"].GetListValue().AsSlice())
	assert.Equal(t, []interface{}{"2024-05-01T08:00:00Z", nil}, rates.Fields["event_timestamps"].GetListValue().AsSlice())

	ids := results[0].GetStructValue()
	assert.Equal(t, []interface{}{1.0, 2.0}, ids.Fields["values"].GetListValue().AsSlice())
}

func TestFieldStatusString(t *testing.T) {
	assert.Equal(t, "PRESENT", FieldStatusPresent.String())
	assert.Equal(t, "NOT_FOUND", FieldStatusNotFound.String())
	assert.Equal(t, "INVALID", FieldStatus(9).String())
}
