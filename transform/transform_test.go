package transform

import (
	"testing"

	"fortio.org/assert"
)

func TestExtractVariables(t *testing.T) {
	vars, err := ExtractVariables("conv_rate * 100 + max(acc_rate, bias) > threshold ? 1 : 0")
	assert.Equal(t, err, nil)
	assert.Equal(t, vars, []string{"acc_rate", "bias", "conv_rate", "threshold"})

	vars, err = ExtractVariables("weights[slot] * scores.top")
	assert.Equal(t, err, nil)
	assert.Equal(t, vars, []string{"scores", "slot", "weights"})

	if _, err := ExtractVariables("a +"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExprTransformApply(t *testing.T) {
	tr, err := NewExprTransform(map[string]string{
		"conv_rate_pct": "conv_rate * 100",
		"boosted":       "conv_rate + bonus",
	})
	assert.Equal(t, err, nil)
	assert.Equal(t, tr.Variables(), []string{"bonus", "conv_rate"})

	in := NewFrame(3)
	in.Columns["conv_rate"] = []interface{}{0.5, 0.25, nil}
	in.Columns["bonus"] = []interface{}{1.0, nil, 1.0}

	out, err := Run(tr.Func(), in)
	assert.Equal(t, err, nil)
	assert.Equal(t, out["conv_rate_pct"], []interface{}{50.0, 25.0, nil})
	assert.Equal(t, out["boosted"], []interface{}{1.5, nil, nil})
}

func TestRunChecksAlignment(t *testing.T) {
	fn := func(in Frame) (map[string][]interface{}, error) {
		return map[string][]interface{}{"x": {1}}, nil
	}
	if _, err := Run(fn, NewFrame(2)); err == nil {
		t.Fatal("expected misaligned output error")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("double", func(in Frame) (map[string][]interface{}, error) {
		out := make([]interface{}, in.NumRows)
		for i, v := range in.Columns["x"] {
			out[i] = v.(int) * 2
		}
		return map[string][]interface{}{"y": out}, nil
	})
	fn, ok := r.Get("double")
	assert.Equal(t, ok, true)
	in := NewFrame(2)
	in.Columns["x"] = []interface{}{1, 2}
	out, err := fn(in)
	assert.Equal(t, err, nil)
	assert.Equal(t, out["y"], []interface{}{2, 4})

	_, ok = r.Get("missing")
	assert.Equal(t, ok, false)
}
