package trace_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/domain/trace"
)

func TestValue_UnmarshalKeepsKeyOrder(t *testing.T) {
	var v trace.Value
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"alpha":{"b":true,"a":null},"mid":[1,"x"]}`), &v))

	assert.Equal(t, trace.KindObject, v.Kind())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())
	assert.Equal(t, []string{"b", "a"}, v.Get("alpha").Keys())
	assert.True(t, v.Get("alpha").Get("a").IsNull())
	assert.False(t, v.Get("missing").IsDefined())

	mid := v.Get("mid")
	require.Equal(t, 2, mid.Len())
	s, ok := mid.Items()[1].AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestValue_NumbersKeepSourceText(t *testing.T) {
	var v trace.Value
	require.NoError(t, json.Unmarshal([]byte(`4.40`), &v))

	assert.Equal(t, "4.40", v.NumberText())
	f, ok := v.AsFloat()
	assert.True(t, ok)
	assert.InDelta(t, 4.4, f, 1e-9)
}

func TestValue_MarshalRoundTripsOrder(t *testing.T) {
	src := `{"b":[1,2,{"y":"z"}],"a":false,"c":null}`
	var v trace.Value
	require.NoError(t, json.Unmarshal([]byte(src), &v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestValue_UndefinedMarshalsAsNull(t *testing.T) {
	out, err := json.Marshal(trace.Value{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestValue_Interface(t *testing.T) {
	v := trace.Object(
		trace.Member{Key: "n", Value: trace.Float(2.5)},
		trace.Member{Key: "list", Value: trace.Array(trace.Bool(true), trace.Null())},
	)
	assert.Equal(t, map[string]any{"n": 2.5, "list": []any{true, nil}}, v.Interface())
}

func TestValue_RejectsTrailingData(t *testing.T) {
	var v trace.Value
	assert.Error(t, v.UnmarshalJSON([]byte(`{} {}`)))
}
