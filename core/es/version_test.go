package es

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	v1, v2 := Version(1), Version(2)
	require.True(t, v1 < v2)
	require.Equal(t, uint64(2), v2.Uint64())

	data, err := json.Marshal(v1)
	require.NoError(t, err)
	require.Equal(t, `1`, string(data))

	var x Version
	require.NoError(t, json.Unmarshal([]byte("1234"), &x))
	require.Equal(t, Version(1234), x)

	attr := x.SlogAttrWithKey("expected")
	require.Equal(t, "expected", attr.Key)
	require.Equal(t, slog.KindUint64, attr.Value.Kind())
}
