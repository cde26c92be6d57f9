package dbtypes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUUIDArrayRoundTrip(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	b := uuid.New()
	arr := UUIDArray{a, b, a}

	val, err := arr.Value()
	require.NoError(t, err)

	var decoded UUIDArray
	require.NoError(t, decoded.Scan(val))
	require.Equal(t, arr, decoded, "order and duplicates must survive the round trip")
}

func TestUUIDArrayEmpty(t *testing.T) {
	t.Parallel()

	val, err := UUIDArray{}.Value()
	require.NoError(t, err)
	require.Equal(t, "{}", val)

	var decoded UUIDArray
	require.NoError(t, decoded.Scan("{}"))
	require.Empty(t, decoded)
}

func TestUUIDArrayScanNil(t *testing.T) {
	t.Parallel()

	var decoded UUIDArray
	require.NoError(t, decoded.Scan(nil))
	require.Empty(t, decoded)
}

func TestUUIDArrayScanQuotedLiteral(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	var decoded UUIDArray
	require.NoError(t, decoded.Scan(`{"`+a.String()+`"}`))
	require.Equal(t, UUIDArray{a}, decoded)
}

func TestUUIDArrayScanGarbage(t *testing.T) {
	t.Parallel()

	var decoded UUIDArray
	require.Error(t, decoded.Scan("{not-a-uuid}"))
	require.Error(t, decoded.Scan(42))
}
