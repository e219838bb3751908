package anymerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"anym/anymerr"
)

func TestOpError_Message(t *testing.T) {
	err := anymerr.InvalidArgument("seqm.grouped", "size must be positive, got %d", 0)
	assert.Equal(t, "seqm.grouped: invalid_argument: size must be positive, got 0", err.Error())

	var nilErr *anymerr.OpError
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestOpError_MatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", anymerr.TypeMismatch("canonical.unwrap", "want []int"))

	assert.True(t, errors.Is(err, anymerr.ErrTypeMismatch))
	assert.False(t, errors.Is(err, anymerr.ErrInvalidArgument))
	assert.True(t, anymerr.IsKind(err, anymerr.KindTypeMismatch))
	assert.False(t, anymerr.IsKind(errors.New("plain"), anymerr.KindTypeMismatch))
}

func TestInvalidConfig_KeepsCause(t *testing.T) {
	cause := errors.New("bad yaml")
	err := anymerr.InvalidConfig("config.load", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, anymerr.ErrInvalidConfig)
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := anymerr.Upstream("convert.Supplier", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, anymerr.ErrUpstream)
	assert.True(t, anymerr.IsKind(err, anymerr.KindUpstream))
	assert.Equal(t, "convert.Supplier: upstream: connection reset", err.Error())
}
