package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetention_Validate(t *testing.T) {
	assert.NoError(t, DefaultRetention().Validate())
	assert.NoError(t, LegacyRetention().Validate())
	assert.ErrorIs(t, Retention{MaxTurns: 0, KeepTurns: 0}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Retention{MaxTurns: 2, KeepTurns: 3}.Validate(), ErrInvalidConfig)
}

func TestRetention_ApplyLeavesShortHistoryAlone(t *testing.T) {
	turns := []Turn{{User: "a"}, {User: "b"}}
	assert.Equal(t, turns, DefaultRetention().Apply(turns))
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = NewStore(StoreTypeRedis)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewStore("etcd")
	assert.ErrorIs(t, err, ErrInvalidStoreType)

	_, err = NewStore(StoreTypeMemory, WithRetention(Retention{MaxTurns: 1, KeepTurns: 5}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
