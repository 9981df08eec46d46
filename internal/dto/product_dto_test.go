package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockValue_Unmarshal(t *testing.T) {
	var s StockValue

	require.NoError(t, json.Unmarshal([]byte(`12`), &s))
	assert.False(t, s.Unlimited)
	assert.Equal(t, 12, s.Count)

	require.NoError(t, json.Unmarshal([]byte(`"unlimited"`), &s))
	assert.True(t, s.Unlimited)

	// Historical exports carry numeric strings
	require.NoError(t, json.Unmarshal([]byte(`"7"`), &s))
	assert.False(t, s.Unlimited)
	assert.Equal(t, 7, s.Count)

	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`true`), &s))
	assert.Error(t, json.Unmarshal([]byte(`-5`), &s))
}

func TestStockValue_Marshal(t *testing.T) {
	b, err := json.Marshal(FiniteStock(3))
	require.NoError(t, err)
	assert.Equal(t, `3`, string(b))

	b, err = json.Marshal(UnlimitedStock())
	require.NoError(t, err)
	assert.Equal(t, `"unlimited"`, string(b))
}
