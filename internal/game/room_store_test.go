// internal/game/room_store_test.go
package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankroll-games/bankroll/internal/models"
)

func TestNewCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := newCode()
		require.Len(t, code, codeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch), "unexpected glyph %q in code %s", ch, code)
		}
	}
}

func TestRoomStoreLifecycle(t *testing.T) {
	s := NewRoomStore()
	assert.Equal(t, 0, s.Count())

	code := s.NewCode()
	r := NewRoom(code, 3, models.DefaultShopConfig(), nil, testLogger())
	s.Add(r)
	assert.Equal(t, 1, s.Count())

	got, ok := s.Get(code)
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = s.Get("ZZZZ")
	assert.False(t, ok)

	s.Delete(code)
	assert.Equal(t, 0, s.Count())
	_, ok = s.Get(code)
	assert.False(t, ok)
}

func TestNewCodeAvoidsLiveRooms(t *testing.T) {
	s := NewRoomStore()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := s.NewCode()
		require.False(t, seen[code], "store handed out a code already in use")
		seen[code] = true
		s.Add(NewRoom(code, 3, models.DefaultShopConfig(), nil, testLogger()))
	}
}
