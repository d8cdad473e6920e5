package serializer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	HP int
	MP int
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	values := map[EntityID]stats{1: {HP: 10, MP: 2}, 2: {HP: 30, MP: 5}}

	s.RegisterSaver(1, func(e EntityID) ([]byte, bool, error) {
		v, ok := values[e]
		if !ok {
			return nil, false, nil
		}
		data, err := EncodeGob(v)
		return data, true, err
	})

	loaded := make(map[EntityID]stats)
	s.RegisterLoader(1, func(e EntityID, payload []byte) error {
		v, err := DecodeGob[stats](payload)
		if err != nil {
			return err
		}
		loaded[e] = v
		return nil
	})

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf, []EntityID{1, 2}))

	var nextID EntityID
	require.NoError(t, s.Load(&buf, func() EntityID {
		nextID++
		return nextID
	}))

	assert.Equal(t, stats{HP: 10, MP: 2}, loaded[1])
	assert.Equal(t, stats{HP: 30, MP: 5}, loaded[2])
}

func TestLoadWithoutLoaderErrors(t *testing.T) {
	s := New()
	s.RegisterSaver(1, func(e EntityID) ([]byte, bool, error) {
		data, err := EncodeGob(stats{HP: 1})
		return data, true, err
	})

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf, []EntityID{1}))

	err := s.Load(&buf, func() EntityID { return 1 })
	assert.ErrorIs(t, err, ErrMismatchedSaverLoader)
}

func TestEncodeDecodeGob(t *testing.T) {
	data, err := EncodeGob(stats{HP: 5, MP: 1})
	require.NoError(t, err)

	v, err := DecodeGob[stats](data)
	require.NoError(t, err)
	assert.Equal(t, stats{HP: 5, MP: 1}, v)
}
