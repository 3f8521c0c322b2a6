package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" Reading ")
	require.NoError(t, err)
	assert.Equal(t, StatusReading, got)

	_, err = ParseStatus("finished")
	assert.True(t, errors.Is(err, ErrInvalidStatus))

	_, err = ParseStatus("")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestCanTransition(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition("lost", StatusRead))
	assert.False(t, CanTransition(StatusRead, "lost"))
}

func TestPatch(t *testing.T) {
	t.Run("set and clear conflict", func(t *testing.T) {
		err := Patch{Rating: ptr(4.0), ClearRating: true}.Validate()
		assert.True(t, errors.Is(err, ErrInvalidPatch))

		err = Patch{Review: ptr("x"), ClearReview: true}.Validate()
		assert.True(t, errors.Is(err, ErrInvalidPatch))
	})

	t.Run("bad status", func(t *testing.T) {
		s := Status("DONE")
		assert.True(t, errors.Is(Patch{Status: &s}.Validate(), ErrInvalidStatus))
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, Patch{}.Empty())
		assert.False(t, Patch{ClearReview: true}.Empty())
	})

	t.Run("apply", func(t *testing.T) {
		read := StatusRead
		e := Entry{Status: StatusReading, Rating: ptr(6.0), Review: ptr("ok")}

		got := Patch{Status: &read, ClearRating: true, Review: ptr("great")}.Apply(e)

		assert.Equal(t, StatusRead, got.Status)
		assert.Nil(t, got.Rating)
		assert.Equal(t, "great", *got.Review)
		assert.Equal(t, "ok", *e.Review)
	})
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := persistenceErr("create", cause)

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "create", pe.Op)
	assert.True(t, errors.Is(err, cause))
	assert.Same(t, err, persistenceErr("update", err))
	assert.Nil(t, persistenceErr("x", nil))
}
