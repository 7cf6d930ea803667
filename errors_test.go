package modelbuilder_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/modelbuilder"
)

func TestLoadError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := modelbuilder.NewLoadError("messages", 3, errors.New("connection reset"))
		assert.Equal(t, "modelbuilder: load error in stage messages (page 3): connection reset", err.Error())
	})

	t.Run("ErrorWithoutPage", func(t *testing.T) {
		err := modelbuilder.NewLoadError("entities", 0, nil)
		assert.Equal(t, "modelbuilder: load error in stage entities", err.Error())
	})

	t.Run("IsLoadError", func(t *testing.T) {
		err := modelbuilder.NewLoadError("filters", 1, errors.New("boom"))
		assert.True(t, modelbuilder.IsLoadError(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, modelbuilder.IsLoadError(wrapped))

		// Non-matching error
		assert.False(t, modelbuilder.IsLoadError(errors.New("other error")))
		assert.False(t, modelbuilder.IsLoadError(nil))
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("timeout")
		err := modelbuilder.NewLoadError("optionsets", 0, cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestPagingError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := modelbuilder.NewPagingError(2, errors.New("unexpected EOF"))
		assert.Equal(t, "modelbuilder: malformed paging envelope on page 2: unexpected EOF", err.Error())
	})

	t.Run("MatchesBothSentinels", func(t *testing.T) {
		err := fmt.Errorf("fetch: %w", modelbuilder.NewPagingError(1, nil))
		assert.ErrorIs(t, err, modelbuilder.ErrMalformedPaging)
		assert.ErrorIs(t, err, modelbuilder.ErrLoadFailed)
		assert.True(t, modelbuilder.IsPagingError(err))
		assert.True(t, modelbuilder.IsLoadError(err))
	})

	t.Run("LoadErrorIsNotPaging", func(t *testing.T) {
		err := modelbuilder.NewLoadError("messages", 1, nil)
		assert.False(t, modelbuilder.IsPagingError(err))
	})
}

func TestCacheKey(t *testing.T) {
	k := modelbuilder.CacheKey{Source: "snapshot:org.msgpack", Entities: "account;contact", Global: true}
	assert.Equal(t, "snapshot:org.msgpack:account;contact::global", k.String())

	k.Global = false
	assert.Equal(t, "snapshot:org.msgpack:account;contact::local", k.String())
}
