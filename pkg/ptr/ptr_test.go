package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awardrobe/pricetracker/pkg/ptr"
)

func TestDeref(t *testing.T) {
	assert.Equal(t, int64(1800), ptr.Deref(ptr.New(int64(1800)), 0))
	assert.Equal(t, "fallback", ptr.Deref[string](nil, "fallback"))
}
