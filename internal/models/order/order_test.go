package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{NEW, INPROGRESS, ATCUSTOMS, DELIVERED} {
		assert.True(t, s.Valid(), s)
	}

	for _, s := range []Status{"", "shipped", "NEW", "In_Progress"} {
		assert.False(t, s.Valid(), s)
	}
}
