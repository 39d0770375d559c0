package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageTotalPages(t *testing.T) {
	cases := []struct {
		name     string
		total    uint64
		pageSize int
		want     int
	}{
		{"exact multiple", 100, 50, 2},
		{"remainder adds a page", 101, 50, 3},
		{"single partial page", 7, 10, 1},
		{"empty result", 0, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPage(nil, tc.total, 1, tc.pageSize)
			assert.Equal(t, tc.want, p.TotalPages)
		})
	}
}

func TestListFilterIsZero(t *testing.T) {
	assert.True(t, ListFilter{}.IsZero())
	assert.False(t, ListFilter{NNF: "123"}.IsZero())
}

func TestUpdateIsEmpty(t *testing.T) {
	assert.True(t, UpdateIdentification{}.IsEmpty())

	nat := "Venda"
	assert.False(t, UpdateIdentification{NatOp: &nat}.IsEmpty())
}
