package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		p          Pagination
		wantLimit  int
		wantOffset int
	}{
		{name: "unpaged", p: Pagination{}, wantLimit: 0, wantOffset: 0},
		{name: "page size without page", p: Pagination{PageSize: 25}, wantLimit: 25, wantOffset: 0},
		{name: "first page", p: Pagination{Page: 1, PageSize: 25}, wantLimit: 25, wantOffset: 0},
		{name: "third page", p: Pagination{Page: 3, PageSize: 25}, wantLimit: 25, wantOffset: 50},
		{name: "page without size is unpaged", p: Pagination{Page: 3}, wantLimit: 0, wantOffset: 0},
		{name: "negative size is unpaged", p: Pagination{Page: 2, PageSize: -1}, wantLimit: 0, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, tt.p.Limit())
			assert.Equal(t, tt.wantOffset, tt.p.Offset())
		})
	}
}
