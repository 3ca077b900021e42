// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaperListValidate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		list   PaperList
		errMsg string
	}{
		{name: "empty list is valid", list: nil},
		{
			name: "descending dates",
			list: PaperList{{ID: "a", Submitted: day(3)}, {ID: "b", Submitted: day(2)}, {ID: "c", Submitted: day(1)}},
		},
		{
			name: "equal dates are allowed",
			list: PaperList{{ID: "a", Submitted: day(2)}, {ID: "b", Submitted: day(2)}},
		},
		{
			name:   "missing id",
			list:   PaperList{{ID: "a", Submitted: day(2)}, {Submitted: day(1)}},
			errMsg: "paper 1 has no id",
		},
		{
			name:   "duplicate id",
			list:   PaperList{{ID: "a", Submitted: day(2)}, {ID: "a", Submitted: day(1)}},
			errMsg: `duplicate paper id "a"`,
		},
		{
			name:   "ascending dates",
			list:   PaperList{{ID: "a", Submitted: day(1)}, {ID: "b", Submitted: day(2)}},
			errMsg: "newer than its predecessor",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.list.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestPaperListIDs(t *testing.T) {
	list := PaperList{{ID: "2301.00002"}, {ID: "2301.00001"}}
	assert.Equal(t, []string{"2301.00002", "2301.00001"}, list.IDs())
	assert.Empty(t, PaperList(nil).IDs())
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("arXiv API request: %w", ErrSourceUnavailable), "SourceUnavailable"},
		{fmt.Errorf("parsing: %w", ErrSourceMalformed), "SourceMalformed"},
		{fmt.Errorf("paper 3: %w", ErrRender), "RenderError"},
		{fmt.Errorf("push: %w", ErrPublishConflict), "PublishConflict"},
		{errors.New("disk full"), "Internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}
}

func TestRenderedPageIsEmpty(t *testing.T) {
	assert.True(t, RenderedPage{}.IsEmpty())
	assert.False(t, RenderedPage{Content: []byte("<html></html>")}.IsEmpty())
}
