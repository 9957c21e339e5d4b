package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextInfo_Clone(t *testing.T) {
	tests := []struct {
		name string
		in   ContextInfo
	}{
		{"nil slices", ContextInfo{}},
		{"empty slices", ContextInfo{Entities: []string{}, Keywords: []string{}}},
		{"filled slices", ContextInfo{Entities: []string{"Boston"}, Keywords: []string{"rain"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.in.Clone()
			assert.Equal(t, tt.in, out)
			assert.Equal(t, tt.in.Entities == nil, out.Entities == nil)
			assert.Equal(t, tt.in.Keywords == nil, out.Keywords == nil)
		})
	}
}

func TestContextInfo_CloneDoesNotAlias(t *testing.T) {
	in := ContextInfo{Entities: []string{"Boston"}, Keywords: []string{"rain"}}
	out := in.Clone()

	out.Entities[0] = "Paris"
	out.Keywords[0] = "snow"

	assert.Equal(t, "Boston", in.Entities[0])
	assert.Equal(t, "rain", in.Keywords[0])
}
