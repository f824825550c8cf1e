package main

import (
	"testing"

	"github.com/darkaengl/aura-sub000/pkg/simplify"
	"github.com/stretchr/testify/assert"
)

func TestReductionSummary(t *testing.T) {
	result := &simplify.Result{
		WordReductionPercent: 40.0,
		Metadata: simplify.Metadata{
			OriginalWordCount:   100,
			SimplifiedWordCount: 60,
		},
	}

	assert.Equal(t, "(40% shorter: 60 words down from 100)", reductionSummary(result))
}
