package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessorRunAll(t *testing.T) {
	var order []int
	chain := NewPreProcessor([]ProcessorFunc{
		func(ctx context.Context) error { order = append(order, 1); return nil },
		func(ctx context.Context) error { order = append(order, 2); return nil },
	})

	require.NoError(t, chain.Run(context.Background()))
	assert.Equal(t, []int{1, 2}, order)
}

func TestPreProcessorShortCircuit(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	chain := NewPreProcessor([]ProcessorFunc{
		func(ctx context.Context) error { order = append(order, 1); return boom },
		func(ctx context.Context) error { order = append(order, 2); return nil },
	})

	err := chain.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// 后续函数不再执行
	assert.Equal(t, []int{1}, order)
}
