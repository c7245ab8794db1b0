package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type LLMClient struct {
	mock.Mock
}

func (c *LLMClient) Complete(ctx context.Context, instruction, prompt string) (string, error) {
	args := c.Called(instruction, prompt)
	return args.String(0), args.Error(1)
}
