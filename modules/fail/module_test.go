package fail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	assert.EqualError(t, Run(context.Background(), &Input{Message: "boom"}), "boom")
	assert.EqualError(t, Run(context.Background(), &Input{}), "failed on purpose")
}
