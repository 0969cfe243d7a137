package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,max=10"`
	Count int    `validate:"min=1,max=5"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(&sample{Name: "ok", Count: 3}))

	err := ValidateStruct(&sample{Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name: field is required")

	err = ValidateStruct(&sample{Name: "ok", Count: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Count: must be at least 1")

	err = ValidateStruct(&sample{Name: "ok", Count: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Count: must be at most 5")
}

func TestValidateStructNil(t *testing.T) {
	require.Error(t, ValidateStruct(nil))
}

func TestValidateStoreSizeKb(t *testing.T) {
	require.NoError(t, ValidateStoreSizeKb(1))
	require.NoError(t, ValidateStoreSizeKb(1024))
	require.Error(t, ValidateStoreSizeKb(0))
	require.Error(t, ValidateStoreSizeKb(-5))
	require.Error(t, ValidateStoreSizeKb(MaxStoreSizeKb+1))
}

func TestValidateGaugeName(t *testing.T) {
	require.NoError(t, ValidateGaugeName("go.runtime/memstats.heapAlloc"))
	require.NoError(t, ValidateGaugeName("java.lang:type=Memory"))

	require.Error(t, ValidateGaugeName(""))
	require.Error(t, ValidateGaugeName("bad{name}"))
	require.Error(t, ValidateGaugeName(strings.Repeat("x", MaxGaugeNameLength+1)))
}
