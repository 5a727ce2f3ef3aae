package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdp/scansvc/internal/model"
)

func TestLookupKnownDisease(t *testing.T) {
	cat := New()

	sol := cat.Lookup("Tomato___Early_blight")
	assert.Equal(t, "Tomato", sol.Crop)
	assert.Equal(t, model.SeverityMedium, sol.Severity)
	assert.NotEmpty(t, sol.Organic)
	assert.NotEmpty(t, sol.Chemical)
	assert.NotEmpty(t, sol.Prevention)

	sol = cat.Lookup("Potato___Late_blight")
	assert.Equal(t, model.SeverityCritical, sol.Severity)
}

func TestLookupHealthy(t *testing.T) {
	cat := New()

	// 收录的作物有专属养护方案
	sol := cat.Lookup("Tomato___healthy")
	assert.Equal(t, "Tomato", sol.Crop)
	assert.Equal(t, model.SeverityNone, sol.Severity)
	assert.NotEmpty(t, sol.Maintenance)

	// 未收录的健康作物走通用健康分支
	sol = cat.Lookup("Grape___healthy")
	assert.Equal(t, "Grape", sol.Crop)
	assert.Equal(t, model.SeverityNone, sol.Severity)
	assert.NotEmpty(t, sol.Maintenance)
}

func TestLookupUnknownDisease(t *testing.T) {
	cat := New()

	sol := cat.Lookup("Xyz___Totally_Unknown")
	assert.Equal(t, "Xyz", sol.Crop)
	// 病害名保留原始片段，不做下划线替换
	assert.Equal(t, "Totally_Unknown", sol.Disease)
	assert.Equal(t, model.SeverityUnknown, sol.Severity)
	assert.NotEmpty(t, sol.Recommendation)
	assert.NotEmpty(t, sol.Contacts)
}

func TestLookupNeverEmpty(t *testing.T) {
	cat := New()

	// 任何 key 都必须得到可用的 Solution
	for _, key := range []string{"", "garbage", "Analysis Error", "Not a plant image"} {
		sol := cat.Lookup(key)
		require.NotEmpty(t, sol.Message, "key=%q", key)
	}
}
