package detector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/errorutil"
	"cdp/scansvc/pkg/logger"
)

// stubRunner 可编程的子进程桩，记录调用参数
type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error
	name   string
	args   []string
}

func (r *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	return r.stdout, r.stderr, r.err
}

func (r *stubRunner) LookPath(name string) (string, error) {
	return name, nil
}

func newTestPrimary(t *testing.T, runner *stubRunner) (*Primary, string) {
	tmpDir := t.TempDir()
	p := NewPrimary(PrimaryOptions{
		Python: "python3",
		Script: "/opt/ml/run_diagnosis.py",
		TmpDir: tmpDir,
		Runner: runner,
	}, logger.NopLogger{})
	return p, tmpDir
}

func assertTmpDirEmpty(t *testing.T, tmpDir string) {
	t.Helper()
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp image should be cleaned up")
}

func TestPrimaryDetectSuccess(t *testing.T) {
	runner := &stubRunner{
		stdout: []byte(`{"crop":"Tomato","disease":"Early blight","original_label":"Tomato___Early_blight","confidence":93.5,"confidence_level":"Very High"}`),
	}
	p, tmpDir := newTestPrimary(t, runner)

	diag, err := p.Detect(context.Background(), []byte("image"))
	require.NoError(t, err)

	assert.Equal(t, "Tomato", diag.Crop)
	assert.Equal(t, "Tomato___Early_blight", diag.DiseaseKey)
	assert.InDelta(t, 0.935, diag.Confidence, 1e-9)
	assert.Equal(t, model.ConfidenceVeryHigh, diag.ConfidenceLevel)
	assert.False(t, diag.IsHealthy)

	// 子进程调用契约：(imagePath, --json)
	assert.Equal(t, "python3", runner.name)
	require.Len(t, runner.args, 3)
	assert.Equal(t, "/opt/ml/run_diagnosis.py", runner.args[0])
	assert.Equal(t, tmpDir, filepath.Dir(runner.args[1]))
	assert.Equal(t, "--json", runner.args[2])

	assertTmpDirEmpty(t, tmpDir)
}

func TestPrimaryDetectHealthy(t *testing.T) {
	runner := &stubRunner{
		stdout: []byte(`{"crop":"Tomato","disease":"healthy","original_label":"Tomato___healthy","confidence":98.0}`),
	}
	p, _ := newTestPrimary(t, runner)

	diag, err := p.Detect(context.Background(), []byte("image"))
	require.NoError(t, err)

	assert.True(t, diag.IsHealthy)
	// 脚本没给分档时按置信度推导
	assert.Equal(t, model.ConfidenceVeryHigh, diag.ConfidenceLevel)
}

func TestPrimaryDetectProcessFailure(t *testing.T) {
	runner := &stubRunner{
		stderr: []byte("Traceback: model file missing"),
		err:    errors.New("exit status 1"),
	}
	p, tmpDir := newTestPrimary(t, runner)

	_, err := p.Detect(context.Background(), []byte("image"))
	require.Error(t, err)

	assert.Equal(t, errorutil.CodeDetectorUnavailable, errorutil.CodeOf(err))
	assert.True(t, errorutil.IsRetryable(err))
	assertTmpDirEmpty(t, tmpDir)
}

func TestPrimaryDetectMalformedOutput(t *testing.T) {
	runner := &stubRunner{
		stdout: []byte("Loading model...\nnot json at all"),
	}
	p, tmpDir := newTestPrimary(t, runner)

	_, err := p.Detect(context.Background(), []byte("image"))
	require.Error(t, err)

	assert.Equal(t, errorutil.CodeDetectorOutputMalformed, errorutil.CodeOf(err))
	assert.False(t, errorutil.IsRetryable(err))
	assertTmpDirEmpty(t, tmpDir)
}

func TestPrimaryDetectErrorField(t *testing.T) {
	// 脚本正常退出但在 JSON 里报错
	runner := &stubRunner{
		stdout: []byte(`{"error":"unsupported image format"}`),
	}
	p, tmpDir := newTestPrimary(t, runner)

	_, err := p.Detect(context.Background(), []byte("image"))
	require.Error(t, err)

	assert.Equal(t, errorutil.CodeDetectorUnavailable, errorutil.CodeOf(err))
	assertTmpDirEmpty(t, tmpDir)
}

func TestPrimaryDetectTimeout(t *testing.T) {
	runner := &stubRunner{err: errors.New("signal: killed")}
	p, tmpDir := newTestPrimary(t, runner)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := p.Detect(ctx, []byte("image"))
	require.Error(t, err)

	assert.Equal(t, errorutil.CodeDetectorUnavailable, errorutil.CodeOf(err))
	assert.Contains(t, err.Error(), "timed out")
	assertTmpDirEmpty(t, tmpDir)
}
