package execx

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner 子进程执行抽象（测试时可替换为桩实现）
// stdout 与 stderr 分开捕获：检测器约定 stdout 只输出 JSON，
// 诊断文本全部走 stderr，出错时两者都要带回去排障。
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
	LookPath(file string) (string, error)
}

// OSRunner 真实子进程执行器
// 通过 CommandContext 执行，ctx 超时/取消时进程会被杀掉而不是放任不管。
type OSRunner struct{}

// Run 执行命令并分别捕获 stdout/stderr
func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// LookPath 查找可执行文件
func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
