package stacktrace

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gotp/internal/pkg/goroutine.(*Task).run(0xc000010000)
	/src/gotp/internal/pkg/goroutine/periodic.go:88 +0x1a
github.com/shandysiswandi/gotp/internal/authenticator/usecase.(*Usecase).CurrentCode(...)
	/src/gotp/internal/authenticator/usecase/code.go:21
main.main()
	/src/gotp/main.go:12 +0x25
`)

	assert.Equal(t, []string{
		"internal/pkg/goroutine/periodic.go:88",
		"internal/authenticator/usecase/code.go:21",
	}, InternalPaths(stack))
}

func TestInternalPaths_Live(t *testing.T) {
	paths := InternalPaths(debug.Stack())
	assert.NotEmpty(t, paths)
	assert.Contains(t, paths[0], "internal/pkg/stacktrace/stacktrace_test.go:")
}

func TestInternalPaths_Empty(t *testing.T) {
	assert.Empty(t, InternalPaths(nil))
}
