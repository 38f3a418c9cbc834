package errors

import (
	"runtime"
	"strings"
)

// maxStackDepth 스택 트레이스에 기록할 최대 프레임 수입니다.
const maxStackDepth = 16

// StackFrame 에러 발생 시점의 단일 호출 스택 정보를 나타냅니다.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// captureStack 현재 고루틴의 호출 스택을 수집합니다.
// skip은 captureStack 호출자 기준으로 건너뛸 프레임 수입니다.
func captureStack(skip int) []StackFrame {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]StackFrame, 0, n)
	for {
		frame, more := frames.Next()

		// 런타임 내부 프레임은 제외한다.
		if !strings.HasPrefix(frame.Function, "runtime.") {
			stack = append(stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})
		}

		if !more {
			break
		}
	}

	return stack
}
