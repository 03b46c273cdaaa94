package tests

import (
	"io"
	"os"
	"strings"
)

// captureStdOut перехватывает stdout на время fn. Чтение идёт в горутине,
// чтобы длинный вывод не упёрся в буфер pipe.
func captureStdOut(fn func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string, 1)
	go func() {
		var sb strings.Builder
		_, _ = io.Copy(&sb, r)
		done <- sb.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = orig
	out := <-done
	_ = r.Close()
	return out
}
