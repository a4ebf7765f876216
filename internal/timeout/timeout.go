// MIT License
//
// Copyright (c) 2025 Terragon Labs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package timeout bounds the wall-clock duration of a single operation.
//
// The wrapper races an operation against a timer. If the timer fires first,
// the caller gets a distinguishable *Error carrying the operation label; the
// underlying call is not cancelled, only abandoned. Its eventual result is
// drained and logged at debug level for diagnostics, never re-surfaced.
package timeout

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Error is returned when an operation exceeds its time bound.
type Error struct {
	// Label describes the operation, e.g. "getting installation for owner/repo".
	Label string
	// After is the bound that was exceeded.
	After time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("timed out after %s %s", e.After, e.Label)
}

// Run executes op, bounding its wall-clock duration. If op completes within d,
// its result and error are returned as-is. Otherwise Run returns a *Error
// naming the label, and op's late outcome is discarded (logged only).
//
// Exactly one outcome is produced per call. The timer is stopped when op wins
// so no pending timer leaks.
func Run[T any](d time.Duration, label string, logger *zap.Logger, op func() (T, error)) (T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	type outcome struct {
		val T
		err error
	}
	// Buffered so the op goroutine never blocks, even if nobody drains it.
	done := make(chan outcome, 1)

	go func() {
		val, err := op()
		done <- outcome{val: val, err: err}
	}()

	timer := time.NewTimer(d)
	select {
	case out := <-done:
		timer.Stop()
		return out.val, out.err
	case <-timer.C:
		// The losing operation keeps running; observe its result for
		// diagnostics only.
		go func() {
			out := <-done
			if out.err != nil {
				logger.Debug("abandoned operation failed after timeout",
					zap.String("op", label),
					zap.Duration("timeout", d),
					zap.Error(out.err))
				return
			}
			logger.Debug("abandoned operation completed after timeout",
				zap.String("op", label),
				zap.Duration("timeout", d))
		}()
		var zero T
		return zero, &Error{Label: label, After: d}
	}
}
