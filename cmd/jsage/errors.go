package main

import (
	"errors"
	"fmt"

	"github.com/BaSui01/jsonsage/types"
)

// handleError 输出错误并返回退出码
func (a *app) handleError(err error) int {
	if errors.Is(err, errValidationFailed) {
		return 1
	}

	var usage usageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(a.stderr, "Error: %s\n", usage.err)
		fmt.Fprintln(a.stderr, "Run 'jsage --help' for usage.")
		return 2
	case types.GetErrorCode(err) == types.ErrInvalidJSON:
		fmt.Fprintln(a.stderr, "Invalid JSON format:")
		fmt.Fprintf(a.stderr, "  %s\n", invalidJSONDetail(err))
	default:
		fmt.Fprintln(a.stderr, "An error occurred:")
		fmt.Fprintf(a.stderr, "  %s\n", errorMessage(err))
	}

	if a.debugEnabled() {
		fmt.Fprintln(a.stderr, "\nDetails:")
		for e := err; e != nil; e = errors.Unwrap(e) {
			fmt.Fprintf(a.stderr, "  %T: %v\n", e, e)
		}
	}
	return 1
}

// errorMessage 顶层为 *types.Error 时只展示消息与原因，不带错误码前缀
func errorMessage(err error) string {
	e, ok := err.(*types.Error)
	if !ok {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func invalidJSONDetail(err error) string {
	e, _ := types.AsError(err)
	if e != nil && e.Cause != nil {
		return e.Cause.Error()
	}
	return err.Error()
}
