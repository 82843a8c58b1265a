// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
var (
	errUnexpected = newFrameError("unexpected error", 1, false)

	// IO related
	ErrIoFailed      = newFrameError("IO failed", 1001, false)
	ErrIoUnexpectEOF = newFrameError("unexpected EOF", 1002, true)

	// Parameter related
	ErrParameterInvalid = newFrameError("invalid parameter", 1100, false)
	ErrParameterMissing = newFrameError("missing parameter", 1101, false)

	// Frame related
	ErrFrameFormatInvalid    = newFrameError("invalid frame format", 2000, false)
	ErrFrameInvalidID        = newFrameError("identifier out of one-byte range", 2001, false)
	ErrFrameOversizedPayload = newFrameError("payload exceeds one-byte length field", 2002, false)
	// ErrFrameOverflow is produced when the declared payload length exceeds the
	// parser's configured capacity. The frame is lost but the stream is not:
	// the parser re-arms and the caller should keep feeding bytes.
	ErrFrameOverflow         = newFrameError("declared length exceeds parser capacity", 2003, true)
	ErrFrameChecksumMismatch = newFrameError("frame checksum mismatch", 2004, true)
	ErrFrameMalformed        = newFrameError("packet size inconsistent with length field", 2005, false)

	// Dispatch related
	ErrRouteNotFound   = newFrameError("no route registered for message", 2100, false)
	ErrRouteDuplicated = newFrameError("route already registered", 2101, false)
	ErrRouteInvalid    = newFrameError("invalid route definition", 2102, false)
	ErrDeserializeFail = newFrameError("payload deserialization failed", 2103, false)
)

type errorOption func(*frameError)

func WithDetail(detail string) errorOption {
	return func(err *frameError) {
		err.detail = detail
	}
}

func WithErrorType(etype ErrorType) errorOption {
	return func(err *frameError) {
		err.errType = etype
	}
}

type frameError struct {
	msg       string
	detail    string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newFrameError(msg string, code int32, retriable bool, options ...errorOption) frameError {
	err := frameError{
		msg:       msg,
		detail:    msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e frameError) code() int32 {
	return e.errCode
}

func (e frameError) Error() string {
	return e.msg
}

func (e frameError) Detail() string {
	return e.detail
}

func (e frameError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(frameError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// To make merr work for multi errors,
	// we need cause of multi errors, which defined as the last error
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

// Combine 将多个错误合并为一个错误，nil 会被忽略。
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
