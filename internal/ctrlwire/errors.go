// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctrlwire

import "errors"

var (
	// ErrInvalidArgument reports a ctrlwire framer constructed with a nil
	// reader or writer for the operation being attempted.
	ErrInvalidArgument = errors.New("ctrlwire: invalid argument")

	// ErrTooLong reports a SessionService command or state-change event
	// whose length exceeds the configured ReadLimit or the 2^56-1 wire
	// ceiling.
	ErrTooLong = errors.New("ctrlwire: message too long")
)
