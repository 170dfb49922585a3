//go:build amd64 || arm64 || 386 || riscv64 || ppc64le || mips64le || mipsle || loong64 || wasm || arm

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buf

import "encoding/binary"

// HostOrder returns the native byte order for common little-endian Go ports.
// Callers that need a byte order tied to this process's own architecture
// rather than a wire protocol's mandated endianness (every trading-protocol
// field in wire/fix, wire/ouch, and wire/sbe always specifies its own) use
// this instead of hardcoding one.
func HostOrder() binary.ByteOrder { return binary.LittleEndian }
