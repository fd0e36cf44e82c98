// Package byteutil pools the buffers artifacts are rendered into.
package byteutil

import (
	"bytes"
	"sync"
)

// Buffers grown beyond this are dropped instead of pooled.
const maxPooledCap = 16 << 20

var bytesBuffer = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// GetBytesBuf returns an empty buffer.
func GetBytesBuf() *bytes.Buffer {
	buf := bytesBuffer.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBytesBuf returns buf to the pool. Its contents must not be used
// afterwards.
func PutBytesBuf(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledCap {
		return
	}
	bytesBuffer.Put(buf)
}
