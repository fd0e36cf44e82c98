package byteutil

import "testing"

func TestBytesBuf(t *testing.T) {
	t.Parallel()
	buf := GetBytesBuf()
	buf.WriteString("0.500\t1.000\t3\n")
	PutBytesBuf(buf)

	again := GetBytesBuf()
	if again.Len() != 0 {
		t.Errorf("pooled buffer length, got: %d, expected: 0", again.Len())
	}
	PutBytesBuf(again)
	PutBytesBuf(nil)
}
