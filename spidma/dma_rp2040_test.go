//go:build rp2040

package spidma

import (
	"testing"
	"unsafe"
)

func TestDMAChannelLayout(t *testing.T) {
	var hw dmaChannelHW
	if got := unsafe.Offsetof(hw.CTRL_TRIG); got != 0x0c {
		t.Errorf("CTRL_TRIG offset got!=expected: %#x != %#x", got, 0x0c)
	}
	if got := unsafe.Offsetof(hw.AL1_CTRL); got != 0x10 {
		t.Errorf("AL1_CTRL offset got!=expected: %#x != %#x", got, 0x10)
	}
	if got := unsafe.Sizeof(hw); got != 0x40 {
		t.Errorf("channel stride got!=expected: %#x != %#x", got, 0x40)
	}
}
