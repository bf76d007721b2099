package system

import "github.com/atotto/clipboard"

// SystemClipboard writes through xclip/xsel, pbcopy or the Windows API,
// whichever atotto/clipboard finds.
type SystemClipboard struct{}

func (SystemClipboard) SetText(text string) error {
	return clipboard.WriteAll(text)
}
