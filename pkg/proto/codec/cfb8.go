package codec

import "crypto/cipher"

// cfb8 implements CFB-8 (8-bit cipher feedback) stream mode, which the
// standard library does not provide; Minecraft's protocol encryption is
// defined in terms of it (whole-block CFB is not wire compatible).
type cfb8 struct {
	block     cipher.Block
	state     []byte // shift register, starts as the IV
	tmp       []byte // scratch block-sized buffer
	isDecrypt bool
}

func newCFB8Encrypt(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, false)
}

func newCFB8Decrypt(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, true)
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	bs := block.BlockSize()
	state := make([]byte, bs)
	copy(state, iv)
	return &cfb8{
		block:     block,
		state:     state,
		tmp:       make([]byte, bs),
		isDecrypt: decrypt,
	}
}

func (c *cfb8) XORKeyStream(dst, src []byte) {
	bs := len(c.state)
	for i := 0; i < len(src); i++ {
		c.block.Encrypt(c.tmp, c.state)
		var feedback byte
		if c.isDecrypt {
			feedback = src[i]
			dst[i] = src[i] ^ c.tmp[0]
		} else {
			dst[i] = src[i] ^ c.tmp[0]
			feedback = dst[i]
		}
		// Shift the register left by one byte and append the feedback byte.
		copy(c.state, c.state[1:bs])
		c.state[bs-1] = feedback
	}
}
