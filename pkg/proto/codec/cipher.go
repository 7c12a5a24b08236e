package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// NewDecryptReader wraps r so every byte read through it is decrypted
// with AES-128/CFB8 using secret as both key and IV, the Mojang
// convention. Once installed on a connection it is never removed: the
// cipher, once enabled on a direction, is never disabled.
func NewDecryptReader(r io.Reader, secret []byte) (io.Reader, error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	stream := newCFB8Decrypt(block, secret)
	return &cipherReader{r: r, stream: stream}, nil
}

// NewEncryptWriter wraps w so every byte written through it is encrypted
// the same way.
func NewEncryptWriter(w io.Writer, secret []byte) (io.Writer, error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	stream := newCFB8Encrypt(block, secret)
	return &cipherWriter{w: w, stream: stream}, nil
}

type cipherReader struct {
	r      io.Reader
	stream cipher.Stream
}

func (c *cipherReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.stream.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

type cipherWriter struct {
	w      io.Writer
	stream cipher.Stream
}

func (c *cipherWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	c.stream.XORKeyStream(buf, p)
	n, err := c.w.Write(buf)
	if n == len(buf) {
		n = len(p) // report the caller's own length on a full write
	}
	return n, err
}
