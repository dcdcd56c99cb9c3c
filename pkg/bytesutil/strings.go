package bytesutil

import "fmt"

// BString reads a length-prefixed string with no terminator: one byte giving
// the length, followed by that many raw bytes.
func (c *Cursor) BString() ([]byte, error) {
	n, err := c.U8()
	if err != nil {
		return nil, err
	}
	return c.take(int(n))
}

// BZString reads a length-prefixed string whose length byte counts the
// trailing NUL; the NUL is validated and stripped from the returned bytes.
func (c *Cursor) BZString() ([]byte, error) {
	n, err := c.U8()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("bytesutil: bzstring length is 0, expected at least the terminator")
	}
	b, err := c.take(int(n))
	if err != nil {
		return nil, err
	}
	if b[len(b)-1] != 0 {
		return nil, fmt.Errorf("bytesutil: bzstring missing NUL terminator")
	}
	return b[:len(b)-1], nil
}

// ZString reads a NUL-terminated string with no length prefix, scanning
// forward until it finds the terminator.
func (c *Cursor) ZString() ([]byte, error) {
	start := c.pos
	for {
		b, err := c.U8()
		if err != nil {
			return nil, fmt.Errorf("bytesutil: zstring missing NUL terminator: %w", err)
		}
		if b == 0 {
			return c.buf[start : c.pos-1], nil
		}
	}
}

// WString reads a string prefixed with a little-endian uint16 length and no
// terminator, the form used by FO4's BA2 string table.
func (c *Cursor) WString() ([]byte, error) {
	n, err := c.U16()
	if err != nil {
		return nil, err
	}
	return c.take(int(n))
}

// PutBString appends a bstring: a one-byte length followed by the raw bytes.
func (w *Writer) PutBString(s []byte) error {
	if len(s) > 0xFF {
		return fmt.Errorf("bytesutil: bstring too long (%d bytes)", len(s))
	}
	w.U8(uint8(len(s)))
	w.Raw(s)
	return nil
}

// PutBZString appends a bzstring: a one-byte length (including the
// terminator) followed by the raw bytes and a trailing NUL.
func (w *Writer) PutBZString(s []byte) error {
	if len(s)+1 > 0xFF {
		return fmt.Errorf("bytesutil: bzstring too long (%d bytes)", len(s))
	}
	w.U8(uint8(len(s) + 1))
	w.Raw(s)
	w.U8(0)
	return nil
}

// PutZString appends a NUL-terminated string with no length prefix.
func (w *Writer) PutZString(s []byte) {
	w.Raw(s)
	w.U8(0)
}

// PutWString appends a string prefixed with a little-endian uint16 length.
func (w *Writer) PutWString(s []byte) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("bytesutil: wstring too long (%d bytes)", len(s))
	}
	w.U16(uint16(len(s)))
	w.Raw(s)
	return nil
}
