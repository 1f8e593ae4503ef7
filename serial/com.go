package serial

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Frame wraps one record for the line: the two-digit station id, a pipe, the
// payload, a CRC16 over everything before it and CRLF.
//
//	0<id>|<payload><crc hi><crc lo>\r\n
//
// Newlines inside payload are replaced by spaces so a frame is always one line.
func Frame(id int, payload []byte) []byte {
	payload = bytes.TrimRight(payload, "\r\n")
	out := []byte{'0', byte(id + '0'), '|'}
	for _, b := range payload {
		if b == '\r' || b == '\n' {
			b = ' '
		}
		out = append(out, b)
	}
	out = append(out, crc16(out)...)
	return append(out, '\r', '\n')
}

// ParseFrame checks a frame produced by Frame for station id and returns its
// payload.
func ParseFrame(id int, frame []byte) (string, error) {
	if len(frame) < 5 {
		return "", fmt.Errorf("short frame")
	}
	if frame[0] != '0' || frame[1] != byte(id+'0') || frame[2] != '|' {
		return "", fmt.Errorf("wrong ID or missing pipe")
	}
	end := bytes.LastIndex(frame, []byte("\r\n"))
	if end == -1 {
		end = bytes.LastIndexByte(frame, '\n')
	}
	if end < 5 {
		return "", fmt.Errorf("wrong format")
	}
	received := frame[end-2 : end]
	calculated := crc16(frame[:end-2])
	if !bytes.Equal(received, calculated) {
		return "", fmt.Errorf("wrong checksum")
	}
	return string(frame[3 : end-2]), nil
}

func crc16(data []byte) []byte {
	cs := uint16(0)
	for _, b := range data {
		cs ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			carry := cs & 0x8000
			if carry != 0 {
				cs ^= 0x8810
			}
			cs = (cs << 1) + (carry >> 15)
		}
	}
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, cs)
	return buf
}
