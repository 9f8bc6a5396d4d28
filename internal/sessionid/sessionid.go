// Package sessionid generates identifiers for remote sessions. An ID is a
// UUIDv7 written as 26 characters of Crockford base32, so IDs sort by the
// time they were issued.
package sessionid

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/coder/quartz"
)

// Length is the number of characters in an ID
const Length = 26

// Crockford's base32 alphabet
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator issues IDs from a clock and a source of random bytes
type Generator struct {
	clock  quartz.Clock
	random io.Reader
}

// NewGenerator creates a generator. A nil clock uses real time and a nil
// reader uses crypto/rand.
func NewGenerator(clock quartz.Clock, random io.Reader) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if random == nil {
		random = crand.Reader
	}
	return &Generator{clock: clock, random: random}
}

// New returns an ID from the default generator
func New() string {
	return NewGenerator(nil, nil).New()
}

// New returns a fresh ID
func (g *Generator) New() string {
	var uuid [16]byte

	// 48-bit millisecond timestamp
	ms := uint64(g.clock.Now().UnixMilli())
	binary.BigEndian.PutUint16(uuid[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(uuid[2:6], uint32(ms))

	if _, err := io.ReadFull(g.random, uuid[6:]); err != nil {
		panic("sessionid: failed to read random bytes: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // RFC 4122 variant

	return encode(uuid)
}

// encode writes the 128 bits as 26 five-bit groups, least significant last.
// The top group holds only three bits, so the first character is 0-7.
func encode(uuid [16]byte) string {
	hi := binary.BigEndian.Uint64(uuid[:8])
	lo := binary.BigEndian.Uint64(uuid[8:])

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

func decode(id string) ([16]byte, error) {
	var uuid [16]byte
	if err := Validate(id); err != nil {
		return uuid, err
	}

	var hi, lo uint64
	for i := 0; i < Length; i++ {
		v := uint64(strings.IndexByte(alphabet, id[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}
	binary.BigEndian.PutUint64(uuid[:8], hi)
	binary.BigEndian.PutUint64(uuid[8:], lo)
	return uuid, nil
}

// Validate checks that id is 26 base32 characters encoding at most 128 bits
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("session ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("session ID first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}

// Timestamp returns the time an ID was issued, to the millisecond
func Timestamp(id string) (time.Time, error) {
	uuid, err := decode(id)
	if err != nil {
		return time.Time{}, err
	}
	ms := int64(binary.BigEndian.Uint16(uuid[0:2]))<<32 | int64(binary.BigEndian.Uint32(uuid[2:6]))
	return time.UnixMilli(ms), nil
}
