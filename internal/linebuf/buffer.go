// Package linebuf собирает одно сообщение клиента до символа '\n'.
package linebuf

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultInitialSize — стартовая ёмкость буфера.
const DefaultInitialSize = 256

var (
	// ErrUnterminated — поток закончился раньше, чем пришёл '\n'.
	ErrUnterminated = errors.New("linebuf: stream ended before newline")

	// ErrTooLarge — строка не помещается в лимит (или ёмкость переполнила int).
	ErrTooLarge = errors.New("linebuf: line too large")
)

// Buffer — растущий байтовый буфер. Ёмкость удваивается,
// когда позиция записи доходит до конца.
type Buffer struct {
	buf   []byte
	n     int
	limit int // 0 = без лимита
}

// New создаёт буфер с начальной ёмкостью initial.
// limit > 0 ограничивает длину строки в байтах.
func New(initial, limit int) *Buffer {
	if initial <= 0 {
		initial = DefaultInitialSize
	}
	if limit > 0 && initial > limit {
		initial = limit
	}
	return &Buffer{
		buf:   make([]byte, initial),
		limit: limit,
	}
}

// Len возвращает число записанных байт.
func (b *Buffer) Len() int { return b.n }

// Cap возвращает текущую ёмкость.
func (b *Buffer) Cap() int { return len(b.buf) }

// Bytes возвращает записанные байты. Срез валиден до следующей записи.
func (b *Buffer) Bytes() []byte { return b.buf[:b.n] }

// Reset сбрасывает позицию записи, ёмкость сохраняется.
func (b *Buffer) Reset() { b.n = 0 }

// WriteByte дописывает один байт, при необходимости удваивая ёмкость.
func (b *Buffer) WriteByte(c byte) error {
	if b.limit > 0 && b.n >= b.limit {
		return ErrTooLarge
	}
	if b.n >= len(b.buf) {
		if err := b.grow(); err != nil {
			return err
		}
	}
	b.buf[b.n] = c
	b.n++
	return nil
}

func (b *Buffer) grow() error {
	if len(b.buf) > math.MaxInt/2 {
		return ErrTooLarge
	}
	newCap := len(b.buf) * 2
	if b.limit > 0 && newCap > b.limit {
		newCap = b.limit
	}
	next := make([]byte, newCap)
	copy(next, b.buf[:b.n])
	b.buf = next
	return nil
}

// ReadLine читает из r по одному байту, пока не встретит '\n'.
// Перевод строки входит в результат. Чтение (0, nil) — «данных пока нет»,
// цикл продолжает ждать. Если поток закончился раньше '\n',
// незавершённая строка отбрасывается и возвращается ErrUnterminated.
func (b *Buffer) ReadLine(r io.Reader) (int, error) {
	b.Reset()

	var one [1]byte
	for {
		n, err := r.Read(one[:])
		if n == 1 {
			if werr := b.WriteByte(one[0]); werr != nil {
				b.Reset()
				return 0, werr
			}
			if one[0] == '\n' {
				return b.n, nil
			}
		}
		if err != nil {
			read := b.n
			b.Reset()
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("%w (%d bytes discarded)", ErrUnterminated, read)
			}
			return 0, err
		}
	}
}
