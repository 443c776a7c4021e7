package datafile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Stream открывает файл только на чтение и отдаёт содержимое
// с начала кусками не больше chunkSize. Срез chunk переиспользуется
// между вызовами fn. Ошибка fn прерывает чтение и возвращается как есть.
func (s *Store) Stream(fn func(chunk []byte) error) error {
	if s.closed {
		return ErrClosed
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	buf := make([]byte, s.chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if ferr := fn(buf[:n]); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", s.path, err)
		}
	}
}

// WriteTo отправляет всё содержимое файла в w.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	var total int64
	err := s.Stream(func(chunk []byte) error {
		n, err := writeFull(w, chunk)
		total += int64(n)
		return err
	})
	return total, err
}

// Size возвращает текущий размер файла.
func (s *Store) Size() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
