package files

import (
	"fmt"
	"io"

	"filevault/internal/domain"
)

// sizedReader passes through exactly size bytes and records an error if the
// underlying body is shorter or longer than declared.
type sizedReader struct {
	r         io.Reader
	remaining int64
	size      int64
	err       error
}

func newSizedReader(r io.Reader, size int64) *sizedReader {
	return &sizedReader{r: r, remaining: size, size: size}
}

func (s *sizedReader) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	if s.remaining == 0 {
		var probe [1]byte
		n, _ := io.ReadFull(s.r, probe[:])
		if n > 0 {
			s.err = &domain.PolicyViolationError{
				Rule:    domain.RuleSize,
				Message: fmt.Sprintf("body is larger than the declared %d bytes", s.size),
			}
			return 0, s.err
		}
		return 0, io.EOF
	}

	if int64(len(p)) > s.remaining {
		p = p[:s.remaining]
	}
	n, err := s.r.Read(p)
	s.remaining -= int64(n)

	if err == io.EOF {
		if s.remaining > 0 {
			s.err = fmt.Errorf("%w: body is shorter than the declared %d bytes", domain.ErrValidation, s.size)
			return n, s.err
		}
		// Remaining is zero; the next call probes for trailing bytes
		return n, nil
	}
	return n, err
}
