// Package textio reads the whitespace-separated number streams used for
// potentials and state snapshots.
package textio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrSyntax indicates a token that is not a real or complex number.
var ErrSyntax = errors.New("textio: malformed number")

// Scanner splits a stream into numeric tokens. Complex values are written
// as "(re,im)"; "(re)" and a bare "re" are read with a zero imaginary part.
type Scanner struct {
	sc    *bufio.Scanner
	count int
}

func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &Scanner{sc: sc}
}

// Count is the number of tokens consumed so far.
func (s *Scanner) Count() int { return s.count }

func (s *Scanner) next() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	s.count++
	return s.sc.Text(), nil
}

func (s *Scanner) Real() (float64, error) {
	tok, err := s.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: token %d %q", ErrSyntax, s.count, tok)
	}
	return v, nil
}

func (s *Scanner) Complex() (complex128, error) {
	tok, err := s.next()
	if err != nil {
		return 0, err
	}
	v, ok := parseComplex(tok)
	if !ok {
		return 0, fmt.Errorf("%w: token %d %q", ErrSyntax, s.count, tok)
	}
	return v, nil
}

func parseComplex(tok string) (complex128, bool) {
	if !strings.HasPrefix(tok, "(") {
		re, err := strconv.ParseFloat(tok, 64)
		return complex(re, 0), err == nil
	}
	if !strings.HasSuffix(tok, ")") {
		return 0, false
	}
	body := tok[1 : len(tok)-1]
	reTok, imTok, found := strings.Cut(body, ",")
	re, err := strconv.ParseFloat(reTok, 64)
	if err != nil {
		return 0, false
	}
	if !found {
		return complex(re, 0), true
	}
	im, err := strconv.ParseFloat(imTok, 64)
	if err != nil {
		return 0, false
	}
	return complex(re, im), true
}

// Skip discards n complex tokens.
func (s *Scanner) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.Complex(); err != nil {
			return err
		}
	}
	return nil
}
