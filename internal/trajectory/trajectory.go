// Package trajectory reads and writes particle configurations in the XYZ
// text format.
package trajectory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
)

// DefaultLabel is the element symbol written in front of every particle.
const DefaultLabel = "Ar"

var ErrMalformed = errors.New("trajectory: malformed input")

// Writer appends XYZ frames to an underlying stream.
type Writer struct {
	w      *bufio.Writer
	label  string
	frames int
}

type WriterOption func(*Writer)

func WithLabel(label string) WriterOption {
	return func(w *Writer) {
		if label != "" {
			w.label = label
		}
	}
}

func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	tw := &Writer{w: bufio.NewWriter(w), label: DefaultLabel}
	for _, opt := range opts {
		opt(tw)
	}
	return tw
}

// WriteFrame writes the particle count, a blank comment line and one line
// per particle, then flushes.
func (w *Writer) WriteFrame(b *box.Box) error {
	if _, err := fmt.Fprintf(w.w, "%d\n\n", b.NumParticles()); err != nil {
		return err
	}
	for _, r := range b.Coordinates {
		if _, err := fmt.Fprintf(w.w, "%s   %10.5f   %10.5f   %10.5f   \n", w.label, r[0], r[1], r[2]); err != nil {
			return err
		}
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	w.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// ReadConfiguration parses a starting configuration: a line holding the
// particle count followed by one "index x y z" line per particle with
// 1-based indices in any order. Blank lines are ignored.
func ReadConfiguration(r io.Reader) ([]dynamo.Vec3, error) {
	sc := bufio.NewScanner(r)
	var (
		rows    map[int]dynamo.Vec3
		n       int
		counted bool
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		switch {
		case len(fields) == 0:
			continue
		case len(fields) == 1:
			if counted {
				return nil, fmt.Errorf("%w: line %d: second particle count", ErrMalformed, lineNo)
			}
			count, err := strconv.Atoi(fields[0])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: line %d: bad particle count %q", ErrMalformed, lineNo, fields[0])
			}
			n = count
			rows = make(map[int]dynamo.Vec3)
			counted = true
		case len(fields) < 4:
			return nil, fmt.Errorf("%w: line %d: want index x y z, got %d fields", ErrMalformed, lineNo, len(fields))
		default:
			if !counted {
				return nil, fmt.Errorf("%w: line %d: coordinates before particle count", ErrMalformed, lineNo)
			}
			idx, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad index %q", ErrMalformed, lineNo, fields[0])
			}
			if idx < 1 || idx > n {
				return nil, fmt.Errorf("%w: line %d: index %d outside [1, %d]", ErrMalformed, lineNo, idx, n)
			}
			if _, dup := rows[idx]; dup {
				return nil, fmt.Errorf("%w: line %d: duplicate index %d", ErrMalformed, lineNo, idx)
			}
			v, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
			}
			rows[idx] = v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !counted {
		return nil, fmt.Errorf("%w: missing particle count", ErrMalformed)
	}
	if len(rows) != n {
		return nil, fmt.Errorf("%w: declared %d particles, found %d", ErrMalformed, n, len(rows))
	}

	coords := make([]dynamo.Vec3, n)
	for idx, v := range rows {
		coords[idx-1] = v
	}
	return coords, nil
}

// ReadFrames parses consecutive XYZ frames as written by Writer.
func ReadFrames(r io.Reader) ([][]dynamo.Vec3, error) {
	sc := bufio.NewScanner(r)
	var (
		frames [][]dynamo.Vec3
		lineNo int
	)
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return sc.Text(), true
	}

	for {
		header, ok := next()
		if !ok {
			break
		}
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		n, err := strconv.Atoi(header)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: line %d: bad frame header %q", ErrMalformed, lineNo, header)
		}
		if _, ok := next(); !ok {
			return nil, fmt.Errorf("%w: frame %d truncated", ErrMalformed, len(frames))
		}

		frame := make([]dynamo.Vec3, n)
		for i := range frame {
			line, ok := next()
			if !ok {
				return nil, fmt.Errorf("%w: frame %d truncated after %d particles", ErrMalformed, len(frames), i)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: want label x y z", ErrMalformed, lineNo)
			}
			v, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
			}
			frame[i] = v
		}
		frames = append(frames, frame)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

func parseVec(fields []string) (dynamo.Vec3, error) {
	var v dynamo.Vec3
	for k, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, fmt.Errorf("bad coordinate %q", f)
		}
		v[k] = x
	}
	return v, nil
}
