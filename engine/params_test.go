package engine

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParamsSet(t *testing.T) {
	is := is.New(t)
	p := DefaultParams()

	is.NoErr(p.Set(ParamUCTC, 250))
	is.Equal(p.UCTC, 2.5)
	is.NoErr(p.Set(ParamEvalScale, 40000))
	is.Equal(p.EvalScale, 400.0)

	err := p.Set(ParamUCTC, 1000)
	is.True(errors.Is(err, ErrParamRange))
	is.Equal(p.UCTC, 2.5) // unchanged

	err = p.Set("HASH", 16)
	is.True(errors.Is(err, ErrUnknownParam))
}

func TestTunables(t *testing.T) {
	is := is.New(t)
	p := DefaultParams()
	ts := p.Tunables()
	is.Equal(len(ts), 2)
	is.Equal(ts[0].Name, ParamUCTC)
	is.Equal(ts[0].CentiValue(), int64(150))
	is.Equal(ts[0].CentiMin(), int64(110))
	is.Equal(ts[0].CentiMax(), int64(400))
	is.Equal(ts[1].Name, ParamEvalScale)
	is.Equal(ts[1].CentiValue(), int64(20000))
}

func TestParamsYAML(t *testing.T) {
	is := is.New(t)
	p := DefaultParams()
	is.NoErr(p.SetFloat(ParamUCTC, 3.2))

	var buf bytes.Buffer
	is.NoErr(p.WriteYAML(&buf))
	is.True(strings.Contains(buf.String(), "uct_c: 3.2"))

	got, err := ReadParamsYAML(&buf)
	is.NoErr(err)
	is.Equal(got, p)

	// Missing keys keep their defaults, an empty document is fine.
	got, err = ReadParamsYAML(strings.NewReader("eval_scale: 300\n"))
	is.NoErr(err)
	is.Equal(got, Params{UCTC: 1.5, EvalScale: 300})
	got, err = ReadParamsYAML(strings.NewReader(""))
	is.NoErr(err)
	is.Equal(got, DefaultParams())

	_, err = ReadParamsYAML(strings.NewReader("uct_c: 9\n"))
	is.True(errors.Is(err, ErrParamRange))
	_, err = ReadParamsYAML(strings.NewReader("uct_c: [1\n"))
	is.True(err != nil)
}

func TestAllocateTime(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		name string
		c    Clock
		want time.Duration
	}{
		{"no clock", Clock{}, 0},
		{"movetime", Clock{MoveTime: 1000 * ms, HasMoveTime: true}, 990 * ms},
		{"movetime below overhead", Clock{MoveTime: 3 * ms, HasMoveTime: true}, 5 * ms},
		{"movetime wins", Clock{Remaining: 60000 * ms, HasRemaining: true, MoveTime: 200 * ms, HasMoveTime: true}, 190 * ms},
		{"remaining", Clock{Remaining: 60010 * ms, HasRemaining: true}, 2400 * ms},
		{"increment", Clock{Remaining: 10010 * ms, Increment: 1000 * ms, HasRemaining: true}, 400*ms + 750*ms},
		{"flagging", Clock{Remaining: 0, HasRemaining: true}, 5 * ms},
		{"ceiling", Clock{Remaining: 1000 * ms, Increment: 5000 * ms, HasRemaining: true}, 700 * ms},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(AllocateTime(tc.c, DefaultMoveOverhead), tc.want)
		})
	}
}

func TestClamp(t *testing.T) {
	is := is.New(t)
	is.Equal(Clamp(5, 1, 3), 3)
	is.Equal(Clamp(-5, 1, 3), 1)
	is.Equal(Clamp(2.5, 1.0, 3.0), 2.5)
}
