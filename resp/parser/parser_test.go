package parser

import (
	"bytes"
	"errors"
	"math/rand"
	"redis-go-client/interface/resp"
	"redis-go-client/resp/reply"
	"testing"
)

var kinds = []Kind{KindStack, KindStream}

// decodeAll 按给定的分块方式喂入，返回全部帧
func decodeAll(t *testing.T, kind Kind, chunks [][]byte) []resp.Reply {
	t.Helper()
	r := NewReader(kind)
	defer r.Reset()
	var result []resp.Reply
	for _, chunk := range chunks {
		if err := r.Feed(chunk); err != nil {
			t.Fatalf("feed %q: %v", chunk, err)
		}
		for {
			frame, ok := r.Gets()
			if !ok {
				break
			}
			result = append(result, frame)
		}
	}
	if r.HasPending() {
		t.Fatalf("unexpected pending data")
	}
	return result
}

func splitEvery(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func splitRandom(data []byte, rnd *rand.Rand) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := rnd.Intn(7) + 1
		if n > len(data) {
			n = len(data)
		}
		// 穿插空块
		chunks = append(chunks, data[:n], nil)
		data = data[n:]
	}
	return chunks
}

func TestDecodeFrames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  resp.Reply
	}{
		{"status", "+OK\r\n", reply.MakeStatusReply("OK")},
		{"empty status", "+\r\n", reply.MakeStatusReply("")},
		{"error", "-ERR unknown command 'foo'\r\n", reply.MakeErrReply("ERR unknown command 'foo'")},
		{"int", ":1000\r\n", reply.MakeIntReply(1000)},
		{"negative int", ":-7\r\n", reply.MakeIntReply(-7)},
		{"bulk", "$6\r\nfoobar\r\n", reply.MakeBulkReply([]byte("foobar"))},
		{"bulk with crlf", "$8\r\nfoo\r\nbar\r\n", reply.MakeBulkReply([]byte("foo\r\nbar"))},
		{"empty bulk", "$0\r\n\r\n", reply.MakeBulkReply([]byte{})},
		{"null bulk", "$-1\r\n", reply.MakeNullBulkReply()},
		{"null array", "*-1\r\n", reply.MakeNullArrayReply()},
		{"empty array", "*0\r\n", reply.MakeArrayReply([]resp.Reply{})},
		{"array", "*3\r\n$3\r\nfoo\r\n:1\r\n$-1\r\n", reply.MakeArrayReply([]resp.Reply{
			reply.MakeBulkReply([]byte("foo")),
			reply.MakeIntReply(1),
			reply.MakeNullBulkReply(),
		})},
		{"nested array", "*2\r\n*2\r\n:1\r\n:2\r\n*1\r\n+x\r\n", reply.MakeArrayReply([]resp.Reply{
			reply.MakeArrayReply([]resp.Reply{reply.MakeIntReply(1), reply.MakeIntReply(2)}),
			reply.MakeArrayReply([]resp.Reply{reply.MakeStatusReply("x")}),
		})},
		{"array with error", "*2\r\n-ERR a\r\n*0\r\n", reply.MakeArrayReply([]resp.Reply{
			reply.MakeErrReply("ERR a"),
			reply.MakeArrayReply([]resp.Reply{}),
		})},
	}
	for _, kind := range kinds {
		for _, tt := range tests {
			t.Run(string(kind)+"/"+tt.name, func(t *testing.T) {
				frames := decodeAll(t, kind, [][]byte{[]byte(tt.input)})
				if len(frames) != 1 {
					t.Fatalf("got %d frames", len(frames))
				}
				if !reply.Equal(frames[0], tt.want) {
					t.Errorf("got %q, want %q", frames[0].ToBytes(), tt.want.ToBytes())
				}
			})
		}
	}
}

func TestNullsAreTyped(t *testing.T) {
	for _, kind := range kinds {
		frames := decodeAll(t, kind, [][]byte{[]byte("$-1\r\n*-1\r\n$0\r\n\r\n")})
		if _, ok := frames[0].(*reply.NullBulkReply); !ok {
			t.Errorf("%s: expected null bulk, got %T", kind, frames[0])
		}
		if _, ok := frames[1].(*reply.NullArrayReply); !ok {
			t.Errorf("%s: expected null array, got %T", kind, frames[1])
		}
		if bulk, ok := frames[2].(*reply.BulkReply); !ok || len(bulk.Arg) != 0 {
			t.Errorf("%s: expected empty bulk, got %T", kind, frames[2])
		}
	}
}

var sampleStream = []byte("+OK\r\n" +
	"*3\r\n$7\r\nmessage\r\n$2\r\nch\r\n$5\r\nhello\r\n" +
	":42\r\n" +
	"$-1\r\n" +
	"-WRONGTYPE Operation against a key holding the wrong kind of value\r\n" +
	"*2\r\n*0\r\n*-1\r\n" +
	"$10\r\n0123\r\n6789\r\n" +
	"*4\r\n$8\r\npmessage\r\n$2\r\nc*\r\n$2\r\nch\r\n$0\r\n\r\n")

func TestChunkInvariance(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var want [][]byte
	for _, frame := range decodeAll(t, KindStack, [][]byte{sampleStream}) {
		want = append(want, frame.ToBytes())
	}
	if len(want) != 8 {
		t.Fatalf("expected 8 frames, got %d", len(want))
	}
	splits := map[string][][]byte{
		"whole":       {sampleStream},
		"byte":        splitEvery(sampleStream, 1),
		"three bytes": splitEvery(sampleStream, 3),
		"random":      splitRandom(sampleStream, rnd),
	}
	for _, kind := range kinds {
		for name, chunks := range splits {
			frames := decodeAll(t, kind, chunks)
			if len(frames) != len(want) {
				t.Errorf("%s/%s: got %d frames, want %d", kind, name, len(frames), len(want))
				continue
			}
			for i, frame := range frames {
				if !bytes.Equal(frame.ToBytes(), want[i]) {
					t.Errorf("%s/%s: frame %d = %q, want %q", kind, name, i, frame.ToBytes(), want[i])
				}
			}
		}
	}
}

func TestIncrementalProgress(t *testing.T) {
	for _, kind := range kinds {
		r := NewReader(kind)
		if err := r.Feed([]byte("+OK")); err != nil {
			t.Fatal(err)
		}
		if _, ok := r.Gets(); ok {
			t.Errorf("%s: frame emitted before terminator", kind)
		}
		if !r.HasPending() {
			t.Errorf("%s: partial input not reported", kind)
		}
		if err := r.Feed(nil); err != nil {
			t.Fatal(err)
		}
		if err := r.Feed([]byte("\r\n")); err != nil {
			t.Fatal(err)
		}
		frame, ok := r.Gets()
		if !ok || !reply.Equal(frame, reply.MakeStatusReply("OK")) {
			t.Errorf("%s: got %v", kind, frame)
		}
		if r.HasPending() {
			t.Errorf("%s: nothing should be pending", kind)
		}
		r.Reset()
	}
}

func TestRoundTrip(t *testing.T) {
	cmd, err := reply.MakeCommand("set", "key", 1, []byte("v\r\nx"), 2.5, uint8(7))
	if err != nil {
		t.Fatal(err)
	}
	for _, kind := range kinds {
		frames := decodeAll(t, kind, splitEvery(cmd.ToBytes(), 2))
		args, ok := reply.ToArgs(frames[0])
		if !ok {
			t.Fatalf("%s: not a command line: %T", kind, frames[0])
		}
		want := []string{"set", "key", "1", "v\r\nx", "2.5", "7"}
		if len(args) != len(want) {
			t.Fatalf("%s: got %d args", kind, len(args))
		}
		for i := range want {
			if string(args[i]) != want[i] {
				t.Errorf("%s: arg %d = %q, want %q", kind, i, args[i], want[i])
			}
		}
	}
}

func TestProtocolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", "?what\r\n"},
		{"bad integer", ":abc\r\n"},
		{"bad bulk length", "$x\r\n"},
		{"negative bulk length", "$-2\r\n"},
		{"bad bulk trailer", "$3\r\nfooXY"},
		{"bad array length", "*-5\r\n"},
		{"nested bad element", "*2\r\n:1\r\n!\r\n"},
	}
	for _, kind := range kinds {
		for _, tt := range tests {
			t.Run(string(kind)+"/"+tt.name, func(t *testing.T) {
				r := NewReader(kind)
				defer r.Reset()
				err := r.Feed([]byte(tt.input))
				var perr *ProtocolError
				if !errors.As(err, &perr) {
					t.Fatalf("expected protocol error, got %v", err)
				}
				// 出错后保持错误状态，直到 Reset
				if err := r.Feed([]byte("+OK\r\n")); err == nil {
					t.Errorf("reader accepted input after protocol error")
				}
				r.Reset()
				if err := r.Feed([]byte("+OK\r\n")); err != nil {
					t.Errorf("reset reader: %v", err)
				}
			})
		}
	}
}

func TestLimits(t *testing.T) {
	for _, kind := range kinds {
		r := NewReader(kind, WithMaxBulkLength(4), WithMaxLineLength(32))
		var perr *ProtocolError
		if err := r.Feed([]byte("$5\r\n")); !errors.As(err, &perr) {
			t.Errorf("%s: bulk over limit accepted: %v", kind, err)
		}
		r.Reset()
		if err := r.Feed(bytes.Repeat([]byte("+"), 100)); !errors.As(err, &perr) {
			t.Errorf("%s: line over limit accepted: %v", kind, err)
		}
		r.Reset()
	}
}

func TestResetDiscardsPartialState(t *testing.T) {
	for _, kind := range kinds {
		r := NewReader(kind)
		if err := r.Feed([]byte("*2\r\n$3\r\nfoo\r\n")); err != nil {
			t.Fatal(err)
		}
		if !r.HasPending() {
			t.Errorf("%s: expected pending", kind)
		}
		r.Reset()
		if r.HasPending() {
			t.Errorf("%s: pending after reset", kind)
		}
		if err := r.Feed([]byte(":1\r\n")); err != nil {
			t.Fatal(err)
		}
		frame, ok := r.Gets()
		if !ok || !reply.Equal(frame, reply.MakeIntReply(1)) {
			t.Errorf("%s: got %v", kind, frame)
		}
		r.Reset()
	}
}

func TestParseOne(t *testing.T) {
	frame, err := ParseOne([]byte("*1\r\n$4\r\nPING\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	args, ok := reply.ToArgs(frame)
	if !ok || string(args[0]) != "PING" {
		t.Errorf("got %q", frame.ToBytes())
	}
	if _, err := ParseOne([]byte("$4\r\nPI")); err == nil {
		t.Error("expected error for incomplete input")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(""); err != nil || k != KindStack {
		t.Errorf("got %v %v", k, err)
	}
	if k, err := ParseKind("stream"); err != nil || k != KindStream {
		t.Errorf("got %v %v", k, err)
	}
	if _, err := ParseKind("hiredis"); err == nil {
		t.Error("expected error")
	}
}

// outcome 喂入全部分块，记录得到的帧和第一个错误
func outcome(kind Kind, chunks [][]byte, opts ...Option) string {
	r := NewReader(kind, opts...)
	defer r.Reset()
	var out bytes.Buffer
	for _, chunk := range chunks {
		err := r.Feed(chunk)
		for {
			frame, ok := r.Gets()
			if !ok {
				break
			}
			out.Write(frame.ToBytes())
		}
		if err != nil {
			out.WriteString("error: " + err.Error())
			break
		}
	}
	return out.String()
}

func TestKindsAgreeOnLines(t *testing.T) {
	line := func(total int) string {
		return "+" + string(bytes.Repeat([]byte("a"), total-3)) + "\r\n"
	}
	inputs := []string{
		"+a\nb\r\n",
		"\n",
		":1\n",
		"+ok\r\n+a\nb\r\n",
		"$3\r\nfoo\n\n",
		"*2\r\n+a\r\n-b\n",
		line(31),
		line(32),
		line(33),
		line(32) + line(33),
	}
	for _, in := range inputs {
		for _, chunks := range [][][]byte{{[]byte(in)}, splitEvery([]byte(in), 1)} {
			stack := outcome(KindStack, chunks, WithMaxLineLength(32))
			stream := outcome(KindStream, chunks, WithMaxLineLength(32))
			if stack != stream {
				t.Errorf("%q in %d chunks: stack %q, stream %q", in, len(chunks), stack, stream)
			}
		}
	}
	if got := outcome(KindStack, [][]byte{[]byte(line(32))}, WithMaxLineLength(32)); got != line(32) {
		t.Errorf("line of 32 bytes: got %q", got)
	}
	var perr *ProtocolError
	if err := NewReader(KindStack, WithMaxLineLength(32)).Feed([]byte(line(33))); !errors.As(err, &perr) {
		t.Errorf("line of 33 bytes accepted: %v", err)
	}
	if err := NewReader(KindStack).Feed([]byte("+a\nb\r\n")); !errors.As(err, &perr) {
		t.Errorf("bare LF accepted: %v", err)
	}
}
