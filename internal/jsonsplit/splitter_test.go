package jsonsplit

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

// readAll drains the splitter and fails the test on any non-EOF error.
func readAll(t *testing.T, s *Splitter) []string {
	t.Helper()
	var out []string
	for {
		rec, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, rec)
	}
}

func TestSplitter_ConcatenatedObjects(t *testing.T) {
	input := `{"a":1}` + "\n" + `{"b":2}  {"c":3}`
	got := readAll(t, New(strings.NewReader(input)))
	want := []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestSplitter_BracesAndQuotesInsideStrings(t *testing.T) {
	// String values carrying braces, escaped quotes, and escaped backslashes
	// must not perturb depth tracking, and every emitted candidate must be
	// independently valid JSON.
	input := `{"msg":"open { and close }","q":"she said \"hi\""}` +
		`{"path":"C:\\dir\\","x":"}}{{"}` +
		`{"nested":{"inner":{"deep":"{"}}}`
	recs := readAll(t, New(strings.NewReader(input)))
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3: %v", len(recs), recs)
	}
	for i, rec := range recs {
		var m map[string]any
		if err := json.Unmarshal([]byte(rec), &m); err != nil {
			t.Errorf("record %d is not valid JSON: %v\n%s", i, err, rec)
		}
	}
}

func TestSplitter_InterRecordNoiseDiscarded(t *testing.T) {
	// Sloppy producers sometimes leave commas or array brackets between
	// records; only the objects come out.
	input := "[\n  {\"a\":1},\n  {\"a\":2}\n]\n"
	recs := readAll(t, New(strings.NewReader(input)))
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(recs), recs)
	}
}

func TestSplitter_EmptyAndTruncatedInput(t *testing.T) {
	if recs := readAll(t, New(strings.NewReader(""))); len(recs) != 0 {
		t.Errorf("empty input: got %v", recs)
	}
	if recs := readAll(t, New(strings.NewReader("   \n\t"))); len(recs) != 0 {
		t.Errorf("blank input: got %v", recs)
	}
	// A truncated trailing object is dropped, not emitted.
	recs := readAll(t, New(strings.NewReader(`{"a":1}{"b":`)))
	if len(recs) != 1 || recs[0] != `{"a":1}` {
		t.Errorf("truncated input: got %v", recs)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestSplitter_PropagatesReadError(t *testing.T) {
	boom := errors.New("disk gone")
	s := New(&failingReader{data: []byte(`{"a":1}{"b"`), err: boom})

	if _, err := s.Next(); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := s.Next(); !errors.Is(err, boom) {
		t.Fatalf("want read error, got %v", err)
	}
}

func TestSplitter_ManyRecordsInOrder(t *testing.T) {
	var b strings.Builder
	const n = 500
	for i := 0; i < n; i++ {
		b.WriteString(`{"seq":`)
		enc, _ := json.Marshal(i)
		b.Write(enc)
		b.WriteString(`,"note":"{\"fake\":1}"}`)
	}
	recs := readAll(t, New(strings.NewReader(b.String())))
	if len(recs) != n {
		t.Fatalf("got %d records, want %d", len(recs), n)
	}
	for i, rec := range recs {
		var m struct {
			Seq int `json:"seq"`
		}
		if err := json.Unmarshal([]byte(rec), &m); err != nil {
			t.Fatalf("record %d invalid: %v", i, err)
		}
		if m.Seq != i {
			t.Fatalf("record %d out of order: seq=%d", i, m.Seq)
		}
	}
}
