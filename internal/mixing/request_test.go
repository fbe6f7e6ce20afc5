package mixing

import (
	"errors"
	"testing"

	"github.com/whomstve123/mixing-api/internal/services"
)

func TestParseRequestAcceptsBothStemShapes(t *testing.T) {
	req, err := ParseRequest([]byte(`{"stems": ["  https://x/a.wav ", {"url": "https://x/b.flac"}], "volumes": [0.8]}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if len(req.Stems) != 2 {
		t.Fatalf("expected 2 stems, got %d", len(req.Stems))
	}
	if req.Stems[0] != (ResolvedStem{Index: 0, URL: "https://x/a.wav"}) {
		t.Fatalf("unexpected first stem %+v", req.Stems[0])
	}
	if req.Stems[1] != (ResolvedStem{Index: 1, URL: "https://x/b.flac"}) {
		t.Fatalf("unexpected second stem %+v", req.Stems[1])
	}
}

func TestParseRequestRejectsInvalidShapes(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		index    int
		received string
	}{
		{name: "malformed json", body: `{"stems": [`, index: -1, received: ""},
		{name: "not an object", body: `["https://x/a.wav"]`, index: -1, received: ""},
		{name: "missing stems", body: `{"volumes": [1]}`, index: -1, received: ""},
		{name: "empty stems", body: `{"stems": []}`, index: -1, received: "[]"},
		{name: "stems not array", body: `{"stems": "https://x/a.wav"}`, index: -1, received: `"https://x/a.wav"`},
		{name: "number element", body: `{"stems": ["https://x/a.wav", 42]}`, index: 1, received: "42"},
		{name: "blank string", body: `{"stems": ["   "]}`, index: 0, received: `"   "`},
		{name: "object without url", body: `{"stems": [{"href": "https://x/a.wav"}]}`, index: 0, received: `{"href": "https://x/a.wav"}`},
		{name: "url not string", body: `{"stems": [{"url": 7}]}`, index: 0, received: `{"url": 7}`},
		{name: "null element", body: `{"stems": [null]}`, index: 0, received: "null"},
		{name: "nested array", body: `{"stems": [["https://x/a.wav"]]}`, index: 0, received: `["https://x/a.wav"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tc.body))
			if !errors.Is(err, services.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if vErr.Index != tc.index {
				t.Fatalf("index = %d, want %d", vErr.Index, tc.index)
			}
			if string(vErr.Received) != tc.received {
				t.Fatalf("received = %q, want %q", vErr.Received, tc.received)
			}
			if vErr.Message == "" {
				t.Fatal("expected message")
			}
		})
	}
}

func TestVolumesDefaultToUnity(t *testing.T) {
	req, err := ParseRequest([]byte(`{"stems": ["a", "b", "c", "d", "e"], "volumes": [0.5, null, "loud", 2.5]}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	want := []float64{0.5, 1.0, 1.0, 2.5, 1.0}
	got := req.ResolvedVolumes()
	if len(got) != len(want) {
		t.Fatalf("expected %d volumes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("volume[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestVolumesPrefixProperty(t *testing.T) {
	supplied := []float64{0.1, 0.9, 1.7}
	for n := 1; n <= 5; n++ {
		for m := 0; m <= len(supplied) && m <= n; m++ {
			req := Request{Stems: make([]ResolvedStem, n)}
			for i := 0; i < m; i++ {
				v := supplied[i]
				req.Volumes = append(req.Volumes, &v)
			}
			for i := 0; i < n; i++ {
				want := 1.0
				if i < m {
					want = supplied[i]
				}
				if got := req.VolumeAt(i); got != want {
					t.Fatalf("n=%d m=%d: VolumeAt(%d) = %v, want %v", n, m, i, got, want)
				}
			}
		}
	}
}

func TestVolumesNotArrayIgnored(t *testing.T) {
	req, err := ParseRequest([]byte(`{"stems": ["a"], "volumes": 0.2}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.VolumeAt(0) != 1.0 {
		t.Fatalf("expected default volume, got %v", req.VolumeAt(0))
	}
}

func TestVolumesNotClamped(t *testing.T) {
	req, err := ParseRequest([]byte(`{"stems": ["a", "b"], "volumes": [4, -0.5]}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.VolumeAt(0) != 4 || req.VolumeAt(1) != -0.5 {
		t.Fatalf("expected volumes passed through, got %v", req.ResolvedVolumes())
	}
}
