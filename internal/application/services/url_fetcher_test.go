package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
)

// fakePlaylistClient 模拟平台分页,记录每次请求的1基闭区间
type fakePlaylistClient struct {
	mu         sync.Mutex
	entries    []ytdlp.FlatEntry
	entryCount int
	err        error
	fullCalls  int
	windows    [][2]int
}

func (c *fakePlaylistClient) FetchPlaylist(ctx context.Context, url string) (*ytdlp.Playlist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullCalls++
	if c.err != nil {
		return nil, c.err
	}
	return &ytdlp.Playlist{Entries: c.entries, EntryCount: c.entryCount}, nil
}

func (c *fakePlaylistClient) FetchPlaylistWindow(ctx context.Context, url string, start, end int) (*ytdlp.Playlist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows = append(c.windows, [2]int{start, end})
	if c.err != nil {
		return nil, c.err
	}
	lo := start - 1
	if lo >= len(c.entries) {
		return &ytdlp.Playlist{EntryCount: c.entryCount}, nil
	}
	hi := end
	if hi > len(c.entries) {
		hi = len(c.entries)
	}
	return &ytdlp.Playlist{Entries: c.entries[lo:hi], EntryCount: c.entryCount}, nil
}

func TestVideoURLFetcherCount(t *testing.T) {
	tests := []struct {
		name       string
		source     Source
		entryCount int
		clientErr  error
		want       int
		wantErr    bool
		wantProbes int
	}{
		{
			name:       "windowed source reads playlist_count from a one item probe",
			source:     Source{URL: "https://youtube.com/playlist?list=x", Windowed: true},
			entryCount: 42,
			want:       42,
			wantProbes: 1,
		},
		{
			name:       "unknown size reported as zero",
			source:     Source{URL: "https://youtube.com/playlist?list=x", Windowed: true},
			entryCount: 0,
			want:       0,
			wantProbes: 1,
		},
		{
			name:       "exhaustive source never probes",
			source:     Source{URL: "https://youtube.com/@chan", Windowed: false},
			entryCount: 42,
			want:       0,
			wantProbes: 0,
		},
		{
			name:       "probe failure surfaces error",
			source:     Source{URL: "https://youtube.com/playlist?list=x", Windowed: true},
			clientErr:  errors.New("network down"),
			wantErr:    true,
			wantProbes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakePlaylistClient{entries: flatEntries(3), entryCount: tt.entryCount, err: tt.clientErr}
			f := NewVideoURLFetcher(client, 10)

			got, err := f.Count(context.Background(), tt.source)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Count returned nil error, want failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if got != tt.want {
				t.Errorf("Count = %d, want %d", got, tt.want)
			}
			if len(client.windows) != tt.wantProbes {
				t.Errorf("probe calls = %d, want %d", len(client.windows), tt.wantProbes)
			}
			if tt.wantProbes == 1 {
				if client.windows[0] != [2]int{1, 1} {
					t.Errorf("probe window = %v, want [1 1]", client.windows[0])
				}
			}
		})
	}
}

func TestVideoURLFetcherFetchWindow(t *testing.T) {
	source := Source{URL: "https://youtube.com/playlist?list=x", Windowed: true}

	t.Run("zero based start maps to one based inclusive range", func(t *testing.T) {
		client := &fakePlaylistClient{entries: flatEntries(10)}
		f := NewVideoURLFetcher(client, 3)

		entries, err := f.FetchWindow(context.Background(), source, 0, 3)
		if err != nil {
			t.Fatalf("FetchWindow: %v", err)
		}
		if client.windows[0] != [2]int{1, 3} {
			t.Errorf("requested window = %v, want [1 3]", client.windows[0])
		}
		if len(entries) != 3 || entries[0].URL != testVideoURL(0) {
			t.Errorf("entries = %v, want first three", entries)
		}

		entries, err = f.FetchWindow(context.Background(), source, 4, 2)
		if err != nil {
			t.Fatalf("FetchWindow: %v", err)
		}
		if client.windows[1] != [2]int{5, 6} {
			t.Errorf("requested window = %v, want [5 6]", client.windows[1])
		}
		if len(entries) != 2 || entries[0].URL != testVideoURL(4) {
			t.Errorf("entries = %v, want items five and six", entries)
		}
	})

	t.Run("window past the end returns empty", func(t *testing.T) {
		client := &fakePlaylistClient{entries: flatEntries(2)}
		f := NewVideoURLFetcher(client, 3)

		entries, err := f.FetchWindow(context.Background(), source, 5, 3)
		if err != nil {
			t.Fatalf("FetchWindow: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("entries past end = %v, want empty", entries)
		}
	})

	t.Run("non positive size falls back to configured window", func(t *testing.T) {
		client := &fakePlaylistClient{entries: flatEntries(10)}
		f := NewVideoURLFetcher(client, 4)

		if _, err := f.FetchWindow(context.Background(), source, 0, 0); err != nil {
			t.Fatalf("FetchWindow: %v", err)
		}
		if client.windows[0] != [2]int{1, 4} {
			t.Errorf("requested window = %v, want [1 4]", client.windows[0])
		}
	})
}

func TestVideoURLFetcherFetchAll(t *testing.T) {
	client := &fakePlaylistClient{entries: flatEntries(5)}
	f := NewVideoURLFetcher(client, 3)

	entries, err := f.FetchAll(context.Background(), Source{URL: "https://youtube.com/@chan"})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("len(entries) = %d, want 5", len(entries))
	}
	if client.fullCalls != 1 {
		t.Errorf("full enumeration calls = %d, want 1", client.fullCalls)
	}
}

func TestVideoURLFetcherDefaultWindowSize(t *testing.T) {
	f := NewVideoURLFetcher(&fakePlaylistClient{}, 0)
	if got := f.WindowSize(); got != 50 {
		t.Errorf("WindowSize = %d, want 50", got)
	}
}
