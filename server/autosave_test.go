package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"poxil-server/editor"
)

func TestAutosaverSavesDirtyProject(t *testing.T) {
	saved := make(chan string, 4)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		saved <- strings.TrimPrefix(r.URL.Path, "/projects/") + ":" + body.Name
	}))
	defer ts.Close()

	p := editor.NewProject("doodle", 8, 8, "user-1")
	a := NewAutosaver(ts.URL, "tok", 10*time.Millisecond)
	a.Mark(p, 1)
	a.Start()
	defer a.Stop()

	select {
	case got := <-saved:
		want := p.ID + ":doodle"
		if got != want {
			t.Fatalf("saved %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for autosave")
	}
}

func TestAutosaverSkipsWhenClean(t *testing.T) {
	var puts int
	done := make(chan struct{}, 8)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		puts++
		w.WriteHeader(http.StatusOK)
		done <- struct{}{}
	}))
	defer ts.Close()

	p := editor.NewProject("doodle", 8, 8, "user-1")
	a := NewAutosaver(ts.URL, "", 10*time.Millisecond)
	a.Mark(p, 1)
	a.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first save")
	}
	// No new Mark, so further ticks must not PUT again.
	time.Sleep(60 * time.Millisecond)
	a.Stop()
	if puts != 1 {
		t.Fatalf("puts = %d, want 1", puts)
	}
}

func TestAutosaverRetriesAfterFailure(t *testing.T) {
	var calls int
	done := make(chan int, 8)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		done <- calls
	}))
	defer ts.Close()

	p := editor.NewProject("doodle", 8, 8, "user-1")
	a := NewAutosaver(ts.URL, "", 10*time.Millisecond)
	a.Mark(p, 1)
	a.Start()
	defer a.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-done:
			if n >= 2 {
				return // retried after the failed attempt
			}
		case <-deadline:
			t.Fatal("autosave never retried after failure")
		}
	}
}
