package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"poxil-server/editor"
)

// Autosaver periodically writes the latest published project back to the
// persistence API. The editing loop hands over snapshots with Mark; the
// saver runs on its own ticker and never blocks input handling. A failed
// save is logged and retried on the next interval, the in-memory project
// is never touched.
type Autosaver struct {
	baseURL  string // e.g. http://localhost:8080/api/v1
	token    string
	interval time.Duration
	client   *http.Client

	mu       sync.Mutex
	latest   *editor.Project
	gen      uint64
	savedGen uint64

	stop chan struct{}
	once sync.Once
}

func NewAutosaver(baseURL, token string, interval time.Duration) *Autosaver {
	return &Autosaver{
		baseURL:  baseURL,
		token:    token,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		stop:     make(chan struct{}),
	}
}

// Mark publishes a project snapshot as the latest saveable state. Cheap
// enough to call after every mutation: it swaps two fields under a mutex.
func (a *Autosaver) Mark(p *editor.Project, generation uint64) {
	a.mu.Lock()
	a.latest = p
	a.gen = generation
	a.mu.Unlock()
}

// Start runs the save loop until Stop is called.
func (a *Autosaver) Start() {
	go func() {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := a.saveIfDirty(); err != nil {
					log.Printf("[autosave] save failed, retrying next interval: %v", err)
				}
			case <-a.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and flushes any unsaved state once.
func (a *Autosaver) Stop() {
	a.once.Do(func() { close(a.stop) })
	if err := a.saveIfDirty(); err != nil {
		log.Printf("[autosave] final save failed: %v", err)
	}
}

func (a *Autosaver) saveIfDirty() error {
	a.mu.Lock()
	p := a.latest
	gen := a.gen
	dirty := p != nil && gen != a.savedGen
	a.mu.Unlock()
	if !dirty {
		return nil
	}
	if err := a.save(p); err != nil {
		return err
	}
	a.mu.Lock()
	if a.savedGen < gen {
		a.savedGen = gen
	}
	a.mu.Unlock()
	return nil
}

func (a *Autosaver) save(p *editor.Project) error {
	body, err := json.Marshal(map[string]any{
		"name":   p.Name,
		"layers": p.Layers,
		"frames": p.Frames,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, a.baseURL+"/projects/"+p.ID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
