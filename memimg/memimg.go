// Package memimg keeps the food sprites in memory, resized to the size they
// are drawn at, and reloads them when the files change.
package memimg

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// Store maps each food type to its sprite. Files are named after the type:
// red.png, blue.png, green.png.
type Store struct {
	dir           string
	width, height int

	mu      sync.RWMutex
	sprites map[structs.FoodType]image.Image
}

// NewStore creates an empty store that resizes sprites to width x height pixels.
func NewStore(dir string, width, height int) *Store {
	return &Store{
		dir:     dir,
		width:   width,
		height:  height,
		sprites: make(map[structs.FoodType]image.Image),
	}
}

// Load reads every sprite in the directory. Files that are not named after a
// food type are skipped.
func (s *Store) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read sprite dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if _, ok := spriteType(path); !ok {
			continue
		}
		if err := s.loadFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadFile(path string) error {
	kind, ok := spriteType(path)
	if !ok {
		return nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return fmt.Errorf("load sprite %s: %w", path, err)
	}
	img = imaging.Resize(img, s.width, s.height, imaging.Lanczos)

	s.mu.Lock()
	s.sprites[kind] = img
	s.mu.Unlock()
	return nil
}

// spriteType maps "dir/blue.png" to FoodSpeed.
func spriteType(path string) (structs.FoodType, bool) {
	base := filepath.Base(path)
	if strings.ToLower(filepath.Ext(base)) != ".png" {
		return 0, false
	}
	return structs.ParseFoodType(strings.TrimSuffix(base, filepath.Ext(base)))
}

// LoadImage decodes any format imaging understands.
func LoadImage(path string) (image.Image, error) {
	return imaging.Open(path)
}

// Watch starts reloading sprites on write or create and dropping them on
// remove. It returns once the watcher is registered; the watch ends with ctx.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handle(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println("sprite watcher error:", err)
			}
		}
	}()
	return nil
}

func (s *Store) handle(event fsnotify.Event) {
	kind, ok := spriteType(event.Name)
	if !ok {
		return
	}
	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		// 文件可能还没写完，失败时等下一次 Write 事件
		if err := s.loadFile(event.Name); err != nil {
			log.Printf("reload sprite: %v", err)
			return
		}
		log.Printf("reloaded %s sprite", kind)
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		s.mu.Lock()
		delete(s.sprites, kind)
		s.mu.Unlock()
	}
}

// Get returns the sprite for t, if loaded.
func (s *Store) Get(t structs.FoodType) (image.Image, bool) {
	s.mu.RLock()
	img, ok := s.sprites[t]
	s.mu.RUnlock()
	return img, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sprites)
}
