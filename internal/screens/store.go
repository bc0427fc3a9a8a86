package screens

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"aufgussplan/internal/models"
	"aufgussplan/internal/upload"

	"golang.org/x/sys/unix"
)

var ErrInvalidScreen = errors.New("Ungueltige Bildschirm-ID")

// Store keeps the screen configuration in a JSON file. Writers hold an
// exclusive flock on a sidecar lock file plus an in-process mutex, and
// replace the document with an atomic rename.
type Store struct {
	Path  string
	Count int
	Now   func() time.Time

	mu sync.Mutex
}

func NewStore(path string, count int) *Store {
	if count <= 0 {
		count = 5
	}
	return &Store{Path: path, Count: count, Now: time.Now}
}

// GlobalAdInput replaces the global ad. A nil or empty path clears it.
type GlobalAdInput struct {
	Path *string
	Type string
}

type SaveInput struct {
	ScreenID       int
	Mode           string
	PlanID         *int64
	ImagePath      *string
	BackgroundPath *string
	GlobalAd       *GlobalAdInput
}

func defaultScreen(id int) models.Screen {
	return models.Screen{ID: id, Mode: models.ScreenModePlan}
}

func (s *Store) valid(id int) bool {
	return id >= 1 && id <= s.Count
}

// List returns screens 1..Count in order plus the global ad.
func (s *Store) List() ([]models.Screen, models.GlobalAd, error) {
	doc, err := s.read()
	if err != nil {
		return nil, models.GlobalAd{}, err
	}
	screens := make([]models.Screen, 0, len(doc.Screens))
	for _, sc := range doc.Screens {
		screens = append(screens, sc)
	}
	sort.Slice(screens, func(i, j int) bool { return screens[i].ID < screens[j].ID })
	return screens, doc.GlobalAd, nil
}

// Get returns one screen; ids outside 1..Count are ErrInvalidScreen.
func (s *Store) Get(id int) (models.Screen, models.GlobalAd, error) {
	if !s.valid(id) {
		return models.Screen{}, models.GlobalAd{}, ErrInvalidScreen
	}
	doc, err := s.read()
	if err != nil {
		return models.Screen{}, models.GlobalAd{}, err
	}
	return doc.Screens[strconv.Itoa(id)], doc.GlobalAd, nil
}

// Save applies in under the file lock. A screen id is required unless only
// the global ad changes. The returned screen is nil when none was touched.
func (s *Store) Save(in SaveInput) (*models.Screen, models.GlobalAd, error) {
	if in.GlobalAd == nil || in.ScreenID > 0 {
		if !s.valid(in.ScreenID) {
			return nil, models.GlobalAd{}, ErrInvalidScreen
		}
	}

	var saved *models.Screen
	doc, err := s.update(func(doc *models.ScreenDocument) {
		if in.ScreenID > 0 {
			sc := doc.Screens[strconv.Itoa(in.ScreenID)]
			sc.ID = in.ScreenID
			sc.Mode = models.ScreenModePlan
			if in.Mode == models.ScreenModeImage {
				sc.Mode = models.ScreenModeImage
			}
			sc.PlanID = nil
			if in.PlanID != nil && *in.PlanID > 0 && sc.Mode == models.ScreenModePlan {
				id := *in.PlanID
				sc.PlanID = &id
			}
			sc.ImagePath = SanitizePath(in.ImagePath)
			sc.BackgroundPath = SanitizePath(in.BackgroundPath)
			updated := s.Now().Format(time.RFC3339)
			sc.UpdatedAt = &updated

			doc.Screens[strconv.Itoa(in.ScreenID)] = sc
			saved = &sc
		}

		if in.GlobalAd != nil {
			p := SanitizePath(in.GlobalAd.Path)
			ad := models.GlobalAd{Path: p}
			if p != nil {
				kind := in.GlobalAd.Type
				if kind != models.MediaTypeImage && kind != models.MediaTypeVideo {
					kind = upload.TypeFromExtension(*p)
				}
				ad.Type = &kind
			}
			doc.GlobalAd = ad
		}
	})
	if err != nil {
		return nil, models.GlobalAd{}, err
	}
	return saved, doc.GlobalAd, nil
}

// SanitizePath trims p, rejects anything containing "..", and drops leading
// slashes. Empty results become nil.
func SanitizePath(p *string) *string {
	if p == nil {
		return nil
	}
	clean := strings.TrimSpace(*p)
	if clean == "" || strings.Contains(clean, "..") {
		return nil
	}
	clean = strings.TrimLeft(clean, "/\\")
	if clean == "" {
		return nil
	}
	return &clean
}

func (s *Store) normalize(doc *models.ScreenDocument) {
	if doc.Screens == nil {
		doc.Screens = map[string]models.Screen{}
	}
	for i := 1; i <= s.Count; i++ {
		key := strconv.Itoa(i)
		sc, ok := doc.Screens[key]
		if !ok {
			doc.Screens[key] = defaultScreen(i)
			continue
		}
		sc.ID = i
		if sc.Mode != models.ScreenModeImage {
			sc.Mode = models.ScreenModePlan
		}
		doc.Screens[key] = sc
	}
}

func (s *Store) decode() (*models.ScreenDocument, error) {
	doc := &models.ScreenDocument{}
	raw, err := os.ReadFile(s.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read screen config: %w", err)
	case len(raw) > 0:
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, fmt.Errorf("decode screen config: %w", err)
		}
	}
	s.normalize(doc)
	return doc, nil
}

func (s *Store) read() (*models.ScreenDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(unix.LOCK_SH)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.decode()
}

func (s *Store) update(apply func(doc *models.ScreenDocument)) (*models.ScreenDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(unix.LOCK_EX)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.decode()
	if err != nil {
		return nil, err
	}
	apply(doc)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) lock(how int) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o775); err != nil {
		return nil, fmt.Errorf("create screen config dir: %w", err)
	}
	f, err := os.OpenFile(s.Path+".lock", os.O_CREATE|os.O_RDWR, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open screen lock: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock screen config: %w", err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

func (s *Store) write(doc *models.ScreenDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".bildschirme-*.json")
	if err != nil {
		return fmt.Errorf("create temp screen config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write screen config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace screen config: %w", err)
	}
	return nil
}
