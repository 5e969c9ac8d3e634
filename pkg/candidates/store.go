package candidates

import (
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var builtin embed.FS

// DefaultID is the candidate used when no id is given.
const DefaultID = "jane-doe"

// Store holds loaded candidate profiles. It is safe for concurrent reads.
type Store struct {
	mu        sync.RWMutex
	profiles  map[string]Profile
	order     []string
	defaultID string
}

// NewStore validates the given profiles and returns a store over them.
// If defaultID is empty, the first profile becomes the default.
func NewStore(defaultID string, profiles ...Profile) (store *Store, err error) {
	if len(profiles) == 0 {
		err = errors.New("no candidate profiles provided")
		return store, err
	}

	store = &Store{
		profiles: make(map[string]Profile, len(profiles)),
	}

	for _, p := range profiles {
		err = Validate(p)
		if err != nil {
			err = errors.Wrapf(err, "invalid profile %q", p.ID)
			return nil, err
		}
		if _, dup := store.profiles[p.ID]; !dup {
			store.order = append(store.order, p.ID)
		}
		store.profiles[p.ID] = p.Clone()
	}

	if defaultID == "" {
		defaultID = store.order[0]
	}

	if _, ok := store.profiles[defaultID]; !ok {
		err = errors.Errorf("default candidate %q not found", defaultID)
		return nil, err
	}
	store.defaultID = defaultID

	return store, err
}

// Open loads the built-in profiles plus any found in dir (dir may be empty).
// Profiles in dir replace built-ins with the same id.
func Open(dir string, defaultID string) (store *Store, err error) {
	var profiles []Profile
	profiles, err = LoadBuiltin()
	if err != nil {
		return store, err
	}

	if dir != "" {
		var extra []Profile
		extra, err = LoadDir(dir)
		if err != nil {
			return store, err
		}
		profiles = append(profiles, extra...)
	}

	if defaultID == "" {
		defaultID = DefaultID
	}

	store, err = NewStore(defaultID, profiles...)
	return store, err
}

// Get returns a copy of the profile with the given id.
func (s *Store) Get(id string) (profile Profile, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return profile, ok
	}
	profile = p.Clone()
	return profile, ok
}

// Resolve returns the profile for id, or the default profile if id is empty or unknown.
// found is false when the fallback was used for a non-empty id.
func (s *Store) Resolve(id string) (profile Profile, found bool) {
	if id != "" {
		profile, found = s.Get(id)
		if found {
			return profile, found
		}
	}

	profile = s.Default()
	found = id == ""
	return profile, found
}

// Default returns a copy of the default profile.
func (s *Store) Default() (profile Profile) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile = s.profiles[s.defaultID].Clone()
	return profile
}

// DefaultID returns the id of the default profile.
func (s *Store) DefaultID() (id string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id = s.defaultID
	return id
}

// List returns copies of all profiles in load order.
func (s *Store) List() (profiles []Profile) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles = make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		profiles = append(profiles, s.profiles[id].Clone())
	}
	return profiles
}

// LoadBuiltin reads the profiles compiled into the binary.
func LoadBuiltin() (profiles []Profile, err error) {
	var names []string
	names, err = fs.Glob(builtin, "profiles/*.yaml")
	if err != nil {
		err = errors.Wrap(err, "failed to list built-in profiles")
		return profiles, err
	}
	sort.Strings(names)

	for _, name := range names {
		var data []byte
		data, err = builtin.ReadFile(name)
		if err != nil {
			err = errors.Wrapf(err, "failed to read built-in profile %s", name)
			return profiles, err
		}

		var p Profile
		p, err = Parse(data, name)
		if err != nil {
			return profiles, err
		}
		profiles = append(profiles, p)
	}

	return profiles, err
}

// LoadDir reads every .yaml, .yml and .json profile in dir.
func LoadDir(dir string) (profiles []Profile, err error) {
	var entries []os.DirEntry
	entries, err = os.ReadDir(dir)
	if err != nil {
		err = errors.Wrapf(err, "failed to read profiles directory: %s", dir)
		return profiles, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !isProfileFile(entry.Name()) {
			continue
		}

		var p Profile
		p, err = LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return profiles, err
		}
		profiles = append(profiles, p)
	}

	return profiles, err
}

// LoadFile reads a single profile from a YAML or JSON file.
func LoadFile(path string) (profile Profile, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read profile file: %s", path)
		return profile, err
	}

	profile, err = Parse(data, path)
	return profile, err
}

// Parse decodes and validates a profile. name selects the decoder by extension.
func Parse(data []byte, name string) (profile Profile, err error) {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		err = json.Unmarshal(data, &profile)
	} else {
		err = yaml.Unmarshal(data, &profile)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse profile: %s", name)
		return profile, err
	}

	err = Validate(profile)
	if err != nil {
		err = errors.Wrapf(err, "profile validation failed: %s", name)
		return profile, err
	}

	return profile, err
}

//nolint:gochecknoglobals // validator caches struct metadata
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func profileValidator() (v *validator.Validate) {
	validateOnce.Do(func() {
		validate = validator.New()
		err := validate.RegisterValidation("profession", func(fl validator.FieldLevel) bool {
			_, ok := Variants[Profession(fl.Field().String())]
			return ok
		})
		if err != nil {
			panic(errors.Wrap(err, "failed to register profession validation"))
		}
	})
	v = validate
	return v
}

// Validate checks that a profile is well-formed and its skill keys belong to its variant.
func Validate(p Profile) (err error) {
	err = profileValidator().Struct(p)
	if err != nil {
		err = errors.Wrap(err, "profile is malformed")
		return err
	}

	variant := MustVariant(p.Profession)
	keys := make([]string, 0, len(p.Skills))
	for k := range p.Skills {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !variant.HasSkillCategory(k) {
			err = errors.Errorf("skill category %q is not valid for profession %s", k, p.Profession)
			return err
		}
	}

	return err
}

func isProfileFile(name string) (ok bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		ok = true
	}
	return ok
}
