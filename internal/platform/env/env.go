package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source reads typed settings from the process environment. Keys are looked
// up as PREFIX_KEY when a prefix is set.
type Source struct {
	prefix string
}

func WithPrefix(prefix string) Source {
	prefix = strings.Trim(strings.ToUpper(strings.TrimSpace(prefix)), "_")
	return Source{prefix: prefix}
}

func (s Source) Key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "_" + key
}

func (s Source) lookup(key string) (string, string, bool) {
	name := s.Key(key)
	v, ok := os.LookupEnv(name)
	return name, strings.TrimSpace(v), ok
}

func (s Source) String(key string, def string) string {
	if _, v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

func (s Source) Duration(key string, def time.Duration) (time.Duration, error) {
	name, v, ok := s.lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return d, nil
}

func (s Source) Bool(key string, def bool) (bool, error) {
	name, v, ok := s.lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return b, nil
}

func (s Source) Int(key string, def int) (int, error) {
	name, v, ok := s.lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return i, nil
}
