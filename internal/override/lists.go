package override

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
)

// Paths locates the list files. Empty paths are skipped; an empty manual
// path keeps additions in memory only.
type Paths struct {
	// Feed is the bulk phishing-domain feed, read-only.
	Feed string
	// Blacklist is the manual blacklist file.
	Blacklist string
	// Whitelist is the manual whitelist file.
	Whitelist string
}

// list is an ordered set of tokens.
type list struct {
	tokens []string
	index  map[string]struct{}
}

func newList() *list {
	return &list{index: make(map[string]struct{})}
}

// add appends token unless present and reports whether it was added.
func (l *list) add(token string) bool {
	if _, ok := l.index[token]; ok {
		return false
	}
	l.index[token] = struct{}{}
	l.tokens = append(l.tokens, token)
	return true
}

// Lists owns both override lists. All methods are safe for concurrent use.
type Lists struct {
	paths  Paths
	logger *slog.Logger

	mu    sync.RWMutex
	black *list
	white *list
}

// Option configures Lists.
type Option func(*Lists)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lists) {
		l.logger = logger
	}
}

// Load reads the list files. A file that cannot be read contributes
// nothing and is logged; Load itself never fails.
func Load(paths Paths, opts ...Option) *Lists {
	l := &Lists{paths: paths}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.Reload()
	return l
}

// Reload re-reads every file and replaces the in-memory lists. The files are
// read under the write lock so an Add cannot land between the read and the
// swap.
func (l *Lists) Reload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	feed := l.readFile(l.paths.Feed)
	manualBlack := l.readFile(l.paths.Blacklist)
	manualWhite := l.readFile(l.paths.Whitelist)

	black, white := newList(), newList()
	for _, t := range feed {
		black.add(t)
	}
	for _, t := range manualBlack {
		black.add(t)
	}
	for _, t := range manualWhite {
		white.add(t)
	}
	l.black, l.white = black, white

	l.logger.Info("override lists loaded",
		"feed_entries", len(feed),
		"manual_blacklist_entries", len(manualBlack),
		"blacklist_total", len(black.tokens),
		"whitelist_total", len(white.tokens),
	)
}

// readFile returns the tokens of path, or nil when it cannot be read.
// A missing file is expected on first run and only logged at debug level.
func (l *Lists) readFile(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("list file not found", "path", path)
		} else {
			l.logger.Warn("could not load list file", "path", path, "error", err)
		}
		return nil
	}
	defer f.Close()

	tokens, err := ParseTokens(f)
	if err != nil {
		l.logger.Warn("could not load list file", "path", path, "error", err)
		return nil
	}
	return tokens
}

// ParseTokens reads one token per line, skipping blanks and '#' comments.
func ParseTokens(r io.Reader) ([]string, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, strings.ToLower(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Normalize trims and lowercases a token the way list files are read.
func Normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// IsBlacklisted reports whether the lowercased URL contains any blacklist token.
func (l *Lists) IsBlacklisted(rawURL string) bool {
	target := strings.ToLower(rawURL)

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.black.tokens {
		if strings.Contains(target, t) {
			return true
		}
	}
	return false
}

// IsWhitelisted reports whether the URL's authority, lowercased and with
// "www." removed, contains any whitelist token.
func (l *Lists) IsWhitelisted(rawURL string) bool {
	authority := strings.ReplaceAll(strings.ToLower(lexical.Split(rawURL).Authority), "www.", "")
	if authority == "" {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.white.tokens {
		if strings.Contains(authority, t) {
			return true
		}
	}
	return false
}

// Add normalises token and appends it to the list and to its manual file.
// The file is written first, so a failed write leaves the list unchanged.
// A token already present yields ErrAlreadyListed.
func (l *Lists) Add(kind Kind, token string) (string, error) {
	token = Normalize(token)
	if token == "" {
		return "", ErrEmptyToken
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	target, path, err := l.target(kind)
	if err != nil {
		return token, err
	}
	if _, ok := target.index[token]; ok {
		return token, fmt.Errorf("%s %w", token, ErrAlreadyListed)
	}
	if err := appendLine(path, token); err != nil {
		return token, fmt.Errorf("persist %s entry: %w", kind, err)
	}
	target.add(token)
	return token, nil
}

// target returns the in-memory list and manual file for kind. The caller
// holds l.mu.
func (l *Lists) target(kind Kind) (*list, string, error) {
	switch kind {
	case Blacklist:
		return l.black, l.paths.Blacklist, nil
	case Whitelist:
		return l.white, l.paths.Whitelist, nil
	default:
		return nil, "", ErrUnknownList
	}
}

// appendLine appends token as a new line of path, creating the file and
// its directory if needed. An empty path is a no-op.
func appendLine(path, token string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	line := token + "\n"
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err == nil && last[0] != '\n' {
			line = "\n" + line
		}
	}
	_, err = f.WriteString(line)
	return err
}

// List returns a copy of the tokens of kind in insertion order.
func (l *Lists) List(kind Kind) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	target, _, err := l.target(kind)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(target.tokens))
	copy(out, target.tokens)
	return out, nil
}

// Len returns the number of tokens on kind.
func (l *Lists) Len(kind Kind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	target, _, err := l.target(kind)
	if err != nil {
		return 0
	}
	return len(target.tokens)
}
