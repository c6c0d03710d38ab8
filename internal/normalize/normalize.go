// Package normalize maps the many spellings of browser and device category
// labels found in traffic exports onto canonical names, using an embedded
// database of PCRE rules.
package normalize

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

//go:embed database/browsers.yml
//go:embed database/devices.yml
var databaseFiles embed.FS

// NotSet is the canonical label for missing values.
const NotSet = "(not set)"

// Rule maps every label matching Regex to Name. Name may reference capture
// groups as $1, $2, ...
type Rule struct {
	Regex string `yaml:"regex"`
	Name  string `yaml:"name"`
}

// Compiled regex cache
type RegexCache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

func newRegexCache() *RegexCache {
	return &RegexCache{
		compiled: make(map[string]*pcre.Regexp),
	}
}

func (rc *RegexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mutex.RLock()
	if regex, exists := rc.compiled[pattern]; exists {
		rc.mutex.RUnlock()
		return regex, nil
	}
	rc.mutex.RUnlock()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if regex, exists := rc.compiled[pattern]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile(pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = regex
	return regex, nil
}

// Normalizer rewrites labels according to its rule sets.
type Normalizer struct {
	browsers   []Rule
	devices    []Rule
	regexCache *RegexCache
}

var (
	defaultNormalizer *Normalizer
	defaultErr        error
	once              sync.Once
)

// Default returns the normalizer built from the embedded rule database.
func Default() (*Normalizer, error) {
	once.Do(func() {
		browsers, err := databaseFiles.ReadFile("database/browsers.yml")
		if err != nil {
			defaultErr = fmt.Errorf("reading browsers.yml: %w", err)
			return
		}
		devices, err := databaseFiles.ReadFile("database/devices.yml")
		if err != nil {
			defaultErr = fmt.Errorf("reading devices.yml: %w", err)
			return
		}
		defaultNormalizer, defaultErr = New(browsers, devices)
	})
	return defaultNormalizer, defaultErr
}

// New parses YAML rule lists and compiles every pattern up front so a bad
// rule fails here instead of silently never matching.
func New(browserRules, deviceRules []byte) (*Normalizer, error) {
	n := &Normalizer{regexCache: newRegexCache()}

	if err := yaml.Unmarshal(browserRules, &n.browsers); err != nil {
		return nil, fmt.Errorf("parsing browser rules: %w", err)
	}
	if err := yaml.Unmarshal(deviceRules, &n.devices); err != nil {
		return nil, fmt.Errorf("parsing device rules: %w", err)
	}

	for _, rules := range [][]Rule{n.browsers, n.devices} {
		for _, r := range rules {
			if _, err := n.regexCache.get(r.Regex); err != nil {
				return nil, fmt.Errorf("compiling rule %q: %w", r.Regex, err)
			}
		}
	}

	return n, nil
}

// Browser returns the canonical browser name for label. Unknown browsers are
// returned trimmed but otherwise untouched.
func (n *Normalizer) Browser(label string) string {
	if name, ok := n.match(n.browsers, label); ok {
		return name
	}
	return strings.TrimSpace(label)
}

// DeviceCategory returns the canonical device category for label. Unknown
// categories are lower-cased.
func (n *Normalizer) DeviceCategory(label string) string {
	if name, ok := n.match(n.devices, label); ok {
		return name
	}
	return strings.ToLower(strings.TrimSpace(label))
}

func (n *Normalizer) match(rules []Rule, label string) (string, bool) {
	for _, entry := range rules {
		regex, err := n.regexCache.get(entry.Regex)
		if err != nil {
			continue
		}
		matches := regex.FindStringSubmatch(label)
		if len(matches) == 0 {
			continue
		}
		name := entry.Name
		// Replace $1, $2, etc. with actual match groups
		for i, group := range matches[1:] {
			name = strings.ReplaceAll(name, fmt.Sprintf("$%d", i+1), group)
		}
		return name, true
	}
	return "", false
}
