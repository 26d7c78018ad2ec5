package stdlib

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/symbols"
)

// Loader scans a directory of ".htf" manifest files and builds the
// ExternalEntity portion of a symbol table.
type Loader struct {
	path string
	log  *zap.Logger
}

// New creates a Loader rooted at path. log may be nil.
func New(path string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}

	return &Loader{path: path, log: log}
}

var propertyLine = regexp.MustCompile(`^-\s*(\w+)\s*:\s*(\w+)\s*=\s*(.+)$`)

// Load scans every "*.htf" file under the loader's path and returns the
// resulting ExternalEntity table. An entity whose manifest carries a
// [FUNCTION: alias] tag is registered a second time under alias,
// pointing at the same Entry, matching the original's
// "definitions[func_name] = definitions[entity_name]" aliasing.
func (l *Loader) Load() (symbols.Table, error) {
	table := symbols.New()

	matches, err := filepath.Glob(filepath.Join(l.path, "*.htf"))
	if err != nil {
		return nil, fmt.Errorf("stdlib: glob %s: %w", l.path, err)
	}

	l.log.Info("loading standard library", zap.String("path", l.path), zap.Int("files", len(matches)))

	for _, file := range matches {
		if err := l.loadFile(table, file); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func (l *Loader) loadFile(table symbols.Table, file string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("stdlib: read %s: %w", file, err)
	}

	l.log.Debug("scanning manifest", zap.String("file", filepath.Base(file)))

	manifest, err := Parse(file, string(content))
	if err != nil {
		return fmt.Errorf("stdlib: parse %s: %w", file, err)
	}

	var current *symbols.Entry
	var currentName string

	flush := func() {
		if current != nil {
			table[currentName] = current
		}
	}

	for _, tag := range manifest.Tags {
		value := tag.TrimmedValue()

		switch tag.Name {
		case "ENTITY":
			flush()
			currentName = value
			current = &symbols.Entry{
				Kind:       symbols.ExternalEntity,
				Properties: make(map[string]any),
				OriginFile: filepath.Base(file),
			}
		case "CLASS":
			if current != nil {
				current.Class = value
			}
		case "EFFECT":
			if current != nil {
				current.Effect = value
			}
		case "PROPERTIES":
			if current != nil {
				parseProperties(current, value)
			}
		case "INPUT":
			if current != nil {
				current.Source = parseTypeSig(value)
			}
		case "OUTPUT":
			if current != nil {
				current.Target = parseTypeSig(value)
			}
		case "FUNCTION":
			if current != nil {
				table[value] = current
			}
		}
	}

	flush()

	return nil
}

// parseProperties fills in the four recognized topological property
// keys from a PROPERTIES block's raw bullet-list text, line by line.
// Unknown keys and unparseable values are silently ignored, matching
// the original's "if match: props[key] = value" behavior exactly.
func parseProperties(e *symbols.Entry, raw string) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := propertyLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name, typ, val := m[1], m[2], strings.TrimSpace(m[3])

		switch name {
		case "dimension":
			if typ == "Number" {
				if n, err := strconv.Atoi(val); err == nil {
					e.Properties["dimension"] = n
				}
			}
		case "euler_characteristic":
			if typ == "Number" {
				if n, err := strconv.Atoi(val); err == nil {
					e.Properties["euler_characteristic"] = n
				}
			}
		case "is_orientable":
			if typ == "Boolean" {
				if val == "true" || val == "false" {
					e.Properties["is_orientable"] = val == "true"
				}
			}
		case "fundamental_group":
			if typ == "String" {
				e.Properties["fundamental_group"] = strings.Trim(val, `"`)
			}
		}
	}
}
