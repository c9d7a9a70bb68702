// Package schema loads declarative schema documents: tables, seed data,
// screens and routes, either from one monolithic file or from a base file
// sharded across sibling directories.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Tables  map[string]*Table `yaml:"tables" json:"tables"`
	Data    map[string][]Row  `yaml:"data" json:"data"`
	Screens map[string]Screen `yaml:"screens" json:"screens"`
	Routes  []Route           `yaml:"routes" json:"routes"`
}

// Load reads the document at basePath plus the optional tables/, data/,
// screens/ and routes/ directories next to it, and merges them into one
// Document. Directory entries override base-document entries with the same
// name; route files are appended. Missing files and directories are
// treated as empty. Malformed files abort with a parse error.
func Load(basePath string) (*Document, error) {
	doc := &Document{
		Tables:  make(map[string]*Table),
		Data:    make(map[string][]Row),
		Screens: make(map[string]Screen),
	}

	if _, err := os.Stat(basePath); err == nil {
		var base fileDocument
		if err := parseFile(basePath, &base); err != nil {
			return nil, err
		}
		for name, t := range base.Tables {
			doc.Tables[name] = t
		}
		for name, rows := range base.Data {
			doc.Data[name] = rows
		}
		for name, s := range base.Screens {
			doc.Screens[name] = s
		}
		doc.Routes = append(doc.Routes, base.Routes...)
	}

	dir := filepath.Dir(basePath)

	tableFiles, err := sectionFiles(filepath.Join(dir, "tables"))
	if err != nil {
		return nil, err
	}
	for _, f := range tableFiles {
		var t Table
		if err := parseFile(f, &t); err != nil {
			return nil, err
		}
		doc.Tables[stem(f)] = &t
	}

	dataFiles, err := sectionFiles(filepath.Join(dir, "data"))
	if err != nil {
		return nil, err
	}
	for _, f := range dataFiles {
		var rows []Row
		if err := parseFile(f, &rows); err != nil {
			return nil, err
		}
		doc.Data[stem(f)] = rows
	}

	screenFiles, err := sectionFiles(filepath.Join(dir, "screens"))
	if err != nil {
		return nil, err
	}
	for _, f := range screenFiles {
		var s Screen
		if err := parseFile(f, &s); err != nil {
			return nil, err
		}
		doc.Screens[stem(f)] = s
	}

	routeFiles, err := sectionFiles(filepath.Join(dir, "routes"))
	if err != nil {
		return nil, err
	}
	for _, f := range routeFiles {
		routes, err := parseRoutes(f)
		if err != nil {
			return nil, err
		}
		doc.Routes = append(doc.Routes, routes...)
	}

	normalize(doc)
	return doc, nil
}

// normalize fills table names from their map keys and implicit column
// names from the type tag's default.
func normalize(doc *Document) {
	for name, t := range doc.Tables {
		t.Name = name
		for i := range t.Columns {
			if t.Columns[i].Name == "" {
				t.Columns[i].Name = defaultNames[t.Columns[i].Type]
			}
		}
	}
}

// sectionFiles lists the loadable files of one shard directory in name
// order. A missing directory yields a nil slice.
func sectionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// parseRoutes reads a route file holding either a single route or a list.
func parseRoutes(path string) ([]Route, error) {
	var list []Route
	if err := parseFile(path, &list); err == nil {
		return list, nil
	}
	var one Route
	if err := parseFile(path, &one); err != nil {
		return nil, err
	}
	return []Route{one}, nil
}

func parseFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if filepath.Ext(path) == ".json" {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
