package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strconv"

	cp "github.com/otiai10/copy"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfig []byte

const firstTrackedSet = 8.5

// Mappings the user owns entirely, merged as a single value.
var opaqueKeys = []string{"trait_champions"}

// Migration describes what Load did to an outdated config file, it is empty when the file was current.
type Migration struct {
	Migrated       bool
	FromVersion    int
	ToVersion      int
	BackupPath     string
	TraitsReplaced bool
}

var lastMigration Migration

// LastMigration returns the outcome of the most recent Load.
func LastMigration() Migration {
	return lastMigration
}

// migrate merges the user config into the embedded default when the default has a newer version.
// User values win for every key both files share, keys that only exist in the user file are dropped.
// The previous file is kept next to the new one with a .bak suffix.
func migrate(path string, raw []byte) ([]byte, error) {
	lastMigration = Migration{}

	var resource, user yaml.Node
	if err := yaml.Unmarshal(defaultConfig, &resource); err != nil {
		return nil, fmt.Errorf("error reading embedded config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	resRoot, userRoot := documentRoot(&resource), documentRoot(&user)
	if resRoot == nil {
		return nil, fmt.Errorf("embedded config is not a mapping")
	}
	if userRoot == nil {
		// Empty or scalar user file, nothing worth keeping
		userRoot = &yaml.Node{Kind: yaml.MappingNode}
	}

	resVersion := intValue(lookup(resRoot, "version"), 0)
	userVersion := intValue(lookup(userRoot, "version"), 0)
	if resVersion <= userVersion {
		return raw, nil
	}

	backup := path + ".bak"
	if err := cp.Copy(path, backup); err != nil {
		return nil, fmt.Errorf("error backing up config to %s: %w", backup, err)
	}

	lastMigration = Migration{
		Migrated:    true,
		FromVersion: userVersion,
		ToVersion:   resVersion,
		BackupPath:  backup,
	}

	if floatValue(lookup(resRoot, "set"), 0) > floatValue(lookup(userRoot, "set"), firstTrackedSet) {
		removeKey(userRoot, "wanted_traits")
		if economy := lookup(userRoot, "economy"); economy != nil && economy.Kind == yaml.MappingNode {
			removeKey(economy, "trait_champions")
		}
		lastMigration.TraitsReplaced = true
	}

	mergeInto(resRoot, userRoot, "version", "set")

	migrated, err := yaml.Marshal(&resource)
	if err != nil {
		return nil, fmt.Errorf("error encoding migrated config: %w", err)
	}
	if err = os.WriteFile(path, migrated, 0644); err != nil {
		return nil, fmt.Errorf("error writing migrated config: %w", err)
	}

	return migrated, nil
}

// mergeInto overwrites every value of dst whose key also exists in src, recursing into nested mappings.
func mergeInto(dst, src *yaml.Node, skip ...string) {
	for i := 0; i+1 < len(dst.Content); i += 2 {
		key := dst.Content[i].Value
		if slices.Contains(skip, key) {
			continue
		}
		srcValue := lookup(src, key)
		if srcValue == nil {
			continue
		}
		if dst.Content[i+1].Kind == yaml.MappingNode && srcValue.Kind == yaml.MappingNode && !slices.Contains(opaqueKeys, key) {
			mergeInto(dst.Content[i+1], srcValue)
			continue
		}
		dst.Content[i+1] = srcValue
	}
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}

	return doc
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}

	return nil
}

func removeKey(mapping *yaml.Node, key string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content = append(mapping.Content[:i], mapping.Content[i+2:]...)
			return
		}
	}
}

func intValue(n *yaml.Node, def int) int {
	if n == nil {
		return def
	}
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return def
	}

	return v
}

func floatValue(n *yaml.Node, def float64) float64 {
	if n == nil {
		return def
	}
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return def
	}

	return v
}
