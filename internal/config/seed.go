package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedUser is one entry of the bootstrap user list.
type SeedUser struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
}

// DefaultSeed is the bootstrap list used when no seed file is configured.
func DefaultSeed() []SeedUser {
	return []SeedUser{
		{Username: "jaydev", Password: "zala", DisplayName: "Jaydev Zala"},
		{Username: "kush", Password: "jani", DisplayName: "Kush Jani"},
		{Username: "krishna", Password: "panchal", DisplayName: "Krishna Panchal"},
		{Username: "pratik", Password: "rohit", DisplayName: "Pratik Rohit"},
		{Username: "dhruv", Password: "barad", DisplayName: "Dhruv Barad"},
	}
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeed reads the user list from a YAML file, or returns DefaultSeed for an empty path.
func LoadSeed(path string) ([]SeedUser, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(parsed.Users) == 0 {
		return nil, fmt.Errorf("seed file %s lists no users", path)
	}

	seen := make(map[string]bool, len(parsed.Users))
	for i, u := range parsed.Users {
		if u.Username == "" || u.DisplayName == "" {
			return nil, fmt.Errorf("seed user %d: username and display_name are required", i)
		}
		if seen[u.Username] {
			return nil, fmt.Errorf("seed user %q listed twice", u.Username)
		}
		seen[u.Username] = true
	}

	return parsed.Users, nil
}
