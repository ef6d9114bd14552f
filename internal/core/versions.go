package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DistriVersionsKey is the storage key of the distribution versions table.
const DistriVersionsKey = "distri_versions"

// Version is one distribution release as kept in the versions table.
type Version struct {
	Number  string `json:"number"`
	Name    string `json:"name"`
	LTS     bool   `json:"lts"`
	Active  bool   `json:"active"`
	Current bool   `json:"current"`
	Dev     bool   `json:"dev"`
}

// IsActive reports whether the release is supported, current or upcoming.
func (v Version) IsActive() bool { return v.Active || v.Current || v.Dev }

func (v Version) String() string { return fmt.Sprintf("%s (%s)", v.Number, v.Name) }

// parseNumber splits "major.minor".
func (v Version) parseNumber() (major, minor int, ok bool) {
	a, b, found := strings.Cut(v.Number, ".")
	if !found {
		return 0, 0, false
	}
	major, err1 := strconv.Atoi(a)
	minor, err2 := strconv.Atoi(b)
	return major, minor, err1 == nil && err2 == nil
}

// flexBool accepts JSON booleans and the string forms the table stores.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case bool:
		*b = flexBool(x)
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "t", "yes", "y", "1":
			*b = true
		default:
			*b = false
		}
	case nil:
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

type storedVersion struct {
	Number  string   `json:"number"`
	Name    string   `json:"name"`
	LTS     flexBool `json:"lts"`
	Active  flexBool `json:"active"`
	Current flexBool `json:"current"`
	Dev     flexBool `json:"dev"`
}

// ParseVersions decodes a stored versions table. Entries without a
// "major.minor" number are skipped, duplicate numbers keep the first entry
// and the result is ordered by major, then minor version. An undecodable
// value yields no versions.
func ParseVersions(value string) []Version {
	var stored []storedVersion
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		return nil
	}

	type keyed struct {
		v            Version
		major, minor int
	}
	seen := make(map[string]bool, len(stored))
	list := make([]keyed, 0, len(stored))
	for _, s := range stored {
		v := Version{
			Number:  strings.TrimSpace(s.Number),
			Name:    strings.TrimSpace(s.Name),
			LTS:     bool(s.LTS),
			Active:  bool(s.Active),
			Current: bool(s.Current),
			Dev:     bool(s.Dev),
		}
		major, minor, ok := v.parseNumber()
		if !ok || seen[v.Number] {
			continue
		}
		seen[v.Number] = true
		list = append(list, keyed{v: v, major: major, minor: minor})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].major != list[j].major {
			return list[i].major < list[j].major
		}
		return list[i].minor < list[j].minor
	})

	out := make([]Version, len(list))
	for i, k := range list {
		out[i] = k.v
	}
	return out
}

// DistributionVersions returns the stored distribution versions.
func (s *Service) DistributionVersions(ctx context.Context) ([]Version, error) {
	value, ok, err := s.store.Get(ctx, DistriVersionsKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", DistriVersionsKey, err)
	}
	versions := ParseVersions(value)
	if !ok || versions == nil {
		return []Version{}, nil
	}
	return versions, nil
}
