package core

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseVersions(t *testing.T) {
	got := ParseVersions(`[
		{"number": "10.04", "name": "Lucid Lynx", "lts": "true", "active": "yes"},
		{"number": "8.04", "name": " Hardy Heron ", "lts": true},
		{"number": "9.10", "name": "Karmic Koala", "current": "1", "dev": null},
		{"number": "8.04", "name": "Duplicate"},
		{"number": "latest", "name": "Not A Version"},
		{"number": "10.10", "name": "Maverick Meerkat", "dev": "t"}
	]`)

	want := []Version{
		{Number: "8.04", Name: "Hardy Heron", LTS: true},
		{Number: "9.10", Name: "Karmic Koala", Current: true},
		{Number: "10.04", Name: "Lucid Lynx", LTS: true, Active: true},
		{Number: "10.10", Name: "Maverick Meerkat", Dev: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVersions() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVersions_Invalid(t *testing.T) {
	for _, value := range []string{"", "{}", `[{"number": "8.04", "lts": 3}]`} {
		if got := ParseVersions(value); got != nil {
			t.Errorf("ParseVersions(%q) = %v, want nil", value, got)
		}
	}
}

func TestVersion(t *testing.T) {
	v := Version{Number: "8.04", Name: "Hardy Heron"}
	if got := v.String(); got != "8.04 (Hardy Heron)" {
		t.Errorf("String() = %q", got)
	}
	if v.IsActive() {
		t.Error("IsActive() = true for an unsupported release")
	}
	v.Dev = true
	if !v.IsActive() {
		t.Error("IsActive() = false for a development release")
	}
}

func TestService_DistributionVersionsEmpty(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	versions, err := env.svc.DistributionVersions(ctx)
	if err != nil {
		t.Fatalf("DistributionVersions() error = %v", err)
	}
	if versions == nil || len(versions) != 0 {
		t.Errorf("DistributionVersions() = %#v, want empty slice", versions)
	}

	env.seed(t, "not json")
	versions, err = env.svc.DistributionVersions(ctx)
	if err != nil || len(versions) != 0 {
		t.Errorf("DistributionVersions() = %v, %v; want empty", versions, err)
	}
}
